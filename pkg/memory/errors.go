package memory

import (
	"errors"
	"fmt"
	"syscall"
)

type Err struct {
	op   string
	path string
	err  error
}

func (e *Err) Error() string {
	if e.path == "" {
		return fmt.Sprintf("%s: %s", e.op, e.err)
	}
	return fmt.Sprintf("%s %s: %s", e.op, e.path, e.err)
}

func (e *Err) Unwrap() error {
	return e.err
}

// DeviceOpenErr means the memory device could not be opened, usually for
// lack of privileges.
type DeviceOpenErr struct {
	*Err
}

type MapErr struct {
	*Err
}

type FileOpenErr struct {
	*Err
}

// FileIOErr covers seek, read, write and close failures on an open file.
type FileIOErr struct {
	*Err
}

type AllocErr struct {
	*Err
}

// FormatErr is an image that cannot be expressed in, or parsed from, the
// selected file format.
type FormatErr struct {
	*Err
}

// Errno returns the OS error code behind err. Errors that carry no code
// report EIO.
func Errno(err error) syscall.Errno {
	if err == nil {
		return 0
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno
	}
	return syscall.EIO
}
