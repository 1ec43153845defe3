package memory

import (
	"math"
	"os"

	"github.com/aktsk/physmem/pkg/logger"
	sys "golang.org/x/sys/unix"
)

// Transfer copies files to and from physical memory. The zero value maps
// DefaultDevice with the host page size, copies raw bytes and logs nothing.
type Transfer struct {
	Device   string
	PageSize uint64
	Format   Format
	Log      *logger.Logger

	// IOMem names an iomem listing used to report which physical regions a
	// transfer touches. Empty disables the report.
	IOMem string
}

func (t *Transfer) device() string {
	if t.Device == "" {
		return DefaultDevice
	}
	return t.Device
}

func (t *Transfer) pageSize() uint64 {
	if t.PageSize == 0 {
		return uint64(sys.Getpagesize())
	}
	return t.PageSize
}

func (t *Transfer) log() *logger.Logger {
	if t.Log == nil {
		return logger.Discard
	}
	return t.Log
}

func (t *Transfer) align(size uint64) (uint64, error) {
	bufSize, err := Align(size, t.pageSize())
	if err != nil {
		return 0, MapErr{&Err{"align", t.device(), err}}
	}
	return bufSize, nil
}

func (t *Transfer) logSizes(size, bufSize, addr uint64) {
	l := t.log()
	l.Logf("file size", "0x%x", size)
	l.Logf("alloc size", "0x%x", bufSize)
	l.Logf("phys addr", "0x%x", addr)
	t.logRegions(addr, bufSize)
}

func (t *Transfer) logRegions(addr, bufSize uint64) {
	if t.IOMem == "" {
		return
	}
	regions, err := GetRegions(t.IOMem)
	if err != nil {
		return
	}
	for _, r := range Overlapping(regions, addr, bufSize) {
		t.log().Logf("region", "0x%x-0x%x %s", r.Begin, r.End, r.Name)
	}
}

// allocate returns a zeroed staging buffer. Only lengths that cannot be
// represented as a slice are reported; running out of memory is fatal.
func allocate(size uint64) ([]byte, error) {
	if size > math.MaxInt {
		return nil, AllocErr{&Err{"alloc", "", sys.ENOMEM}}
	}
	return make([]byte, size), nil
}

func release(m *Mapping, err *error) {
	if cerr := m.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}

// Load copies the file at path to physical memory starting at addr. The
// whole page-aligned staging buffer is written, so memory past the end of the
// image up to the next page boundary is cleared.
func (t *Transfer) Load(path string, addr uint64) (err error) {
	format := t.Format.resolve(path)

	f, err := os.Open(path)
	if err != nil {
		return FileOpenErr{&Err{"open", path, err}}
	}
	defer f.Close()

	var image []byte
	var size uint64
	if format == FormatIntelHex {
		var base uint32
		image, base, err = readIntelHex(f, path)
		if err != nil {
			return err
		}
		t.log().Logf("image base", "0x%x", base)
		size = uint64(len(image))
	} else {
		size, err = fileSize(f, path)
		if err != nil {
			return err
		}
	}

	bufSize, err := t.align(size)
	if err != nil {
		return err
	}
	t.logSizes(size, bufSize, addr)

	m, err := Map(t.device(), addr, bufSize)
	if err != nil {
		return err
	}
	defer release(m, &err)

	buffer, err := allocate(bufSize)
	if err != nil {
		return err
	}

	if format == FormatIntelHex {
		copy(buffer, image)
	} else if err := readBinary(f, path, buffer, size, t.pageSize()); err != nil {
		return err
	}

	return WriteMemory(m, buffer)
}

// Dump copies size bytes of physical memory starting at addr to the file at
// path, creating or truncating it.
func (t *Transfer) Dump(path string, addr uint64, size uint64) (err error) {
	format := t.Format.resolve(path)
	if format == FormatIntelHex {
		if err := checkIntelHexRange(path, addr, size); err != nil {
			return err
		}
	}

	bufSize, err := t.align(size)
	if err != nil {
		return err
	}
	t.logSizes(size, bufSize, addr)

	m, err := Map(t.device(), addr, bufSize)
	if err != nil {
		return err
	}
	defer release(m, &err)

	buffer, err := allocate(bufSize)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return FileOpenErr{&Err{"create", path, err}}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = FileIOErr{&Err{"close", path, cerr}}
		}
	}()

	if err := ReadMemory(m, buffer); err != nil {
		return err
	}

	if format == FormatIntelHex {
		return writeIntelHex(f, path, addr, buffer[:size])
	}
	return writeBinary(f, path, buffer, size, t.pageSize())
}
