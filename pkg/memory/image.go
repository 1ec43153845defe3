package memory

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/marcinbor85/gohex"
	sys "golang.org/x/sys/unix"
)

type Format int

const (
	// FormatBinary copies raw bytes and is the zero value.
	FormatBinary Format = iota
	FormatIntelHex
	// FormatAuto picks Intel HEX for .hex and .ihex files and raw binary
	// for everything else.
	FormatAuto
)

// Largest image an Intel HEX file may flatten to.
const maxHexImage = 1 << 28

// Intel HEX data bytes per record when dumping.
const hexLineLength = 16

func (f Format) String() string {
	switch f {
	case FormatIntelHex:
		return "ihex"
	case FormatAuto:
		return "auto"
	}
	return "bin"
}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "bin", "binary", "raw":
		return FormatBinary, nil
	case "ihex", "hex":
		return FormatIntelHex, nil
	case "auto":
		return FormatAuto, nil
	}
	return FormatBinary, fmt.Errorf("unrecognized format: %s", s)
}

func (f Format) resolve(path string) Format {
	if f != FormatAuto {
		return f
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hex", ".ihex":
		return FormatIntelHex
	}
	return FormatBinary
}

func fileSize(f *os.File, path string) (uint64, error) {
	end, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, FileIOErr{&Err{"seek", path, err}}
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, FileIOErr{&Err{"seek", path, err}}
	}
	return uint64(end), nil
}

// readBinary fills the first size bytes of buffer from f, whole pages first
// and then the tail.
func readBinary(f *os.File, path string, buffer []byte, size uint64, pageSize uint64) error {
	whole := size / pageSize * pageSize
	if _, err := io.ReadFull(f, buffer[:whole]); err != nil {
		return FileIOErr{&Err{"read", path, err}}
	}
	if _, err := io.ReadFull(f, buffer[whole:size]); err != nil {
		return FileIOErr{&Err{"read", path, err}}
	}
	return nil
}

// writeBinary writes the first size bytes of buffer to f, whole pages first
// and then the tail.
func writeBinary(f *os.File, path string, buffer []byte, size uint64, pageSize uint64) error {
	whole := size / pageSize * pageSize
	if _, err := f.Write(buffer[:whole]); err != nil {
		return FileIOErr{&Err{"write", path, err}}
	}
	if _, err := f.Write(buffer[whole:size]); err != nil {
		return FileIOErr{&Err{"write", path, err}}
	}
	return nil
}

// readIntelHex flattens every data segment in r into one image that starts
// at the lowest segment address. Gaps between segments are zero filled.
func readIntelHex(r io.Reader, path string) (data []byte, base uint32, err error) {
	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(r); err != nil {
		return nil, 0, FormatErr{&Err{"parse intel hex", path, err}}
	}

	segments := mem.GetDataSegments()
	if len(segments) == 0 {
		return []byte{}, 0, nil
	}

	lo := uint64(math.MaxUint32)
	hi := uint64(0)
	for _, s := range segments {
		if uint64(s.Address) < lo {
			lo = uint64(s.Address)
		}
		if end := uint64(s.Address) + uint64(len(s.Data)); end > hi {
			hi = end
		}
	}

	if hi-lo > maxHexImage {
		return nil, 0, FormatErr{&Err{"intel hex", path, sys.EFBIG}}
	}

	data = make([]byte, hi-lo)
	for _, s := range segments {
		copy(data[uint64(s.Address)-lo:], s.Data)
	}
	return data, uint32(lo), nil
}

func checkIntelHexRange(path string, addr uint64, size uint64) error {
	if addr > math.MaxUint32 || size > math.MaxUint32+1-addr {
		return FormatErr{&Err{"intel hex", path, sys.EINVAL}}
	}
	return nil
}

// writeIntelHex writes data as Intel HEX records addressed from addr.
func writeIntelHex(w io.Writer, path string, addr uint64, data []byte) error {
	if err := checkIntelHexRange(path, addr, uint64(len(data))); err != nil {
		return err
	}

	mem := gohex.NewMemory()
	if len(data) > 0 {
		if err := mem.AddBinary(uint32(addr), data); err != nil {
			return FormatErr{&Err{"intel hex", path, err}}
		}
	}
	if err := mem.DumpIntelHex(w, hexLineLength); err != nil {
		return FileIOErr{&Err{"write", path, err}}
	}
	return nil
}
