package memory

import (
	"math"
	"os"

	sys "golang.org/x/sys/unix"
)

// DefaultDevice is the physical memory device on Linux.
const DefaultDevice = "/dev/mem"

// Mapping is a physical address range mapped into the process.
type Mapping struct {
	addr uint64
	data []byte
}

// Map opens device and maps length bytes from physical address addr. The
// device descriptor is closed before Map returns; the mapping stays valid
// until Close.
//
// A zero length touches nothing and returns an empty mapping, since Linux
// rejects zero-length mmap with EINVAL.
func Map(device string, addr uint64, length uint64) (*Mapping, error) {
	if length == 0 {
		return &Mapping{addr: addr}, nil
	}
	if addr > math.MaxInt64 || length > math.MaxInt {
		return nil, MapErr{&Err{"mmap", device, sys.EINVAL}}
	}

	f, err := os.OpenFile(device, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, DeviceOpenErr{&Err{"open", device, err}}
	}
	defer f.Close()

	data, err := sys.Mmap(int(f.Fd()), int64(addr), int(length), sys.PROT_READ|sys.PROT_WRITE, sys.MAP_SHARED)
	if err != nil {
		return nil, MapErr{&Err{"mmap", device, err}}
	}
	return &Mapping{addr: addr, data: data}, nil
}

func (m *Mapping) Addr() uint64 {
	return m.addr
}

func (m *Mapping) Len() int {
	return len(m.data)
}

// Close unmaps the region. Calling it again is a no-op.
func (m *Mapping) Close() error {
	if m.data == nil {
		return nil
	}
	data := m.data
	m.data = nil
	if err := sys.Munmap(data); err != nil {
		return MapErr{&Err{"munmap", "", err}}
	}
	return nil
}

// ReadMemory copies the whole mapping into buffer, which must be the same
// length as the mapping.
func ReadMemory(m *Mapping, buffer []byte) error {
	if len(buffer) != len(m.data) {
		return MapErr{&Err{"read memory", "", sys.EINVAL}}
	}
	copy(buffer, m.data)
	return nil
}

// WriteMemory copies buffer over the whole mapping.
func WriteMemory(m *Mapping, buffer []byte) error {
	if len(buffer) != len(m.data) {
		return MapErr{&Err{"write memory", "", sys.EINVAL}}
	}
	copy(m.data, buffer)
	return nil
}

// Align rounds size up to a whole number of pages.
func Align(size uint64, pageSize uint64) (uint64, error) {
	if pageSize == 0 {
		return 0, sys.EINVAL
	}
	pages := size / pageSize
	if size%pageSize != 0 {
		pages++
	}
	if pages > math.MaxUint64/pageSize {
		return 0, sys.EOVERFLOW
	}
	return pages * pageSize, nil
}
