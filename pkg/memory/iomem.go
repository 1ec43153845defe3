package memory

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// DefaultIOMem lists the physical address map on Linux.
const DefaultIOMem = "/proc/iomem"

// Region is one entry of the physical address map. End is inclusive.
type Region struct {
	Begin uint64
	End   uint64
	Name  string
	Depth int
}

// GetRegions parses an iomem listing such as
//
//	00001000-0009ffff : System RAM
//	  000a0000-000bffff : PCI Bus 0000:00
//
// Nested entries keep their indentation level in Depth. Malformed lines are
// skipped.
func GetRegions(iomemPath string) ([]Region, error) {
	file, err := os.OpenFile(iomemPath, os.O_RDONLY, 0600)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	regions := []Region{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimLeft(line, " ")
		depth := (len(line) - len(trimmed)) / 2

		fields := strings.SplitN(trimmed, " : ", 2)
		if len(fields) != 2 {
			continue
		}
		addrs := strings.Split(fields[0], "-")
		if len(addrs) != 2 {
			continue
		}
		begin, err := strconv.ParseUint(addrs[0], 16, 64)
		if err != nil {
			continue
		}
		end, err := strconv.ParseUint(addrs[1], 16, 64)
		if err != nil || end < begin {
			continue
		}
		regions = append(regions, Region{Begin: begin, End: end, Name: fields[1], Depth: depth})
	}
	return regions, scanner.Err()
}

// Overlapping returns the regions that share at least one byte with the
// range starting at addr. An unprivileged reader sees every region as
// 00000000-00000000, and a zero-size range overlaps nothing.
func Overlapping(regions []Region, addr uint64, size uint64) []Region {
	found := []Region{}
	if size == 0 {
		return found
	}
	last := addr + size - 1
	if last < addr {
		last = ^uint64(0)
	}
	for _, r := range regions {
		if r.Begin == 0 && r.End == 0 {
			continue
		}
		if r.Begin <= last && addr <= r.End {
			found = append(found, r)
		}
	}
	return found
}
