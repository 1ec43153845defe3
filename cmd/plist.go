package cmd

import (
	"os"
	"path/filepath"

	"github.com/aktsk/physmem/pkg/logger"
	ps "github.com/mitchellh/go-ps"
)

// otherInstances returns the PIDs of processes other than this one running
// an executable called name.
func otherInstances(name string) ([]int, error) {
	procs, err := ps.Processes()
	if err != nil {
		return nil, err
	}

	self := os.Getpid()
	pids := []int{}
	for _, p := range procs {
		if p.Pid() != self && p.Executable() == name {
			pids = append(pids, p.Pid())
		}
	}
	return pids, nil
}

// warnOtherInstances logs a warning for every other copy of this program. Two
// transfers to the same physical range are not coordinated in any way.
func warnOtherInstances(log *logger.Logger) {
	name := filepath.Base(os.Args[0])
	pids, err := otherInstances(name)
	if err != nil {
		return
	}
	for _, pid := range pids {
		log.Logf("warning", "%s is also running (PID: %d)", name, pid)
	}
}
