package main

import (
	"os"
	"path/filepath"

	"github.com/aktsk/physmem/cmd"
)

func main() {
	os.Exit(cmd.Execute(filepath.Base(os.Args[0]), os.Args[1:], os.Stderr))
}
