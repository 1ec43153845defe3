package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/aktsk/physmem/pkg/converter"
	"github.com/aktsk/physmem/pkg/logger"
	"github.com/aktsk/physmem/pkg/memory"
	"github.com/spf13/cobra"
	sys "golang.org/x/sys/unix"
)

// UsageErr is a command line that could not be accepted. Nothing has been
// opened or mapped when it is returned.
type UsageErr struct {
	err error
}

func (e UsageErr) Error() string {
	return e.err.Error()
}

func (e UsageErr) Unwrap() error {
	return e.err
}

func usageErrorf(format string, args ...interface{}) error {
	return UsageErr{fmt.Errorf(format, args...)}
}

type options struct {
	device   string
	iomem    string
	pageSize string
	format   string
	quiet    bool
}

var defaultOptions = options{
	device: memory.DefaultDevice,
	iomem:  memory.DefaultIOMem,
	format: memory.FormatBinary.String(),
}

// transfer builds the transfer engine from the flags. Diagnostics go to
// stderr unless --quiet was given.
func (o *options) transfer(stderr io.Writer) (*memory.Transfer, error) {
	t := &memory.Transfer{Device: o.device, IOMem: o.iomem, Log: logger.Discard}
	if !o.quiet {
		t.Log = logger.New(stderr)
	}

	if o.pageSize != "" {
		pageSize, err := converter.ParseNum(o.pageSize)
		if err != nil || !validPageSize(pageSize) {
			return nil, usageErrorf("unrecognized page size: %s", o.pageSize)
		}
		t.PageSize = pageSize
	}

	format, err := memory.ParseFormat(o.format)
	if err != nil {
		return nil, UsageErr{err}
	}
	t.Format = format
	return t, nil
}

// validPageSize accepts powers of two that are whole multiples of the host
// page size, so every mapping stays host page aligned.
func validPageSize(pageSize uint64) bool {
	host := uint64(sys.Getpagesize())
	return pageSize != 0 && pageSize&(pageSize-1) == 0 && pageSize%host == 0
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(c *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(c, args); err != nil {
			return UsageErr{err}
		}
		return nil
	}
}

// newRootCmd builds the command tree. The shell command is left out when
// interactive is set so that a shell cannot start another one.
func newRootCmd(stderr io.Writer, defaults options, interactive bool) *cobra.Command {
	opts := defaults

	root := &cobra.Command{
		Use:           "physmem",
		Short:         "Copy files to and from physical memory",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(c *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usageErrorf("unknown command: %s", args[0])
			}
			return nil
		},
		RunE: func(c *cobra.Command, args []string) error {
			return usageErrorf("missing command")
		},
	}
	root.SetOut(stderr)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return UsageErr{err}
	})

	flags := root.PersistentFlags()
	flags.StringVar(&opts.device, "device", defaults.device, "physical memory device")
	flags.StringVar(&opts.iomem, "iomem", defaults.iomem, "physical address map reported alongside each transfer (empty to disable)")
	flags.StringVar(&opts.pageSize, "page-size", defaults.pageSize, "page size used to align transfers (default host page size)")
	flags.StringVar(&opts.format, "format", defaults.format, "file format: bin, ihex or auto (ihex for .hex and .ihex files)")
	flags.BoolVarP(&opts.quiet, "quiet", "q", defaults.quiet, "suppress diagnostics")

	root.AddCommand(&cobra.Command{
		Use:   "load <bin file> <address>",
		Short: "Copy a file into physical memory",
		Args:  exactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			addr, err := converter.ParseNum(args[1])
			if err != nil {
				return usageErrorf("unrecognized address: %s", args[1])
			}
			t, err := opts.transfer(stderr)
			if err != nil {
				return err
			}
			defer t.Log.Flush()
			warnOtherInstances(t.Log)
			return t.Load(args[0], addr)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "dump <bin file> <address> <size>",
		Short: "Copy physical memory into a file",
		Args:  exactArgs(3),
		RunE: func(c *cobra.Command, args []string) error {
			addr, err := converter.ParseNum(args[1])
			if err != nil {
				return usageErrorf("unrecognized address: %s", args[1])
			}
			size, err := converter.ParseNum(args[2])
			if err != nil {
				return usageErrorf("unrecognized size: %s", args[2])
			}
			t, err := opts.transfer(stderr)
			if err != nil {
				return err
			}
			defer t.Log.Flush()
			warnOtherInstances(t.Log)
			return t.Dump(args[0], addr, size)
		},
	})

	if !interactive {
		root.AddCommand(&cobra.Command{
			Use:   "shell",
			Short: "Run load and dump commands interactively",
			Args:  exactArgs(0),
			RunE: func(c *cobra.Command, args []string) error {
				runShell(stderr, opts)
				return nil
			},
		})
	}

	return root
}

func showHelp(w io.Writer, name string) {
	if name != "" {
		name += " "
	}
	fmt.Fprintf(w,
		"Usage:\n"+
			"    %sload <bin file> <address>\n"+
			"    %sdump <bin file> <address> <size>\n",
		name, name,
	)
}

// Execute runs one command line and returns the process exit code: 0 on
// success, -1 for a usage error, otherwise the OS error code of the failed
// transfer.
func Execute(name string, args []string, stderr io.Writer) int {
	return run(name, args, stderr, defaultOptions, false)
}

func run(name string, args []string, stderr io.Writer, defaults options, interactive bool) int {
	if args == nil {
		args = []string{}
	}
	root := newRootCmd(stderr, defaults, interactive)
	root.SetArgs(args)
	return exitCode(root.Execute(), name, stderr)
}

func exitCode(err error, name string, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	fmt.Fprintln(stderr, err)
	if errors.As(err, &UsageErr{}) {
		showHelp(stderr, name)
		return -1
	}
	return int(memory.Errno(err))
}
