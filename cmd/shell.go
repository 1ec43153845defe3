package cmd

import (
	"fmt"
	"io"
	"strings"

	prompt "github.com/c-bata/go-prompt"
	"github.com/c-bata/go-prompt/completer"
)

type shell struct {
	stderr   io.Writer
	defaults options
	files    *completer.FilePathCompleter
}

func newShell(stderr io.Writer, defaults options) *shell {
	return &shell{
		stderr:   stderr,
		defaults: defaults,
		files:    &completer.FilePathCompleter{IgnoreCase: true},
	}
}

func runShell(stderr io.Writer, defaults options) {
	s := newShell(stderr, defaults)
	p := prompt.New(
		func(in string) { s.executor(in) },
		s.completer,
		prompt.OptionPrefix("physmem> "),
		prompt.OptionTitle("physmem"),
		prompt.OptionCompletionWordSeparator(completer.FilePathCompletionSeparator),
		prompt.OptionSetExitCheckerOnInput(func(in string, breakline bool) bool {
			return breakline && strings.TrimSpace(in) == "exit"
		}),
	)
	p.Run()
}

// executor runs one line and returns its exit code.
func (s *shell) executor(in string) int {
	args := strings.Fields(in)
	if len(args) == 0 {
		return 0
	}

	switch args[0] {
	case "exit":
		return 0
	case "help":
		showHelp(s.stderr, "")
		return 0
	}

	code := run("", args, s.stderr, s.defaults, true)
	if code != 0 {
		fmt.Fprintf(s.stderr, "exit status %d\n", code)
	}
	return code
}

var commands = []prompt.Suggest{
	{Text: "load", Description: "load <bin file> <address>"},
	{Text: "dump", Description: "dump <bin file> <address> <size>"},
	{Text: "help"},
	{Text: "exit"},
}

func (s *shell) completer(d prompt.Document) []prompt.Suggest {
	args := strings.Fields(d.TextBeforeCursor())
	typing := d.GetWordBeforeCursor() != ""
	if len(args) == 0 || (len(args) == 1 && typing) {
		return prompt.FilterHasPrefix(commands, d.GetWordBeforeCursor(), true)
	}

	// the file name is the first argument of both load and dump
	if (args[0] == "load" || args[0] == "dump") && (len(args) == 1 || (len(args) == 2 && typing)) {
		return s.files.Complete(d)
	}
	return []prompt.Suggest{}
}
