// Package logger writes operator diagnostics as "tag: detail" lines.
// Consecutive identical entries are collapsed and reported with a repeat
// count once a different entry arrives or the logger is flushed.
package logger

import (
	"fmt"
	"io"
	"strings"
)

type Logger struct {
	output   io.Writer
	tag      string
	detail   string
	repeated int
}

// Discard drops everything.
var Discard = New(io.Discard)

func New(output io.Writer) *Logger {
	return &Logger{output: output}
}

func (l *Logger) Log(tag, detail string) {
	if l.output == io.Discard {
		return
	}

	tag = strings.ReplaceAll(tag, "\n", "")
	detail = strings.ReplaceAll(detail, "\n", "")

	if tag == l.tag && detail == l.detail {
		l.repeated++
		return
	}

	l.Flush()
	l.tag = tag
	l.detail = detail
	io.WriteString(l.output, entry(tag, detail, 0))
}

func (l *Logger) Logf(tag, detail string, args ...interface{}) {
	l.Log(tag, fmt.Sprintf(detail, args...))
}

// Flush reports a pending repeat count.
func (l *Logger) Flush() {
	if l.repeated > 0 {
		io.WriteString(l.output, entry(l.tag, l.detail, l.repeated))
		l.repeated = 0
	}
}

func entry(tag, detail string, repeated int) string {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("%s: %s", tag, detail))
	if repeated > 0 {
		s.WriteString(fmt.Sprintf(" (repeat x%d)", repeated+1))
	}
	s.WriteString("\n")
	return s.String()
}
