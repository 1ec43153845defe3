package logger

import (
	"bytes"
	"testing"
)

func TestLogf(t *testing.T) {
	b := &bytes.Buffer{}
	l := New(b)
	l.Logf("file size", "0x%x", 10)
	l.Log("phys addr", "0x1000")

	expected := "file size: 0xa\nphys addr: 0x1000\n"
	if b.String() != expected {
		t.Errorf("got log: %q\nexpected log: %q", b.String(), expected)
	}
}

func TestRepeatedEntries(t *testing.T) {
	b := &bytes.Buffer{}
	l := New(b)
	l.Log("warning", "busy")
	l.Log("warning", "busy")
	l.Log("warning", "busy")
	l.Log("warning", "done")
	l.Log("warning", "done")
	l.Flush()

	expected := "warning: busy\nwarning: busy (repeat x3)\nwarning: done\nwarning: done (repeat x2)\n"
	if b.String() != expected {
		t.Errorf("got log: %q\nexpected log: %q", b.String(), expected)
	}
}

func TestNewlinesStripped(t *testing.T) {
	b := &bytes.Buffer{}
	New(b).Log("ta\ng", "de\ntail\n")

	expected := "tag: detail\n"
	if b.String() != expected {
		t.Errorf("got log: %q\nexpected log: %q", b.String(), expected)
	}
}

func TestDiscard(t *testing.T) {
	Discard.Log("tag", "detail")
	Discard.Flush()
}
