package debug

import (
	"log"
	"os"
	"strings"
	"testing"
)

func TestFlagFiltering(t *testing.T) {
	defer Init("")

	Init("")
	if Enabled('t') {
		t.Fatalf("expected all flags off with an empty set")
	}
	Init("ti")
	if !Enabled('t') || !Enabled('i') {
		t.Fatalf("expected t and i enabled")
	}
	if Enabled('m') {
		t.Fatalf("expected m disabled")
	}
	Init("+")
	if !Enabled('m') || !Enabled('s') {
		t.Fatalf("expected + to enable every flag")
	}
}

func TestPrintfRespectsFlags(t *testing.T) {
	defer Init("")
	var b strings.Builder
	SetOutput(log.New(&b, "", 0))
	defer SetOutput(log.New(os.Stderr, "", 0))

	Init("t")
	Printf('t', "thread %d", 7)
	Printf('i', "interrupt %d", 9)
	out := b.String()
	if !strings.Contains(out, "thread 7") {
		t.Fatalf("expected enabled flag to print, got %q", out)
	}
	if strings.Contains(out, "interrupt") {
		t.Fatalf("expected disabled flag to be silent, got %q", out)
	}
}
