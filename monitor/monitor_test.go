package monitor

import (
	"context"
	"strings"
	"testing"

	"github.com/TrellixVulnTeam/NachOS-PO5F/kernel"
)

func sampleSnapshot() kernel.Snapshot {
	return kernel.Snapshot{
		Tick:    130,
		Current: 2,
		Ready:   []int{1},
		Threads: []kernel.ThreadInfo{
			{PID: 1, PPID: 0, Name: "main", Status: kernel.Ready},
			{PID: 2, PPID: 1, Name: "worker", Status: kernel.Running},
		},
	}
}

func TestRecorderKeepsLatestSnapshot(t *testing.T) {
	rec := NewRecorder()
	if _, ok := rec.Snapshot(); ok {
		t.Fatalf("expected no snapshot before the first Record")
	}
	rec.Record(kernel.Snapshot{Tick: 10, Current: 1})
	rec.Record(sampleSnapshot())
	s, ok := rec.Snapshot()
	if !ok {
		t.Fatalf("expected a snapshot after Record")
	}
	if s.Tick != 130 || s.Current != 2 {
		t.Fatalf("expected the latest snapshot, got tick %d current %d", s.Tick, s.Current)
	}
	if rec.Switches() != 2 {
		t.Fatalf("expected 2 switches, got %d", rec.Switches())
	}
}

func TestRecorderCloseIsIdempotent(t *testing.T) {
	rec := NewRecorder()
	select {
	case <-rec.Done():
		t.Fatalf("expected Done to stay open before Close")
	default:
	}
	rec.Close()
	rec.Close()
	select {
	case <-rec.Done():
	default:
		t.Fatalf("expected Done to be closed after Close")
	}
}

func TestFormatRendersThreadTable(t *testing.T) {
	out := format(sampleSnapshot(), 7)
	for _, want := range []string{
		"tick 130",
		"switches 7",
		"current pid 2",
		"ready queue: [1]",
		"main",
		"worker",
		"running",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestRunHeadlessPrintsFinalSnapshot(t *testing.T) {
	rec := NewRecorder()
	rec.Record(sampleSnapshot())
	rec.Close()

	var b strings.Builder
	if err := RunHeadless(context.Background(), rec, &b, Config{Hz: 1000}); err != nil {
		t.Fatalf("expected clean return, got %v", err)
	}
	if !strings.Contains(b.String(), "worker") {
		t.Fatalf("expected final snapshot in output, got:\n%s", b.String())
	}
}

func TestRunHeadlessHonorsContextCancel(t *testing.T) {
	rec := NewRecorder()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := RunHeadless(ctx, rec, &strings.Builder{}, Config{}); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
