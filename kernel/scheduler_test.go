package kernel

import (
	"testing"

	"github.com/TrellixVulnTeam/NachOS-PO5F/machine"
)

// expectViolation runs fn and fails unless it raises an integrity
// violation.
func expectViolation(t *testing.T, fn func()) *Violation {
	t.Helper()
	var got *Violation
	func() {
		defer func() {
			r := recover()
			if r == nil {
				t.Fatal("expected an integrity violation")
			}
			v, ok := r.(*Violation)
			if !ok {
				t.Fatalf("expected *Violation, got %T: %v", r, r)
			}
			got = v
		}()
		fn()
	}()
	return got
}

func TestReadyQueueFIFO(t *testing.T) {
	sys := New(Options{})
	ps := sys.Scheduler()

	var want []*Thread
	for _, name := range []string{"a", "b", "c", "d"} {
		th := sys.NewThread(name)
		want = append(want, th)
		ps.MoveToReady(th)
	}
	if got := ps.ReadyCount(); got != len(want) {
		t.Fatalf("expected %d ready threads, got %d", len(want), got)
	}

	for i, w := range want {
		got := ps.SelectNextReady()
		if got != w {
			t.Fatalf("dequeue %d: expected %q, got %q", i, w.Name(), got.Name())
		}
		if got.Status() != Ready {
			t.Fatalf("dequeue %d: expected status ready, got %s", i, got.Status())
		}
	}
	if got := ps.SelectNextReady(); got != nil {
		t.Fatalf("expected empty queue, got %q", got.Name())
	}
	if got := ps.ReadyCount(); got != 0 {
		t.Fatalf("expected 0 ready threads, got %d", got)
	}
}

func TestReadyQueueInterleavedCounts(t *testing.T) {
	sys := New(Options{})
	ps := sys.Scheduler()

	a := sys.NewThread("a")
	b := sys.NewThread("b")
	c := sys.NewThread("c")

	ps.MoveToReady(a)
	ps.MoveToReady(b)
	if got := ps.SelectNextReady(); got != a {
		t.Fatalf("expected a first, got %q", got.Name())
	}
	ps.MoveToReady(c)
	if got := ps.SelectNextReady(); got != b {
		t.Fatalf("expected b second, got %q", got.Name())
	}
	if got := ps.SelectNextReady(); got != c {
		t.Fatalf("expected c third, got %q", got.Name())
	}
}

func TestWakeIsKeyIsolated(t *testing.T) {
	sys := New(Options{})
	ps := sys.Scheduler()

	park := func(name string, key int) *Thread {
		th := sys.NewThread(name)
		th.status = Blocked
		ps.Park(th, key)
		return th
	}
	a := park("a", 1)
	b := park("b", 2)
	c := park("c", 1)

	// Waking key 2 must not disturb key 1.
	ps.Wake(2)
	if got := ps.WaitingCount(1); got != 2 {
		t.Fatalf("expected 2 threads still parked under key 1, got %d", got)
	}
	if got := ps.SelectNextReady(); got != b {
		t.Fatalf("expected only %q ready, got %q", b.Name(), got.Name())
	}
	if got := ps.SelectNextReady(); got != nil {
		t.Fatalf("expected nothing else ready, got %q", got.Name())
	}

	// Waking key 1 readies its threads in parked order.
	ps.Wake(1)
	if got := ps.SelectNextReady(); got != a {
		t.Fatalf("expected %q first, got %q", a.Name(), got.Name())
	}
	if got := ps.SelectNextReady(); got != c {
		t.Fatalf("expected %q second, got %q", c.Name(), got.Name())
	}

	// A key with no waiters is a no-op.
	ps.Wake(99)
	if got := ps.SelectNextReady(); got != nil {
		t.Fatalf("expected empty queue after waking idle key, got %q", got.Name())
	}
}

func TestParkRequiresBlockedStatus(t *testing.T) {
	sys := New(Options{})
	th := sys.NewThread("a")
	expectViolation(t, func() {
		sys.Scheduler().Park(th, 1)
	})
}

func TestQueueMutationRequiresPreemptionOff(t *testing.T) {
	sys := New(Options{})
	th := sys.NewThread("a")
	sys.Interrupt().SetLevel(machine.IntOn)
	v := expectViolation(t, func() {
		sys.Scheduler().MoveToReady(th)
	})
	if v.Reason == "" {
		t.Fatal("expected a violation reason")
	}
}

func TestDoubleReadyInsertIsFatal(t *testing.T) {
	sys := New(Options{})
	th := sys.NewThread("a")
	sys.Scheduler().MoveToReady(th)
	expectViolation(t, func() {
		sys.Scheduler().MoveToReady(th)
	})
}
