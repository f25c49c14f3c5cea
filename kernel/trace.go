package kernel

import "sort"

// ThreadInfo is one thread's state in a snapshot.
type ThreadInfo struct {
	PID    int
	PPID   int
	Name   string
	Status ThreadStatus
}

// Snapshot is a consistent picture of the scheduler taken at a context
// switch, for monitoring and tests.
type Snapshot struct {
	Tick    int64
	Current int
	Ready   []int
	Threads []ThreadInfo
}

// TraceFunc receives a snapshot at every context switch. It runs with
// preemption disabled in the switching thread's context and must not
// call back into the system.
type TraceFunc func(Snapshot)

// SetTrace installs or clears the switch trace hook.
func (sys *System) SetTrace(fn TraceFunc) {
	sys.trace = fn
}

// traceSwitch publishes a snapshot if tracing is enabled. Called after
// the incoming thread is marked Running and before the CPU is handed
// over.
func (sys *System) traceSwitch() {
	if sys.trace == nil {
		return
	}
	sys.trace(sys.snapshot())
}

func (sys *System) snapshot() Snapshot {
	snap := Snapshot{
		Tick:    sys.interrupt.Stats().TotalTicks,
		Threads: make([]ThreadInfo, 0, len(sys.threads)),
	}
	if sys.current != nil {
		snap.Current = sys.current.pid
	}
	for _, t := range sys.scheduler.ready.items {
		snap.Ready = append(snap.Ready, t.pid)
	}
	for _, t := range sys.threads {
		snap.Threads = append(snap.Threads, ThreadInfo{
			PID:    t.pid,
			PPID:   t.ppid,
			Name:   t.name,
			Status: t.status,
		})
	}
	sort.Slice(snap.Threads, func(i, j int) bool {
		return snap.Threads[i].PID < snap.Threads[j].PID
	})
	return snap
}
