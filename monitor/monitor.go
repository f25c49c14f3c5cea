// Package monitor renders a live view of the scheduler: which thread
// owns the CPU, who is ready, who is blocked. It consumes the kernel's
// switch-trace snapshots and never calls back into the system.
package monitor

import (
	"fmt"
	"strings"
	"sync"

	"github.com/TrellixVulnTeam/NachOS-PO5F/kernel"
)

// Recorder keeps the most recent scheduler snapshot. Its Record method is
// installed as the kernel trace hook; readers poll Snapshot from the
// display side.
type Recorder struct {
	mu       sync.Mutex
	last     kernel.Snapshot
	valid    bool
	switches int64

	closeOnce sync.Once
	done      chan struct{}
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{done: make(chan struct{})}
}

// Record stores a snapshot. Runs inside the simulation.
func (r *Recorder) Record(s kernel.Snapshot) {
	r.mu.Lock()
	r.last = s
	r.valid = true
	r.switches++
	r.mu.Unlock()
}

// Snapshot returns the most recent snapshot, if any has been recorded.
func (r *Recorder) Snapshot() (kernel.Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last, r.valid
}

// Switches returns the number of context switches observed.
func (r *Recorder) Switches() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.switches
}

// Close marks the simulation as finished. Safe to call more than once.
func (r *Recorder) Close() {
	r.closeOnce.Do(func() { close(r.done) })
}

// Done is closed when the simulation has finished.
func (r *Recorder) Done() <-chan struct{} {
	return r.done
}

// format renders a snapshot as a fixed-width text table.
func format(s kernel.Snapshot, switches int64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "tick %d  switches %d  current pid %d\n", s.Tick, switches, s.Current)
	fmt.Fprintf(&b, "ready queue: %v\n\n", s.Ready)
	fmt.Fprintf(&b, "%5s %5s %-16s %s\n", "PID", "PPID", "NAME", "STATUS")
	for _, t := range s.Threads {
		fmt.Fprintf(&b, "%5d %5d %-16s %s\n", t.PID, t.PPID, t.Name, t.Status)
	}
	return b.String()
}
