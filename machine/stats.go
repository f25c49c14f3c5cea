package machine

import (
	"fmt"
	"io"
)

// Tick charges for simulated time. Re-enabling interrupts is billed as
// kernel work; each user instruction advances one tick.
const (
	SystemTick = 10
	UserTick   = 1
)

// Stats accumulates simulated-time accounting for one machine instance.
type Stats struct {
	TotalTicks  int64
	IdleTicks   int64
	SystemTicks int64
	UserTicks   int64

	NumInstructions int64
	NumInterrupts   int64
	NumTimerInts    int64
}

// NewStats creates an empty accounting record.
func NewStats() *Stats {
	return &Stats{}
}

// Print writes a human-readable summary.
func (s *Stats) Print(w io.Writer) {
	fmt.Fprintf(w, "Ticks: total %d, idle %d, system %d, user %d\n",
		s.TotalTicks, s.IdleTicks, s.SystemTicks, s.UserTicks)
	fmt.Fprintf(w, "Instructions: %d\n", s.NumInstructions)
	fmt.Fprintf(w, "Interrupts: %d (timer %d)\n", s.NumInterrupts, s.NumTimerInts)
}
