// Package machine simulates the hardware the thread core runs on: an
// interrupt subsystem with simulated time, a preemption timer, a
// register-file CPU for user-mode execution, and address spaces.
//
// There is no real hardware anywhere: "time" is a tick counter that
// advances when the kernel re-enables interrupts, when user instructions
// execute, and when the machine idles waiting for the next scheduled
// event. That makes every run of the system deterministic.
package machine

import (
	"fmt"

	"github.com/TrellixVulnTeam/NachOS-PO5F/internal/debug"
)

// IntStatus is the interrupt (preemption) level.
type IntStatus int

const (
	IntOff IntStatus = iota
	IntOn
)

func (s IntStatus) String() string {
	if s == IntOff {
		return "off"
	}
	return "on"
}

// IntSource identifies what scheduled a pending interrupt.
type IntSource int

const (
	TimerInt IntSource = iota
	DeviceInt
)

func (s IntSource) String() string {
	switch s {
	case TimerInt:
		return "timer"
	case DeviceInt:
		return "device"
	default:
		return "unknown"
	}
}

// pendingInterrupt is a handler scheduled to fire at a simulated tick.
type pendingInterrupt struct {
	handler func()
	when    int64
	source  IntSource
	seq     int64
}

// Interrupt simulates the interrupt controller and the flow of time.
//
// Handlers always run with interrupts forced off. A handler may request
// that the running thread yield once the level is restored (the
// preemption mechanism); the kernel installs the yield and halt hooks at
// boot.
type Interrupt struct {
	level   IntStatus
	pending []*pendingInterrupt
	seq     int64
	stats   *Stats

	inHandler     bool
	yieldOnReturn bool

	yieldFn func()
	haltFn  func()
	halted  bool
}

// NewInterrupt creates an interrupt controller charging time to st.
func NewInterrupt(st *Stats) *Interrupt {
	if st == nil {
		st = NewStats()
	}
	return &Interrupt{level: IntOff, stats: st}
}

// Stats returns the accounting record time is charged to.
func (it *Interrupt) Stats() *Stats {
	return it.stats
}

// Level returns the current interrupt level.
func (it *Interrupt) Level() IntStatus {
	return it.level
}

// SetYieldHandler installs the hook invoked when a handler requested
// preemption. Installed once by the kernel at boot.
func (it *Interrupt) SetYieldHandler(fn func()) {
	it.yieldFn = fn
}

// SetHaltHandler installs the hook invoked by Halt. The hook is expected
// not to return.
func (it *Interrupt) SetHaltHandler(fn func()) {
	it.haltFn = fn
}

// SetLevel changes the interrupt level and returns the previous one.
//
// Turning interrupts back on advances simulated time by one system tick,
// which may fire due interrupts and preempt the caller.
func (it *Interrupt) SetLevel(level IntStatus) IntStatus {
	old := it.level
	it.level = level
	if old == IntOff && level == IntOn && !it.inHandler {
		it.OneTick(SystemTick, false)
	}
	return old
}

// Enable turns interrupts on.
func (it *Interrupt) Enable() {
	it.SetLevel(IntOn)
}

// Schedule queues handler to fire fromNow ticks in the future.
// fromNow must be positive.
func (it *Interrupt) Schedule(handler func(), fromNow int64, source IntSource) {
	if fromNow <= 0 {
		panic(fmt.Sprintf("machine: interrupt scheduled %d ticks in the past", fromNow))
	}
	when := it.stats.TotalTicks + fromNow
	p := &pendingInterrupt{handler: handler, when: when, source: source, seq: it.seq}
	it.seq++
	debug.Printf('i', "scheduling %s interrupt at tick %d", source, when)

	i := len(it.pending)
	for i > 0 {
		prev := it.pending[i-1]
		if prev.when < when || (prev.when == when && prev.seq < p.seq) {
			break
		}
		i--
	}
	it.pending = append(it.pending, nil)
	copy(it.pending[i+1:], it.pending[i:])
	it.pending[i] = p
}

// OneTick advances simulated time and fires any interrupts that came due.
// If a handler requested preemption and a yield hook is installed, the
// hook runs before OneTick returns, with the level restored.
func (it *Interrupt) OneTick(ticks int64, user bool) {
	it.stats.TotalTicks += ticks
	if user {
		it.stats.UserTicks += ticks
	} else {
		it.stats.SystemTicks += ticks
	}

	old := it.level
	it.level = IntOff
	it.checkDue(false)
	it.level = old

	if it.yieldOnReturn && !it.inHandler && it.yieldFn != nil {
		it.yieldOnReturn = false
		it.yieldFn()
	}
}

// YieldOnReturn asks that the running thread be preempted once the
// current handler finishes. Only legal from within a handler.
func (it *Interrupt) YieldOnReturn() {
	if !it.inHandler {
		panic("machine: YieldOnReturn outside an interrupt handler")
	}
	it.yieldOnReturn = true
}

// Idle is called by the kernel when no thread is ready: advance time to
// the next scheduled interrupt and fire it. With nothing pending, no
// thread can ever become ready again, so the machine halts.
func (it *Interrupt) Idle() {
	debug.Printf('i', "idling at tick %d", it.stats.TotalTicks)
	if len(it.pending) == 0 {
		debug.Printf('i', "no pending interrupts, halting")
		it.Halt()
		return
	}
	it.checkDue(true)
	// A timer that fired while idle has no running thread to preempt.
	it.yieldOnReturn = false
}

// Halt stops the machine by invoking the halt hook. It does not return
// when the kernel hook is installed.
func (it *Interrupt) Halt() {
	if it.halted {
		return
	}
	it.halted = true
	debug.Printf('i', "machine halting at tick %d", it.stats.TotalTicks)
	if it.haltFn != nil {
		it.haltFn()
	}
}

// Halted reports whether Halt has been invoked.
func (it *Interrupt) Halted() bool {
	return it.halted
}

// checkDue fires pending interrupts that are due. When advance is set and
// the earliest interrupt is still in the future, time jumps forward to it
// and the gap is billed as idle time.
func (it *Interrupt) checkDue(advance bool) bool {
	if len(it.pending) == 0 {
		return false
	}
	first := it.pending[0]
	if first.when > it.stats.TotalTicks {
		if !advance {
			return false
		}
		it.stats.IdleTicks += first.when - it.stats.TotalTicks
		it.stats.TotalTicks = first.when
	}

	fired := false
	it.inHandler = true
	for len(it.pending) > 0 && it.pending[0].when <= it.stats.TotalTicks {
		p := it.pending[0]
		it.pending = it.pending[1:]
		it.stats.NumInterrupts++
		if p.source == TimerInt {
			it.stats.NumTimerInts++
		}
		debug.Printf('i', "firing %s interrupt scheduled for tick %d", p.source, p.when)
		p.handler()
		fired = true
	}
	it.inHandler = false
	return fired
}
