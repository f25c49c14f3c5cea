// Package kernel is the thread and process execution core: it decides
// which logical thread of control owns the single simulated CPU, performs
// the save/restore of execution context between threads, and layers
// fork/exit/join process semantics on top of threads.
//
// There is no central loop. A running thread calls into the scheduler
// (voluntarily or because the timer preempted it), the scheduler switches
// to the next ready thread, and that thread eventually calls back in; the
// chain of switches is the system running.
package kernel

import (
	"runtime"

	"github.com/TrellixVulnTeam/NachOS-PO5F/internal/debug"
	"github.com/TrellixVulnTeam/NachOS-PO5F/machine"
)

// ThreadStatus is a thread's scheduling state. Exactly one thread is
// Running at any instant; a thread is in the ready queue iff Ready, and
// in a wait-registry bucket iff Blocked.
type ThreadStatus int

const (
	JustCreated ThreadStatus = iota
	Ready
	Running
	Blocked
)

func (s ThreadStatus) String() string {
	switch s {
	case JustCreated:
		return "created"
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Blocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// ThreadFunc is the body of a forked thread. Multiple values can be
// passed by boxing them behind the single integer argument.
type ThreadFunc func(arg int)

// MaxChildren bounds the per-thread child table. Exceeding it is fatal,
// never silently dropped.
const MaxChildren = 32

// AddressSpace is the memory-mapping state a user-level thread owns
// exclusively while alive. The scheduler only ever asks it to reinstall
// itself after a switch.
type AddressSpace interface {
	RestoreOnSwitch()
}

// Thread is the per-thread control block.
type Thread struct {
	sys    *System
	name   string
	status ThreadStatus

	// Execution state. The stack is simulation-owned storage with a
	// fencepost sentinel; the saved context is opaque to the scheduler.
	stack       []uint32
	stackTop    int
	fencepostAt int
	ctx         savedContext
	destroyed   bool

	// Process bookkeeping.
	pid    int
	ppid   int
	parent *Thread
	space  AddressSpace

	childPIDs     [MaxChildren]int
	childExitCode [MaxChildren]int
	childExited   [MaxChildren]bool
	childCount    int
	joinSlot      int

	instructionCount uint64

	userRegisters [machine.NumTotalRegs]int32
	stateRestored bool
}

// Name returns the thread's debugging label.
func (t *Thread) Name() string { return t.name }

// Status returns the thread's scheduling state.
func (t *Thread) Status() ThreadStatus { return t.status }

// PID returns the thread's process identifier.
func (t *Thread) PID() int { return t.pid }

// PPID returns the identifier of the creating thread, 0 for the first.
func (t *Thread) PPID() int { return t.ppid }

// Space returns the thread's address space, nil for pure kernel threads.
func (t *Thread) Space() AddressSpace { return t.space }

// SetSpace hands the thread ownership of an address space.
func (t *Thread) SetSpace(space AddressSpace) { t.space = space }

// InstructionCount returns the accounting counter.
func (t *Thread) InstructionCount() uint64 { return t.instructionCount }

// IncInstructionCount charges one executed instruction to the thread.
func (t *Thread) IncInstructionCount() { t.instructionCount++ }

// Fork makes the thread runnable, executing fn(arg) on its own stack.
// The thread runs concurrently with the caller and is scheduled FIFO.
func (t *Thread) Fork(fn ThreadFunc, arg int) {
	if t.status != JustCreated {
		t.sys.fatalf("fork of thread %q in state %s", t.name, t.status)
	}
	debug.Printf('t', "forking thread %q (pid %d) with arg %d", t.name, t.pid, arg)

	t.bootstrap(fn, arg)

	// The ready-queue insertion must not race a timer-driven switch.
	old := t.sys.interrupt.SetLevel(machine.IntOff)
	t.sys.scheduler.MoveToReady(t)
	t.sys.interrupt.SetLevel(old)
}

// Yield relinquishes the CPU if another thread is ready, re-enqueuing the
// caller at the tail. With an empty ready queue it returns immediately.
// Only the running thread may yield.
func (sys *System) Yield() {
	old := sys.interrupt.SetLevel(machine.IntOff)
	t := sys.current
	if t == nil {
		sys.fatalf("yield with no running thread")
	}
	debug.Printf('t', "yielding thread %q", t.name)

	if next := sys.scheduler.SelectNextReady(); next != nil {
		sys.scheduler.MoveToReady(t)
		sys.scheduler.ScheduleThread(next)
	}
	sys.interrupt.SetLevel(old)
}

// Sleep blocks the running thread until something deposits it back on the
// ready queue. The caller must already have preemption disabled; that is
// the atomicity bracket synchronization primitives rely on. With no
// thread ready the CPU idles until an interrupt produces one.
func (sys *System) Sleep() {
	t := sys.current
	if sys.interrupt.Level() != machine.IntOff {
		sys.fatalf("sleep with preemption enabled")
	}
	debug.Printf('t', "sleeping thread %q", t.name)

	t.status = Blocked
	next := sys.scheduler.SelectNextReady()
	for next == nil {
		sys.interrupt.Idle()
		next = sys.scheduler.SelectNextReady()
	}
	sys.scheduler.ScheduleThread(next)
}

// Finish terminates the running thread. The thread cannot free itself
// while executing on its own stack, so it becomes the scheduler's pending
// zombie and sleeps; the next thread to run destroys it. Finishing the
// root thread halts the whole system. Finish does not return.
func (sys *System) Finish() {
	sys.interrupt.SetLevel(machine.IntOff)
	t := sys.current
	debug.Printf('t', "finishing thread %q (pid %d)", t.name, t.pid)

	sys.zombie = t
	if t.parent == nil {
		sys.interrupt.Halt()
		runtime.Goexit()
	}
	sys.Sleep()
	// not reached
}
