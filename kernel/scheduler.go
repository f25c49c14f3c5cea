package kernel

import (
	"runtime"

	"github.com/TrellixVulnTeam/NachOS-PO5F/internal/debug"
	"github.com/TrellixVulnTeam/NachOS-PO5F/machine"
)

// ProcessScheduler owns the ready queue and the keyed wait registry and
// performs the actual transfer of the CPU between threads.
//
// Every mutation runs with preemption disabled. That bracket is the only
// synchronization discipline in the core: with a single simulated CPU
// there is never a second thread to contend with.
type ProcessScheduler struct {
	sys     *System
	ready   threadList
	waiting map[int]*threadList
}

func newProcessScheduler(sys *System) *ProcessScheduler {
	return &ProcessScheduler{sys: sys, waiting: make(map[int]*threadList)}
}

// MoveToReady marks the thread Ready and appends it to the ready queue.
// Caller must have preemption disabled.
func (ps *ProcessScheduler) MoveToReady(t *Thread) {
	ps.requireLevelOff("ready-queue insert")
	if ps.ready.contains(t) {
		ps.sys.fatalf("thread %q is already on the ready queue", t.name)
	}
	debug.Printf('t', "putting thread %q on ready queue", t.name)
	t.status = Ready
	ps.ready.append(t)
}

// SelectNextReady dequeues the head of the ready queue, or nil if no
// thread is ready. Caller must have preemption disabled.
func (ps *ProcessScheduler) SelectNextReady() *Thread {
	ps.requireLevelOff("ready-queue remove")
	return ps.ready.removeFront()
}

// ReadyCount returns the number of threads waiting to run.
func (ps *ProcessScheduler) ReadyCount() int {
	return ps.ready.len()
}

// Park files a blocked thread under a wait key, removing it from
// scheduling until a Wake on the same key. The caller must have set the
// thread Blocked and disabled preemption.
func (ps *ProcessScheduler) Park(t *Thread, key int) {
	ps.requireLevelOff("wait-registry insert")
	if t.status != Blocked {
		ps.sys.fatalf("parking thread %q in state %s", t.name, t.status)
	}
	debug.Printf('t', "parking thread %q under key %d", t.name, key)
	l := ps.waiting[key]
	if l == nil {
		l = &threadList{}
		ps.waiting[key] = l
	}
	l.append(t)
}

// Wake moves every thread parked under key back onto the ready queue in
// parked order. A key with no waiters is a no-op.
func (ps *ProcessScheduler) Wake(key int) {
	ps.requireLevelOff("wait-registry wake")
	l := ps.waiting[key]
	if l == nil {
		return
	}
	delete(ps.waiting, key)
	for t := l.removeFront(); t != nil; t = l.removeFront() {
		debug.Printf('t', "waking thread %q from key %d", t.name, key)
		ps.MoveToReady(t)
	}
}

// WaitingCount returns the number of threads parked under key.
func (ps *ProcessScheduler) WaitingCount(key int) int {
	if l := ps.waiting[key]; l != nil {
		return l.len()
	}
	return 0
}

// ScheduleThread hands the CPU to next. The outgoing thread's state is
// saved implicitly by suspending here; the call returns only when some
// later switch resumes the outgoing thread, at which point the deferred
// cleanup runs in its context: destroy the pending zombie (safe now, it
// is no longer the executing thread) and reinstall this thread's user
// state and address space.
func (ps *ProcessScheduler) ScheduleThread(next *Thread) {
	sys := ps.sys
	ps.requireLevelOff("context switch")
	old := sys.current
	debug.Printf('t', "switching from thread %q to thread %q", old.name, next.name)

	if old.space != nil {
		old.SaveUserState()
	}
	old.CheckOverflow()

	sys.current = next
	next.status = Running
	sys.traceSwitch()

	next.ctx.resume <- struct{}{}
	<-old.ctx.resume

	if old.destroyed {
		runtime.Goexit()
	}
	sys.finishSwitch(old)
}

func (ps *ProcessScheduler) requireLevelOff(op string) {
	if ps.sys.interrupt.Level() != machine.IntOff {
		ps.sys.fatalf("%s with preemption enabled", op)
	}
}
