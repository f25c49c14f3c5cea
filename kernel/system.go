package kernel

import (
	"fmt"
	"runtime"

	"github.com/TrellixVulnTeam/NachOS-PO5F/internal/debug"
	"github.com/TrellixVulnTeam/NachOS-PO5F/machine"
)

// Options configures a System. Zero values get working defaults: a fresh
// interrupt controller, the x86 stack layout, and DefaultStackSize.
type Options struct {
	Interrupt *machine.Interrupt
	Machine   *machine.Machine
	StackSize int
	Layout    StackLayout
	Trace     TraceFunc
}

// System owns all process-wide scheduling state: the current thread, the
// single pending-destruction slot, the scheduler, and the thread
// registry. Everything that was ambient global state in a classic kernel
// hangs off this one object.
type System struct {
	scheduler *ProcessScheduler
	interrupt *machine.Interrupt
	mach      *machine.Machine

	layout    StackLayout
	stackSize int

	current *Thread
	zombie  *Thread

	nextPID     int
	nextWaitKey int
	threads     map[int]*Thread

	trace   TraceFunc
	done    chan struct{}
	halted  bool
	failure error
}

// New creates a system. The interrupt controller's yield and halt hooks
// are claimed by the new system.
func New(opts Options) *System {
	sys := &System{
		interrupt: opts.Interrupt,
		mach:      opts.Machine,
		layout:    opts.Layout,
		stackSize: opts.StackSize,
		trace:     opts.Trace,
		nextPID:   1,
		threads:   make(map[int]*Thread),
		done:      make(chan struct{}),
	}
	if sys.interrupt == nil {
		sys.interrupt = machine.NewInterrupt(nil)
	}
	if sys.layout == nil {
		sys.layout = LayoutX86
	}
	if sys.stackSize <= 0 {
		sys.stackSize = DefaultStackSize
	}
	sys.scheduler = newProcessScheduler(sys)
	sys.interrupt.SetYieldHandler(sys.preempt)
	sys.interrupt.SetHaltHandler(sys.shutdown)
	return sys
}

// Scheduler returns the ready/wait scheduler.
func (sys *System) Scheduler() *ProcessScheduler { return sys.scheduler }

// Interrupt returns the interrupt controller the system runs on.
func (sys *System) Interrupt() *machine.Interrupt { return sys.interrupt }

// Machine returns the user-mode CPU, nil when running kernel threads only.
func (sys *System) Machine() *machine.Machine { return sys.mach }

// CurrentThread returns the thread that owns the CPU.
func (sys *System) CurrentThread() *Thread { return sys.current }

// Halted reports whether the system has shut down.
func (sys *System) Halted() bool { return sys.halted }

// NewThread allocates a thread control block in state JustCreated. The
// stack and saved context materialize when the thread is forked. The new
// thread gets the next pid; the creating thread, if any, becomes its
// parent and records it in the child table.
func (sys *System) NewThread(name string) *Thread {
	t := &Thread{
		sys:           sys,
		name:          name,
		status:        JustCreated,
		joinSlot:      -1,
		stateRestored: true,
	}
	t.pid = sys.nextPID
	sys.nextPID++
	if cur := sys.current; cur != nil {
		t.ppid = cur.pid
		t.parent = cur
		cur.addChild(t.pid)
	}
	sys.threads[t.pid] = t
	debug.Printf('t', "created thread %q (pid %d, ppid %d)", name, t.pid, t.ppid)
	return t
}

// AllocWaitKey returns a fresh wait-registry key. Synchronization
// primitives allocate one per object.
func (sys *System) AllocWaitKey() int {
	sys.nextWaitKey++
	return sys.nextWaitKey
}

// Run boots the system: the root thread (pid 1) starts executing fn(arg)
// and Run blocks until the system halts. It returns nil on a clean halt,
// or the violation or panic that brought the system down.
func (sys *System) Run(name string, fn ThreadFunc, arg int) error {
	root := sys.NewThread(name)
	root.bootstrap(fn, arg)
	root.status = Running
	sys.current = root

	root.ctx.resume <- struct{}{}
	<-sys.done
	return sys.failure
}

// preempt is the timer's yield hook: force the running thread to yield.
func (sys *System) preempt() {
	if sys.current == nil || sys.halted {
		return
	}
	debug.Printf('t', "timer preempting thread %q", sys.current.name)
	sys.Yield()
}

// finishSwitch runs in the context of a thread that just became current,
// whether through ScheduleThread or the trampoline: destroy the pending
// zombie, then reinstall this thread's user-mode state.
func (sys *System) finishSwitch(t *Thread) {
	if z := sys.zombie; z != nil && z != t {
		sys.zombie = nil
		sys.destroyThread(z)
	}
	if t.space != nil {
		t.RestoreUserState()
		t.space.RestoreOnSwitch()
	}
}

// destroyThread frees a thread that is no longer current. Closing the
// resume channel releases the thread's parked goroutine, which observes
// destroyed and exits.
func (sys *System) destroyThread(t *Thread) {
	if t == sys.current {
		sys.fatalf("thread %q cannot destroy itself", t.name)
	}
	debug.Printf('t', "destroying thread %q (pid %d)", t.name, t.pid)
	t.destroyed = true
	t.stack = nil
	delete(sys.threads, t.pid)
	if t.ctx.resume != nil {
		close(t.ctx.resume)
	}
}

// shutdown tears the system down: release every parked thread goroutine
// and unblock Run. When called from a thread (the halt path), it does not
// return.
func (sys *System) shutdown() {
	if sys.halted {
		runtime.Goexit()
	}
	sys.halted = true
	debug.Printf('t', "system shutdown, %d threads live", len(sys.threads))

	cur := sys.current
	for _, t := range sys.threads {
		if t == cur {
			continue
		}
		t.destroyed = true
		if t.ctx.resume != nil {
			close(t.ctx.resume)
		}
	}
	close(sys.done)
	if cur != nil {
		cur.destroyed = true
		runtime.Goexit()
	}
}

// threadPanic surfaces a panic that escaped a thread goroutine as the
// system's failure and shuts down. Integrity violations arrive here.
func (sys *System) threadPanic(t *Thread, r any) {
	err, ok := r.(error)
	if !ok {
		err = fmt.Errorf("kernel: thread %q panicked: %v", t.name, r)
	}
	if sys.failure == nil {
		sys.failure = err
	}
	if sys.halted {
		return
	}
	sys.halted = true
	for _, other := range sys.threads {
		if other == t {
			continue
		}
		other.destroyed = true
		if other.ctx.resume != nil {
			close(other.ctx.resume)
		}
	}
	close(sys.done)
}
