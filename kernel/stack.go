package kernel

import "github.com/TrellixVulnTeam/NachOS-PO5F/internal/debug"

// StackFencepost is written at the logical bottom of every thread stack.
// If it ever reads back differently, something ran off the end.
const StackFencepost uint32 = 0xdeadbeef

// DefaultStackSize is the per-thread stack size in words.
const DefaultStackSize = 4 * 1024

// StackLayout abstracts the architecture-dependent parts of preparing a
// fresh execution stack: which way it grows and where the initial stack
// pointer sits.
type StackLayout interface {
	Name() string
	// GrowsDown reports the direction of growth. The fencepost goes at
	// the opposite end.
	GrowsDown() bool
	// InitialTop returns the starting stack-pointer index for a stack of
	// n words.
	InitialTop(n int) int
}

// downwardLayout covers architectures whose stacks grow from high
// addresses to low ones. reserveWords leaves room below the top for the
// architecture's minimum frame; pushReturn reserves one extra word where
// the switch primitive would find the trampoline's return address.
type downwardLayout struct {
	name         string
	reserveWords int
	pushReturn   bool
}

func (l downwardLayout) Name() string    { return l.name }
func (l downwardLayout) GrowsDown() bool { return true }

func (l downwardLayout) InitialTop(n int) int {
	top := n - l.reserveWords
	if l.pushReturn {
		top--
	}
	return top
}

// upwardLayout covers architectures whose stacks grow from low addresses
// to high ones; the initial top skips the fixed frame marker.
type upwardLayout struct {
	name       string
	frameWords int
}

func (l upwardLayout) Name() string        { return l.name }
func (l upwardLayout) GrowsDown() bool     { return false }
func (l upwardLayout) InitialTop(n int) int { return l.frameWords }

// Supported stack layouts.
var (
	LayoutX86   StackLayout = downwardLayout{name: "x86", reserveWords: 4, pushReturn: true}
	LayoutMIPS  StackLayout = downwardLayout{name: "mips", reserveWords: 4}
	LayoutSPARC StackLayout = downwardLayout{name: "sparc", reserveWords: 96}
	LayoutHPPA  StackLayout = upwardLayout{name: "hppa", frameWords: 16}
)

// savedContext is the register image built for a thread before its first
// switch. Five slots, exactly what the trampoline needs: its own entry,
// the startup step that re-enables preemption once, the forked function
// and argument, and the routine to run if the function returns.
type savedContext struct {
	pc       func()
	startup  func()
	fn       ThreadFunc
	arg      int
	whenDone func()

	// resume is the suspended continuation: a switch-in hands the CPU to
	// this thread by signalling it.
	resume chan struct{}
}

// allocateStack gives the thread its execution stack with the fencepost
// written at the end opposite to growth.
func (t *Thread) allocateStack() {
	size := t.sys.stackSize
	t.stack = make([]uint32, size)
	if t.sys.layout.GrowsDown() {
		t.fencepostAt = 0
	} else {
		t.fencepostAt = size - 1
	}
	t.stack[t.fencepostAt] = StackFencepost
	t.stackTop = t.sys.layout.InitialTop(size)
}

// bootstrap builds the initial context for fn(arg) and parks the thread's
// execution at the trampoline, ready for the first switch-in.
func (t *Thread) bootstrap(fn ThreadFunc, arg int) {
	t.allocateStack()
	t.ctx = savedContext{
		pc:       t.threadRoot,
		startup:  t.sys.interrupt.Enable,
		fn:       fn,
		arg:      arg,
		whenDone: t.sys.Finish,
		resume:   make(chan struct{}, 1),
	}
	debug.Printf('t', "bootstrapped thread %q on %s stack (%d words, top %d)",
		t.name, t.sys.layout.Name(), t.sys.stackSize, t.stackTop)

	sys := t.sys
	go func() {
		defer func() {
			if r := recover(); r != nil {
				sys.threadPanic(t, r)
			}
		}()
		<-t.ctx.resume
		if t.destroyed {
			return
		}
		t.ctx.pc()
	}()
}

// threadRoot is the trampoline every forked thread first resumes into:
// finish the switch that got us here, run the startup step (re-enabling
// preemption, exactly once), call the forked function, and finish the
// thread if it returns. Control never comes back past whenDone.
func (t *Thread) threadRoot() {
	t.sys.finishSwitch(t)
	t.ctx.startup()
	t.ctx.fn(t.ctx.arg)
	t.ctx.whenDone()
}

// CheckOverflow verifies the stack fencepost. Called opportunistically
// around context switches; a corrupted sentinel is fatal.
func (t *Thread) CheckOverflow() {
	if t.stack == nil {
		return
	}
	if t.stack[t.fencepostAt] != StackFencepost {
		t.sys.fatalf("stack overflow detected on thread %q (fencepost %#x)",
			t.name, t.stack[t.fencepostAt])
	}
}

// Stack exposes the thread's execution stack to the machine layer.
func (t *Thread) Stack() []uint32 {
	return t.stack
}

// StackTop returns the initial stack-pointer index chosen by the layout.
func (t *Thread) StackTop() int {
	return t.stackTop
}
