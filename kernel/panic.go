package kernel

import (
	"fmt"
	"runtime/debug"
	"sync/atomic"
)

// Violation describes a broken kernel invariant: a thread destroying
// itself, a switch attempted with preemption enabled, a corrupted stack
// fencepost, a full child table. There is no local recovery from any of
// these; the system that detected one shuts down.
type Violation struct {
	Thread string
	Reason string
	Stack  []byte
}

func (v *Violation) Error() string {
	if v.Thread == "" {
		return "kernel: integrity violation: " + v.Reason
	}
	return fmt.Sprintf("kernel: integrity violation in thread %q: %s", v.Thread, v.Reason)
}

var violationHandler atomic.Value // func(*Violation)

// SetViolationHandler installs a process-wide handler invoked before a
// violation panics. It must not panic.
func SetViolationHandler(fn func(*Violation)) {
	violationHandler.Store(fn)
}

// fatalf reports an integrity violation. It never returns: the violation
// is raised as a panic, caught at the thread goroutine boundary, and
// surfaced as the error returned by Run.
func (sys *System) fatalf(format string, args ...any) {
	v := &Violation{
		Reason: fmt.Sprintf(format, args...),
		Stack:  debug.Stack(),
	}
	if sys.current != nil {
		v.Thread = sys.current.name
	}
	if h := violationHandler.Load(); h != nil {
		if fn, ok := h.(func(*Violation)); ok && fn != nil {
			fn(v)
		}
	}
	panic(v)
}
