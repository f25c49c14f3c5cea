package kernel

import (
	"github.com/TrellixVulnTeam/NachOS-PO5F/internal/debug"
	"github.com/TrellixVulnTeam/NachOS-PO5F/machine"
)

// Semaphore is a counting semaphore built on the sleep/wake primitive.
// Waiters park in the scheduler's wait registry under the semaphore's
// key; V wakes everything under the key and waiters re-check the count,
// so only as many proceed as there are units.
type Semaphore struct {
	sys   *System
	name  string
	value int
	key   int
}

// NewSemaphore creates a semaphore with an initial count.
func NewSemaphore(sys *System, name string, value int) *Semaphore {
	if value < 0 {
		sys.fatalf("semaphore %q with negative value %d", name, value)
	}
	return &Semaphore{sys: sys, name: name, value: value, key: sys.AllocWaitKey()}
}

// P waits for a unit and consumes it, blocking while the count is zero.
func (s *Semaphore) P() {
	sys := s.sys
	old := sys.interrupt.SetLevel(machine.IntOff)
	for s.value == 0 {
		t := sys.current
		debug.Printf('s', "thread %q blocking on semaphore %q", t.name, s.name)
		t.status = Blocked
		sys.scheduler.Park(t, s.key)
		sys.Sleep()
	}
	s.value--
	sys.interrupt.SetLevel(old)
}

// V adds a unit and wakes any waiters.
func (s *Semaphore) V() {
	old := s.sys.interrupt.SetLevel(machine.IntOff)
	s.sys.scheduler.Wake(s.key)
	s.value++
	s.sys.interrupt.SetLevel(old)
}

// Lock is a mutual-exclusion lock with owner tracking. Only the holder
// may release it.
type Lock struct {
	sem   *Semaphore
	owner *Thread
}

// NewLock creates an unheld lock.
func NewLock(sys *System, name string) *Lock {
	return &Lock{sem: NewSemaphore(sys, name, 1)}
}

// Acquire takes the lock, blocking until it is free.
func (l *Lock) Acquire() {
	l.sem.P()
	l.owner = l.sem.sys.current
}

// Release frees the lock. Releasing a lock held by another thread (or by
// nobody) is fatal.
func (l *Lock) Release() {
	if !l.HeldByCurrent() {
		l.sem.sys.fatalf("lock %q released by non-holder", l.sem.name)
	}
	l.owner = nil
	l.sem.V()
}

// HeldByCurrent reports whether the running thread holds the lock.
func (l *Lock) HeldByCurrent() bool {
	return l.owner != nil && l.owner == l.sem.sys.current
}

// Condition is a Mesa-style condition variable. Waiters keep their own
// FIFO; Signal deposits the longest waiter directly back on the ready
// queue, Broadcast all of them. Callers must hold the associated lock
// and re-check their predicate after waking.
type Condition struct {
	sys     *System
	name    string
	waiters threadList
}

// NewCondition creates a condition variable.
func NewCondition(sys *System, name string) *Condition {
	return &Condition{sys: sys, name: name}
}

// Wait atomically releases the lock and blocks until a Signal or
// Broadcast, then reacquires the lock before returning.
func (c *Condition) Wait(l *Lock) {
	sys := c.sys
	if !l.HeldByCurrent() {
		sys.fatalf("condition %q wait without holding the lock", c.name)
	}
	old := sys.interrupt.SetLevel(machine.IntOff)
	t := sys.current
	debug.Printf('s', "thread %q waiting on condition %q", t.name, c.name)
	l.Release()
	t.status = Blocked
	c.waiters.append(t)
	sys.Sleep()
	sys.interrupt.SetLevel(old)
	l.Acquire()
}

// Signal wakes the longest-waiting thread, if any.
func (c *Condition) Signal(l *Lock) {
	sys := c.sys
	if !l.HeldByCurrent() {
		sys.fatalf("condition %q signal without holding the lock", c.name)
	}
	old := sys.interrupt.SetLevel(machine.IntOff)
	if t := c.waiters.removeFront(); t != nil {
		sys.scheduler.MoveToReady(t)
	}
	sys.interrupt.SetLevel(old)
}

// Broadcast wakes every waiting thread in waiting order.
func (c *Condition) Broadcast(l *Lock) {
	sys := c.sys
	if !l.HeldByCurrent() {
		sys.fatalf("condition %q broadcast without holding the lock", c.name)
	}
	old := sys.interrupt.SetLevel(machine.IntOff)
	for t := c.waiters.removeFront(); t != nil; t = c.waiters.removeFront() {
		sys.scheduler.MoveToReady(t)
	}
	sys.interrupt.SetLevel(old)
}
