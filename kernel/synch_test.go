package kernel

import (
	"errors"
	"strings"
	"testing"
)

func TestSemaphoreBlocksUntilV(t *testing.T) {
	sys := New(Options{})
	var order []string
	err := sys.Run("main", func(int) {
		sem := NewSemaphore(sys, "sem", 0)
		waiter := sys.NewThread("waiter")
		waiter.Fork(func(int) {
			sem.P()
			order = append(order, "after-P")
			sys.Exit(0)
		}, 0)

		sys.Yield() // waiter runs and blocks on the semaphore
		order = append(order, "before-V")
		sem.V()
		order = append(order, "after-V")
		sys.CurrentThread().JoinWithChild(0)
	}, 0)
	if err != nil {
		t.Fatalf("expected clean halt, got %v", err)
	}
	want := "before-V,after-V,after-P"
	if got := strings.Join(order, ","); got != want {
		t.Fatalf("expected order %q, got %q", want, got)
	}
}

func TestSemaphoreCountsUnits(t *testing.T) {
	sys := New(Options{})
	err := sys.Run("main", func(int) {
		sem := NewSemaphore(sys, "sem", 2)
		sem.P()
		sem.P()
		// Two units consumed without blocking; a third P would block, so
		// give one back first.
		sem.V()
		sem.P()
	}, 0)
	if err != nil {
		t.Fatalf("expected clean halt, got %v", err)
	}
}

func TestLockReleaseByNonHolderIsFatal(t *testing.T) {
	sys := New(Options{})
	err := sys.Run("main", func(int) {
		lock := NewLock(sys, "l")
		lock.Acquire()
		thief := sys.NewThread("thief")
		thief.Fork(func(int) {
			lock.Release()
		}, 0)
		sys.Yield()
	}, 0)
	var v *Violation
	if !errors.As(err, &v) {
		t.Fatalf("expected an integrity violation, got %v", err)
	}
	if !strings.Contains(v.Reason, "non-holder") {
		t.Fatalf("expected non-holder violation, got %q", v.Reason)
	}
}

func TestLockHandoff(t *testing.T) {
	sys := New(Options{})
	var order []string
	err := sys.Run("main", func(int) {
		lock := NewLock(sys, "l")
		lock.Acquire()

		contender := sys.NewThread("contender")
		contender.Fork(func(int) {
			lock.Acquire()
			order = append(order, "contender-acquired")
			lock.Release()
			sys.Exit(0)
		}, 0)

		sys.Yield() // contender blocks on the held lock
		order = append(order, "releasing")
		lock.Release()
		sys.CurrentThread().JoinWithChild(0)
	}, 0)
	if err != nil {
		t.Fatalf("expected clean halt, got %v", err)
	}
	want := "releasing,contender-acquired"
	if got := strings.Join(order, ","); got != want {
		t.Fatalf("expected order %q, got %q", want, got)
	}
}

func TestConditionSignalWakesInWaitOrder(t *testing.T) {
	sys := New(Options{})
	var order []string
	err := sys.Run("main", func(int) {
		root := sys.CurrentThread()
		lock := NewLock(sys, "l")
		cond := NewCondition(sys, "c")

		for _, name := range []string{"first", "second"} {
			th := sys.NewThread(name)
			th.Fork(func(int) {
				lock.Acquire()
				cond.Wait(lock)
				order = append(order, sys.CurrentThread().Name())
				lock.Release()
				sys.Exit(0)
			}, 0)
		}
		sys.Yield() // both waiters park on the condition

		lock.Acquire()
		cond.Signal(lock)
		lock.Release()
		root.JoinWithChild(0)
		order = append(order, "signaled-one")

		lock.Acquire()
		cond.Broadcast(lock)
		lock.Release()
		root.JoinWithChild(1)
	}, 0)
	if err != nil {
		t.Fatalf("expected clean halt, got %v", err)
	}
	want := "first,signaled-one,second"
	if got := strings.Join(order, ","); got != want {
		t.Fatalf("expected order %q, got %q", want, got)
	}
}

func TestConditionWaitWithoutLockIsFatal(t *testing.T) {
	sys := New(Options{})
	err := sys.Run("main", func(int) {
		lock := NewLock(sys, "l")
		cond := NewCondition(sys, "c")
		cond.Wait(lock)
	}, 0)
	var v *Violation
	if !errors.As(err, &v) {
		t.Fatalf("expected an integrity violation, got %v", err)
	}
}
