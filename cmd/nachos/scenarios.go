package main

import (
	"fmt"

	"github.com/TrellixVulnTeam/NachOS-PO5F/kernel"
)

// buildScenario returns the root thread body for a named demo workload.
func buildScenario(sys *kernel.System, name string, n int) (kernel.ThreadFunc, error) {
	switch name {
	case "threadtest":
		return threadTest(sys, n), nil
	case "forkjoin":
		return forkJoin(sys), nil
	case "synch":
		return synchTest(sys), nil
	default:
		return nil, fmt.Errorf("unknown scenario %q", name)
	}
}

// threadTest forks n workers that repeatedly yield, then joins each one
// and reports its exit code. The classic round-robin demonstration.
func threadTest(sys *kernel.System, n int) kernel.ThreadFunc {
	return func(int) {
		root := sys.CurrentThread()
		for i := 0; i < n; i++ {
			t := sys.NewThread(fmt.Sprintf("worker-%d", i))
			t.Fork(func(which int) {
				for loop := 1; loop <= 5; loop++ {
					fmt.Printf("*** worker %d looped %d times\n", which, loop)
					sys.Yield()
				}
				sys.Exit(which * 10)
			}, i)
		}
		for slot := 0; slot < root.ChildCount(); slot++ {
			code := root.JoinWithChild(slot)
			fmt.Printf("*** pid %d exited with code %d\n", root.ChildPID(slot), code)
		}
	}
}

// forkJoin shows both join orders: one child exits before the parent
// joins it, the other exits only after the parent is already waiting.
func forkJoin(sys *kernel.System) kernel.ThreadFunc {
	return func(int) {
		root := sys.CurrentThread()

		early := sys.NewThread("early")
		early.Fork(func(int) { sys.Exit(7) }, 0)
		sys.Yield() // let it run to completion first

		late := sys.NewThread("late")
		late.Fork(func(int) {
			for i := 0; i < 3; i++ {
				sys.Yield()
			}
			sys.Exit(42)
		}, 0)

		fmt.Printf("early child returned %d\n", root.JoinWithChild(root.ChildSlot(early.PID())))
		fmt.Printf("late child returned %d\n", root.JoinWithChild(root.ChildSlot(late.PID())))
	}
}

// synchTest runs a bounded-buffer producer/consumer pair on semaphores.
func synchTest(sys *kernel.System) kernel.ThreadFunc {
	return func(int) {
		const items = 8
		var buf []int
		empty := kernel.NewSemaphore(sys, "empty", 4)
		full := kernel.NewSemaphore(sys, "full", 0)
		mutex := kernel.NewLock(sys, "buf")
		root := sys.CurrentThread()

		producer := sys.NewThread("producer")
		producer.Fork(func(int) {
			for i := 0; i < items; i++ {
				empty.P()
				mutex.Acquire()
				buf = append(buf, i)
				mutex.Release()
				full.V()
			}
			sys.Exit(0)
		}, 0)

		consumer := sys.NewThread("consumer")
		consumer.Fork(func(int) {
			sum := 0
			for i := 0; i < items; i++ {
				full.P()
				mutex.Acquire()
				v := buf[0]
				buf = buf[1:]
				mutex.Release()
				empty.V()
				sum += v
			}
			fmt.Printf("consumed %d items, sum %d\n", items, sum)
			sys.Exit(sum)
		}, 0)

		root.JoinWithChild(root.ChildSlot(producer.PID()))
		sum := root.JoinWithChild(root.ChildSlot(consumer.PID()))
		fmt.Printf("consumer exit code %d\n", sum)
	}
}
