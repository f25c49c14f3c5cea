package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/TrellixVulnTeam/NachOS-PO5F/internal/debug"
	"github.com/TrellixVulnTeam/NachOS-PO5F/kernel"
	"github.com/TrellixVulnTeam/NachOS-PO5F/machine"
	"github.com/TrellixVulnTeam/NachOS-PO5F/monitor"
)

func main() {
	var (
		debugFlags  = flag.String("d", "", "Debug flag characters (e.g. \"ti\", \"+\" for all).")
		scenario    = flag.String("scenario", "threadtest", "Scenario: threadtest, forkjoin, synch.")
		numThreads  = flag.Int("n", 4, "Worker thread count for threadtest.")
		preempt     = flag.Bool("preempt", false, "Install the preemption timer.")
		randomTimer = flag.Bool("rs", false, "Randomize the preemption timer (implies -preempt).")
		seed        = flag.Int64("seed", 1, "Seed for the random timer.")
		window      = flag.Bool("monitor", false, "Open the live scheduler monitor window.")
		trace       = flag.Bool("trace", false, "Print scheduler snapshots to stdout.")
		printStats  = flag.Bool("stats", false, "Print machine statistics after the run.")
	)
	flag.Parse()
	debug.Init(*debugFlags)

	stats := machine.NewStats()
	interrupt := machine.NewInterrupt(stats)
	sys := kernel.New(kernel.Options{
		Interrupt: interrupt,
		Machine:   machine.NewMachine(interrupt),
	})
	if *preempt || *randomTimer {
		machine.NewTimer(interrupt, interrupt.YieldOnReturn, *randomTimer, *seed)
	}

	kernel.SetViolationHandler(func(v *kernel.Violation) {
		fmt.Fprintf(os.Stderr, "%s\n%s", v.Error(), v.Stack)
	})

	rec := monitor.NewRecorder()
	sys.SetTrace(rec.Record)

	root, err := buildScenario(sys, *scenario, *numThreads)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	run := func() error {
		defer rec.Close()
		return sys.Run("main", root, 0)
	}

	var runErr error
	switch {
	case *window:
		// ebiten needs the main goroutine; the simulation runs beside it.
		errc := make(chan error, 1)
		go func() { errc <- run() }()
		if err := monitor.RunWindow(rec); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		runErr = <-errc
	case *trace:
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		errc := make(chan error, 1)
		go func() { errc <- run() }()
		if err := monitor.RunHeadless(ctx, rec, os.Stdout, monitor.Config{}); err != nil && err != context.Canceled {
			fmt.Fprintln(os.Stderr, err)
		}
		runErr = <-errc
	default:
		runErr = run()
	}

	if *printStats {
		stats.Print(os.Stdout)
	}
	if runErr != nil {
		fmt.Fprintln(os.Stderr, runErr)
		os.Exit(1)
	}
}
