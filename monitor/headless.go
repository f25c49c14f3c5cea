package monitor

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Config controls the headless text monitor.
type Config struct {
	// Hz is the snapshot print rate. Defaults to 10.
	Hz int
	// Frames stops after N printed frames (0 = until the simulation
	// finishes).
	Frames uint64
}

// RunHeadless periodically prints the thread table to w until the
// simulation finishes, the frame limit is reached, or ctx is canceled.
func RunHeadless(ctx context.Context, rec *Recorder, w io.Writer, cfg Config) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 10
	}
	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid monitor hz: %d", cfg.Hz)
	}
	t := time.NewTicker(d)
	defer t.Stop()

	var frames uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-rec.Done():
			if s, ok := rec.Snapshot(); ok {
				fmt.Fprintln(w, format(s, rec.Switches()))
			}
			return nil
		case <-t.C:
			s, ok := rec.Snapshot()
			if !ok {
				continue
			}
			fmt.Fprintln(w, format(s, rec.Switches()))
			frames++
			if cfg.Frames > 0 && frames >= cfg.Frames {
				return nil
			}
		}
	}
}
