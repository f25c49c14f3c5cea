package monitor

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/TrellixVulnTeam/NachOS-PO5F/internal/buildinfo"
)

// RunWindow opens a desktop window showing the live thread table. It
// blocks until the window closes or the simulation finishes, so it must
// run on the main goroutine with the simulation on another.
func RunWindow(rec *Recorder) error {
	g := &game{rec: rec}
	ebiten.SetWindowTitle("nachos monitor (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(960, 640)
	ebiten.SetTPS(30)
	err := ebiten.RunGame(g)
	if err == ebiten.Termination {
		return nil
	}
	return err
}

type game struct {
	rec  *Recorder
	text string
}

func (g *game) Update() error {
	select {
	case <-g.rec.Done():
		// Render the final frame once before shutting down so a short
		// run does not flash an empty window.
		if s, ok := g.rec.Snapshot(); ok && g.text == "" {
			g.text = format(s, g.rec.Switches())
			return nil
		}
		return ebiten.Termination
	default:
	}
	if s, ok := g.rec.Snapshot(); ok {
		g.text = format(s, g.rec.Switches())
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	ebitenutil.DebugPrint(screen, g.text)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return 480, 320
}
