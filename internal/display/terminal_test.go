package display

import (
	"testing"
	"time"

	"github.com/danmuck/rgbclient/internal/testutil/testlog"
	"github.com/gdamore/tcell/v2"
)

func TestTerminalDrawsHalfBlocks(t *testing.T) {
	testlog.Start(t)
	sim := tcell.NewSimulationScreen("")
	term, err := newTerminal(sim, Options{Width: 16, Height: 8})
	if err != nil {
		t.Fatalf("new terminal: %v", err)
	}
	defer term.Close()

	if w, h := term.Size(); w != 16 || h != 8 {
		t.Fatalf("unexpected size %dx%d", w, h)
	}
	term.SetPixel(2, 0, 255, 0, 0)
	term.SetPixel(2, 1, 0, 0, 255)
	term.SetPixel(99, 99, 1, 1, 1)
	if err := term.Present(); err != nil {
		t.Fatalf("present: %v", err)
	}
	mainc, _, style, _ := sim.GetContent(2, 0)
	if mainc != halfBlock {
		t.Fatalf("unexpected rune %q", mainc)
	}
	fg, bg, _ := style.Decompose()
	if fg != tcell.NewRGBColor(255, 0, 0) || bg != tcell.NewRGBColor(0, 0, 255) {
		t.Fatalf("unexpected colors fg=%v bg=%v", fg, bg)
	}
}

func TestTerminalInterruptKeys(t *testing.T) {
	testlog.Start(t)
	sim := tcell.NewSimulationScreen("")
	fired := make(chan struct{}, 1)
	term, err := newTerminal(sim, Options{Interrupt: func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	}})
	if err != nil {
		t.Fatalf("new terminal: %v", err)
	}
	defer term.Close()

	sim.InjectKey(tcell.KeyCtrlC, 0, tcell.ModNone)
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatalf("interrupt not delivered")
	}
}
