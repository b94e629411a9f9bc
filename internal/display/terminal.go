package display

import (
	"sync"

	"github.com/gdamore/tcell/v2"
)

const halfBlock = '▀'

// Terminal renders onto a tcell screen, two vertical pixels per cell.
type Terminal struct {
	screen tcell.Screen
	width  int
	height int
	back   []tcell.Color

	closeOnce sync.Once
}

func NewTerminal(opts Options) (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return newTerminal(screen, opts)
}

func newTerminal(screen tcell.Screen, opts Options) (*Terminal, error) {
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.HideCursor()
	screen.Clear()

	cols, rows := screen.Size()
	width, height := cols, rows*2
	if opts.Width > 0 && opts.Width < width {
		width = opts.Width
	}
	if opts.Height > 0 && opts.Height < height {
		height = opts.Height
	}
	t := &Terminal{
		screen: screen,
		width:  width,
		height: height,
		back:   make([]tcell.Color, width*height),
	}
	t.fill(tcell.ColorBlack)
	go t.pollEvents(opts.Interrupt)
	return t, nil
}

// pollEvents exits once Fini makes PollEvent return nil.
func (t *Terminal) pollEvents(interrupt func()) {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyCtrlC || ev.Key() == tcell.KeyEscape || ev.Rune() == 'q' {
				if interrupt != nil {
					interrupt()
				}
			}
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}
}

func (t *Terminal) Size() (int, int) { return t.width, t.height }

func (t *Terminal) SetPixel(x, y int, r, g, b uint8) {
	if x < 0 || y < 0 || x >= t.width || y >= t.height {
		return
	}
	t.back[y*t.width+x] = tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func (t *Terminal) Present() error {
	for row := 0; row*2 < t.height; row++ {
		for x := 0; x < t.width; x++ {
			upper := t.back[row*2*t.width+x]
			lower := tcell.ColorBlack
			if row*2+1 < t.height {
				lower = t.back[(row*2+1)*t.width+x]
			}
			style := tcell.StyleDefault.Foreground(upper).Background(lower)
			t.screen.SetContent(x, row, halfBlock, nil, style)
		}
	}
	t.screen.Show()
	return nil
}

func (t *Terminal) Clear() error {
	t.fill(tcell.ColorBlack)
	return t.Present()
}

func (t *Terminal) fill(c tcell.Color) {
	for i := range t.back {
		t.back[i] = c
	}
}

func (t *Terminal) Close() error {
	t.closeOnce.Do(func() {
		t.screen.Fini()
	})
	return nil
}
