package display

import (
	"fmt"
	"image"
	"image/color"
	"sync"
)

// Memory is a headless sink. Presented frames are readable via Snapshot.
type Memory struct {
	mu       sync.Mutex
	back     *image.RGBA
	front    *image.RGBA
	presents int
	writes   int
}

func NewMemory(width, height int) (*Memory, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("display: memory sink needs a positive size, got %dx%d", width, height)
	}
	bounds := image.Rect(0, 0, width, height)
	return &Memory{
		back:  image.NewRGBA(bounds),
		front: image.NewRGBA(bounds),
	}, nil
}

func (m *Memory) Size() (int, int) {
	b := m.back.Bounds()
	return b.Dx(), b.Dy()
}

func (m *Memory) SetPixel(x, y int, r, g, b uint8) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !(image.Point{X: x, Y: y}).In(m.back.Bounds()) {
		return
	}
	m.back.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 0xff})
	m.writes++
}

// Present publishes the back buffer. The back buffer keeps its contents so
// regions not rewritten by the next frame persist, as on a panel canvas.
func (m *Memory) Present() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy(m.front.Pix, m.back.Pix)
	m.presents++
	return nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.back.Pix)
	clear(m.front.Pix)
	return nil
}

func (m *Memory) Close() error { return nil }

// Snapshot copies the last presented frame.
func (m *Memory) Snapshot() *image.RGBA {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := image.NewRGBA(m.front.Bounds())
	copy(out.Pix, m.front.Pix)
	return out
}

func (m *Memory) Presents() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.presents
}

// Writes counts in-bounds SetPixel calls.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
