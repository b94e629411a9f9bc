package observability

import "time"

// FPSMeter counts frames and yields a rate once per elapsed window.
type FPSMeter struct {
	window time.Duration
	now    func() time.Time
	start  time.Time
	frames int
}

func NewFPSMeter(window time.Duration) *FPSMeter {
	if window <= 0 {
		window = time.Second
	}
	return &FPSMeter{window: window, now: time.Now}
}

// Tick records one frame. ok is true when a window has closed.
func (m *FPSMeter) Tick() (fps float64, ok bool) {
	now := m.now()
	if m.start.IsZero() {
		m.start = now
	}
	m.frames++
	elapsed := now.Sub(m.start)
	if elapsed < m.window {
		return 0, false
	}
	fps = float64(m.frames) / elapsed.Seconds()
	m.frames = 0
	m.start = now
	return fps, true
}

func (m *FPSMeter) Reset() {
	m.start = time.Time{}
	m.frames = 0
}
