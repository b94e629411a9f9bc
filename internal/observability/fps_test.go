package observability

import (
	"testing"
	"time"

	"github.com/danmuck/rgbclient/internal/testutil/testlog"
)

func TestFPSMeterReportsOncePerWindow(t *testing.T) {
	testlog.Start(t)
	clock := time.Unix(1700000000, 0)
	m := NewFPSMeter(time.Second)
	m.now = func() time.Time { return clock }

	for i := 0; i < 30; i++ {
		if _, ok := m.Tick(); ok {
			t.Fatalf("reported before window closed at frame %d", i)
		}
		clock = clock.Add(time.Second / 30)
	}
	clock = clock.Add(10 * time.Millisecond)
	fps, ok := m.Tick()
	if !ok {
		t.Fatalf("expected report after one second")
	}
	if fps < 30 || fps > 32 {
		t.Fatalf("unexpected fps %.2f", fps)
	}
	if _, ok := m.Tick(); ok {
		t.Fatalf("window should restart after report")
	}
}
