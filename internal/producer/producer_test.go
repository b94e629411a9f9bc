package producer

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/danmuck/rgbclient/internal/pixel"
	"github.com/danmuck/rgbclient/internal/protocol"
	"github.com/danmuck/rgbclient/internal/testutil/testlog"
)

func TestStreamWritesPreambleThenFrames(t *testing.T) {
	testlog.Start(t)
	cfg := DefaultConfig()
	cfg.FPS = 0
	cfg.Frames = 3
	cfg.WriteChunk = 7
	p, err := New(cfg)
	if err != nil {
		t.Fatalf("new producer: %v", err)
	}

	var buf bytes.Buffer
	if err := p.Stream(context.Background(), &buf); err != nil {
		t.Fatalf("stream: %v", err)
	}
	pre, err := protocol.ReadPreamble(&buf)
	if err != nil {
		t.Fatalf("read preamble: %v", err)
	}
	if err := pre.Validate(protocol.DefaultLimits()); err != nil {
		t.Fatalf("producer preamble invalid: %v", err)
	}
	if pre.BitmapWidth != 64 || pre.BitmapHeight != 32 || pre.BitmapPitch != 128 || pre.BufferSize != 64*32*2 {
		t.Fatalf("unexpected preamble %+v", pre)
	}
	if buf.Len() != 3*int(pre.BufferSize) {
		t.Fatalf("expected 3 frames of payload, got %d bytes", buf.Len())
	}
}

func TestSolidFrameDecodesToColor(t *testing.T) {
	testlog.Start(t)
	cfg := DefaultConfig()
	cfg.Pattern = PatternSolid
	cfg.Format = pixel.FormatRGBA8888
	cfg.Color = pixel.RGB{R: 10, G: 20, B: 30}
	p, err := New(cfg)
	if err != nil {
		t.Fatalf("new producer: %v", err)
	}
	frame := make([]byte, p.Preamble().BufferSize)
	if err := p.Frame(0, frame); err != nil {
		t.Fatalf("frame: %v", err)
	}
	got, err := pixel.At(frame, 5, cfg.Format)
	if err != nil {
		t.Fatalf("at: %v", err)
	}
	if got != cfg.Color {
		t.Fatalf("got=%+v want=%+v", got, cfg.Color)
	}
}

func TestProducerConfigValidation(t *testing.T) {
	testlog.Start(t)
	cfg := DefaultConfig()
	cfg.Format = pixel.Format(0)
	if _, err := New(cfg); !errors.Is(err, pixel.ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
	if _, err := ParsePattern("plasma"); !errors.Is(err, ErrUnknownPattern) {
		t.Fatalf("expected ErrUnknownPattern, got %v", err)
	}
	cfg = DefaultConfig()
	cfg.Rotate = true
	p, err := New(cfg)
	if err != nil {
		t.Fatalf("new producer: %v", err)
	}
	if !p.Preamble().Rotated() {
		t.Fatalf("expected rotate attribute")
	}
}

func TestParseColor(t *testing.T) {
	testlog.Start(t)
	got, err := ParseColor("#ff8000")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != (pixel.RGB{R: 255, G: 128, B: 0}) {
		t.Fatalf("unexpected color %+v", got)
	}
	if got, err := ParseColor("00ff00"); err != nil || got.G != 255 {
		t.Fatalf("parse without hash: %+v %v", got, err)
	}
	for _, bad := range []string{"", "#fff", "#gg0000", "255,0,0"} {
		if _, err := ParseColor(bad); !errors.Is(err, ErrColorSyntax) {
			t.Fatalf("expected ErrColorSyntax for %q, got %v", bad, err)
		}
	}
}
