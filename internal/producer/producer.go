// Package producer streams test-pattern frames using the client wire format.
package producer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/danmuck/rgbclient/internal/pixel"
	"github.com/danmuck/rgbclient/internal/protocol"
	"github.com/rs/zerolog/log"
)

var (
	ErrUnknownPattern = errors.New("producer: unknown pattern")
	ErrColorSyntax    = errors.New("producer: color must be #rrggbb")
)

type Pattern string

const (
	PatternSolid Pattern = "solid"
	PatternBars  Pattern = "bars"
	PatternSweep Pattern = "sweep"
)

func ParsePattern(raw string) (Pattern, error) {
	switch p := Pattern(strings.ToLower(strings.TrimSpace(raw))); p {
	case PatternSolid, PatternBars, PatternSweep:
		return p, nil
	case "":
		return PatternBars, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPattern, raw)
	}
}

// ParseColor reads a "#rrggbb" hex triplet; the leading '#' is optional.
func ParseColor(raw string) (pixel.RGB, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(raw), "#")
	if len(hex) != 6 {
		return pixel.RGB{}, fmt.Errorf("%w: %q", ErrColorSyntax, raw)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return pixel.RGB{}, fmt.Errorf("%w: %q", ErrColorSyntax, raw)
	}
	return pixel.RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

type Config struct {
	Width   int
	Height  int
	Format  pixel.Format
	Rotate  bool
	Pattern Pattern
	Color   pixel.RGB
	FPS     int

	// Frames stops each stream after N frames; 0 streams until the peer leaves.
	Frames int
	// WriteChunk splits writes to exercise reassembly; 0 writes whole frames.
	WriteChunk int
	// Magic overrides the preamble magic; 0 uses protocol.Magic.
	Magic uint32
}

func DefaultConfig() Config {
	return Config{
		Width:   64,
		Height:  32,
		Format:  pixel.FormatRGB565,
		Pattern: PatternBars,
		Color:   pixel.RGB{R: 255, G: 255, B: 255},
		FPS:     30,
	}
}

func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 || c.Width > 0xffff || c.Height > 0xffff {
		return fmt.Errorf("producer: invalid bitmap size %dx%d", c.Width, c.Height)
	}
	if !c.Format.Valid() {
		return fmt.Errorf("producer: %w", pixel.ErrUnknownFormat)
	}
	if c.Width*c.Format.BytesPerPixel() > 0xffff {
		return fmt.Errorf("producer: pitch overflows u16 for width %d", c.Width)
	}
	if _, err := ParsePattern(string(c.Pattern)); err != nil {
		return err
	}
	return nil
}

// Producer renders frames and writes them to connected peers.
type Producer struct {
	cfg Config
}

func New(cfg Config) (*Producer, error) {
	if cfg.Pattern == "" {
		cfg.Pattern = PatternBars
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Producer{cfg: cfg}, nil
}

func (p *Producer) Preamble() protocol.Preamble {
	bpp := p.cfg.Format.BytesPerPixel()
	magic := p.cfg.Magic
	if magic == 0 {
		magic = protocol.Magic
	}
	pre := protocol.Preamble{
		Magic:        magic,
		BufferSize:   uint32(p.cfg.Width * p.cfg.Height * bpp),
		BitmapPitch:  uint16(p.cfg.Width * bpp),
		BitmapWidth:  uint16(p.cfg.Width),
		BitmapHeight: uint16(p.cfg.Height),
		PixelFormat:  p.cfg.Format,
	}
	if p.cfg.Rotate {
		pre.Attrs |= protocol.AttrRotate180
	}
	return pre
}

// Frame renders frame n into dst, which must be one buffer long.
func (p *Producer) Frame(n int, dst []byte) error {
	pitch := p.cfg.Width * p.cfg.Format.BytesPerPixel()
	if len(dst) != pitch*p.cfg.Height {
		return fmt.Errorf("producer: frame buffer is %d bytes, want %d", len(dst), pitch*p.cfg.Height)
	}
	for y := 0; y < p.cfg.Height; y++ {
		row := dst[y*pitch : (y+1)*pitch]
		for x := 0; x < p.cfg.Width; x++ {
			if err := pixel.PutPixel(row, x, p.colorAt(n, x, y), p.cfg.Format); err != nil {
				return err
			}
		}
	}
	return nil
}

var barColors = []pixel.RGB{
	{R: 255, G: 255, B: 255},
	{R: 255, G: 255, B: 0},
	{R: 0, G: 255, B: 255},
	{R: 0, G: 255, B: 0},
	{R: 255, G: 0, B: 255},
	{R: 255, G: 0, B: 0},
	{R: 0, G: 0, B: 255},
	{R: 0, G: 0, B: 0},
}

func (p *Producer) colorAt(n, x, y int) pixel.RGB {
	switch p.cfg.Pattern {
	case PatternSolid:
		return p.cfg.Color
	case PatternSweep:
		if x == n%p.cfg.Width {
			return p.cfg.Color
		}
		return pixel.RGB{}
	default:
		band := (x + n) * len(barColors) / p.cfg.Width
		return barColors[band%len(barColors)]
	}
}

// Stream writes the preamble and then frames to w until ctx is done, the
// frame budget is spent or a write fails.
func (p *Producer) Stream(ctx context.Context, w io.Writer) error {
	pre := p.Preamble()
	if err := protocol.WritePreamble(w, pre); err != nil {
		return err
	}
	frame := make([]byte, pre.BufferSize)

	var tick <-chan time.Time
	if p.cfg.FPS > 0 {
		ticker := time.NewTicker(time.Second / time.Duration(p.cfg.FPS))
		defer ticker.Stop()
		tick = ticker.C
	}

	for n := 0; p.cfg.Frames == 0 || n < p.cfg.Frames; n++ {
		if err := p.Frame(n, frame); err != nil {
			return err
		}
		if err := p.write(w, frame); err != nil {
			return err
		}
		if tick == nil {
			if err := ctx.Err(); err != nil {
				return nil
			}
			continue
		}
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
		}
	}
	return nil
}

func (p *Producer) write(w io.Writer, frame []byte) error {
	if p.cfg.WriteChunk <= 0 {
		_, err := w.Write(frame)
		return err
	}
	for off := 0; off < len(frame); off += p.cfg.WriteChunk {
		end := min(off+p.cfg.WriteChunk, len(frame))
		if _, err := w.Write(frame[off:end]); err != nil {
			return err
		}
	}
	return nil
}

// Serve accepts peers on ln and streams to each until ctx is done.
func (p *Producer) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() {
		_ = ln.Close()
	})
	defer stop()

	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer conn.Close()
			closeOnDone := context.AfterFunc(ctx, func() {
				_ = conn.Close()
			})
			defer closeOnDone()

			remote := conn.RemoteAddr().String()
			log.Info().Str("peer", remote).Msg("producer.Serve peer connected")
			if err := p.Stream(ctx, conn); err != nil {
				log.Info().Err(err).Str("peer", remote).Msg("producer.Serve peer gone")
				return
			}
			log.Info().Str("peer", remote).Msg("producer.Serve stream finished")
		}()
	}
}
