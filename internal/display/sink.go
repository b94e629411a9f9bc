// Package display holds the surfaces frames are composited onto.
package display

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownSink = errors.New("display: unknown sink kind")

// Sink is a double-buffered pixel surface. SetPixel writes the back buffer;
// Present swaps it to the front. Coordinates outside Size are ignored.
type Sink interface {
	Size() (width, height int)
	SetPixel(x, y int, r, g, b uint8)
	Present() error
	Clear() error
	Close() error
}

// Kind selects a Sink implementation.
type Kind string

const (
	KindTerminal Kind = "terminal"
	KindMemory   Kind = "memory"
)

func ParseKind(raw string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case "", KindTerminal:
		return KindTerminal, nil
	case KindMemory, "headless", "none":
		return KindMemory, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSink, raw)
	}
}

// Options sizes a sink. Zero width/height lets the terminal pick its own.
type Options struct {
	Kind   Kind
	Width  int
	Height int

	// Interrupt is called when the user asks the terminal sink to quit.
	Interrupt func()
}

func Open(opts Options) (Sink, error) {
	switch opts.Kind {
	case KindMemory:
		return NewMemory(opts.Width, opts.Height)
	case KindTerminal, "":
		return NewTerminal(opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSink, opts.Kind)
	}
}
