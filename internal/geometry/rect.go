package geometry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrRectSyntax  = errors.New("geometry: malformed rectangle")
	ErrInvalidRect = errors.New("geometry: invalid rectangle")
)

// Rect is a half-open rectangle: (SX,SY) inclusive start, (DX,DY) exclusive end.
type Rect struct {
	SX int
	SY int
	DX int
	DY int
}

// ParseRect parses the "sx,sy-dx,dy" form.
func ParseRect(text string) (Rect, error) {
	start, end, ok := strings.Cut(strings.TrimSpace(text), "-")
	if !ok {
		return Rect{}, fmt.Errorf("%w: %q missing '-'", ErrRectSyntax, text)
	}
	sx, sy, err := parsePoint(start)
	if err != nil {
		return Rect{}, fmt.Errorf("%w: %q start: %v", ErrRectSyntax, text, err)
	}
	dx, dy, err := parsePoint(end)
	if err != nil {
		return Rect{}, fmt.Errorf("%w: %q end: %v", ErrRectSyntax, text, err)
	}
	return Rect{SX: sx, SY: sy, DX: dx, DY: dy}, nil
}

func parsePoint(s string) (int, int, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, errors.New("missing ','")
	}
	x, err := strconv.ParseInt(strings.TrimSpace(xs), 10, 16)
	if err != nil {
		return 0, 0, err
	}
	y, err := strconv.ParseInt(strings.TrimSpace(ys), 10, 16)
	if err != nil {
		return 0, 0, err
	}
	return int(x), int(y), nil
}

// Valid reports whether the rectangle is non-empty and not inverted.
func (r Rect) Valid() bool {
	return r.SX < r.DX && r.SY < r.DY
}

// Validate returns ErrInvalidRect when the rectangle is degenerate or inverted.
func (r Rect) Validate() error {
	if r.SX >= r.DX {
		return fmt.Errorf("%w: %s start x >= end x", ErrInvalidRect, r)
	}
	if r.SY >= r.DY {
		return fmt.Errorf("%w: %s start y >= end y", ErrInvalidRect, r)
	}
	return nil
}

func (r Rect) Width() int  { return r.DX - r.SX }
func (r Rect) Height() int { return r.DY - r.SY }

func (r Rect) String() string {
	return fmt.Sprintf("%d,%d-%d,%d", r.SX, r.SY, r.DX, r.DY)
}

func (r Rect) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Rect) UnmarshalText(text []byte) error {
	parsed, err := ParseRect(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
