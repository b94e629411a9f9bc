// Package compositor maps a decoded frame onto a display sink.
package compositor

import (
	"fmt"

	"github.com/danmuck/rgbclient/internal/display"
	"github.com/danmuck/rgbclient/internal/geometry"
	"github.com/danmuck/rgbclient/internal/pixel"
	"github.com/danmuck/rgbclient/internal/protocol"
)

// Compositor borrows each frame read-only for the duration of Render.
type Compositor struct {
	sink          display.Sink
	width, height int
}

func New(sink display.Sink) *Compositor {
	w, h := sink.Size()
	return &Compositor{sink: sink, width: w, height: h}
}

func (c *Compositor) Sink() display.Sink { return c.sink }

// Render walks blit.Src clipped to the bitmap, writes every pixel whose
// destination is on the surface, then presents.
func (c *Compositor) Render(frame []byte, p protocol.Preamble, blit geometry.Blit) error {
	bpp := p.PixelFormat.BytesPerPixel()
	if bpp == 0 {
		return fmt.Errorf("%w: %d", protocol.ErrUnknownPixelFormat, uint8(p.PixelFormat))
	}
	pitch := int(p.BitmapPitch)
	rows := p.Rows()
	if avail := len(frame) / max(pitch, 1); avail < rows {
		rows = avail
	}
	cols := int(p.BitmapWidth)

	for ry := max(blit.Src.SY, 0); ry < blit.Src.DY && ry < rows; ry++ {
		wy := blit.MapY(ry)
		if wy < 0 || wy >= c.height {
			continue
		}
		row := frame[ry*pitch : (ry+1)*pitch]
		for rx := max(blit.Src.SX, 0); rx < blit.Src.DX && rx < cols; rx++ {
			wx := blit.MapX(rx)
			if wx < 0 || wx >= c.width {
				continue
			}
			px, err := pixel.At(row, rx, p.PixelFormat)
			if err != nil {
				return err
			}
			c.sink.SetPixel(wx, wy, px.R, px.G, px.B)
		}
	}
	return c.sink.Present()
}

// Blank clears the surface, used between connections.
func (c *Compositor) Blank() error {
	return c.sink.Clear()
}
