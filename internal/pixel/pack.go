package pixel

import (
	"encoding/binary"
	"fmt"
)

// Pack encodes an RGB triple into a raw sample. Alpha channels are set opaque.
func Pack(c RGB, f Format) (uint32, error) {
	r, g, b := uint32(c.R), uint32(c.G), uint32(c.B)
	switch f {
	case FormatRGB565:
		return (r*31/255)<<11 | (g*63/255)<<5 | b*31/255, nil
	case FormatRGBA8888:
		return r<<24 | g<<16 | b<<8 | 0xff, nil
	case FormatARGB8888:
		return 0xff<<24 | r<<16 | g<<8 | b, nil
	case FormatRGBA5551:
		return (r*31/255)<<11 | (g*31/255)<<6 | (b*31/255)<<1 | 1, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownFormat, uint8(f))
	}
}

// PutPixel writes c as pixel i of row in little-endian order.
func PutPixel(row []byte, i int, c RGB, f Format) error {
	s, err := Pack(c, f)
	if err != nil {
		return err
	}
	bpp := f.BytesPerPixel()
	off := i * bpp
	if off < 0 || off+bpp > len(row) {
		return fmt.Errorf("pixel: sample %d out of range (row %d bytes)", i, len(row))
	}
	if bpp == 2 {
		binary.LittleEndian.PutUint16(row[off:], uint16(s))
		return nil
	}
	binary.LittleEndian.PutUint32(row[off:], s)
	return nil
}
