// Package pixel converts tagged raw pixel samples to 8-bit RGB.
package pixel

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownFormat = errors.New("pixel: unknown pixel format")

// Format is the wire tag for a raw pixel encoding.
type Format uint8

const (
	FormatUnknown  Format = 0
	FormatRGB565   Format = 1
	FormatRGBA8888 Format = 2
	FormatARGB8888 Format = 3
	FormatRGBA5551 Format = 4
)

func (f Format) String() string {
	switch f {
	case FormatRGB565:
		return "RGB565"
	case FormatRGBA8888:
		return "RGBA8888"
	case FormatARGB8888:
		return "ARGB8888"
	case FormatRGBA5551:
		return "RGBA5551"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(f))
	}
}

// ParseFormat accepts the names printed by String, case-insensitively.
func ParseFormat(raw string) (Format, error) {
	name := strings.ToUpper(strings.TrimSpace(raw))
	for _, f := range []Format{FormatRGB565, FormatRGBA8888, FormatARGB8888, FormatRGBA5551} {
		if f.String() == name {
			return f, nil
		}
	}
	return FormatUnknown, fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
}

// BytesPerPixel returns 0 for unrecognized formats.
func (f Format) BytesPerPixel() int {
	switch f {
	case FormatRGBA8888, FormatARGB8888:
		return 4
	case FormatRGB565, FormatRGBA5551:
		return 2
	default:
		return 0
	}
}

func (f Format) Valid() bool {
	return f.BytesPerPixel() != 0
}

// RGB is one decoded pixel.
type RGB struct {
	R, G, B uint8
}

func scale5(v uint32) uint8 { return uint8(v * 255 / 31) }
func scale6(v uint32) uint8 { return uint8(v * 255 / 63) }

// Unpack decodes one raw sample. 16-bit formats use the low 16 bits.
func Unpack(sample uint32, f Format) (RGB, error) {
	switch f {
	case FormatRGB565:
		return RGB{
			R: scale5((sample >> 11) & 0x1f),
			G: scale6((sample >> 5) & 0x3f),
			B: scale5(sample & 0x1f),
		}, nil
	case FormatRGBA8888:
		return RGB{R: uint8(sample >> 24), G: uint8(sample >> 16), B: uint8(sample >> 8)}, nil
	case FormatARGB8888:
		return RGB{R: uint8(sample >> 16), G: uint8(sample >> 8), B: uint8(sample)}, nil
	case FormatRGBA5551:
		return RGB{
			R: scale5((sample >> 11) & 0x1f),
			G: scale5((sample >> 6) & 0x1f),
			B: scale5((sample >> 1) & 0x1f),
		}, nil
	default:
		return RGB{}, fmt.Errorf("%w: %d", ErrUnknownFormat, uint8(f))
	}
}

// Sample reads the little-endian sample at pixel index i of row.
func Sample(row []byte, i int, f Format) (uint32, error) {
	bpp := f.BytesPerPixel()
	if bpp == 0 {
		return 0, fmt.Errorf("%w: %d", ErrUnknownFormat, uint8(f))
	}
	off := i * bpp
	if off < 0 || off+bpp > len(row) {
		return 0, fmt.Errorf("pixel: sample %d out of range (row %d bytes)", i, len(row))
	}
	if bpp == 2 {
		return uint32(binary.LittleEndian.Uint16(row[off:])), nil
	}
	return binary.LittleEndian.Uint32(row[off:]), nil
}

// At decodes pixel i of row.
func At(row []byte, i int, f Format) (RGB, error) {
	s, err := Sample(row, i, f)
	if err != nil {
		return RGB{}, err
	}
	return Unpack(s, f)
}
