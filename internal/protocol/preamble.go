package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/danmuck/rgbclient/internal/pixel"
)

const (
	PreambleLen = 16
	Magic       = uint32(0x52474243)

	AttrRotate180 uint8 = 0x01
)

// Preamble describes the frames that follow on one connection.
type Preamble struct {
	Magic        uint32
	BufferSize   uint32
	BitmapPitch  uint16
	BitmapWidth  uint16
	BitmapHeight uint16
	PixelFormat  pixel.Format
	Attrs        uint8
}

// Limits constrains per-connection memory use.
type Limits struct {
	MaxBufferBytes uint32
}

func DefaultLimits() Limits {
	return Limits{MaxBufferBytes: 64 * 1024 * 1024}
}

func (p Preamble) Rotated() bool {
	return p.Attrs&AttrRotate180 != 0
}

// Rows returns how many whole bitmap rows fit in one frame buffer.
func (p Preamble) Rows() int {
	if p.BitmapPitch == 0 {
		return 0
	}
	rows := int(p.BufferSize) / int(p.BitmapPitch)
	if rows > int(p.BitmapHeight) {
		rows = int(p.BitmapHeight)
	}
	return rows
}

// Validate checks the fatal invariants. A magic mismatch is reported
// separately by CheckMagic and never fails validation.
func (p Preamble) Validate(limits Limits) error {
	bpp := p.PixelFormat.BytesPerPixel()
	if bpp == 0 {
		return fmt.Errorf("%w: %d", ErrUnknownPixelFormat, uint8(p.PixelFormat))
	}
	if bpp*int(p.BitmapWidth) != int(p.BitmapPitch) {
		return fmt.Errorf("%w: %d != %d", ErrPitchMismatch, bpp*int(p.BitmapWidth), p.BitmapPitch)
	}
	if p.BufferSize == 0 {
		return ErrEmptyFrame
	}
	if limits.MaxBufferBytes > 0 && p.BufferSize > limits.MaxBufferBytes {
		return fmt.Errorf("%w: %d > %d", ErrBufferTooLarge, p.BufferSize, limits.MaxBufferBytes)
	}
	return nil
}

func (p Preamble) CheckMagic() error {
	if p.Magic != Magic {
		return fmt.Errorf("%w: %#x != %#x", ErrBadMagic, p.Magic, Magic)
	}
	return nil
}

func EncodePreamble(p Preamble) []byte {
	buf := make([]byte, PreambleLen)
	binary.LittleEndian.PutUint32(buf[0:4], p.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], p.BufferSize)
	binary.LittleEndian.PutUint16(buf[8:10], p.BitmapPitch)
	binary.LittleEndian.PutUint16(buf[10:12], p.BitmapWidth)
	binary.LittleEndian.PutUint16(buf[12:14], p.BitmapHeight)
	buf[14] = byte(p.PixelFormat)
	buf[15] = p.Attrs
	return buf
}

func DecodePreamble(b []byte) (Preamble, error) {
	if len(b) != PreambleLen {
		return Preamble{}, fmt.Errorf("%w: %d bytes", ErrShortPreamble, len(b))
	}
	return Preamble{
		Magic:        binary.LittleEndian.Uint32(b[0:4]),
		BufferSize:   binary.LittleEndian.Uint32(b[4:8]),
		BitmapPitch:  binary.LittleEndian.Uint16(b[8:10]),
		BitmapWidth:  binary.LittleEndian.Uint16(b[10:12]),
		BitmapHeight: binary.LittleEndian.Uint16(b[12:14]),
		PixelFormat:  pixel.Format(b[14]),
		Attrs:        b[15],
	}, nil
}

// ReadPreamble reads exactly one preamble. It does not validate it.
func ReadPreamble(r io.Reader) (Preamble, error) {
	var fixed [PreambleLen]byte
	n, err := io.ReadFull(r, fixed[:])
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return Preamble{}, fmt.Errorf("%w: read %d bytes", ErrShortPreamble, n)
		}
		return Preamble{}, err
	}
	return DecodePreamble(fixed[:])
}

func WritePreamble(w io.Writer, p Preamble) error {
	_, err := w.Write(EncodePreamble(p))
	return err
}
