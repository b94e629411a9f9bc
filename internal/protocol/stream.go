package protocol

import (
	"errors"
	"fmt"
	"io"
)

const defaultChunkSize = 64 * 1024

// FrameReader reassembles fixed-size frames from a byte stream whose read
// boundaries need not line up with frame boundaries. Bytes read past the end
// of one frame are carried into the next.
type FrameReader struct {
	src       io.Reader
	frameSize int
	chunk     []byte
	pending   []byte
}

func NewFrameReader(src io.Reader, frameSize int) *FrameReader {
	chunk := defaultChunkSize
	if frameSize < chunk {
		chunk = frameSize
	}
	if chunk < 1 {
		chunk = 1
	}
	return &FrameReader{
		src:       src,
		frameSize: frameSize,
		chunk:     make([]byte, chunk),
	}
}

func (fr *FrameReader) FrameSize() int { return fr.frameSize }

// Buffered reports how many bytes of the next frame are already held.
func (fr *FrameReader) Buffered() int { return len(fr.pending) }

// ReadFrame fills dst with exactly one frame. A read that yields no bytes is
// treated as the peer going away.
func (fr *FrameReader) ReadFrame(dst []byte) error {
	if len(dst) != fr.frameSize {
		return fmt.Errorf("protocol: frame buffer is %d bytes, want %d", len(dst), fr.frameSize)
	}
	filled := copy(dst, fr.pending)
	fr.pending = fr.pending[filled:]

	for filled < fr.frameSize {
		n, err := fr.src.Read(fr.chunk)
		if n > 0 {
			c := copy(dst[filled:], fr.chunk[:n])
			filled += c
			if c < n {
				fr.pending = append(fr.pending[:0], fr.chunk[c:n]...)
			}
		}
		if filled >= fr.frameSize {
			return nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("%w: %d/%d bytes of frame", ErrPeerDisconnected, filled, fr.frameSize)
			}
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: empty read", ErrPeerDisconnected)
		}
	}
	return nil
}
