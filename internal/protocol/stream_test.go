package protocol

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/danmuck/rgbclient/internal/testutil/testlog"
)

// chunkReader returns at most the next size from sizes per Read call.
type chunkReader struct {
	data  []byte
	sizes []int
	next  int
	reads int
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.data) == 0 {
		return 0, io.EOF
	}
	n := c.sizes[c.next%len(c.sizes)]
	c.next++
	c.reads++
	if n > len(p) {
		n = len(p)
	}
	if n > len(c.data) {
		n = len(c.data)
	}
	copy(p, c.data[:n])
	c.data = c.data[n:]
	return n, nil
}

func numberedFrames(count, size int) []byte {
	out := make([]byte, 0, count*size)
	for f := 0; f < count; f++ {
		for i := 0; i < size; i++ {
			out = append(out, byte(f*31+i))
		}
	}
	return out
}

func TestFrameReaderReassemblesArbitraryChunks(t *testing.T) {
	testlog.Start(t)
	const frameSize = 10
	const frames = 7
	stream := numberedFrames(frames, frameSize)

	for _, sizes := range [][]int{{1}, {3}, {7}, {9, 4}, {13}, {25}, {2, 11, 5}} {
		src := &chunkReader{data: append([]byte(nil), stream...), sizes: sizes}
		fr := NewFrameReader(src, frameSize)
		dst := make([]byte, frameSize)
		for f := 0; f < frames; f++ {
			if err := fr.ReadFrame(dst); err != nil {
				t.Fatalf("sizes=%v frame %d: %v", sizes, f, err)
			}
			want := stream[f*frameSize : (f+1)*frameSize]
			if !bytes.Equal(dst, want) {
				t.Fatalf("sizes=%v frame %d got=%v want=%v", sizes, f, dst, want)
			}
		}
		if err := fr.ReadFrame(dst); !errors.Is(err, ErrPeerDisconnected) {
			t.Fatalf("sizes=%v expected ErrPeerDisconnected, got %v", sizes, err)
		}
	}
}

type bulkReader struct {
	data []byte
}

func (b *bulkReader) Read(p []byte) (int, error) {
	if len(b.data) == 0 {
		return 0, io.EOF
	}
	n := copy(p, b.data)
	b.data = b.data[n:]
	return n, nil
}

func TestFrameReaderCarriesRemainderAcrossFrames(t *testing.T) {
	testlog.Start(t)
	stream := numberedFrames(3, 4)
	src := &chunkReader{data: stream, sizes: []int{6}}
	fr := NewFrameReader(src, 4)
	fr.chunk = make([]byte, 6)

	dst := make([]byte, 4)
	if err := fr.ReadFrame(dst); err != nil {
		t.Fatalf("frame 0: %v", err)
	}
	if fr.Buffered() != 2 {
		t.Fatalf("expected 2 carried bytes, got %d", fr.Buffered())
	}
	if err := fr.ReadFrame(dst); err != nil {
		t.Fatalf("frame 1: %v", err)
	}
	if !bytes.Equal(dst, stream[4:8]) {
		t.Fatalf("frame 1 got=%v want=%v", dst, stream[4:8])
	}
	if err := fr.ReadFrame(dst); err != nil {
		t.Fatalf("frame 2: %v", err)
	}
	if !bytes.Equal(dst, stream[8:12]) {
		t.Fatalf("frame 2 got=%v want=%v", dst, stream[8:12])
	}
}

func TestFrameReaderPartialFrameThenEOF(t *testing.T) {
	testlog.Start(t)
	fr := NewFrameReader(&bulkReader{data: make([]byte, 15)}, 10)
	dst := make([]byte, 10)
	if err := fr.ReadFrame(dst); err != nil {
		t.Fatalf("first frame: %v", err)
	}
	if err := fr.ReadFrame(dst); !errors.Is(err, ErrPeerDisconnected) {
		t.Fatalf("expected ErrPeerDisconnected, got %v", err)
	}
}

type zeroReader struct{}

func (zeroReader) Read([]byte) (int, error) { return 0, nil }

func TestFrameReaderZeroReadIsDisconnect(t *testing.T) {
	testlog.Start(t)
	fr := NewFrameReader(zeroReader{}, 8)
	if err := fr.ReadFrame(make([]byte, 8)); !errors.Is(err, ErrPeerDisconnected) {
		t.Fatalf("expected ErrPeerDisconnected, got %v", err)
	}
}

func TestFrameReaderRejectsWrongBuffer(t *testing.T) {
	testlog.Start(t)
	fr := NewFrameReader(&bulkReader{}, 8)
	if err := fr.ReadFrame(make([]byte, 4)); err == nil {
		t.Fatalf("expected size mismatch error")
	}
}
