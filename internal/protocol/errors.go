package protocol

import "errors"

var (
	ErrShortPreamble      = errors.New("protocol: short preamble")
	ErrBadMagic           = errors.New("protocol: magic number mismatch")
	ErrUnknownPixelFormat = errors.New("protocol: unrecognized pixel format")
	ErrPitchMismatch      = errors.New("protocol: bitmap pitch does not match width")
	ErrEmptyFrame         = errors.New("protocol: zero buffer size")
	ErrBufferTooLarge     = errors.New("protocol: buffer size exceeds limit")
	ErrPeerDisconnected   = errors.New("protocol: peer disconnected")
)

// Reason maps a protocol error to a short label for diagnostics and metrics.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrShortPreamble):
		return "short_preamble"
	case errors.Is(err, ErrUnknownPixelFormat):
		return "unknown_pixel_format"
	case errors.Is(err, ErrPitchMismatch):
		return "pitch_mismatch"
	case errors.Is(err, ErrEmptyFrame):
		return "empty_frame"
	case errors.Is(err, ErrBufferTooLarge):
		return "buffer_too_large"
	case errors.Is(err, ErrPeerDisconnected):
		return "peer_disconnected"
	default:
		return "transport"
	}
}
