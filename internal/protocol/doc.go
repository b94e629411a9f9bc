// Package protocol owns the frame-stream wire contract.
//
// Ownership boundary:
// - preamble layout, encode/decode and validation
// - fixed-size frame reassembly over partial reads
//
// Wire layout (little-endian, 16 bytes, sent once per connection):
//
//	0  u32 magic
//	4  u32 buffer_size
//	8  u16 bitmap_pitch
//	10 u16 bitmap_width
//	12 u16 bitmap_height
//	14 u8  pixel_format
//	15 u8  attrs
//
// The preamble is followed by back-to-back buffer_size byte frames with no
// per-frame framing.
package protocol
