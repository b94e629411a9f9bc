package geometry

// Blit is the per-connection working copy of the source and destination
// rectangles after the bitmap has been centered inside the content area.
type Blit struct {
	Src  Rect
	Dest Rect

	// Rotated mirrors destination x as Axis - x.
	Rotated bool
	Axis    int
}

// CenterAndClip shifts the declared source/dest pair so a bitmap of the given
// size sits centered within content. The originals are not modified.
func CenterAndClip(content Rect, bitmapWidth, bitmapHeight int, source, dest Rect) (Rect, Rect) {
	src, dst := source, dest

	xdelta := (content.Width() - bitmapWidth) / 2
	src.SX, src.DX, dst.SX, dst.DX = shiftAxis(xdelta, src.SX, src.DX, dst.SX, dst.DX)

	ydelta := (content.Height() - bitmapHeight) / 2
	src.SY, src.DY, dst.SY, dst.DY = shiftAxis(ydelta, src.SY, src.DY, dst.SY, dst.DY)

	return src, dst
}

// shiftAxis applies delta along one axis. A source window anchored at the
// bitmap origin moves the destination start and shrinks the source end;
// otherwise the source start slides back and the destination end grows.
func shiftAxis(delta, srcStart, srcEnd, dstStart, dstEnd int) (int, int, int, int) {
	if srcStart == 0 {
		if overflow := delta - srcEnd; overflow > 0 {
			delta -= overflow
		}
		return srcStart, srcEnd - delta, dstStart + delta, dstEnd
	}
	if overflow := delta - srcStart; overflow > 0 {
		delta -= overflow
	}
	return srcStart - delta, srcEnd, dstStart, dstEnd + delta
}

// RotationAxis is the mirror axis used when the 180 degree attribute is set.
func RotationAxis(dest Rect) int {
	return dest.DX
}

// NewBlit derives the working rectangles for one connection.
func NewBlit(content, source, dest Rect, bitmapWidth, bitmapHeight int, rotated bool) Blit {
	src, dst := CenterAndClip(content, bitmapWidth, bitmapHeight, source, dest)
	b := Blit{Src: src, Dest: dst, Rotated: rotated}
	if rotated {
		b.Axis = RotationAxis(dst)
	}
	return b
}

// MapX translates a source column to its destination column.
func (b Blit) MapX(rx int) int {
	x := b.Dest.SX + (rx - b.Src.SX)
	if b.Rotated {
		return b.Axis - x
	}
	return x
}

// MapY translates a source row to its destination row.
func (b Blit) MapY(ry int) int {
	return b.Dest.SY + (ry - b.Src.SY)
}
