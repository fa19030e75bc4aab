package yuv

import (
	"fmt"
	"image"

	"github.com/opd-ai/yuvstream/limits"
	"github.com/sirupsen/logrus"
)

// Buffer is a tightly packed planar YUV 4:2:0 frame.
//
// The three planes live in one contiguous allocation: Y (width*height bytes,
// stride width), then U and V (width*height/4 bytes each, stride width/2).
// Buffer is not synchronized; filling and reading the same Buffer from
// different goroutines must be serialized by the caller.
type Buffer struct {
	data   []byte
	width  int
	height int
}

// NewBuffer allocates a zeroed buffer for a width x height frame.
//
// Both dimensions must be even and positive. Odd dimensions return an error
// wrapping limits.ErrOddDimensions rather than aborting.
func NewBuffer(width, height int) (*Buffer, error) {
	if err := limits.ValidateDimensions(width, height); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "NewBuffer",
			"width":    width,
			"height":   height,
			"error":    err.Error(),
		}).Error("Rejected YUV420 buffer dimensions")
		return nil, fmt.Errorf("yuv buffer: %w", err)
	}

	return &Buffer{
		data:   make([]byte, limits.YUV420Size(width, height)),
		width:  width,
		height: height,
	}, nil
}

// MustNewBuffer is like NewBuffer but panics on invalid dimensions.
// It is intended for callers that already guarantee even dimensions.
func MustNewBuffer(width, height int) *Buffer {
	b, err := NewBuffer(width, height)
	if err != nil {
		panic(err)
	}
	return b
}

// FromPlanes copies possibly strided planes into a new tight buffer.
func FromPlanes(width, height int, y, u, v []byte, yStride, uStride, vStride int) (*Buffer, error) {
	b, err := NewBuffer(width, height)
	if err != nil {
		return nil, err
	}
	cw, ch := width/2, height/2

	planes := []struct {
		name      string
		src       []byte
		stride    int
		w, h      int
		dst       []byte
		dstStride int
	}{
		{"Y", y, yStride, width, height, b.Y(), b.YStride()},
		{"U", u, uStride, cw, ch, b.U(), b.UStride()},
		{"V", v, vStride, cw, ch, b.V(), b.VStride()},
	}
	for _, p := range planes {
		if err := copyPlane(p.dst, p.dstStride, p.src, p.stride, p.w, p.h); err != nil {
			return nil, fmt.Errorf("%s plane: %w", p.name, err)
		}
	}
	return b, nil
}

// CopyFrom overwrites the buffer with the contents of src, which must have
// the same dimensions. Source strides may exceed the plane width.
func (b *Buffer) CopyFrom(src Source) error {
	if src.Width() != b.width || src.Height() != b.height {
		return fmt.Errorf("%w: %dx%d into %dx%d", ErrDimensionMismatch,
			src.Width(), src.Height(), b.width, b.height)
	}
	cw, ch := b.width/2, b.height/2
	if err := copyPlane(b.Y(), b.YStride(), src.Y(), src.YStride(), b.width, b.height); err != nil {
		return fmt.Errorf("Y plane: %w", err)
	}
	if err := copyPlane(b.U(), b.UStride(), src.U(), src.UStride(), cw, ch); err != nil {
		return fmt.Errorf("U plane: %w", err)
	}
	if err := copyPlane(b.V(), b.VStride(), src.V(), src.VStride(), cw, ch); err != nil {
		return fmt.Errorf("V plane: %w", err)
	}
	return nil
}

func copyPlane(dst []byte, dstStride int, src []byte, srcStride, w, h int) error {
	if srcStride < w {
		return fmt.Errorf("%w: stride %d < width %d", ErrInvalidStride, srcStride, w)
	}
	if h > 0 && len(src) < (h-1)*srcStride+w {
		return fmt.Errorf("%w: have %d bytes, need %d", ErrShortPlane, len(src), (h-1)*srcStride+w)
	}
	for row := 0; row < h; row++ {
		copy(dst[row*dstStride:row*dstStride+w], src[row*srcStride:row*srcStride+w])
	}
	return nil
}

// Width returns the frame width in pixels.
func (b *Buffer) Width() int { return b.width }

// Height returns the frame height in pixels.
func (b *Buffer) Height() int { return b.height }

// Y returns the luma plane. The slice capacity ends at the plane boundary.
func (b *Buffer) Y() []byte {
	n := limits.LumaSize(b.width, b.height)
	return b.data[0:n:n]
}

// U returns the Cb plane.
func (b *Buffer) U() []byte {
	base := limits.LumaSize(b.width, b.height)
	end := base + limits.ChromaSize(b.width, b.height)
	return b.data[base:end:end]
}

// V returns the Cr plane.
func (b *Buffer) V() []byte {
	base := limits.LumaSize(b.width, b.height) + limits.ChromaSize(b.width, b.height)
	end := base + limits.ChromaSize(b.width, b.height)
	return b.data[base:end:end]
}

// YStride returns the luma row stride, always Width().
func (b *Buffer) YStride() int { return b.width }

// UStride returns the Cb row stride, always Width()/2.
func (b *Buffer) UStride() int { return b.width / 2 }

// VStride returns the Cr row stride, always Width()/2.
func (b *Buffer) VStride() int { return b.width / 2 }

// Bytes returns the whole I420 region (Y, then U, then V).
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	return &Buffer{
		data:   append([]byte(nil), b.data...),
		width:  b.width,
		height: b.height,
	}
}

// YCbCr returns a standard library view sharing the buffer's memory.
func (b *Buffer) YCbCr() *image.YCbCr {
	return &image.YCbCr{
		Y:              b.Y(),
		Cb:             b.U(),
		Cr:             b.V(),
		YStride:        b.YStride(),
		CStride:        b.UStride(),
		SubsampleRatio: image.YCbCrSubsampleRatio420,
		Rect:           image.Rect(0, 0, b.width, b.height),
	}
}
