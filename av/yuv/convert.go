package yuv

import (
	"fmt"

	"github.com/opd-ai/yuvstream/limits"
)

// RGB to YUV coefficients (studio range, BT.601-like). These are exact
// dyadic values; encoders and conformance fixtures depend on them bit for bit.
const (
	lumaR   = 0.2578125
	lumaG   = 0.50390625
	lumaB   = 0.09765625
	lumaOff = 16.0

	cbR = -0.1484375
	cbG = -0.2890625
	cbB = 0.4375

	crR = 0.4375
	crG = -0.3671875
	crB = -0.0703125

	chromaOff = 128.0
)

// NewBufferFromRGB allocates a buffer sized to src and fills it.
func NewBufferFromRGB(src RGBSource) (*Buffer, error) {
	width, height := src.Dimensions()
	b, err := NewBuffer(width, height)
	if err != nil {
		return nil, err
	}
	if err := b.FillRGB(src); err != nil {
		return nil, err
	}
	return b, nil
}

// FillRGB converts src into the buffer in place without allocating.
//
// The frame is processed in 2x2 blocks: each pixel gets its own luma
// sample, and the block's averaged RGB produces one U and one V sample.
// src must be at least as large as the buffer.
func (b *Buffer) FillRGB(src RGBSource) error {
	sw, sh := src.Dimensions()
	if sw < b.width || sh < b.height {
		return fmt.Errorf("%w: source %dx%d, buffer %dx%d", ErrSourceTooSmall, sw, sh, b.width, b.height)
	}

	width := b.width
	halfWidth := width / 2
	uBase := limits.LumaSize(b.width, b.height)
	vBase := uBase + limits.ChromaSize(b.width, b.height)
	yuv := b.data

	for j := 0; j < b.height/2; j++ {
		py := j * 2
		for i := 0; i < halfWidth; i++ {
			px := i * 2

			r00, g00, b00 := src.Pixel(px, py)
			r01, g01, b01 := src.Pixel(px, py+1)
			r10, g10, b10 := src.Pixel(px+1, py)
			r11, g11, b11 := src.Pixel(px+1, py+1)

			writeSample(yuv, 0, width, px, py, luma(r00, g00, b00))
			writeSample(yuv, 0, width, px, py+1, luma(r01, g01, b01))
			writeSample(yuv, 0, width, px+1, py, luma(r10, g10, b10))
			writeSample(yuv, 0, width, px+1, py+1, luma(r11, g11, b11))

			ar := average4(r00, r01, r10, r11)
			ag := average4(g00, g01, g10, g11)
			ab := average4(b00, b01, b10, b11)

			writeSample(yuv, uBase, halfWidth, i, j, chromaU(ar, ag, ab))
			writeSample(yuv, vBase, halfWidth, i, j, chromaV(ar, ag, ab))
		}
	}
	return nil
}

// writeSample stores value at (x, y) of the plane starting at base.
func writeSample(yuv []byte, base, stride, x, y int, value uint8) {
	yuv[base+x+y*stride] = value
}

func average4(a, b, c, d uint8) float32 {
	return float32(uint32(a)+uint32(b)+uint32(c)+uint32(d)) / 4.0
}

// The explicit float32 conversions round every product before the sum so
// no architecture fuses them into multiply-add; the uint8 conversion then
// truncates toward zero.

func luma(r, g, b uint8) uint8 {
	fr, fg, fb := float32(r), float32(g), float32(b)
	return uint8(float32(lumaR*fr) + float32(lumaG*fg) + float32(lumaB*fb) + lumaOff)
}

func chromaU(r, g, b float32) uint8 {
	return uint8(float32(cbR*r) + float32(cbG*g) + float32(cbB*b) + chromaOff)
}

func chromaV(r, g, b float32) uint8 {
	return uint8(float32(crR*r) + float32(crG*g) + float32(crB*b) + chromaOff)
}
