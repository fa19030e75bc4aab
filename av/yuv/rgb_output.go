package yuv

import (
	"fmt"

	"github.com/opd-ai/yuvstream/limits"
)

// EstimateRGBSize returns the number of bytes WriteRGB8 needs for src.
func EstimateRGBSize(src Source) int {
	return src.Width() * src.Height() * 3
}

// EstimateRGBASize returns the number of bytes WriteRGBA8 needs for src.
func EstimateRGBASize(src Source) int {
	return src.Width() * src.Height() * 4
}

// WriteRGB8 converts src to packed RGB8 in dst using the BT.601
// studio-range inverse transform. Source strides are honoured.
func WriteRGB8(src Source, dst []byte) error {
	return writePacked(src, dst, 3)
}

// WriteRGBA8 is like WriteRGB8 but writes opaque RGBA.
func WriteRGBA8(src Source, dst []byte) error {
	return writePacked(src, dst, 4)
}

func writePacked(src Source, dst []byte, bpp int) error {
	w, h := src.Width(), src.Height()
	if err := limits.ValidateDimensions(w, h); err != nil {
		return fmt.Errorf("rgb output: %w", err)
	}
	if need := w * h * bpp; len(dst) < need {
		return fmt.Errorf("%w: have %d bytes, need %d", ErrDestinationTooSmall, len(dst), need)
	}
	yPlane, uPlane, vPlane := src.Y(), src.U(), src.V()
	ys, us, vs := src.YStride(), src.UStride(), src.VStride()
	if len(yPlane) < (h-1)*ys+w || len(uPlane) < (h/2-1)*us+w/2 || len(vPlane) < (h/2-1)*vs+w/2 {
		return fmt.Errorf("%w: %dx%d frame", ErrShortPlane, w, h)
	}

	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			c := int(yPlane[row*ys+col]) - 16
			d := int(uPlane[(row/2)*us+col/2]) - 128
			e := int(vPlane[(row/2)*vs+col/2]) - 128

			off := (row*w + col) * bpp
			dst[off+0] = clamp8((298*c + 409*e + 128) >> 8)
			dst[off+1] = clamp8((298*c - 100*d - 208*e + 128) >> 8)
			dst[off+2] = clamp8((298*c + 516*d + 128) >> 8)
			if bpp == 4 {
				dst[off+3] = 255
			}
		}
	}
	return nil
}

func clamp8(x int) uint8 {
	if x < 0 {
		return 0
	}
	if x > 255 {
		return 255
	}
	return uint8(x)
}
