// Package yuv converts RGB-like pixel grids into planar YUV 4:2:0 frames.
//
// # Frames
//
// Buffer stores a frame in one contiguous allocation laid out as I420:
//
//	[ Y: width*height ][ U: width*height/4 ][ V: width*height/4 ]
//
// with strides width, width/2 and width/2. Buffer implements Source, the
// read-only view handed to encoders:
//
//	buf, err := yuv.NewBuffer(640, 480)
//	if err != nil {
//	    return err // errors.Is(err, limits.ErrOddDimensions) for odd sizes
//	}
//
// MustNewBuffer keeps the panic-on-odd-dimensions contract for callers
// that guarantee even sizes.
//
// # Conversion
//
// Any RGBSource can be converted. Each 2x2 block produces four luma samples
// and one averaged chroma pair, using fixed studio-range coefficients:
//
//	Y =  0.2578125*R + 0.50390625*G + 0.09765625*B + 16
//	U = -0.1484375*R - 0.2890625*G  + 0.4375*B     + 128
//	V =  0.4375*R    - 0.3671875*G  - 0.0703125*B  + 128
//
// Results are truncated, not rounded. FillRGB reuses an existing buffer
// without allocating:
//
//	src, _ := yuv.NewRGBSlice(rgb, 640, 480)
//	if err := buf.FillRGB(src); err != nil {
//	    return err
//	}
//
// # Pixel Sources
//
// PackedSource covers packed 24/32-bit layouts (RGB, BGR, RGBA, BGRA,
// ARGB) with optional row padding. ImageSource adapts image.Image,
// SolidSource and GradientSource generate frames procedurally, and
// SourceFunc wraps a plain function.
//
// # Decoded Output
//
// WriteRGB8 and WriteRGBA8 convert any Source (for example a decoder's
// output) back to packed RGB for display or comparison. Scaler and
// EffectChain operate on Buffers between capture and encoding.
package yuv
