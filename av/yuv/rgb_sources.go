package yuv

import (
	"fmt"
	"image"
	"image/color"
)

// PixelLayout describes a packed 8-bit pixel format: the number of bytes
// per pixel and the byte offset of each colour channel inside a pixel.
type PixelLayout struct {
	BytesPerPixel int
	R, G, B       int
}

// Common packed layouts. Alpha bytes, where present, are ignored.
var (
	LayoutRGB24  = PixelLayout{BytesPerPixel: 3, R: 0, G: 1, B: 2}
	LayoutBGR24  = PixelLayout{BytesPerPixel: 3, R: 2, G: 1, B: 0}
	LayoutRGBA32 = PixelLayout{BytesPerPixel: 4, R: 0, G: 1, B: 2}
	LayoutBGRA32 = PixelLayout{BytesPerPixel: 4, R: 2, G: 1, B: 0}
	LayoutARGB32 = PixelLayout{BytesPerPixel: 4, R: 1, G: 2, B: 3}
)

// PackedSource samples pixels from a packed, optionally row-padded slice.
type PackedSource struct {
	data   []byte
	layout PixelLayout
	width  int
	height int
	stride int
}

// NewPackedSource wraps data holding height rows of stride bytes each.
//
// The constructor checks that data covers the declared geometry so later
// Pixel calls inside [0,width) x [0,height) cannot go out of range.
func NewPackedSource(data []byte, width, height, stride int, layout PixelLayout) (*PackedSource, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrShortPixelData, width, height)
	}
	rowBytes := width * layout.BytesPerPixel
	if stride < rowBytes {
		return nil, fmt.Errorf("%w: stride %d < row size %d", ErrInvalidStride, stride, rowBytes)
	}
	need := (height-1)*stride + rowBytes
	if len(data) < need {
		return nil, fmt.Errorf("%w: have %d bytes, need %d", ErrShortPixelData, len(data), need)
	}
	return &PackedSource{
		data:   data,
		layout: layout,
		width:  width,
		height: height,
		stride: stride,
	}, nil
}

// NewRGBSlice wraps tightly packed RGB8 data (3 bytes per pixel).
func NewRGBSlice(data []byte, width, height int) (*PackedSource, error) {
	return NewPackedSource(data, width, height, width*3, LayoutRGB24)
}

// NewBGRASlice wraps tightly packed BGRA data, the usual capture layout.
func NewBGRASlice(data []byte, width, height int) (*PackedSource, error) {
	return NewPackedSource(data, width, height, width*4, LayoutBGRA32)
}

// NewRGBASlice wraps tightly packed RGBA data.
func NewRGBASlice(data []byte, width, height int) (*PackedSource, error) {
	return NewPackedSource(data, width, height, width*4, LayoutRGBA32)
}

// Dimensions returns the width and height of the source.
func (p *PackedSource) Dimensions() (int, int) {
	return p.width, p.height
}

// Pixel returns the RGB channels at (x, y).
func (p *PackedSource) Pixel(x, y int) (uint8, uint8, uint8) {
	off := y*p.stride + x*p.layout.BytesPerPixel
	return p.data[off+p.layout.R], p.data[off+p.layout.G], p.data[off+p.layout.B]
}

// ImageSource adapts an image.Image. Coordinates are relative to the
// image bounds' minimum point and alpha is discarded after un-premultiplying.
type ImageSource struct {
	img    image.Image
	bounds image.Rectangle
}

// NewImageSource wraps img.
func NewImageSource(img image.Image) *ImageSource {
	return &ImageSource{img: img, bounds: img.Bounds()}
}

// Dimensions returns the size of the image bounds.
func (s *ImageSource) Dimensions() (int, int) {
	return s.bounds.Dx(), s.bounds.Dy()
}

// Pixel returns the colour at (x, y) relative to the image origin.
func (s *ImageSource) Pixel(x, y int) (uint8, uint8, uint8) {
	px, py := s.bounds.Min.X+x, s.bounds.Min.Y+y
	if rgba, ok := s.img.(*image.RGBA); ok {
		c := rgba.RGBAAt(px, py)
		return c.R, c.G, c.B
	}
	c := color.NRGBAModel.Convert(s.img.At(px, py)).(color.NRGBA)
	return c.R, c.G, c.B
}
