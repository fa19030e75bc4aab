package yuv

// Source is a read-only view over a planar YUV 4:2:0 frame.
//
// Plane slices are borrowed from the implementation and remain valid only
// as long as the implementation does. A consumer reads YStride()*Height()
// bytes of Y and UStride()*(Height()/2) bytes of each chroma plane.
type Source interface {
	Width() int
	Height() int
	Y() []byte
	U() []byte
	V() []byte
	YStride() int
	UStride() int
	VStride() int
}

// RGBSource is a grid of RGB-like pixels sampled one coordinate at a time.
//
// Pixel must answer every coordinate in [0,width) x [0,height) as reported
// by Dimensions. Implementations may be backed by packed slices, strided
// capture buffers or procedural generators.
type RGBSource interface {
	Dimensions() (width, height int)
	Pixel(x, y int) (r, g, b uint8)
}

// SourceFunc adapts a sampling function to the RGBSource interface.
type SourceFunc struct {
	Width  int
	Height int
	Fn     func(x, y int) (r, g, b uint8)
}

// Dimensions returns the configured width and height.
func (f SourceFunc) Dimensions() (int, int) {
	return f.Width, f.Height
}

// Pixel calls the wrapped function.
func (f SourceFunc) Pixel(x, y int) (uint8, uint8, uint8) {
	return f.Fn(x, y)
}
