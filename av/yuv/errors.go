package yuv

import "errors"

// Sentinel errors for yuv package operations.
// Dimension errors come from the limits package (ErrOddDimensions,
// ErrInvalidDimensions) and are wrapped with context.

// Source errors.
var (
	// ErrSourceTooSmall indicates a pixel source cannot answer every
	// coordinate of the destination buffer.
	ErrSourceTooSmall = errors.New("pixel source smaller than destination")

	// ErrShortPixelData indicates a packed pixel slice is shorter than its
	// declared geometry requires.
	ErrShortPixelData = errors.New("pixel data shorter than declared geometry")

	// ErrInvalidStride indicates a row stride smaller than the row width.
	ErrInvalidStride = errors.New("invalid stride")
)

// Plane errors.
var (
	// ErrDimensionMismatch indicates two frames of different sizes.
	ErrDimensionMismatch = errors.New("frame dimensions do not match")

	// ErrShortPlane indicates a plane slice is shorter than stride*rows.
	ErrShortPlane = errors.New("plane shorter than stride times rows")

	// ErrDestinationTooSmall indicates an output slice cannot hold the result.
	ErrDestinationTooSmall = errors.New("destination buffer too small")
)
