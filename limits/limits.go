// Package limits provides centralized frame geometry and size limits.
// This ensures consistent validation across the conversion and framing layers.
package limits

import (
	"errors"
	"fmt"
)

const (
	// MaxFrameDimension is the largest accepted width or height in pixels.
	// It keeps width*height and the derived plane sizes well inside int range
	// on 32-bit platforms.
	MaxFrameDimension = 16384

	// MaxFramePayload is the default cap for a single length-prefixed frame (64 MiB).
	MaxFramePayload = 64 * 1024 * 1024

	// ChromaSubsampling is the per-axis subsampling factor of YUV 4:2:0.
	ChromaSubsampling = 2
)

var (
	// ErrInvalidDimensions indicates a non-positive or oversized width or height.
	ErrInvalidDimensions = errors.New("invalid frame dimensions")

	// ErrOddDimensions indicates a width or height that is not a multiple of 2.
	ErrOddDimensions = errors.New("frame dimensions must be even")

	// ErrFrameTooLarge indicates a frame exceeds the configured size limit.
	ErrFrameTooLarge = errors.New("frame too large")
)

// ValidateDimensions checks that width and height describe a YUV 4:2:0 frame.
// Returns an error with context including the offending dimensions.
func ValidateDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if width > MaxFrameDimension || height > MaxFrameDimension {
		return fmt.Errorf("%w: %dx%d exceeds %d", ErrInvalidDimensions, width, height, MaxFrameDimension)
	}
	if width%ChromaSubsampling != 0 || height%ChromaSubsampling != 0 {
		return fmt.Errorf("%w: %dx%d", ErrOddDimensions, width, height)
	}
	return nil
}

// ValidateFrameSize validates a frame length against maxSize.
// A maxSize of zero or less disables the check.
func ValidateFrameSize(size, maxSize int) error {
	if maxSize <= 0 {
		return nil
	}
	if size > maxSize {
		return fmt.Errorf("%w: size %d exceeds limit %d", ErrFrameTooLarge, size, maxSize)
	}
	return nil
}

// LumaSize returns the number of bytes in the Y plane.
func LumaSize(width, height int) int {
	return width * height
}

// ChromaSize returns the number of bytes in one of the U or V planes.
func ChromaSize(width, height int) int {
	return (width * height) / 4
}

// YUV420Size returns the size of a tightly packed planar YUV 4:2:0 frame.
func YUV420Size(width, height int) int {
	return LumaSize(width, height) + 2*ChromaSize(width, height)
}
