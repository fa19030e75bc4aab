package codec

import (
	"fmt"
	"time"

	"github.com/opd-ai/yuvstream/limits"
	"github.com/sirupsen/logrus"
)

// Options configures a Pipeline.
type Options struct {
	// Width and Height are the encode resolution. Zero keeps the source size;
	// otherwise frames are scaled before encoding.
	Width  int
	Height int
	// FrameRate is used to derive sample durations for delivery.
	FrameRate float64
	// MaxFrameSize caps length-prefixed frames read by DecodeFramed.
	MaxFrameSize int
	// StrictFraming makes DecodeFramed return an error for a truncated
	// trailing frame instead of dropping it silently.
	StrictFraming bool
	// LogLevel, when set, is applied to the logrus standard logger.
	LogLevel string
}

// NewOptions returns the default options.
func NewOptions() *Options {
	return &Options{
		FrameRate:    30,
		MaxFrameSize: limits.MaxFramePayload,
	}
}

// Validate checks the options for consistency.
func (o *Options) Validate() error {
	if o.Width != 0 || o.Height != 0 {
		if err := limits.ValidateDimensions(o.Width, o.Height); err != nil {
			return fmt.Errorf("%w: target size: %w", ErrInvalidOptions, err)
		}
	}
	if o.FrameRate <= 0 {
		return fmt.Errorf("%w: frame rate must be positive, got %v", ErrInvalidOptions, o.FrameRate)
	}
	if o.MaxFrameSize < 0 {
		return fmt.Errorf("%w: negative max frame size %d", ErrInvalidOptions, o.MaxFrameSize)
	}
	if o.LogLevel != "" {
		if _, err := logrus.ParseLevel(o.LogLevel); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
		}
	}
	return nil
}

// FrameDuration returns the nominal duration of one frame.
func (o *Options) FrameDuration() time.Duration {
	return time.Duration(float64(time.Second) / o.FrameRate)
}
