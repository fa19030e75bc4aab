package codec

import (
	"errors"
	"fmt"
)

// Sentinel errors for codec package operations.
// These errors enable reliable error classification using errors.Is().

// Engine lifecycle errors.
var (
	// ErrEncoderClosed indicates Encode was called after Close.
	ErrEncoderClosed = errors.New("encoder is closed")

	// ErrDecoderClosed indicates Decode was called after Close.
	ErrDecoderClosed = errors.New("decoder is closed")

	// ErrNoEncoder indicates the pipeline was built without an encoder.
	ErrNoEncoder = errors.New("pipeline has no encoder")

	// ErrNoDecoder indicates the pipeline was built without a decoder.
	ErrNoDecoder = errors.New("pipeline has no decoder")
)

// Data errors.
var (
	// ErrInvalidFrameData indicates a payload the decoder cannot parse.
	ErrInvalidFrameData = errors.New("invalid frame data")

	// ErrFrameSizeMismatch indicates a frame does not match the encoder's
	// configured dimensions.
	ErrFrameSizeMismatch = errors.New("frame size mismatch")

	// ErrInvalidOptions indicates an Options value failed validation.
	ErrInvalidOptions = errors.New("invalid pipeline options")
)

// EngineError carries a failure reported by the codec engine. The engine's
// own error is preserved unmodified and reachable through errors.Is/As.
type EngineError struct {
	Op   string // "encode" or "decode"
	Unit int    // index of the frame or NAL unit being processed
	Err  error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("codec engine %s failed at unit %d: %v", e.Op, e.Unit, e.Err)
}

// Unwrap returns the engine's error.
func (e *EngineError) Unwrap() error {
	return e.Err
}
