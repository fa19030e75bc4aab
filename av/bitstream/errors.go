package bitstream

import "errors"

// Framing errors.
var (
	// ErrTruncatedFrame indicates the stream ended inside a length header or
	// before the declared payload was complete. The partial data is discarded.
	ErrTruncatedFrame = errors.New("truncated length-prefixed frame")
)
