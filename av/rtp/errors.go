package rtp

import "errors"

// Packetization errors.
var (
	// ErrInvalidMTU indicates an MTU too small to carry an FU-A fragment.
	ErrInvalidMTU = errors.New("invalid RTP MTU")

	// ErrInvalidClockRate indicates a zero RTP clock rate.
	ErrInvalidClockRate = errors.New("clock rate cannot be zero")

	// ErrEmptyAccessUnit indicates an access unit with no NAL units.
	ErrEmptyAccessUnit = errors.New("access unit contains no NAL units")
)

// Depacketization errors.
var (
	// ErrUnexpectedSSRC indicates a packet from a different stream than the
	// one the depacketizer locked on to.
	ErrUnexpectedSSRC = errors.New("unexpected SSRC")

	// ErrEmptyPacket indicates an empty packet or payload.
	ErrEmptyPacket = errors.New("RTP packet cannot be empty")
)

// Sample delivery errors.
var (
	// ErrQueueFull indicates the async writer dropped a sample.
	ErrQueueFull = errors.New("sample queue full")

	// ErrWriterClosed indicates a write after Close.
	ErrWriterClosed = errors.New("sample writer is closed")
)
