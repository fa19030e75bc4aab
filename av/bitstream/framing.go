package bitstream

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"
	"math"

	"github.com/opd-ai/yuvstream/limits"
	"github.com/sirupsen/logrus"
)

const (
	// HeaderSize is the size of the little-endian length prefix.
	HeaderSize = 4

	// readChunk bounds the up-front allocation for a declared payload so an
	// arbitrary header cannot reserve memory for bytes that never arrive.
	readChunk = 1 << 20
)

// FrameReaderOptions configures a FrameReader.
type FrameReaderOptions struct {
	// MaxFrameSize rejects declared lengths above this value.
	// Zero or less accepts any 32-bit length.
	MaxFrameSize int
}

// FrameReader reads frames written as a 4-byte little-endian length
// followed by that many payload bytes.
type FrameReader struct {
	r       io.Reader
	maxSize int
	header  [HeaderSize]byte
	frames  int
	err     error
}

// NewFrameReader creates a reader with no frame size limit.
func NewFrameReader(r io.Reader) *FrameReader {
	return NewFrameReaderWithOptions(r, FrameReaderOptions{})
}

// NewFrameReaderWithOptions creates a reader with the given options.
func NewFrameReaderWithOptions(r io.Reader, opts FrameReaderOptions) *FrameReader {
	return &FrameReader{r: r, maxSize: opts.MaxFrameSize}
}

// Next reads one frame into a freshly allocated buffer.
//
// It returns io.EOF when the stream ends cleanly on a frame boundary, and an
// error wrapping ErrTruncatedFrame (and io.ErrUnexpectedEOF) when the stream
// ends inside a header or payload. Declared lengths above the configured
// maximum return limits.ErrFrameTooLarge. Other read errors are returned
// as-is.
func (fr *FrameReader) Next() ([]byte, error) {
	n, err := io.ReadFull(fr.r, fr.header[:])
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: header has %d of %d bytes: %w",
				ErrTruncatedFrame, n, HeaderSize, io.ErrUnexpectedEOF)
		}
		return nil, err
	}

	size := binary.LittleEndian.Uint32(fr.header[:])
	if err := limits.ValidateFrameSize(int(min(uint64(size), uint64(math.MaxInt))), fr.maxSize); err != nil {
		return nil, fmt.Errorf("frame %d: %w", fr.frames, err)
	}

	frame, err := readPayload(fr.r, size)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: payload of frame %d (%d bytes declared): %w",
				ErrTruncatedFrame, fr.frames, size, io.ErrUnexpectedEOF)
		}
		return nil, err
	}

	fr.frames++
	logrus.WithFields(logrus.Fields{
		"function": "FrameReader.Next",
		"frame":    fr.frames,
		"size":     size,
	}).Debug("Read length-prefixed frame")

	return frame, nil
}

func readPayload(r io.Reader, size uint32) ([]byte, error) {
	if size <= readChunk {
		buf := make([]byte, size)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		return buf, nil
	}

	var buf bytes.Buffer
	buf.Grow(readChunk)
	if _, err := io.CopyN(&buf, r, int64(size)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Frames returns a lazy sequence over the remaining frames.
//
// The sequence ends at the first error of any kind, including a truncated
// trailing frame, which is dropped without being yielded. Err reports why
// iteration stopped. The sequence consumes the underlying reader and cannot
// be restarted.
func (fr *FrameReader) Frames() iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		for {
			frame, err := fr.Next()
			if err != nil {
				if !errors.Is(err, io.EOF) {
					fr.err = err
					logrus.WithFields(logrus.Fields{
						"function": "FrameReader.Frames",
						"frames":   fr.frames,
						"error":    err.Error(),
					}).Warn("Length-prefixed stream ended early; trailing data dropped")
				}
				return
			}
			if !yield(frame) {
				return
			}
		}
	}
}

// Err returns the error that ended Frames, or nil after a clean end of stream.
func (fr *FrameReader) Err() error {
	return fr.err
}

// Count returns the number of frames read so far.
func (fr *FrameReader) Count() int {
	return fr.frames
}

// ReadFrames returns a lazy sequence of length-prefixed frames from r.
// Short headers and short payloads end the sequence silently.
func ReadFrames(r io.Reader) iter.Seq[[]byte] {
	return NewFrameReader(r).Frames()
}

// FrameWriter writes frames with a 4-byte little-endian length prefix.
type FrameWriter struct {
	w      io.Writer
	header [HeaderSize]byte
}

// NewFrameWriter creates a writer over w.
func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: w}
}

// WriteFrame writes the length prefix followed by frame.
func (fw *FrameWriter) WriteFrame(frame []byte) error {
	if uint64(len(frame)) > math.MaxUint32 {
		return fmt.Errorf("%w: size %d exceeds 32-bit length prefix", limits.ErrFrameTooLarge, len(frame))
	}
	binary.LittleEndian.PutUint32(fw.header[:], uint32(len(frame)))
	if _, err := fw.w.Write(fw.header[:]); err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}
	if _, err := fw.w.Write(frame); err != nil {
		return fmt.Errorf("write frame payload: %w", err)
	}
	return nil
}

// WriteFrame writes a single length-prefixed frame to w.
func WriteFrame(w io.Writer, frame []byte) error {
	return NewFrameWriter(w).WriteFrame(frame)
}
