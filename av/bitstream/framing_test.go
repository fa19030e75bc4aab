package bitstream

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"testing/iotest"

	"github.com/opd-ai/yuvstream/limits"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeFrames(t *testing.T, frames ...[]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := NewFrameWriter(&buf)
	for _, f := range frames {
		require.NoError(t, w.WriteFrame(f))
	}
	return buf.Bytes()
}

func collect(r io.Reader) [][]byte {
	var out [][]byte
	for frame := range ReadFrames(r) {
		out = append(out, frame)
	}
	return out
}

func TestReadFrames_RoundTrip(t *testing.T) {
	frames := [][]byte{
		{0x01},
		bytes.Repeat([]byte{0xAB}, 300),
		{},
		{0x00, 0x00, 0x00, 0x01, 0x65},
	}

	stream := encodeFrames(t, frames...)
	got := collect(bytes.NewReader(stream))

	require.Len(t, got, len(frames))
	for i := range frames {
		assert.Equal(t, frames[i], got[i], "frame %d", i)
	}
}

func TestReadFrames_WireFormat(t *testing.T) {
	stream := encodeFrames(t, []byte{0xAA, 0xBB, 0xCC})
	assert.Equal(t, []byte{0x03, 0x00, 0x00, 0x00, 0xAA, 0xBB, 0xCC}, stream)

	stream = []byte{0x02, 0x01, 0x00, 0x00}
	stream = append(stream, bytes.Repeat([]byte{0x11}, 0x0102)...)
	got := collect(bytes.NewReader(stream))
	require.Len(t, got, 1)
	assert.Len(t, got[0], 258)
}

func TestReadFrames_OneByteReader(t *testing.T) {
	frames := [][]byte{{1, 2, 3}, {4, 5}, bytes.Repeat([]byte{6}, 64)}
	stream := encodeFrames(t, frames...)

	got := collect(iotest.OneByteReader(bytes.NewReader(stream)))
	assert.Equal(t, frames, got)
}

func TestReadFrames_TruncationEndsSequence(t *testing.T) {
	complete := encodeFrames(t, []byte{1, 2, 3})

	tests := []struct {
		name   string
		stream []byte
	}{
		{"empty stream", nil},
		{"partial header", append(append([]byte(nil), complete...), 0x05, 0x00)},
		{"header without payload", append(append([]byte(nil), complete...), 0x05, 0x00, 0x00, 0x00)},
		{"short payload", append(append([]byte(nil), complete...), 0x05, 0x00, 0x00, 0x00, 0xAA, 0xBB)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collect(bytes.NewReader(tt.stream))
			if len(tt.stream) == 0 {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, 1, "trailing partial frame must not be yielded")
			assert.Equal(t, []byte{1, 2, 3}, got[0])
		})
	}
}

func TestFrameReader_Next_DistinguishesTruncation(t *testing.T) {
	stream := encodeFrames(t, []byte{9, 9})
	stream = append(stream, 0x10, 0x00, 0x00, 0x00, 0x01)

	fr := NewFrameReader(bytes.NewReader(stream))

	frame, err := fr.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 9}, frame)

	frame, err = fr.Next()
	assert.Nil(t, frame)
	assert.ErrorIs(t, err, ErrTruncatedFrame)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, 1, fr.Count())
}

func TestFrameReader_Next_CleanEOF(t *testing.T) {
	fr := NewFrameReader(bytes.NewReader(encodeFrames(t, []byte{1})))

	_, err := fr.Next()
	require.NoError(t, err)

	_, err = fr.Next()
	assert.Equal(t, io.EOF, err)
}

func TestFrameReader_Next_TruncatedHeader(t *testing.T) {
	fr := NewFrameReader(bytes.NewReader([]byte{0x01, 0x00}))

	_, err := fr.Next()
	assert.ErrorIs(t, err, ErrTruncatedFrame)
}

func TestFrameReader_Frames_ErrReportsCause(t *testing.T) {
	clean := NewFrameReader(bytes.NewReader(encodeFrames(t, []byte{1}, []byte{2})))
	for range clean.Frames() {
	}
	assert.NoError(t, clean.Err())
	assert.Equal(t, 2, clean.Count())

	truncated := NewFrameReader(bytes.NewReader([]byte{0x04, 0x00, 0x00, 0x00, 0x01}))
	for range truncated.Frames() {
	}
	assert.ErrorIs(t, truncated.Err(), ErrTruncatedFrame)

	boom := errors.New("connection reset")
	failing := NewFrameReader(iotest.ErrReader(boom))
	for range failing.Frames() {
	}
	assert.ErrorIs(t, failing.Err(), boom)
}

func TestFrameReader_MaxFrameSize(t *testing.T) {
	stream := encodeFrames(t, []byte{1, 2}, bytes.Repeat([]byte{3}, 100), []byte{4})
	fr := NewFrameReaderWithOptions(bytes.NewReader(stream), FrameReaderOptions{MaxFrameSize: 10})

	var got [][]byte
	for frame := range fr.Frames() {
		got = append(got, frame)
	}

	assert.Equal(t, [][]byte{{1, 2}}, got)
	assert.ErrorIs(t, fr.Err(), limits.ErrFrameTooLarge)
	assert.EqualError(t, fr.Err(), "frame 1: frame too large: size 100 exceeds limit 10")
}

func TestFrameReader_MaxFrameSizeBoundary(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		maxSize int
		wantErr bool
	}{
		{"at limit", 10, 10, false},
		{"over limit", 11, 10, true},
		{"disabled", 11, 0, false},
		{"full uint32 declared", -1, 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stream []byte
			if tt.size < 0 {
				stream = []byte{0xFF, 0xFF, 0xFF, 0xFF}
			} else {
				stream = encodeFrames(t, bytes.Repeat([]byte{9}, tt.size))
			}
			fr := NewFrameReaderWithOptions(bytes.NewReader(stream), FrameReaderOptions{MaxFrameSize: tt.maxSize})

			frame, err := fr.Next()
			if tt.wantErr {
				assert.ErrorIs(t, err, limits.ErrFrameTooLarge)
				assert.Nil(t, frame)
				return
			}
			require.NoError(t, err)
			assert.Len(t, frame, tt.size)
		})
	}
}

func TestFrameReader_HugeDeclaredLengthDoesNotPreallocate(t *testing.T) {
	// 0xFFFFFFFF bytes declared, 16 present: must end without a 4 GiB allocation.
	stream := append([]byte{0xFF, 0xFF, 0xFF, 0xFF}, bytes.Repeat([]byte{7}, 16)...)
	fr := NewFrameReader(bytes.NewReader(stream))

	_, err := fr.Next()
	assert.ErrorIs(t, err, ErrTruncatedFrame)
}

func TestReadFrames_LargeFrameAcrossChunks(t *testing.T) {
	large := make([]byte, readChunk*2+123)
	for i := range large {
		large[i] = byte(i * 7)
	}
	stream := encodeFrames(t, large, []byte{1})

	got := collect(bytes.NewReader(stream))
	require.Len(t, got, 2)
	assert.True(t, bytes.Equal(large, got[0]))
	assert.Equal(t, []byte{1}, got[1])
}

func TestReadFrames_FramesAreIndependent(t *testing.T) {
	stream := encodeFrames(t, []byte{1, 1}, []byte{2, 2})
	got := collect(bytes.NewReader(stream))
	require.Len(t, got, 2)

	got[0][0] = 0xFF
	assert.Equal(t, []byte{2, 2}, got[1])
	assert.Equal(t, byte(1), stream[4], "frames are copies, not views")
}

type failingWriter struct{ after int }

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.after <= 0 {
		return 0, errors.New("disk full")
	}
	w.after--
	return len(p), nil
}

func TestFrameWriter_Errors(t *testing.T) {
	err := WriteFrame(&failingWriter{after: 0}, []byte{1})
	assert.ErrorContains(t, err, "write frame header")

	err = WriteFrame(&failingWriter{after: 1}, []byte{1})
	assert.ErrorContains(t, err, "write frame payload")
}
