package codec

import "github.com/opd-ai/yuvstream/av/yuv"

// Encoder turns planar YUV420 frames into encoded bytes.
//
// Implementations wrap an external codec. The frame is only borrowed for
// the duration of the call.
type Encoder interface {
	// Encode compresses one frame into an encoded access unit.
	Encode(frame yuv.Source) ([]byte, error)
	// Close releases encoder resources.
	Close() error
}

// Decoder turns encoded bytes back into planar YUV420 frames.
type Decoder interface {
	// Decode consumes one NAL unit or an arbitrary byte range. It returns
	// (nil, nil) when the input did not complete a picture. The returned
	// Source may be reused by the decoder on the next call.
	Decode(data []byte) (yuv.Source, error)
	// Close releases decoder resources.
	Close() error
}

// Flusher is implemented by decoders that buffer pictures internally,
// for example to reorder B-frames. Flush drains every pending picture.
type Flusher interface {
	Flush() ([]yuv.Source, error)
}
