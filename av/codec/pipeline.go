package codec

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/opd-ai/yuvstream/av/bitstream"
	"github.com/opd-ai/yuvstream/av/yuv"
	"github.com/sirupsen/logrus"
)

// Stats holds pipeline counters.
type Stats struct {
	FramesEncoded uint64
	FramesDecoded uint64
	UnitsDecoded  uint64
	BytesEncoded  uint64
	BytesDecoded  uint64
}

// Pipeline connects pixel sources and byte streams to a codec engine.
//
// Handles the full flow in both directions:
//
//	Encoding: RGBSource → YUV420 conversion → Effects → Scaling → Encoder
//	Decoding: Annex-B or length-prefixed bytes → delimiting → Decoder → YUV420
//
// Engine failures are returned as *EngineError wrapping the engine's error.
// A Pipeline is safe for concurrent use. Encode calls are serialized with
// each other, decode calls with each other, and Stats never blocks.
type Pipeline struct {
	encMu   sync.Mutex
	decMu   sync.Mutex
	id      uuid.UUID
	encoder Encoder
	decoder Decoder
	options Options
	scratch *yuv.Buffer
	scaler  *yuv.Scaler
	effects *yuv.EffectChain
	stats   counters
}

type counters struct {
	framesEncoded atomic.Uint64
	framesDecoded atomic.Uint64
	unitsDecoded  atomic.Uint64
	bytesEncoded  atomic.Uint64
	bytesDecoded  atomic.Uint64
}

// NewPipeline creates a pipeline. Either engine may be nil for a one-way
// pipeline; opts may be nil for defaults.
func NewPipeline(encoder Encoder, decoder Decoder, opts *Options) (*Pipeline, error) {
	if opts == nil {
		opts = NewOptions()
	}
	if err := opts.Validate(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "NewPipeline",
			"error":    err.Error(),
		}).Error("Invalid pipeline options")
		return nil, err
	}
	if opts.LogLevel != "" {
		level, _ := logrus.ParseLevel(opts.LogLevel)
		logrus.SetLevel(level)
	}

	p := &Pipeline{
		id:      uuid.New(),
		encoder: encoder,
		decoder: decoder,
		options: *opts,
		scaler:  yuv.NewScaler(),
		effects: yuv.NewEffectChain(),
	}

	p.log("NewPipeline").WithFields(logrus.Fields{
		"width":       opts.Width,
		"height":      opts.Height,
		"frame_rate":  opts.FrameRate,
		"has_encoder": encoder != nil,
		"has_decoder": decoder != nil,
	}).Info("Pipeline created")

	return p, nil
}

func (p *Pipeline) log(function string) *logrus.Entry {
	return logrus.WithFields(logrus.Fields{
		"function": "Pipeline." + function,
		"pipeline": p.id.String(),
	})
}

// ID returns the pipeline's identifier, included in every log entry.
func (p *Pipeline) ID() uuid.UUID {
	return p.id
}

// Options returns a copy of the pipeline options.
func (p *Pipeline) Options() Options {
	return p.options
}

// Effects returns the effect chain applied before encoding. The chain may
// be modified while the pipeline is encoding.
func (p *Pipeline) Effects() *yuv.EffectChain {
	return p.effects
}

// EncodeRGB converts src to YUV420 in a reused buffer and encodes it.
func (p *Pipeline) EncodeRGB(src yuv.RGBSource) ([]byte, error) {
	p.encMu.Lock()
	defer p.encMu.Unlock()

	if p.encoder == nil {
		return nil, ErrNoEncoder
	}

	width, height := src.Dimensions()
	if p.scratch == nil || p.scratch.Width() != width || p.scratch.Height() != height {
		buf, err := yuv.NewBuffer(width, height)
		if err != nil {
			return nil, err
		}
		p.scratch = buf
	}
	if err := p.scratch.FillRGB(src); err != nil {
		return nil, err
	}

	return p.encodeOwned(p.scratch)
}

// EncodeYUV encodes an existing frame. The frame is not modified; it is
// copied first when effects are configured.
func (p *Pipeline) EncodeYUV(frame yuv.Source) ([]byte, error) {
	p.encMu.Lock()
	defer p.encMu.Unlock()

	if p.encoder == nil {
		return nil, ErrNoEncoder
	}
	if frame == nil {
		return nil, fmt.Errorf("%w: nil frame", ErrInvalidFrameData)
	}

	if p.effects.Len() == 0 {
		return p.encodeScaled(frame)
	}

	owned, err := yuv.FromPlanes(frame.Width(), frame.Height(), frame.Y(), frame.U(), frame.V(),
		frame.YStride(), frame.UStride(), frame.VStride())
	if err != nil {
		return nil, err
	}
	return p.encodeOwned(owned)
}

// encodeOwned applies effects in place to a buffer the pipeline owns.
func (p *Pipeline) encodeOwned(frame *yuv.Buffer) ([]byte, error) {
	if p.effects.Len() > 0 {
		if err := p.effects.Apply(frame); err != nil {
			return nil, fmt.Errorf("effects processing failed: %w", err)
		}
	}
	return p.encodeScaled(frame)
}

func (p *Pipeline) encodeScaled(frame yuv.Source) ([]byte, error) {
	if p.options.Width != 0 && p.scaler.IsScalingRequired(frame.Width(), frame.Height(), p.options.Width, p.options.Height) {
		scaled, err := p.scaler.Scale(frame, p.options.Width, p.options.Height)
		if err != nil {
			return nil, fmt.Errorf("scaling failed: %w", err)
		}
		frame = scaled
	}

	encoded, err := p.encoder.Encode(frame)
	if err != nil {
		index := p.stats.framesEncoded.Load()
		p.log("Encode").WithFields(logrus.Fields{
			"frame": index,
			"error": err.Error(),
		}).Error("Encoder rejected frame")
		return nil, &EngineError{Op: "encode", Unit: int(index), Err: err}
	}

	count := p.stats.framesEncoded.Add(1)
	p.stats.bytesEncoded.Add(uint64(len(encoded)))
	p.log("Encode").WithFields(logrus.Fields{
		"frame":       count,
		"width":       frame.Width(),
		"height":      frame.Height(),
		"output_size": len(encoded),
	}).Debug("Frame encoded")

	return encoded, nil
}

// DecodeAnnexB splits stream into NAL units, feeds each to the decoder and
// calls fn for every picture produced, including pictures drained from a
// Flusher at the end. A Source passed to fn is only valid during the call.
// Returning an error from fn stops decoding and returns that error.
//
// fn may call Stats, EncodeRGB and EncodeYUV on the same pipeline. It must
// not call DecodeAnnexB, DecodeFramed or Close on it.
func (p *Pipeline) DecodeAnnexB(stream []byte, fn func(yuv.Source) error) error {
	p.decMu.Lock()
	defer p.decMu.Unlock()

	if p.decoder == nil {
		return ErrNoDecoder
	}

	unit := 0
	for nal := range bitstream.NalUnits(stream) {
		p.log("DecodeAnnexB").WithFields(logrus.Fields{
			"unit":     unit,
			"nal_type": bitstream.NalUnitType(nal),
			"size":     len(nal),
		}).Debug("Decoding NAL unit")

		if err := p.decodeOne(nal, unit, fn); err != nil {
			return err
		}
		unit++
	}
	return p.flush(fn)
}

// DecodeFramed reads length-prefixed frames from r and decodes each one.
// A truncated trailing frame is dropped unless StrictFraming is set, in
// which case the truncation error is returned after the complete frames
// have been decoded. Oversized frames and read errors are always returned.
// fn follows the same rules as for DecodeAnnexB.
func (p *Pipeline) DecodeFramed(r io.Reader, fn func(yuv.Source) error) error {
	p.decMu.Lock()
	defer p.decMu.Unlock()

	if p.decoder == nil {
		return ErrNoDecoder
	}

	reader := bitstream.NewFrameReaderWithOptions(r, bitstream.FrameReaderOptions{
		MaxFrameSize: p.options.MaxFrameSize,
	})
	unit := 0
	for frame := range reader.Frames() {
		if err := p.decodeOne(frame, unit, fn); err != nil {
			return err
		}
		unit++
	}

	if err := reader.Err(); err != nil {
		if p.options.StrictFraming || !errors.Is(err, bitstream.ErrTruncatedFrame) {
			return fmt.Errorf("framed stream: %w", err)
		}
	}
	return p.flush(fn)
}

func (p *Pipeline) decodeOne(data []byte, unit int, fn func(yuv.Source) error) error {
	p.stats.unitsDecoded.Add(1)
	p.stats.bytesDecoded.Add(uint64(len(data)))

	picture, err := p.decoder.Decode(data)
	if err != nil {
		p.log("Decode").WithFields(logrus.Fields{
			"unit":  unit,
			"size":  len(data),
			"error": err.Error(),
		}).Error("Decoder rejected unit")
		return &EngineError{Op: "decode", Unit: unit, Err: err}
	}
	if picture == nil {
		return nil
	}
	p.stats.framesDecoded.Add(1)
	return fn(picture)
}

func (p *Pipeline) flush(fn func(yuv.Source) error) error {
	flusher, ok := p.decoder.(Flusher)
	if !ok {
		return nil
	}
	pictures, err := flusher.Flush()
	if err != nil {
		return &EngineError{Op: "flush", Unit: -1, Err: err}
	}
	for _, picture := range pictures {
		p.stats.framesDecoded.Add(1)
		if err := fn(picture); err != nil {
			return err
		}
	}
	return nil
}

// Stats returns a snapshot of the pipeline counters. Each counter is read
// atomically; the snapshot as a whole is not.
func (p *Pipeline) Stats() Stats {
	return Stats{
		FramesEncoded: p.stats.framesEncoded.Load(),
		FramesDecoded: p.stats.framesDecoded.Load(),
		UnitsDecoded:  p.stats.unitsDecoded.Load(),
		BytesEncoded:  p.stats.bytesEncoded.Load(),
		BytesDecoded:  p.stats.bytesDecoded.Load(),
	}
}

// Close closes both engines and reports every failure.
func (p *Pipeline) Close() error {
	// Same order as a decode callback that encodes.
	p.decMu.Lock()
	defer p.decMu.Unlock()
	p.encMu.Lock()
	defer p.encMu.Unlock()

	var errs []error
	if p.encoder != nil {
		if err := p.encoder.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close encoder: %w", err))
		}
	}
	if p.decoder != nil {
		if err := p.decoder.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close decoder: %w", err))
		}
	}

	p.log("Close").WithFields(logrus.Fields{
		"frames_encoded": p.stats.framesEncoded.Load(),
		"frames_decoded": p.stats.framesDecoded.Load(),
	}).Info("Pipeline closed")

	return errors.Join(errs...)
}
