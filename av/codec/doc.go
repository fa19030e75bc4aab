// Package codec defines the boundary between frames and an external video
// codec engine.
//
// Encoder and Decoder are the two interfaces an engine implements. The
// package never compresses anything itself; RawEncoder and RawDecoder are a
// reference engine that stores frames uncompressed inside a reserved NAL
// unit type, so the rest of the stack can be exercised without a real
// codec:
//
//	enc := codec.NewRawEncoder(0, 0)
//	dec := codec.NewRawDecoder()
//	p, err := codec.NewPipeline(enc, dec, nil)
//	if err != nil {
//	    return err
//	}
//	defer p.Close()
//
//	stream, err := p.EncodeRGB(src)
//	err = p.DecodeAnnexB(stream, func(frame yuv.Source) error {
//	    return yuv.WriteRGB8(frame, out)
//	})
//
// Engine failures surface as *EngineError; errors.Is and errors.As reach the
// engine's original error through it.
package codec
