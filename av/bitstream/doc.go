// Package bitstream delimits codec byte streams into access units.
//
// Two framings are supported.
//
// # Annex-B
//
// H.264/H.265 elementary streams separate NAL units with start codes
// (00 00 01 or 00 00 00 01). NalUnits scans a complete in-memory stream
// lazily and yields each unit without its start code or zero padding:
//
//	for nal := range bitstream.NalUnits(stream) {
//	    if _, err := decoder.Decode(nal); err != nil {
//	        return err
//	    }
//	}
//
// Yielded units are views into the input; nothing is copied. A stream with
// no start code yields nothing. No NAL semantics are validated.
//
// # Length-Prefixed Frames
//
// Some capture tools store one encoded frame per record: a 4-byte
// little-endian length followed by the payload. ReadFrames reads such a
// stream from any io.Reader, allocating a fresh buffer per frame:
//
//	for frame := range bitstream.ReadFrames(f) {
//	    // frame is owned by the caller
//	}
//
// A short header or short payload ends the sequence and the partial frame
// is dropped. Callers that need to tell a clean end from a truncated tail
// use FrameReader directly: Next returns io.EOF for the former and an error
// wrapping ErrTruncatedFrame for the latter, and Err reports the cause
// after ranging over Frames.
//
// FrameWriter and AppendAnnexB produce the two formats.
package bitstream
