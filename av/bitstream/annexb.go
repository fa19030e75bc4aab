package bitstream

import (
	"iter"
	"slices"
)

// startCode is the 4-byte Annex-B delimiter written by AppendAnnexB.
var startCode = []byte{0x00, 0x00, 0x00, 0x01}

// Splitter walks an Annex-B byte stream one NAL unit at a time.
//
// Units are returned as views into the input (start codes and zero padding
// stripped), with capacity clipped so appends never write into the input.
// A Splitter is forward-only; create a new one to start over.
type Splitter struct {
	data    []byte
	pos     int
	started bool
	done    bool
}

// NewSplitter creates a splitter over data. No bytes are copied.
func NewSplitter(data []byte) *Splitter {
	return &Splitter{data: data}
}

// Next returns the next NAL unit and true, or nil and false once the stream
// is exhausted. Input without any start code produces no units. Bytes after
// the final start code are returned as the last unit, up to end of input.
func (s *Splitter) Next() ([]byte, bool) {
	if s.done {
		return nil, false
	}
	if !s.started {
		s.started = true
		first := findStartCode(s.data, 0)
		if first < 0 {
			s.done = true
			return nil, false
		}
		s.pos = first + 3
	}

	start := s.pos
	next := findStartCode(s.data, start)
	if next < 0 {
		s.done = true
		end := len(s.data)
		return s.data[start:end:end], true
	}

	// Zeros right before 00 00 01 belong to the next start code
	// (4-byte form or trailing_zero_8bits padding).
	end := next
	for end > start && s.data[end-1] == 0x00 {
		end--
	}
	s.pos = next + 3
	return s.data[start:end:end], true
}

// findStartCode returns the index of the first 00 00 01 at or after from,
// or -1 if there is none.
func findStartCode(data []byte, from int) int {
	for i := from; i+2 < len(data); {
		switch {
		case data[i+2] > 0x01:
			// No start code can begin at i, i+1 or i+2.
			i += 3
		case data[i+2] == 0x01 && data[i+1] == 0x00 && data[i] == 0x00:
			return i
		default:
			i++
		}
	}
	return -1
}

// NalUnits returns a lazy sequence of the NAL units in input.
//
// Each range over the sequence rescans input from the beginning, so the
// sequence can be iterated any number of times. Yielded slices alias input.
func NalUnits(input []byte) iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		s := NewSplitter(input)
		for {
			nal, ok := s.Next()
			if !ok || !yield(nal) {
				return
			}
		}
	}
}

// SplitNalUnits collects every NAL unit of input. The slices alias input.
func SplitNalUnits(input []byte) [][]byte {
	return slices.Collect(NalUnits(input))
}

// NalUnitType returns the H.264 nal_unit_type (low five bits of the header
// byte), or 0 for an empty unit. It is informational only.
func NalUnitType(nal []byte) uint8 {
	if len(nal) == 0 {
		return 0
	}
	return nal[0] & 0x1F
}

// AppendAnnexB appends each unit to dst prefixed with a 4-byte start code.
func AppendAnnexB(dst []byte, nals ...[]byte) []byte {
	for _, nal := range nals {
		dst = append(dst, startCode...)
		dst = append(dst, nal...)
	}
	return dst
}
