package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/opd-ai/yuvstream/av/bitstream"
	"github.com/opd-ai/yuvstream/av/yuv"
	"github.com/opd-ai/yuvstream/limits"
	"github.com/sirupsen/logrus"
)

const (
	// RawNalType is the nal_unit_type carrying raw frames. Type 23 is
	// reserved in H.264, so real decoders skip it, and it stays below the
	// RTP aggregation types so it packetizes as a single NAL unit.
	RawNalType = 23

	// rawNalHeader is nal_ref_idc 3 with RawNalType.
	rawNalHeader = 0x60 | RawNalType

	// rawTrailer ends every raw payload, like rbsp_trailing_bits, so the
	// escaped unit never ends in a zero byte.
	rawTrailer = 0x80

	rawDimensionHeader = 4
)

// RawEncoder is a reference codec engine that stores frames uncompressed.
//
// Each frame becomes one Annex-B NAL unit of type RawNalType whose payload
// is [width:2 LE][height:2 LE][Y][U][V][0x80], escaped with emulation
// prevention bytes. It lets the conversion and delimiting layers run end to
// end without an external codec.
type RawEncoder struct {
	width  int
	height int
	frames int
	closed bool
}

// NewRawEncoder creates a raw encoder. Width and height of zero accept
// frames of any size; otherwise frames must match exactly.
func NewRawEncoder(width, height int) *RawEncoder {
	logrus.WithFields(logrus.Fields{
		"function": "NewRawEncoder",
		"width":    width,
		"height":   height,
	}).Info("Creating raw encoder")

	return &RawEncoder{width: width, height: height}
}

// Encode serialises frame as a single Annex-B access unit.
func (e *RawEncoder) Encode(frame yuv.Source) ([]byte, error) {
	if e.closed {
		return nil, ErrEncoderClosed
	}
	if frame == nil {
		return nil, fmt.Errorf("%w: nil frame", ErrInvalidFrameData)
	}
	if e.width != 0 && (frame.Width() != e.width || frame.Height() != e.height) {
		logrus.WithFields(logrus.Fields{
			"function":        "RawEncoder.Encode",
			"expected_width":  e.width,
			"expected_height": e.height,
			"actual_width":    frame.Width(),
			"actual_height":   frame.Height(),
		}).Error("Frame dimension validation failed")
		return nil, fmt.Errorf("%w: expected %dx%d, got %dx%d", ErrFrameSizeMismatch,
			e.width, e.height, frame.Width(), frame.Height())
	}

	tight, ok := frame.(*yuv.Buffer)
	if !ok {
		var err error
		tight, err = yuv.FromPlanes(frame.Width(), frame.Height(), frame.Y(), frame.U(), frame.V(),
			frame.YStride(), frame.UStride(), frame.VStride())
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidFrameData, err)
		}
	}

	planes := tight.Bytes()
	rbsp := make([]byte, rawDimensionHeader, rawDimensionHeader+len(planes)+1)
	binary.LittleEndian.PutUint16(rbsp[0:2], uint16(tight.Width()))
	binary.LittleEndian.PutUint16(rbsp[2:4], uint16(tight.Height()))
	rbsp = append(rbsp, planes...)
	rbsp = append(rbsp, rawTrailer)

	nal := bitstream.EscapeRBSP([]byte{rawNalHeader}, rbsp)
	out := bitstream.AppendAnnexB(make([]byte, 0, len(nal)+4), nal)

	e.frames++
	logrus.WithFields(logrus.Fields{
		"function":    "RawEncoder.Encode",
		"frame":       e.frames,
		"width":       tight.Width(),
		"height":      tight.Height(),
		"output_size": len(out),
	}).Debug("Encoded raw frame")

	return out, nil
}

// Close marks the encoder closed.
func (e *RawEncoder) Close() error {
	logrus.WithFields(logrus.Fields{
		"function": "RawEncoder.Close",
		"frames":   e.frames,
	}).Info("Closing raw encoder")
	e.closed = true
	return nil
}

// RawDecoder decodes units produced by RawEncoder.
type RawDecoder struct {
	frames int
	closed bool
}

// NewRawDecoder creates a raw decoder.
func NewRawDecoder() *RawDecoder {
	logrus.WithFields(logrus.Fields{
		"function": "NewRawDecoder",
	}).Info("Creating raw decoder")
	return &RawDecoder{}
}

// Decode accepts either a bare NAL unit or a byte range that still carries
// start codes. Units of other types are skipped; when no raw unit is found
// it returns (nil, nil). With several raw units the last picture wins.
func (d *RawDecoder) Decode(data []byte) (yuv.Source, error) {
	if d.closed {
		return nil, ErrDecoderClosed
	}

	units := [][]byte{data}
	if hasStartCodePrefix(data) {
		units = bitstream.SplitNalUnits(data)
	}

	var picture *yuv.Buffer
	for _, nal := range units {
		if bitstream.NalUnitType(nal) != RawNalType {
			continue
		}
		frame, err := decodeRawUnit(nal)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "RawDecoder.Decode",
				"size":     len(nal),
				"error":    err.Error(),
			}).Error("Raw unit rejected")
			return nil, err
		}
		picture = frame
	}

	if picture == nil {
		return nil, nil
	}
	d.frames++
	return picture, nil
}

// Close marks the decoder closed.
func (d *RawDecoder) Close() error {
	logrus.WithFields(logrus.Fields{
		"function": "RawDecoder.Close",
		"frames":   d.frames,
	}).Info("Closing raw decoder")
	d.closed = true
	return nil
}

func decodeRawUnit(nal []byte) (*yuv.Buffer, error) {
	rbsp := bitstream.UnescapeRBSP(nal[1:])
	if len(rbsp) < rawDimensionHeader+1 || rbsp[len(rbsp)-1] != rawTrailer {
		return nil, fmt.Errorf("%w: missing header or trailer (%d bytes)", ErrInvalidFrameData, len(rbsp))
	}
	rbsp = rbsp[:len(rbsp)-1]

	width := int(binary.LittleEndian.Uint16(rbsp[0:2]))
	height := int(binary.LittleEndian.Uint16(rbsp[2:4]))
	if err := limits.ValidateDimensions(width, height); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFrameData, err)
	}

	planes := rbsp[rawDimensionHeader:]
	if want := limits.YUV420Size(width, height); len(planes) != want {
		return nil, fmt.Errorf("%w: expected %d plane bytes for %dx%d, got %d",
			ErrInvalidFrameData, want, width, height, len(planes))
	}

	ySize := limits.LumaSize(width, height)
	cSize := limits.ChromaSize(width, height)
	return yuv.FromPlanes(width, height,
		planes[:ySize], planes[ySize:ySize+cSize], planes[ySize+cSize:],
		width, width/2, width/2)
}

// hasStartCodePrefix reports whether data begins with zero or more zero
// bytes followed by 00 00 01.
func hasStartCodePrefix(data []byte) bool {
	zeros := 0
	for _, b := range data {
		switch {
		case b == 0x00:
			zeros++
		case b == 0x01 && zeros >= 2:
			return true
		default:
			return false
		}
	}
	return false
}
