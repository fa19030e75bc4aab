package rtp

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/opd-ai/yuvstream/av/bitstream"
	"github.com/pion/rtp"
	"github.com/pion/rtp/codecs"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultMTU leaves room for IP, UDP and SRTP overhead on a 1500 byte link.
	DefaultMTU = 1200

	// DefaultPayloadType is the dynamic payload type commonly negotiated for
	// H.264 constrained baseline.
	DefaultPayloadType = 102

	// VideoClockRate is the RTP clock rate for video (RFC 6184).
	VideoClockRate = 90000

	// minMTU is the RTP header plus the FU indicator and header plus one
	// byte of fragment.
	minMTU = 12 + 2 + 1
)

// PacketizerOptions configures an H264Packetizer.
type PacketizerOptions struct {
	// MTU is the maximum size of a marshalled RTP packet.
	MTU uint16
	// PayloadType is the RTP payload type.
	PayloadType uint8
	// SSRC identifies the stream. Zero picks a random SSRC.
	SSRC uint32
	// ClockRate is the RTP timestamp rate in Hz.
	ClockRate uint32
}

// DefaultPacketizerOptions returns options for a 90 kHz H.264 stream.
func DefaultPacketizerOptions() PacketizerOptions {
	return PacketizerOptions{
		MTU:         DefaultMTU,
		PayloadType: DefaultPayloadType,
		ClockRate:   VideoClockRate,
	}
}

// PacketWriter accepts RTP packets, for example a
// webrtc.TrackLocalStaticRTP.
type PacketWriter interface {
	WriteRTP(packet *rtp.Packet) error
}

// H264Packetizer turns access units into RTP packets per RFC 6184.
//
// NAL units that fit the MTU are sent as single NAL unit packets, larger
// ones as FU-A fragments, and SPS/PPS pairs are aggregated into STAP-A.
// Access unit delimiters and filler data are not transmitted. The last
// packet of every access unit carries the marker bit.
type H264Packetizer struct {
	mu          sync.Mutex
	packetizer  rtp.Packetizer
	opts        PacketizerOptions
	accessUnits uint64
	packets     uint64
}

// NewH264Packetizer creates a packetizer with a random initial sequence
// number.
func NewH264Packetizer(opts PacketizerOptions) (*H264Packetizer, error) {
	logrus.WithFields(logrus.Fields{
		"function":     "NewH264Packetizer",
		"mtu":          opts.MTU,
		"payload_type": opts.PayloadType,
		"clock_rate":   opts.ClockRate,
	}).Info("Creating H.264 packetizer")

	if opts.MTU < minMTU {
		logrus.WithFields(logrus.Fields{
			"function": "NewH264Packetizer",
			"mtu":      opts.MTU,
		}).Error("Invalid MTU")
		return nil, fmt.Errorf("%w: %d is below %d", ErrInvalidMTU, opts.MTU, minMTU)
	}
	if opts.ClockRate == 0 {
		return nil, ErrInvalidClockRate
	}
	if opts.SSRC == 0 {
		ssrc, err := generateSSRC()
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "NewH264Packetizer",
				"error":    err.Error(),
			}).Error("Failed to generate SSRC")
			return nil, fmt.Errorf("failed to generate SSRC: %w", err)
		}
		opts.SSRC = ssrc
	}

	p := &H264Packetizer{
		packetizer: rtp.NewPacketizer(opts.MTU, opts.PayloadType, opts.SSRC,
			&codecs.H264Payloader{}, rtp.NewRandomSequencer(), opts.ClockRate),
		opts: opts,
	}

	logrus.WithFields(logrus.Fields{
		"function": "NewH264Packetizer",
		"ssrc":     opts.SSRC,
	}).Info("H.264 packetizer created successfully")

	return p, nil
}

func generateSSRC() (uint32, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

// SSRC returns the stream's synchronization source.
func (p *H264Packetizer) SSRC() uint32 {
	return p.opts.SSRC
}

// PacketizeAccessUnit packetizes the NAL units of one access unit and
// advances the timestamp by samples clock ticks afterwards.
func (p *H264Packetizer) PacketizeAccessUnit(nals [][]byte, samples uint32) ([]*rtp.Packet, error) {
	if len(nals) == 0 {
		return nil, ErrEmptyAccessUnit
	}
	return p.PacketizeAnnexB(bitstream.AppendAnnexB(nil, nals...), samples)
}

// PacketizeAnnexB packetizes an access unit given as an Annex-B byte range,
// such as the output of an Encoder.
func (p *H264Packetizer) PacketizeAnnexB(accessUnit []byte, samples uint32) ([]*rtp.Packet, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	packets := p.packetizer.Packetize(accessUnit, samples)
	if len(packets) == 0 {
		logrus.WithFields(logrus.Fields{
			"function": "H264Packetizer.PacketizeAnnexB",
			"size":     len(accessUnit),
		}).Warn("Access unit produced no packets")
		return nil, ErrEmptyAccessUnit
	}

	p.accessUnits++
	p.packets += uint64(len(packets))

	logrus.WithFields(logrus.Fields{
		"function":    "H264Packetizer.PacketizeAnnexB",
		"size":        len(accessUnit),
		"packets":     len(packets),
		"timestamp":   packets[0].Timestamp,
		"first_seq":   packets[0].SequenceNumber,
		"access_unit": p.accessUnits,
	}).Debug("Packetized access unit")

	return packets, nil
}

// WriteAccessUnit packetizes accessUnit and writes every packet to w.
func (p *H264Packetizer) WriteAccessUnit(w PacketWriter, accessUnit []byte, samples uint32) error {
	packets, err := p.PacketizeAnnexB(accessUnit, samples)
	if err != nil {
		return err
	}
	for _, packet := range packets {
		if err := w.WriteRTP(packet); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "H264Packetizer.WriteAccessUnit",
				"sequence": packet.SequenceNumber,
				"error":    err.Error(),
			}).Error("Failed to write RTP packet")
			return fmt.Errorf("write RTP packet %d: %w", packet.SequenceNumber, err)
		}
	}
	return nil
}

// Stats returns the number of access units and packets produced.
func (p *H264Packetizer) Stats() (accessUnits, packets uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.accessUnits, p.packets
}

// SamplesForDuration converts a duration to RTP clock ticks, rounded to the
// nearest tick.
func SamplesForDuration(d time.Duration, clockRate uint32) uint32 {
	return uint32(math.Round(d.Seconds() * float64(clockRate)))
}

// H264Depacketizer reassembles access units from H.264 RTP packets.
//
// Packets must arrive in order. The first SSRC seen is locked in; packets
// from other streams are rejected. A sequence gap discards the access unit
// in progress, and a new timestamp before the previous access unit's marker
// discards the incomplete one.
type H264Depacketizer struct {
	mu        sync.Mutex
	h264      *codecs.H264Packet
	pending   []byte
	ssrc      uint32
	hasSSRC   bool
	lastSeq   uint16
	hasSeq    bool
	timestamp uint32
	inUnit    bool
	corrupt   bool
	dropped   uint64
}

// NewH264Depacketizer creates a depacketizer.
func NewH264Depacketizer() *H264Depacketizer {
	logrus.WithFields(logrus.Fields{
		"function": "NewH264Depacketizer",
	}).Info("Creating H.264 depacketizer")
	return &H264Depacketizer{h264: &codecs.H264Packet{}}
}

// PushBytes unmarshals a packet and pushes it.
func (d *H264Depacketizer) PushBytes(data []byte) ([][]byte, error) {
	if len(data) == 0 {
		return nil, ErrEmptyPacket
	}
	packet := &rtp.Packet{}
	if err := packet.Unmarshal(data); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "H264Depacketizer.PushBytes",
			"size":     len(data),
			"error":    err.Error(),
		}).Error("Failed to unmarshal RTP packet")
		return nil, fmt.Errorf("failed to unmarshal RTP packet: %w", err)
	}
	return d.Push(packet)
}

// Push consumes one packet. When the packet carries the marker bit it
// returns the NAL units of the completed access unit, without start codes;
// otherwise, or when the access unit was damaged, it returns nil.
func (d *H264Depacketizer) Push(packet *rtp.Packet) ([][]byte, error) {
	if packet == nil || len(packet.Payload) == 0 {
		return nil, ErrEmptyPacket
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.hasSSRC {
		d.ssrc = packet.SSRC
		d.hasSSRC = true
		logrus.WithFields(logrus.Fields{
			"function": "H264Depacketizer.Push",
			"ssrc":     packet.SSRC,
		}).Info("Accepted new SSRC for stream")
	} else if packet.SSRC != d.ssrc {
		logrus.WithFields(logrus.Fields{
			"function":      "H264Depacketizer.Push",
			"expected_ssrc": d.ssrc,
			"received_ssrc": packet.SSRC,
		}).Warn("Unexpected SSRC in RTP packet")
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrUnexpectedSSRC, d.ssrc, packet.SSRC)
	}

	if d.inUnit && packet.Timestamp != d.timestamp {
		logrus.WithFields(logrus.Fields{
			"function":  "H264Depacketizer.Push",
			"timestamp": d.timestamp,
		}).Warn("Access unit ended without marker; discarding")
		d.abandon()
	}

	if d.hasSeq && packet.SequenceNumber != d.lastSeq+1 {
		logrus.WithFields(logrus.Fields{
			"function":          "H264Depacketizer.Push",
			"expected_sequence": d.lastSeq + 1,
			"received_sequence": packet.SequenceNumber,
		}).Warn("Sequence gap detected; discarding access unit")
		d.pending = nil
		d.h264 = &codecs.H264Packet{}
		d.corrupt = true
	}
	d.lastSeq = packet.SequenceNumber
	d.hasSeq = true
	d.timestamp = packet.Timestamp
	d.inUnit = true

	annexB, err := d.h264.Unmarshal(packet.Payload)
	if err != nil {
		d.pending = nil
		d.h264 = &codecs.H264Packet{}
		d.corrupt = true
		if packet.Marker {
			d.abandon()
		}
		return nil, fmt.Errorf("depacketize sequence %d: %w", packet.SequenceNumber, err)
	}

	if !d.corrupt {
		d.pending = append(d.pending, annexB...)
	}
	if !packet.Marker {
		return nil, nil
	}

	if d.corrupt {
		d.abandon()
		return nil, nil
	}

	nals := bitstream.SplitNalUnits(d.pending)
	d.pending = nil
	d.inUnit = false

	logrus.WithFields(logrus.Fields{
		"function":  "H264Depacketizer.Push",
		"timestamp": packet.Timestamp,
		"nal_units": len(nals),
	}).Debug("Access unit reassembled")

	return nals, nil
}

// abandon drops the access unit in progress, including any half-assembled
// FU-A.
func (d *H264Depacketizer) abandon() {
	d.dropped++
	d.pending = nil
	d.h264 = &codecs.H264Packet{}
	d.inUnit = false
	d.corrupt = false
}

// Dropped returns the number of access units discarded.
func (d *H264Depacketizer) Dropped() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dropped
}
