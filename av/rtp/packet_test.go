package rtp

import (
	"bytes"
	"testing"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/opd-ai/yuvstream/av/codec"
	"github.com/opd-ai/yuvstream/av/yuv"
	"github.com/pion/rtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testSPS = []byte{0x67, 0x42, 0xC0, 0x1F, 0xDA, 0x01}
	testPPS = []byte{0x68, 0xCE, 0x3C, 0x80}
	testIDR = []byte{0x65, 0x88, 0x84, 0x21, 0xA0}
)

func newTestPacketizer(t *testing.T, mtu uint16) *H264Packetizer {
	t.Helper()
	opts := DefaultPacketizerOptions()
	opts.MTU = mtu
	opts.SSRC = 0x1234ABCD
	p, err := NewH264Packetizer(opts)
	require.NoError(t, err)
	return p
}

func largeNAL(size int) []byte {
	nal := make([]byte, size)
	nal[0] = 0x65
	for i := 1; i < size; i++ {
		nal[i] = byte(i%250) + 1
	}
	return nal
}

func TestNewH264Packetizer(t *testing.T) {
	p, err := NewH264Packetizer(DefaultPacketizerOptions())
	require.NoError(t, err)
	assert.NotZero(t, p.SSRC())

	tests := []struct {
		name    string
		modify  func(*PacketizerOptions)
		wantErr error
	}{
		{"tiny mtu", func(o *PacketizerOptions) { o.MTU = 10 }, ErrInvalidMTU},
		{"zero clock rate", func(o *PacketizerOptions) { o.ClockRate = 0 }, ErrInvalidClockRate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultPacketizerOptions()
			tt.modify(&opts)
			_, err := NewH264Packetizer(opts)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestH264Packetizer_SingleNALUnit(t *testing.T) {
	p := newTestPacketizer(t, DefaultMTU)

	first, err := p.PacketizeAccessUnit([][]byte{testIDR}, 3000)
	require.NoError(t, err)
	require.Len(t, first, 1)

	pkt := first[0]
	assert.True(t, pkt.Marker)
	assert.Equal(t, uint8(DefaultPayloadType), pkt.PayloadType)
	assert.Equal(t, uint32(0x1234ABCD), pkt.SSRC)
	assert.Equal(t, testIDR, pkt.Payload)

	second, err := p.PacketizeAccessUnit([][]byte{testIDR}, 3000)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, pkt.Timestamp+3000, second[0].Timestamp)
	assert.Equal(t, pkt.SequenceNumber+1, second[0].SequenceNumber)

	units, packets := p.Stats()
	assert.Equal(t, uint64(2), units)
	assert.Equal(t, uint64(2), packets)
}

func TestH264Packetizer_Fragmentation(t *testing.T) {
	const mtu = 200
	p := newTestPacketizer(t, mtu)

	packets, err := p.PacketizeAccessUnit([][]byte{largeNAL(1000)}, 3000)
	require.NoError(t, err)
	require.Greater(t, len(packets), 5)

	for i, pkt := range packets {
		assert.LessOrEqual(t, pkt.MarshalSize(), mtu)
		assert.Equal(t, i == len(packets)-1, pkt.Marker)
		assert.Equal(t, packets[0].Timestamp, pkt.Timestamp)
		assert.Equal(t, byte(28), pkt.Payload[0]&0x1F, "FU-A indicator")
	}
}

func TestH264Packetizer_SkipsDelimiters(t *testing.T) {
	p := newTestPacketizer(t, DefaultMTU)

	packets, err := p.PacketizeAccessUnit([][]byte{{0x09, 0xF0}, testIDR}, 3000)
	require.NoError(t, err)
	require.Len(t, packets, 1)
	assert.Equal(t, testIDR, packets[0].Payload)
}

func TestH264Packetizer_EmptyAccessUnit(t *testing.T) {
	p := newTestPacketizer(t, DefaultMTU)

	_, err := p.PacketizeAccessUnit(nil, 3000)
	assert.ErrorIs(t, err, ErrEmptyAccessUnit)

	_, err = p.PacketizeAnnexB(nil, 3000)
	assert.ErrorIs(t, err, ErrEmptyAccessUnit)
}

type packetRecorder struct {
	packets []*rtp.Packet
	failAt  int
}

func (r *packetRecorder) WriteRTP(packet *rtp.Packet) error {
	if r.failAt > 0 && len(r.packets)+1 == r.failAt {
		return assert.AnError
	}
	r.packets = append(r.packets, packet)
	return nil
}

func TestH264Packetizer_WriteAccessUnit(t *testing.T) {
	p := newTestPacketizer(t, 200)
	au := bytesJoin([][]byte{testSPS, testPPS, largeNAL(600)})

	rec := &packetRecorder{}
	require.NoError(t, p.WriteAccessUnit(rec, au, 3000))
	assert.Greater(t, len(rec.packets), 1)
	assert.True(t, rec.packets[len(rec.packets)-1].Marker)

	failing := &packetRecorder{failAt: 2}
	err := p.WriteAccessUnit(failing, au, 3000)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Len(t, failing.packets, 1)
}

func bytesJoin(nals [][]byte) []byte {
	var out []byte
	for _, nal := range nals {
		out = append(out, 0, 0, 0, 1)
		out = append(out, nal...)
	}
	return out
}

func TestSamplesForDuration(t *testing.T) {
	assert.Equal(t, uint32(3000), SamplesForDuration(time.Second/30, VideoClockRate))
	assert.Equal(t, uint32(3600), SamplesForDuration(40*time.Millisecond, VideoClockRate))
	assert.Equal(t, uint32(960), SamplesForDuration(20*time.Millisecond, 48000))
}

func TestH264Depacketizer_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		mtu  uint16
		nals [][]byte
	}{
		{"single unit", DefaultMTU, [][]byte{testIDR}},
		{"parameter sets", DefaultMTU, [][]byte{testSPS, testPPS, testIDR}},
		{"fragmented", 200, [][]byte{largeNAL(3000)}},
		{"parameter sets and fragments", 200, [][]byte{testSPS, testPPS, largeNAL(1500)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPacketizer(t, tt.mtu)
			d := NewH264Depacketizer()

			for au := 0; au < 3; au++ {
				packets, err := p.PacketizeAccessUnit(tt.nals, 3000)
				require.NoError(t, err)

				var got [][]byte
				for i, pkt := range packets {
					data, err := pkt.Marshal()
					require.NoError(t, err)
					nals, err := d.PushBytes(data)
					require.NoError(t, err)
					if i < len(packets)-1 {
						assert.Nil(t, nals)
					}
					got = nals
				}
				assert.Equal(t, tt.nals, got)
			}
			assert.Zero(t, d.Dropped())
		})
	}
}

func TestH264Depacketizer_RawFrames(t *testing.T) {
	pipeline, err := codec.NewPipeline(codec.NewRawEncoder(0, 0), codec.NewRawDecoder(), nil)
	require.NoError(t, err)
	defer pipeline.Close()

	src := yuv.NewGradientSource(64, 48, colorful.Color{R: 1}, colorful.Color{B: 1}, false)
	want, err := yuv.NewBufferFromRGB(src)
	require.NoError(t, err)

	accessUnit, err := pipeline.EncodeRGB(src)
	require.NoError(t, err)

	p := newTestPacketizer(t, DefaultMTU)
	packets, err := p.PacketizeAnnexB(accessUnit, 3000)
	require.NoError(t, err)
	require.Greater(t, len(packets), 1)

	d := NewH264Depacketizer()
	var nals [][]byte
	for _, pkt := range packets {
		nals, err = d.Push(pkt)
		require.NoError(t, err)
	}
	require.Len(t, nals, 1)
	assert.Equal(t, uint8(codec.RawNalType), nals[0][0]&0x1F)

	decoder := codec.NewRawDecoder()
	picture, err := decoder.Decode(nals[0])
	require.NoError(t, err)
	require.NotNil(t, picture)
	assert.Equal(t, want.Y(), picture.Y())
	assert.Equal(t, want.U(), picture.U())
	assert.Equal(t, want.V(), picture.V())
}

func TestH264Depacketizer_SequenceGap(t *testing.T) {
	p := newTestPacketizer(t, 200)
	d := NewH264Depacketizer()

	lossy, err := p.PacketizeAccessUnit([][]byte{largeNAL(1000)}, 3000)
	require.NoError(t, err)
	require.Greater(t, len(lossy), 3)

	for i, pkt := range lossy {
		if i == 2 {
			continue
		}
		nals, err := d.Push(pkt)
		require.NoError(t, err)
		assert.Nil(t, nals)
	}
	assert.Equal(t, uint64(1), d.Dropped())

	clean, err := p.PacketizeAccessUnit([][]byte{testIDR}, 3000)
	require.NoError(t, err)
	nals, err := d.Push(clean[0])
	require.NoError(t, err)
	assert.Equal(t, [][]byte{testIDR}, nals)
}

func TestH264Depacketizer_MissingMarker(t *testing.T) {
	d := NewH264Depacketizer()

	nals, err := d.Push(&rtp.Packet{
		Header:  rtp.Header{Version: 2, SequenceNumber: 10, Timestamp: 100, SSRC: 7},
		Payload: []byte{0x41, 0x01},
	})
	require.NoError(t, err)
	assert.Nil(t, nals)

	nals, err = d.Push(&rtp.Packet{
		Header:  rtp.Header{Version: 2, SequenceNumber: 11, Timestamp: 200, SSRC: 7, Marker: true},
		Payload: []byte{0x41, 0x02},
	})
	require.NoError(t, err)
	assert.Equal(t, [][]byte{{0x41, 0x02}}, nals)
	assert.Equal(t, uint64(1), d.Dropped())
}

func TestH264Depacketizer_Errors(t *testing.T) {
	d := NewH264Depacketizer()

	_, err := d.Push(nil)
	assert.ErrorIs(t, err, ErrEmptyPacket)

	_, err = d.PushBytes(nil)
	assert.ErrorIs(t, err, ErrEmptyPacket)

	_, err = d.PushBytes([]byte{0x80, 0x60})
	assert.Error(t, err)

	nals, err := d.Push(&rtp.Packet{
		Header:  rtp.Header{Version: 2, SequenceNumber: 1, Timestamp: 1, SSRC: 1, Marker: true},
		Payload: []byte{0x19, 0x00, 0x00},
	})
	assert.Error(t, err, "STAP-B is not supported")
	assert.Nil(t, nals)
	assert.Equal(t, uint64(1), d.Dropped())

	_, err = d.Push(&rtp.Packet{
		Header:  rtp.Header{Version: 2, SequenceNumber: 2, Timestamp: 2, SSRC: 2, Marker: true},
		Payload: testIDR,
	})
	assert.ErrorIs(t, err, ErrUnexpectedSSRC)

	nals, err = d.Push(&rtp.Packet{
		Header:  rtp.Header{Version: 2, SequenceNumber: 2, Timestamp: 2, SSRC: 1, Marker: true},
		Payload: testIDR,
	})
	require.NoError(t, err)
	assert.True(t, bytes.Equal(testIDR, nals[0]))
}
