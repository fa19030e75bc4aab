// Package rtp carries encoded H.264 access units over RTP and WebRTC.
//
// It uses the pion/rtp library for standards-compliant packetization
// (RFC 6184) and pion/webrtc media samples for track delivery.
//
// # Packetization
//
// H264Packetizer turns an Annex-B access unit, such as the output of a
// codec.Pipeline, into RTP packets:
//
//	packetizer, err := rtp.NewH264Packetizer(rtp.DefaultPacketizerOptions())
//	if err != nil {
//	    return err
//	}
//	samples := rtp.SamplesForDuration(opts.FrameDuration(), rtp.VideoClockRate)
//	packets, err := packetizer.PacketizeAnnexB(accessUnit, samples)
//
// WriteAccessUnit sends the packets straight to a PacketWriter such as a
// webrtc.TrackLocalStaticRTP.
//
// # Depacketization
//
// H264Depacketizer reverses the process. Push returns the NAL units of an
// access unit once its marker packet arrives:
//
//	nals, err := depacketizer.Push(packet)
//	for _, nal := range nals {
//	    picture, err := decoder.Decode(nal)
//	}
//
// Packets with a foreign SSRC are rejected; a sequence gap discards the
// access unit it falls in.
//
// # Samples
//
// WriteAccessUnits feeds whole access units to a SampleWriter such as a
// webrtc.TrackLocalStaticSample. AsyncSampleWriter puts a small bounded
// queue in front of a writer so an encoding loop never blocks on network
// backpressure; samples are dropped when the queue is full.
package rtp
