// Package flv builds the FLV-style tag bodies the publisher carries inside
// RTMP Audio (type 8) and Video (type 9) messages: the same byte layouts a
// recorded .flv file would use, minus the outer tag header RTMP doesn't
// need.
package flv

import (
	"rtmppub/audio"
	"rtmppub/internal/binary24"
	"rtmppub/video"
)

// publisherAudioHeader is the one FLV sound format byte this publisher
// ever emits: AAC, 44.1kHz, 16-bit, stereo.
var publisherAudioHeader = audio.Header(audio.AAC, audio.Rate44KHz, audio.Size16Bit, audio.Stereo)

// AudioTag builds an AAC audio tag body: the sound format byte followed by
// the AAC packet type and the raw AAC payload (a sequence header's
// AudioSpecificConfig, or a raw AAC frame).
func AudioTag(packetType audio.AACPacketType, payload []byte) []byte {
	tag := make([]byte, 2+len(payload))
	tag[0] = publisherAudioHeader
	tag[1] = byte(packetType)
	copy(tag[2:], payload)
	return tag
}

// AVCTag builds an H.264 video tag body: frame type and codec id packed
// into one byte, the AVC packet type, a signed 24-bit composition time
// offset, and the raw NAL payload (an AVCDecoderConfigurationRecord for a
// sequence header, or length-prefixed NAL units for a coded frame).
func AVCTag(frameType video.FrameType, packetType video.AVCPacketType, compositionTime int32, payload []byte) []byte {
	tag := make([]byte, 5+len(payload))
	tag[0] = byte(frameType)<<4 | byte(video.H264)
	tag[1] = byte(packetType)
	binary24.BigEndian.PutInt24(tag[2:5], compositionTime)
	copy(tag[5:], payload)
	return tag
}

// HEVCTag builds an HEVC video tag body under the Enhanced RTMP extended
// video header convention: bit 7 set, frame type in bits 4-6, packet type
// in bits 0-3, followed by the "hvc1" FourCC. A composition time offset is
// only meaningful for coded frames; sequence start/end packets carry none.
func HEVCTag(frameType video.FrameType, packetType video.ExVideoPacketType, compositionTime int32, payload []byte) []byte {
	fourCC := video.FourCCHEVC.Bytes()

	if packetType != video.PacketTypeCodedFrames {
		tag := make([]byte, 5+len(payload))
		tag[0] = 0x80 | byte(frameType)<<4 | byte(packetType)
		copy(tag[1:5], fourCC[:])
		copy(tag[5:], payload)
		return tag
	}

	tag := make([]byte, 8+len(payload))
	tag[0] = 0x80 | byte(frameType)<<4 | byte(packetType)
	copy(tag[1:5], fourCC[:])
	binary24.BigEndian.PutInt24(tag[5:8], compositionTime)
	copy(tag[8:], payload)
	return tag
}
