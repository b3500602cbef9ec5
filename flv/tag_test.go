package flv

import (
	"bytes"
	"testing"

	"rtmppub/audio"
	"rtmppub/video"
)

func TestAudioTagSequenceHeader(t *testing.T) {
	tag := AudioTag(audio.AACSequenceHeader, []byte{0x12, 0x10})
	want := []byte{0xAF, 0x00, 0x12, 0x10}
	if !bytes.Equal(tag, want) {
		t.Fatalf("got % X, want % X", tag, want)
	}
}

func TestAVCTagKeyFrame(t *testing.T) {
	tag := AVCTag(video.KeyFrame, video.AVCNALU, 3, []byte{0xDE, 0xAD})
	if tag[0] != 0x17 {
		t.Fatalf("frame/codec byte = %#x, want 0x17", tag[0])
	}
	if tag[1] != byte(video.AVCNALU) {
		t.Fatalf("packet type = %#x, want %#x", tag[1], video.AVCNALU)
	}
	if !bytes.Equal(tag[5:], []byte{0xDE, 0xAD}) {
		t.Fatalf("payload mismatch: %X", tag[5:])
	}
}

func TestHEVCTagKeyFrameCodedFrame(t *testing.T) {
	tag := HEVCTag(video.KeyFrame, video.PacketTypeCodedFrames, 3, []byte{0xBE, 0xEF})
	if tag[0] != 0x91 {
		t.Fatalf("header byte = %#x, want 0x91", tag[0])
	}
	if string(tag[1:5]) != "hvc1" {
		t.Fatalf("fourCC = %q, want hvc1", tag[1:5])
	}
	if !bytes.Equal(tag[8:], []byte{0xBE, 0xEF}) {
		t.Fatalf("payload mismatch: %X", tag[8:])
	}
}

func TestHEVCTagSequenceStartHasNoCompositionTime(t *testing.T) {
	tag := HEVCTag(video.KeyFrame, video.PacketTypeSequenceStart, 0, []byte{0x01})
	if len(tag) != 6 {
		t.Fatalf("tag length = %d, want 6 (1 header + 4 fourCC + 1 payload)", len(tag))
	}
}
