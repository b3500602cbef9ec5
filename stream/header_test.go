package stream

import (
	"testing"

	"rtmppub/chunk"
)

func newTestStream() *Stream {
	return &Stream{
		sentFirst:     make(map[chunkKey]bool),
		lastTimestamp: make(map[chunkKey]uint32),
	}
}

func TestBuildHeaderFirstMessageIsTypeFull(t *testing.T) {
	s := newTestStream()
	h := s.buildHeader(chunk.StreamVideo, "video", 9, 1000, 42)
	if h.Type != chunk.TypeFull {
		t.Fatalf("first message on a chunk stream = %v, want TypeFull", h.Type)
	}
	if h.Timestamp != 1000 {
		t.Fatalf("timestamp = %d, want 1000", h.Timestamp)
	}
}

func TestBuildHeaderSubsequentMessageIsTypeSameStreamWithDelta(t *testing.T) {
	s := newTestStream()
	s.buildHeader(chunk.StreamVideo, "video", 9, 1000, 42)
	h := s.buildHeader(chunk.StreamVideo, "video", 9, 1040, 10)
	if h.Type != chunk.TypeSameStream {
		t.Fatalf("second message on a chunk stream = %v, want TypeSameStream", h.Type)
	}
	if h.Timestamp != 40 {
		t.Fatalf("delta = %d, want 40", h.Timestamp)
	}
}

func TestBuildHeaderTracksChunkStreamsIndependently(t *testing.T) {
	s := newTestStream()
	s.buildHeader(chunk.StreamAudio, "audio", 8, 500, 4)
	h := s.buildHeader(chunk.StreamVideo, "video", 9, 1000, 42)
	if h.Type != chunk.TypeFull {
		t.Fatalf("first video message should still be TypeFull even after an audio message: got %v", h.Type)
	}
}

func TestBuildHeaderTracksHandlerNamesIndependentlyOnTheDataChannel(t *testing.T) {
	s := newTestStream()
	s.buildHeader(chunk.StreamData, "@setDataFrame", 18, 1000, 4)
	h := s.buildHeader(chunk.StreamData, "onCuePoint", 18, 1200, 4)
	if h.Type != chunk.TypeFull {
		t.Fatalf("first onCuePoint message should be TypeFull even after a setDataFrame on the same chunk stream: got %v", h.Type)
	}
}
