package chunk

import (
	"bytes"
	"testing"
)

func roundTrip(t *testing.T, h Header, payload []byte, maxChunkSize uint32) (Header, []byte) {
	t.Helper()
	encoded, err := Encode(h, payload, maxChunkSize)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	dec := NewDecoder(bytes.NewReader(encoded))
	dec.SetChunkSize(maxChunkSize)
	got, gotPayload, err := dec.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	return got, gotPayload
}

func TestRoundTripSingleChunk(t *testing.T) {
	h := Header{
		Type:            TypeFull,
		ChunkStreamID:   StreamCommand,
		Timestamp:       0,
		MessageLength:   5,
		MessageTypeID:   0x14,
		MessageStreamID: 0,
	}
	payload := []byte{1, 2, 3, 4, 5}

	got, gotPayload := roundTrip(t, h, payload, DefaultChunkSize)
	if got.MessageTypeID != h.MessageTypeID || got.MessageLength != h.MessageLength {
		t.Fatalf("header mismatch: got %+v want %+v", got, h)
	}
	if !bytes.Equal(gotPayload, payload) {
		t.Fatalf("payload mismatch: got %v want %v", gotPayload, payload)
	}
}

func TestBareTypeSameStreamChunkIsRejected(t *testing.T) {
	payload := bytes.Repeat([]byte{0xAA}, 300)
	h := Header{
		Type:            TypeSameStream,
		ChunkStreamID:   StreamVideo,
		Timestamp:       40,
		MessageLength:   uint32(len(payload)),
		MessageTypeID:   0x09,
		MessageStreamID: 1,
	}

	encoded, err := Encode(h, payload, 128)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	// This message uses type 1 and no type 0 chunk has been seen on its
	// chunk stream, so the decoder has nothing to inherit from and rejects it.
	dec := NewDecoder(bytes.NewReader(encoded))
	if _, _, err := dec.Read(); err == nil {
		t.Fatalf("expected ErrNoPreviousChunk for a bare type 1 chunk, got nil")
	}
}

func TestRoundTripFragmentedVideoAfterKeyframe(t *testing.T) {
	first := Header{
		Type:            TypeFull,
		ChunkStreamID:   StreamVideo,
		Timestamp:       0,
		MessageLength:   4,
		MessageTypeID:   0x09,
		MessageStreamID: 1,
	}
	payload := bytes.Repeat([]byte{0xBB}, 300)
	second := Header{
		Type:            TypeSameStream,
		ChunkStreamID:   StreamVideo,
		Timestamp:       40,
		MessageLength:   uint32(len(payload)),
		MessageTypeID:   0x09,
		MessageStreamID: 1,
	}

	firstEncoded, err := Encode(first, []byte{1, 2, 3, 4}, 128)
	if err != nil {
		t.Fatalf("Encode first: %v", err)
	}
	secondEncoded, err := Encode(second, payload, 128)
	if err != nil {
		t.Fatalf("Encode second: %v", err)
	}

	dec := NewDecoder(bytes.NewReader(append(firstEncoded, secondEncoded...)))
	if _, _, err := dec.Read(); err != nil {
		t.Fatalf("Read first: %v", err)
	}
	gotHeader, gotPayload, err := dec.Read()
	if err != nil {
		t.Fatalf("Read second: %v", err)
	}
	if gotHeader.Timestamp != 40 {
		t.Fatalf("timestamp = %d, want 40 (delta applied to base 0)", gotHeader.Timestamp)
	}
	if !bytes.Equal(gotPayload, payload) {
		t.Fatalf("payload mismatch after reassembly across continuation chunks")
	}
}

func TestExtendedTimestampRoundTrip(t *testing.T) {
	h := Header{
		Type:            TypeFull,
		ChunkStreamID:   StreamVideo,
		Timestamp:       0x01000000,
		MessageLength:   3,
		MessageTypeID:   0x09,
		MessageStreamID: 1,
	}
	got, payload := roundTrip(t, h, []byte{9, 9, 9}, DefaultChunkSize)
	if got.Timestamp != h.Timestamp {
		t.Fatalf("timestamp = %#x, want %#x", got.Timestamp, h.Timestamp)
	}
	if !bytes.Equal(payload, []byte{9, 9, 9}) {
		t.Fatalf("payload mismatch")
	}
}

func TestExtendedTimestampRepeatsOnContinuationChunks(t *testing.T) {
	h := Header{
		Type:            TypeFull,
		ChunkStreamID:   StreamVideo,
		Timestamp:       0x01000000,
		MessageLength:   300,
		MessageTypeID:   0x09,
		MessageStreamID: 1,
	}
	payload := bytes.Repeat([]byte{0xCC}, 300)
	got, gotPayload := roundTrip(t, h, payload, 100)
	if got.Timestamp != h.Timestamp {
		t.Fatalf("timestamp = %#x, want %#x", got.Timestamp, h.Timestamp)
	}
	if !bytes.Equal(gotPayload, payload) {
		t.Fatalf("payload mismatch across extended-timestamp continuation chunks")
	}
}

func TestBasicHeaderSizing(t *testing.T) {
	cases := []struct {
		csid    uint32
		wantLen int
	}{
		{2, 1},
		{63, 1},
		{64, 2},
		{319, 2},
		{320, 3},
		{65599, 3},
	}
	for _, c := range cases {
		b := encodeBasicHeader(TypeFull, c.csid)
		if len(b) != c.wantLen {
			t.Errorf("csid %d: basic header length = %d, want %d", c.csid, len(b), c.wantLen)
		}
	}
}

func TestCommandMessageSingleChunk(t *testing.T) {
	payload := []byte("connect-command-bytes")
	h := Header{
		Type:            TypeFull,
		ChunkStreamID:   StreamCommand,
		Timestamp:       0,
		MessageLength:   uint32(len(payload)),
		MessageTypeID:   0x14,
		MessageStreamID: 0,
	}
	encoded, err := Encode(h, payload, DefaultChunkSize)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	// Basic header (1 byte, csid=3 inline) + 11-byte type-0 header + payload.
	wantLen := 1 + fullHeaderLen + len(payload)
	if len(encoded) != wantLen {
		t.Fatalf("encoded length = %d, want %d", len(encoded), wantLen)
	}
	if encoded[0] != byte(TypeFull)<<6|StreamCommand {
		t.Fatalf("basic header byte = %#x, want type 0 csid %d inline", encoded[0], StreamCommand)
	}
}
