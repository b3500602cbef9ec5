package message

import "testing"

func TestEncodeDecodeSetChunkSizeRoundTrip(t *testing.T) {
	got, err := DecodeSetChunkSize(EncodeSetChunkSize(4096))
	if err != nil {
		t.Fatalf("DecodeSetChunkSize: %v", err)
	}
	if got != 4096 {
		t.Fatalf("got %d, want 4096", got)
	}
}

func TestDecodeSetChunkSizeTooShort(t *testing.T) {
	if _, err := DecodeSetChunkSize([]byte{0x00, 0x10}); err == nil {
		t.Fatal("expected an error for a short payload")
	}
}

func TestEncodeDecodeWindowAckSizeRoundTrip(t *testing.T) {
	got, err := DecodeWindowAckSize(EncodeWindowAckSize(2_500_000))
	if err != nil {
		t.Fatalf("DecodeWindowAckSize: %v", err)
	}
	if got != 2_500_000 {
		t.Fatalf("got %d, want 2500000", got)
	}
}

func TestDecodeWindowAckSizeTooShort(t *testing.T) {
	if _, err := DecodeWindowAckSize([]byte{0x01, 0x02, 0x03}); err == nil {
		t.Fatal("expected an error for a short payload")
	}
}

func TestEncodeDecodeUserControlPingRoundTrip(t *testing.T) {
	event, data, err := DecodeUserControl(EncodeUserControl(EventPingRequest, 123456))
	if err != nil {
		t.Fatalf("DecodeUserControl: %v", err)
	}
	if event != EventPingRequest {
		t.Fatalf("event = %v, want EventPingRequest", event)
	}
	if len(data) != 1 || data[0] != 123456 {
		t.Fatalf("data = %v, want [123456]", data)
	}
}

func TestDecodeUserControlTooShort(t *testing.T) {
	if _, _, err := DecodeUserControl([]byte{0x00}); err == nil {
		t.Fatal("expected an error for a payload shorter than the event type field")
	}
}

func TestEncodeAcknowledgement(t *testing.T) {
	payload := EncodeAcknowledgement(1_000_000)
	got, err := DecodeWindowAckSize(payload) // same 4-byte big-endian layout
	if err != nil {
		t.Fatalf("decode acknowledgement payload: %v", err)
	}
	if got != 1_000_000 {
		t.Fatalf("got %d, want 1000000", got)
	}
}
