package message

import "testing"

func TestEncodeDecodeCommandRoundTrip(t *testing.T) {
	cmd := Command{
		Name:          "connect",
		TransactionID: 1,
		Args: []interface{}{
			amf0ObjectForTest(),
		},
	}
	payload, err := EncodeCommand(cmd)
	if err != nil {
		t.Fatalf("EncodeCommand: %v", err)
	}
	got, err := DecodeCommand(payload)
	if err != nil {
		t.Fatalf("DecodeCommand: %v", err)
	}
	if got.Name != cmd.Name || got.TransactionID != cmd.TransactionID {
		t.Fatalf("got %+v, want name=%q txID=%v", got, cmd.Name, cmd.TransactionID)
	}
}

func amf0ObjectForTest() map[string]interface{} {
	return map[string]interface{}{
		"app":      "live",
		"flashVer": "FMLE/3.0",
	}
}
