package message

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// EncodeSetChunkSize builds the 4-byte payload of a Set Chunk Size (type 1)
// control message. The top bit is always zero per spec.
func EncodeSetChunkSize(size uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, size&0x7FFFFFFF)
	return b
}

// DecodeSetChunkSize parses a Set Chunk Size payload.
func DecodeSetChunkSize(payload []byte) (uint32, error) {
	if len(payload) < 4 {
		return 0, errors.Errorf("message: set chunk size payload is %d bytes, want at least 4", len(payload))
	}
	return binary.BigEndian.Uint32(payload) & 0x7FFFFFFF, nil
}

// EncodeWindowAckSize builds the 4-byte payload of a Window Acknowledgement
// Size (type 5) control message.
func EncodeWindowAckSize(size uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, size)
	return b
}

// DecodeWindowAckSize parses a Window Acknowledgement Size payload.
func DecodeWindowAckSize(payload []byte) (uint32, error) {
	if len(payload) < 4 {
		return 0, errors.Errorf("message: window ack size payload is %d bytes, want at least 4", len(payload))
	}
	return binary.BigEndian.Uint32(payload), nil
}

// EncodeUserControl builds a User Control Message (type 4) payload: a
// 2-byte event type followed by event-specific data.
func EncodeUserControl(event UserControlEvent, data ...uint32) []byte {
	b := make([]byte, 2+4*len(data))
	binary.BigEndian.PutUint16(b, uint16(event))
	for i, v := range data {
		binary.BigEndian.PutUint32(b[2+4*i:], v)
	}
	return b
}

// DecodeUserControl parses a User Control Message payload into its event
// type and the 32-bit data words that follow it (a Ping Request/Response
// carries one: the timestamp to echo back).
func DecodeUserControl(payload []byte) (UserControlEvent, []uint32, error) {
	if len(payload) < 2 {
		return 0, nil, errors.Errorf("message: user control payload is %d bytes, want at least 2", len(payload))
	}
	event := UserControlEvent(binary.BigEndian.Uint16(payload[:2]))
	rest := payload[2:]
	data := make([]uint32, len(rest)/4)
	for i := range data {
		data[i] = binary.BigEndian.Uint32(rest[4*i : 4*i+4])
	}
	return event, data, nil
}

// EncodeAcknowledgement builds the 4-byte payload of an Acknowledgement
// (type 3) message: the total bytes received so far.
func EncodeAcknowledgement(bytesReceived uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, bytesReceived)
	return b
}
