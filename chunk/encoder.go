package chunk

import (
	"bytes"
	"encoding/binary"

	"rtmppub/internal/binary24"
)

// Encode serializes a message into one or more chunks under maxChunkSize,
// picking the basic header's shortest form for the chunk stream id and
// splitting payload across Type-3 continuation chunks when it exceeds
// maxChunkSize. h.Type selects the header carried by the first chunk; every
// continuation chunk after it uses TypeContinuation regardless.
//
// When the timestamp or delta does not fit in 24 bits, the 3-byte field is
// set to the extended-timestamp sentinel and the real 32-bit value is
// written immediately after the message header, repeated on every
// continuation chunk of the same message per RTMP convention.
func Encode(h Header, payload []byte, maxChunkSize uint32) ([]byte, error) {
	if maxChunkSize == 0 {
		maxChunkSize = DefaultChunkSize
	}

	msgHeader, ext, hasExt := encodeMessageHeader(h)

	var buf bytes.Buffer
	buf.Write(encodeBasicHeader(h.Type, h.ChunkStreamID))
	buf.Write(msgHeader)
	if hasExt {
		buf.Write(ext)
	}

	if len(payload) == 0 {
		return buf.Bytes(), nil
	}

	continuationHeader := encodeBasicHeader(TypeContinuation, h.ChunkStreamID)
	offset := 0
	for offset < len(payload) {
		if offset > 0 {
			buf.Write(continuationHeader)
			if hasExt {
				buf.Write(ext)
			}
		}
		end := offset + int(maxChunkSize)
		if end > len(payload) {
			end = len(payload)
		}
		buf.Write(payload[offset:end])
		offset = end
	}
	return buf.Bytes(), nil
}

// encodeBasicHeader picks the shortest basic header form for csid: 1 byte
// inline for [0,63], 2 bytes for [64,319], 3 bytes beyond that.
func encodeBasicHeader(t Type, csid uint32) []byte {
	switch {
	case csid <= 63:
		return []byte{byte(t)<<6 | byte(csid)}
	case csid <= 319:
		return []byte{byte(t) << 6, byte(csid - 64)}
	default:
		b := make([]byte, 3)
		b[0] = byte(t)<<6 | 1
		binary.LittleEndian.PutUint16(b[1:], uint16(csid-64))
		return b
	}
}

// encodeMessageHeader builds the message header bytes for h.Type and
// reports whether an extended timestamp follows it.
func encodeMessageHeader(h Header) (header []byte, ext []byte, hasExt bool) {
	hasExt = h.Timestamp >= maxTimestamp24
	ts3 := h.Timestamp
	if hasExt {
		ts3 = maxTimestamp24
		ext = make([]byte, extendedTimestampLen)
		binary.BigEndian.PutUint32(ext, h.Timestamp)
	}

	switch h.Type {
	case TypeFull:
		b := make([]byte, fullHeaderLen)
		binary24.BigEndian.PutUint24(b[0:3], ts3)
		binary24.BigEndian.PutUint24(b[3:6], h.MessageLength)
		b[6] = h.MessageTypeID
		binary.LittleEndian.PutUint32(b[7:11], h.MessageStreamID)
		return b, ext, hasExt
	case TypeSameStream:
		b := make([]byte, sameStreamHeaderLen)
		binary24.BigEndian.PutUint24(b[0:3], ts3)
		binary24.BigEndian.PutUint24(b[3:6], h.MessageLength)
		b[6] = h.MessageTypeID
		return b, ext, hasExt
	case TypeTimestampOnly:
		b := make([]byte, timestampOnlyHeaderLen)
		binary24.BigEndian.PutUint24(b[0:3], ts3)
		return b, ext, hasExt
	default: // TypeContinuation
		return nil, ext, hasExt
	}
}
