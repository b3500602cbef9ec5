// Package chunk implements the RTMP chunk stream codec: splitting an
// outbound message into one or more chunks, and reassembling chunks read
// off the wire back into messages.
package chunk

// Type is the two-bit chunk header type (the "fmt" field of the basic
// header). It selects the message-header layout that follows.
type Type uint8

const (
	// TypeFull carries an absolute timestamp, message length, type id and
	// message stream id: the 11-byte message header.
	TypeFull Type = 0
	// TypeSameStream carries a timestamp delta, message length and type
	// id, inheriting the message stream id from the last chunk on this
	// chunk stream: the 7-byte message header.
	TypeSameStream Type = 1
	// TypeTimestampOnly carries only a timestamp delta, inheriting
	// everything else: the 3-byte message header.
	TypeTimestampOnly Type = 2
	// TypeContinuation carries no message header at all.
	TypeContinuation Type = 3
)

const (
	fullHeaderLen          = 11
	sameStreamHeaderLen    = 7
	timestampOnlyHeaderLen = 3

	extendedTimestampLen = 4

	// maxTimestamp24 is the 3-byte timestamp/delta sentinel that signals an
	// extended 4-byte timestamp follows the message header.
	maxTimestamp24 = 0xFFFFFF
)

// Reserved chunk stream ids, fixed by RTMP/FLV convention.
const (
	StreamControl = 2
	StreamCommand = 3
	StreamAudio   = 4
	StreamVideo   = 6
	StreamData    = 8
)

// DefaultChunkSize is the chunk payload size assumed before either side
// negotiates a larger one with a Set Chunk Size control message.
const DefaultChunkSize = 128

// Header holds the fields that distinguish one chunked message from the
// next. When passed to Encode, Timestamp carries the absolute message
// timestamp when Type is TypeFull, or the delta from the previous message on
// this chunk stream otherwise; TypeContinuation writes no timestamp field,
// though a value of 0xFFFFFF or more still adds the extended timestamp.
// Headers returned by Decoder.Read always carry the absolute timestamp, with
// any delta already applied.
type Header struct {
	Type            Type
	ChunkStreamID   uint32
	Timestamp       uint32
	MessageLength   uint32
	MessageTypeID   uint8
	MessageStreamID uint32
}
