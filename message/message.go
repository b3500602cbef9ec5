// Package message models the RTMP message types the publisher sends and
// receives, and encodes/decodes the ones that carry AMF0 command or data
// payloads. Control message payloads are built and parsed in control.go.
// Audio and video messages carry opaque FLV tag bytes built by the flv
// package and are not modeled here.
package message

import (
	"github.com/pkg/errors"

	"rtmppub/amf/amf0"
)

// TypeID identifies an RTMP message's payload format, carried in every
// chunk's message header.
type TypeID uint8

const (
	TypeSetChunkSize     TypeID = 0x01
	TypeAbort            TypeID = 0x02
	TypeAcknowledgement  TypeID = 0x03
	TypeUserControl      TypeID = 0x04
	TypeWindowAckSize    TypeID = 0x05
	TypeSetPeerBandwidth TypeID = 0x06
	TypeAudio            TypeID = 0x08
	TypeVideo            TypeID = 0x09
	TypeDataAmf0         TypeID = 0x12
	TypeCommandAmf0      TypeID = 0x14
)

// UserControlEvent enumerates the event types carried in a User Control
// Message (type 4)'s first two bytes.
type UserControlEvent uint16

const (
	EventStreamBegin      UserControlEvent = 0
	EventStreamEOF        UserControlEvent = 1
	EventStreamDry        UserControlEvent = 2
	EventSetBufferLength  UserControlEvent = 3
	EventStreamIsRecorded UserControlEvent = 4
	EventPingRequest      UserControlEvent = 6
	EventPingResponse     UserControlEvent = 7
)

// Message is a decoded RTMP message: the chunk codec's Header plus the
// reassembled payload, before any AMF0 interpretation.
type Message struct {
	TypeID          TypeID
	Timestamp       uint32
	MessageStreamID uint32
	Payload         []byte
}

// Command is an AMF0 command message: a name, a transaction id, and zero
// or more argument values, each an AMF0-encodable Go value (float64, int,
// string, bool, nil, amf0.ECMAArray, map[string]interface{} or time.Time).
// Slices are not encodable.
type Command struct {
	Name          string
	TransactionID float64
	Args          []interface{}
}

// EncodeCommand serializes a command to an AMF0 Command (type 20) message
// payload: the name, transaction id, then each argument, concatenated.
func EncodeCommand(c Command) ([]byte, error) {
	var out []byte
	for _, v := range append([]interface{}{c.Name, c.TransactionID}, c.Args...) {
		b, err := amf0.Encode(v)
		if err != nil {
			return nil, errors.Wrapf(err, "message: encode command %q", c.Name)
		}
		out = append(out, b...)
	}
	return out, nil
}

// DecodeCommand parses an AMF0 Command message payload back into its name,
// transaction id and remaining argument values.
func DecodeCommand(payload []byte) (Command, error) {
	values, err := decodeAll(payload)
	if err != nil {
		return Command{}, errors.Wrap(err, "message: decode command")
	}
	if len(values) < 2 {
		return Command{}, errors.New("message: command payload has fewer than 2 AMF0 values")
	}
	name, ok := values[0].(string)
	if !ok {
		return Command{}, errors.Errorf("message: command name is %T, not string", values[0])
	}
	txID, ok := values[1].(float64)
	if !ok {
		return Command{}, errors.Errorf("message: transaction id is %T, not float64", values[1])
	}
	return Command{Name: name, TransactionID: txID, Args: values[2:]}, nil
}

// Data is an AMF0 data message: a name (conventionally "@setDataFrame" for
// the metadata object a player reads before the first video frame) plus
// argument values, with no transaction id.
type Data struct {
	Name string
	Args []interface{}
}

// EncodeData serializes a data message to an AMF0 Data (type 18) payload.
func EncodeData(d Data) ([]byte, error) {
	var out []byte
	for _, v := range append([]interface{}{d.Name}, d.Args...) {
		b, err := amf0.Encode(v)
		if err != nil {
			return nil, errors.Wrapf(err, "message: encode data %q", d.Name)
		}
		out = append(out, b...)
	}
	return out, nil
}

func decodeAll(payload []byte) ([]interface{}, error) {
	var values []interface{}
	for len(payload) > 0 {
		v, err := amf0.Decode(payload)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
		n := amf0.Size(v)
		if n == 0 || n > uint64(len(payload)) {
			return nil, errors.New("message: amf0 decoder reported an invalid value size")
		}
		payload = payload[n:]
	}
	return values, nil
}
