package chunk

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"rtmppub/internal/binary24"
)

// assembly is the per-chunk-stream-id cache a decoder needs to interpret
// Type-1, Type-2 and Type-3 chunks, which each omit fields inherited from
// the chunk that came before them on the same chunk stream.
type assembly struct {
	header   Header
	delta    uint32 // last applied Type-1/Type-2 delta, for a compressed Type-3 restart
	extended bool   // whether the in-flight message carries an extended timestamp
	payload  []byte // bytes accumulated for the message currently being assembled
}

// Decoder reassembles chunks read from a byte stream back into messages.
// It keeps per-chunk-stream-id state across calls to Read, exactly as a
// live RTMP connection's chunk stream does.
type Decoder struct {
	r         *bufio.Reader
	chunkSize uint32
	streams   map[uint32]*assembly
}

// NewDecoder wraps r with the default negotiated chunk size of 128 bytes.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		r:         bufio.NewReader(r),
		chunkSize: DefaultChunkSize,
		streams:   make(map[uint32]*assembly),
	}
}

// SetChunkSize updates the chunk size used to bound how many payload bytes
// a single chunk contributes, in response to a peer's Set Chunk Size
// control message.
func (d *Decoder) SetChunkSize(n uint32) {
	if n == 0 {
		n = DefaultChunkSize
	}
	d.chunkSize = n
}

// decoded is what readMessageHeader learns from a single chunk's header,
// before any payload bytes are read.
type decoded struct {
	header       Header
	isNewMessage bool
	extended     bool
	delta        uint32
}

// Read blocks until one full message has been reassembled from the
// underlying reader, which may take several chunks, and returns it.
func (d *Decoder) Read() (Header, []byte, error) {
	for {
		b0, err := d.r.ReadByte()
		if err != nil {
			return Header{}, nil, errors.Wrap(err, "chunk: read basic header")
		}
		typ := Type(b0 >> 6)

		csid, err := d.readChunkStreamID(b0)
		if err != nil {
			return Header{}, nil, err
		}

		st := d.streams[csid]
		if typ != TypeFull && st == nil {
			return Header{}, nil, errors.Wrapf(ErrNoPreviousChunk, "chunk stream %d", csid)
		}

		dec, err := d.readMessageHeader(typ, csid, st)
		if err != nil {
			return Header{}, nil, err
		}

		if st == nil {
			st = &assembly{}
			d.streams[csid] = st
		}

		var dst []byte
		if dec.isNewMessage {
			dst = make([]byte, 0, dec.header.MessageLength)
		} else {
			dst = st.payload
		}

		remaining := int(dec.header.MessageLength) - len(dst)
		n := remaining
		if uint32(n) > d.chunkSize {
			n = int(d.chunkSize)
		}
		if n > 0 {
			chunk := make([]byte, n)
			if _, err := io.ReadFull(d.r, chunk); err != nil {
				return Header{}, nil, errors.Wrap(err, "chunk: read payload")
			}
			dst = append(dst, chunk...)
		}

		st.header = dec.header
		st.extended = dec.extended
		if dec.isNewMessage {
			st.delta = dec.delta
		}
		st.payload = dst

		if len(dst) >= int(dec.header.MessageLength) {
			st.payload = nil
			return dec.header, dst, nil
		}
	}
}

// readChunkStreamID decodes the remainder of the basic header (the csid
// extension, if any) given its first byte.
func (d *Decoder) readChunkStreamID(b0 byte) (uint32, error) {
	switch b0 & 0x3F {
	case 0:
		b1, err := d.r.ReadByte()
		if err != nil {
			return 0, errors.Wrap(err, "chunk: read 1-byte basic header extension")
		}
		return uint32(b1) + 64, nil
	case 1:
		var ext [2]byte
		if _, err := io.ReadFull(d.r, ext[:]); err != nil {
			return 0, errors.Wrap(err, "chunk: read 2-byte basic header extension")
		}
		return uint32(binary.LittleEndian.Uint16(ext[:])) + 64, nil
	default:
		return uint32(b0 & 0x3F), nil
	}
}

// readMessageHeader decodes the message header for typ. It never mutates
// st; the caller folds the result into the chunk stream's cached state
// once the chunk's payload has also been read.
func (d *Decoder) readMessageHeader(typ Type, csid uint32, st *assembly) (decoded, error) {
	switch typ {
	case TypeFull:
		var b [fullHeaderLen]byte
		if _, err := io.ReadFull(d.r, b[:]); err != nil {
			return decoded{}, errors.Wrap(err, "chunk: read type 0 message header")
		}
		ts3 := binary24.BigEndian.Uint24(b[0:3])
		length := binary24.BigEndian.Uint24(b[3:6])
		typeID := b[6]
		streamID := binary.LittleEndian.Uint32(b[7:11])

		ts, extended, err := d.resolveTimestamp(ts3)
		if err != nil {
			return decoded{}, err
		}

		return decoded{
			header: Header{
				Type:            TypeFull,
				ChunkStreamID:   csid,
				Timestamp:       ts,
				MessageLength:   length,
				MessageTypeID:   typeID,
				MessageStreamID: streamID,
			},
			isNewMessage: true,
			extended:     extended,
		}, nil

	case TypeSameStream:
		var b [sameStreamHeaderLen]byte
		if _, err := io.ReadFull(d.r, b[:]); err != nil {
			return decoded{}, errors.Wrap(err, "chunk: read type 1 message header")
		}
		delta3 := binary24.BigEndian.Uint24(b[0:3])
		length := binary24.BigEndian.Uint24(b[3:6])
		typeID := b[6]

		delta, extended, err := d.resolveTimestamp(delta3)
		if err != nil {
			return decoded{}, err
		}

		return decoded{
			header: Header{
				Type:            TypeSameStream,
				ChunkStreamID:   csid,
				Timestamp:       st.header.Timestamp + delta,
				MessageLength:   length,
				MessageTypeID:   typeID,
				MessageStreamID: st.header.MessageStreamID,
			},
			isNewMessage: true,
			extended:     extended,
			delta:        delta,
		}, nil

	case TypeTimestampOnly:
		var b [timestampOnlyHeaderLen]byte
		if _, err := io.ReadFull(d.r, b[:]); err != nil {
			return decoded{}, errors.Wrap(err, "chunk: read type 2 message header")
		}
		delta3 := binary24.BigEndian.Uint24(b[:])

		delta, extended, err := d.resolveTimestamp(delta3)
		if err != nil {
			return decoded{}, err
		}

		return decoded{
			header: Header{
				Type:            TypeTimestampOnly,
				ChunkStreamID:   csid,
				Timestamp:       st.header.Timestamp + delta,
				MessageLength:   st.header.MessageLength,
				MessageTypeID:   st.header.MessageTypeID,
				MessageStreamID: st.header.MessageStreamID,
			},
			isNewMessage: true,
			extended:     extended,
			delta:        delta,
		}, nil

	default: // TypeContinuation
		inProgress := len(st.payload) < int(st.header.MessageLength)
		if st.extended {
			var ext [extendedTimestampLen]byte
			if _, err := io.ReadFull(d.r, ext[:]); err != nil {
				return decoded{}, errors.Wrap(err, "chunk: read repeated extended timestamp")
			}
		}
		if inProgress {
			return decoded{header: st.header, isNewMessage: false, extended: st.extended}, nil
		}
		// Compressed restart: a new message on this chunk stream reusing
		// the previous chunk's delta and message header fields.
		return decoded{
			header: Header{
				Type:            TypeContinuation,
				ChunkStreamID:   csid,
				Timestamp:       st.header.Timestamp + st.delta,
				MessageLength:   st.header.MessageLength,
				MessageTypeID:   st.header.MessageTypeID,
				MessageStreamID: st.header.MessageStreamID,
			},
			isNewMessage: true,
			extended:     st.extended,
			delta:        st.delta,
		}, nil
	}
}

// resolveTimestamp interprets a 24-bit timestamp/delta field, reading the
// 4-byte extended value when the field carries the 0xFFFFFF sentinel.
func (d *Decoder) resolveTimestamp(field uint32) (uint32, bool, error) {
	if field != maxTimestamp24 {
		return field, false, nil
	}
	var ext [extendedTimestampLen]byte
	if _, err := io.ReadFull(d.r, ext[:]); err != nil {
		return 0, false, errors.Wrap(err, "chunk: read extended timestamp")
	}
	return binary.BigEndian.Uint32(ext[:]), true, nil
}
