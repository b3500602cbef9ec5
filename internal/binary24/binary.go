// Package binary24 implements ByteOrder-style helpers for the 3-byte
// integer fields RTMP uses for chunk timestamps and composition time
// offsets, which encoding/binary has no native width for.
package binary24

var BigEndian bigEndian

var LittleEndian littleEndian

type bigEndian struct{}

func (bigEndian) Uint24(b []byte) uint32 {
	return uint32(b[2]) | uint32(b[1])<<8 | uint32(b[0])<<16
}

func (bigEndian) PutUint24(b []byte, v uint32) {
	_ = b[2] // early bounds check to guarantee safety of writes below
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}

type littleEndian struct{}

func (littleEndian) Uint24(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}

func (littleEndian) PutUint24(b []byte, v uint32) {
	_ = b[2] // early bounds check to guarantee safety of writes below
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
}

// PutInt24 writes v, a signed value in [-2^23, 2^23-1], as a big-endian
// two's-complement 24-bit field. Used for the FLV composition time offset.
func (bigEndian) PutInt24(b []byte, v int32) {
	BigEndian.PutUint24(b, uint32(v)&0xFFFFFF)
}

// Int24 reads a big-endian two's-complement 24-bit field and sign-extends
// it to int32.
func (bigEndian) Int24(b []byte) int32 {
	u := BigEndian.Uint24(b)
	if u&0x800000 != 0 {
		u |= 0xFF000000
	}
	return int32(u)
}
