// Package video defines the FLV video codec constants shared by the video
// tag builder and the message model, extended with the Enhanced-RTMP
// "extended video header" convention used for HEVC.
//
// https://www.adobe.com/content/dam/acom/en/devnet/flv/video_file_format_spec_v10_1.pdf
package video

type FrameType uint8

const (
	KeyFrame             FrameType = 1
	InterFrame           FrameType = 2
	DisposableInterFrame FrameType = 3
	GeneratedKeyFrame    FrameType = 4
	// Video info/command frame
	CommandFrame FrameType = 5
)

type Codec uint8

const (
	SorensonH263    Codec = 2
	ScreenVideo     Codec = 3
	VP6             Codec = 4
	VP6AlphaChannel Codec = 5
	ScreenVideoV2   Codec = 6
	H264            Codec = 7
)

type AVCPacketType uint8

const (
	AVCSequenceHeader AVCPacketType = 0
	AVCNALU           AVCPacketType = 1
	AVCEndOfSequence  AVCPacketType = 2
)

// FourCC identifies a codec under the Enhanced RTMP extended video header.
// Built the same way as the four-character-code tables used across the
// ecosystem: four ASCII bytes packed big-endian into a uint32.
type FourCC uint32

const (
	FourCCHEVC FourCC = 'h'<<24 | 'v'<<16 | 'c'<<8 | '1'
	FourCCAVC  FourCC = 'a'<<24 | 'v'<<16 | 'c'<<8 | '1'
)

// Bytes returns the four-byte ASCII encoding of the FourCC, in the order it
// is written to the wire.
func (f FourCC) Bytes() [4]byte {
	return [4]byte{byte(f >> 24), byte(f >> 16), byte(f >> 8), byte(f)}
}

// ExVideoPacketType enumerates the packet types carried in the extended
// video header's low 4 bits (bit 7 of the header byte set, FourCC follows).
type ExVideoPacketType uint8

const (
	PacketTypeSequenceStart ExVideoPacketType = 0
	PacketTypeCodedFrames   ExVideoPacketType = 1
	PacketTypeSequenceEnd   ExVideoPacketType = 2
)

// extendedHeaderFlag is bit 7 of the first tag byte; its presence signals
// the FourCC-based header instead of the legacy frameType|codecID byte.
const extendedHeaderFlag = 0x80

// IsExtendedHeader reports whether the first byte of a video tag uses the
// extended (FourCC) header convention.
func IsExtendedHeader(b byte) bool {
	return b&extendedHeaderFlag != 0
}
