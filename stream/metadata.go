package stream

import (
	"rtmppub/amf/amf0"
	"rtmppub/audio"
	"rtmppub/video"
)

// VideoFormat is the video codec a Stream's samples are encoded with.
type VideoFormat int

const (
	AVC VideoFormat = iota
	HEVC
)

// Sample is one encoded video access unit.
type Sample struct {
	PTS      float64 // capture time, milliseconds, on the encoder's own clock
	KeyFrame bool
	Data     []byte // NAL units (AVC) or an HEVC coded frame, already Annex-B or length-prefixed per the sequence header's declared format
}

// FormatDescription is the one-time codec configuration a Stream needs
// before it can emit sequence headers and the onMetaData data message. It
// is supplied once video dimensions and the encoder's decoder
// configuration record are known, normally right after the encoder starts.
type FormatDescription struct {
	Video        VideoFormat
	VideoConfig  []byte // AVCDecoderConfigurationRecord or HEVCDecoderConfigurationRecord
	Width        int
	Height       int
	FrameRate    float64
	VideoBitrate float64 // kbit/s, 0 if unknown

	AudioConfig  []byte // AAC AudioSpecificConfig
	SampleRate   int
	Channels     int
	AudioBitrate float64 // kbit/s, 0 if unknown
}

// onMetaDataArgs builds the onMetaData object carried in the @setDataFrame
// data message a player reads before the first audio/video message to
// learn the stream's codec and geometry.
func onMetaDataArgs(f FormatDescription) amf0.ECMAArray {
	meta := amf0.ECMAArray{
		"audiocodecid":    float64(audio.AAC),
		"audiosamplerate": float64(f.SampleRate),
		"stereo":          f.Channels == 2,
	}
	if f.AudioBitrate > 0 {
		meta["audiodatarate"] = f.AudioBitrate
	}
	if f.Width > 0 {
		meta["width"] = float64(f.Width)
	}
	if f.Height > 0 {
		meta["height"] = float64(f.Height)
	}
	if f.FrameRate > 0 {
		meta["framerate"] = f.FrameRate
	}
	if f.VideoBitrate > 0 {
		meta["videodatarate"] = f.VideoBitrate
	}
	switch f.Video {
	case AVC:
		meta["videocodecid"] = float64(video.H264)
	case HEVC:
		meta["videocodecid"] = float64(uint32(video.FourCCHEVC))
	}
	return meta
}
