// Package stream drives one RTMP publish session: the connect/createStream/
// publish handshake, the resulting ready-state machine, and turning
// encoded audio/video handed in by the caller into chunked FLV-tagged
// messages written to the connection.
package stream

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"rtmppub/audio"
	"rtmppub/chunk"
	"rtmppub/connection"
	"rtmppub/event"
	"rtmppub/flv"
	"rtmppub/message"
	"rtmppub/rand"
	"rtmppub/timestamp"
	"rtmppub/video"
)

// Stream is a single publish session over an already-handshaken
// connection. All session state is owned by one goroutine draining a work
// queue, so every exported method is safe to call from any goroutine: those
// that touch session state enqueue a closure and wait for the queue to run
// it, while Dispatcher, SessionID and ByteCount read values that need no
// queue.
type Stream struct {
	conn       *connection.Conn
	app        string
	sessionID  string
	logger     *zap.SugaredLogger
	rebaser    *timestamp.Rebaser
	dispatcher *event.Dispatcher

	work chan func()

	readyState      ReadyState
	pendingPublish  string
	messageStreamID uint32

	sentFirst     map[chunkKey]bool
	lastTimestamp map[chunkKey]uint32

	format      FormatDescription
	haveFormat  bool
	activeMedia bool
}

// chunkKey identifies one logical outbound channel for Type-0-vs-Type-1
// bookkeeping: the chunk stream id plus, for the data channel, the handler
// name (the Data Channel Table keys on handler name, since several
// differently-named data messages can share the data chunk stream).
// Audio and video only ever have one handler each, so they use a fixed
// name and behave exactly as a csid-only key would.
type chunkKey struct {
	csid uint32
	name string
}

// NewStream starts a publish session on conn, connecting to app and
// immediately performing NetConnection.connect against tcURL in the
// background. Publish calls made before that completes are queued and
// flushed once the connection reaches the Open state.
func NewStream(conn *connection.Conn, app, tcURL string, logger *zap.SugaredLogger, rebaser *timestamp.Rebaser) *Stream {
	sessionID := rand.GenerateUuid()
	s := &Stream{
		conn:          conn,
		app:           app,
		sessionID:     sessionID,
		logger:        logger.With("sessionID", sessionID),
		rebaser:       rebaser,
		dispatcher:    event.NewDispatcher(),
		work:          make(chan func(), 64),
		sentFirst:     make(map[chunkKey]bool),
		lastTimestamp: make(map[chunkKey]uint32),
		readyState:    Initialized,
	}

	conn.Dispatcher().Subscribe(connection.EventCommand, s, s.onCommand)
	conn.Dispatcher().Subscribe(connection.EventConnectionLost, s, s.onConnectionLost)

	go s.run()
	go s.connectAsync(tcURL)

	return s
}

// Dispatcher exposes the stream's own lifecycle events (EventPublishing,
// EventClosed, EventConnectionLost, EventDimensionChange).
func (s *Stream) Dispatcher() *event.Dispatcher {
	return s.dispatcher
}

// SessionID returns the identifier generated for this publish session, used
// to correlate this stream's log lines and telemetry with one attempt.
func (s *Stream) SessionID() string {
	return s.sessionID
}

// ReadyState reports the current lifecycle phase.
func (s *Stream) ReadyState() ReadyState {
	result := make(chan ReadyState, 1)
	s.work <- func() { result <- s.readyState }
	return <-result
}

// ByteCount returns the total bytes written to the underlying connection.
func (s *Stream) ByteCount() int64 {
	return s.conn.ByteCount()
}

func (s *Stream) run() {
	for fn := range s.work {
		fn()
	}
}

// do enqueues fn on the stream's serial work queue and blocks until it has
// run, returning its result.
func (s *Stream) do(fn func() error) error {
	done := make(chan error, 1)
	s.work <- func() { done <- fn() }
	return <-done
}

func (s *Stream) connectAsync(tcURL string) {
	err := s.conn.Connect(s.app, tcURL)
	s.work <- func() {
		if err != nil {
			s.logger.Errorw("rtmp connect failed", "error", err)
			return
		}
		s.readyState = Open
		if s.pendingPublish != "" {
			name := s.pendingPublish
			s.pendingPublish = ""
			if err := s.beginPublish(name); err != nil {
				s.logger.Errorw("queued publish failed once connection opened", "error", err)
			}
		}
	}
}

// Publish requests a live publish under name. If the connection has not
// finished its connect handshake yet, the request is queued and sent as
// soon as it does.
func (s *Stream) Publish(name string) error {
	return s.do(func() error {
		switch s.readyState {
		case Initialized:
			s.pendingPublish = name
			return nil
		case Open:
			return s.beginPublish(name)
		default:
			return errors.Errorf("stream: cannot publish %q from state %s", name, s.readyState)
		}
	})
}

func (s *Stream) beginPublish(name string) error {
	id, err := s.conn.CreateStream()
	if err != nil {
		return errors.Wrap(err, "stream: createStream")
	}
	if err := s.conn.Publish(id, name); err != nil {
		return errors.Wrap(err, "stream: publish")
	}
	s.messageStreamID = id
	s.readyState = Publish
	return nil
}

func (s *Stream) onCommand(args ...interface{}) {
	cmd, ok := args[0].(message.Command)
	if !ok || cmd.Name != "onStatus" || len(cmd.Args) < 2 {
		return
	}
	info, ok := cmd.Args[1].(map[string]interface{})
	if !ok {
		return
	}
	code, _ := info["code"].(string)

	s.work <- func() {
		switch code {
		case "NetStream.Publish.Start":
			if s.readyState == Publish {
				s.readyState = Publishing
				s.dispatcher.Dispatch(EventPublishing)
				if s.haveFormat {
					if err := s.sendFormat(); err != nil {
						s.logger.Errorw("failed to send sequence headers", "error", err)
					}
				}
			}
		case "NetStream.Publish.BadName", "NetStream.Publish.Denied", "NetStream.Publish.Failed":
			s.logger.Errorw("publish rejected by server", "code", code)
		case "NetStream.Video.DimensionChange":
			s.logger.Infow("server reported a video dimension change", "description", info["description"])
			s.dispatcher.Dispatch(EventDimensionChange, info)
		}
	}
}

func (s *Stream) onConnectionLost(args ...interface{}) {
	s.work <- func() {
		s.resetLocked()
		s.dispatcher.Dispatch(EventConnectionLost, args...)
	}
}

// Close ends the session, returning the ready state to Initialized and
// clearing the queued publish, the per-channel framing bookkeeping and the
// rebaser. It sends no command to the server. A Publish call made after
// Close is only queued: the connect step that flushes that queue runs once,
// from NewStream.
func (s *Stream) Close() {
	s.do(func() error {
		s.resetLocked()
		s.dispatcher.Dispatch(EventClosed)
		return nil
	})
}

func (s *Stream) resetLocked() {
	s.readyState = Initialized
	s.activeMedia = false
	s.pendingPublish = ""
	s.sentFirst = make(map[chunkKey]bool)
	s.lastTimestamp = make(map[chunkKey]uint32)
	s.rebaser.Reset()
}

// OnCodecFormat records the encoder's codec configuration. Once the stream
// is Publishing, it immediately triggers onMetaData and the sequence
// header messages; otherwise they are sent as soon as publishing starts.
func (s *Stream) OnCodecFormat(desc FormatDescription) error {
	return s.do(func() error {
		s.format = desc
		s.haveFormat = true
		if s.readyState == Publishing && !s.activeMedia {
			return s.sendFormat()
		}
		return nil
	})
}

func (s *Stream) sendFormat() error {
	const metaDataHandler = "@setDataFrame"
	dataPayload, err := message.EncodeData(message.Data{
		Name: metaDataHandler,
		Args: []interface{}{"onMetaData", onMetaDataArgs(s.format)},
	})
	if err != nil {
		return errors.Wrap(err, "stream: encode onMetaData")
	}
	h := s.buildHeader(chunk.StreamData, metaDataHandler, uint8(message.TypeDataAmf0), 0, uint32(len(dataPayload)))
	if err := s.conn.Write(h, dataPayload); err != nil {
		return errors.Wrap(err, "stream: write onMetaData")
	}

	if len(s.format.AudioConfig) > 0 {
		tag := flv.AudioTag(audio.AACSequenceHeader, s.format.AudioConfig)
		h := s.buildHeader(chunk.StreamAudio, "audio", uint8(message.TypeAudio), 0, uint32(len(tag)))
		if err := s.conn.Write(h, tag); err != nil {
			return errors.Wrap(err, "stream: write AAC sequence header")
		}
	}

	if len(s.format.VideoConfig) > 0 {
		var tag []byte
		switch s.format.Video {
		case AVC:
			tag = flv.AVCTag(video.KeyFrame, video.AVCSequenceHeader, 0, s.format.VideoConfig)
		case HEVC:
			tag = flv.HEVCTag(video.KeyFrame, video.PacketTypeSequenceStart, 0, s.format.VideoConfig)
		}
		h := s.buildHeader(chunk.StreamVideo, "video", uint8(message.TypeVideo), 0, uint32(len(tag)))
		if err := s.conn.Write(h, tag); err != nil {
			return errors.Wrap(err, "stream: write video sequence header")
		}
	}

	s.activeMedia = true
	return nil
}

// OnEncodedAudio hands one AAC frame, captured at ptsMillis on the
// encoder's own clock, to the stream. Frames handed in before the sequence
// headers have gone out are dropped.
func (s *Stream) OnEncodedAudio(buffer []byte, ptsMillis float64) error {
	return s.do(func() error {
		if !s.activeMedia {
			return nil
		}
		ts, ok := s.rebaser.Rebase(timestamp.Audio, ptsMillis)
		if !ok {
			return nil
		}
		tag := flv.AudioTag(audio.AACRaw, buffer)
		h := s.buildHeader(chunk.StreamAudio, "audio", uint8(message.TypeAudio), ts, uint32(len(tag)))
		return errors.Wrap(s.conn.Write(h, tag), "stream: write audio")
	})
}

// OnEncodedVideo hands one coded video access unit to the stream.
func (s *Stream) OnEncodedVideo(format VideoFormat, sample Sample) error {
	return s.do(func() error {
		if !s.activeMedia {
			return nil
		}
		ts, ok := s.rebaser.Rebase(timestamp.Video, sample.PTS)
		if !ok {
			return nil
		}
		frameType := video.InterFrame
		if sample.KeyFrame {
			frameType = video.KeyFrame
		}

		var tag []byte
		switch format {
		case AVC:
			tag = flv.AVCTag(frameType, video.AVCNALU, s.rebaser.CompositionTime(), sample.Data)
		case HEVC:
			tag = flv.HEVCTag(frameType, video.PacketTypeCodedFrames, s.rebaser.CompositionTime(), sample.Data)
		default:
			return errors.Errorf("stream: unknown video format %d", format)
		}

		h := s.buildHeader(chunk.StreamVideo, "video", uint8(message.TypeVideo), ts, uint32(len(tag)))
		return errors.Wrap(s.conn.Write(h, tag), "stream: write video")
	})
}

// buildHeader picks Type-0 for the first message ever sent under (csid,
// name) and Type-1 (a timestamp delta against the last message on that
// entry) for every one after it. name distinguishes handler names sharing
// the data chunk stream, per the Data Channel Table; audio and video each
// use one fixed name, so they behave exactly as a csid-only key would.
func (s *Stream) buildHeader(csid uint32, name string, typeID uint8, absoluteTimestamp, length uint32) chunk.Header {
	key := chunkKey{csid: csid, name: name}

	if !s.sentFirst[key] {
		s.sentFirst[key] = true
		s.lastTimestamp[key] = absoluteTimestamp
		return chunk.Header{
			Type:            chunk.TypeFull,
			ChunkStreamID:   csid,
			Timestamp:       absoluteTimestamp,
			MessageLength:   length,
			MessageTypeID:   typeID,
			MessageStreamID: s.messageStreamID,
		}
	}

	var delta uint32
	if absoluteTimestamp >= s.lastTimestamp[key] {
		delta = absoluteTimestamp - s.lastTimestamp[key]
	}
	s.lastTimestamp[key] = absoluteTimestamp
	return chunk.Header{
		Type:            chunk.TypeSameStream,
		ChunkStreamID:   csid,
		Timestamp:       delta,
		MessageLength:   length,
		MessageTypeID:   typeID,
		MessageStreamID: s.messageStreamID,
	}
}
