package stream

// ReadyState is the publish lifecycle's current phase.
type ReadyState int

const (
	// Initialized is the state before the underlying connection has
	// finished its connect handshake. A Publish call made here is queued
	// and flushed once the connection reaches Open.
	Initialized ReadyState = iota
	// Open means the connection accepted NetConnection.connect and is
	// ready to create a stream and publish on it.
	Open
	// Publish means createStream and publish have been sent and the
	// server's NetStream.Publish.Start is still pending.
	Publish
	// Publishing means the server accepted the publish and encoded
	// audio/video handed to the stream are being sent.
	Publishing
)

func (s ReadyState) String() string {
	switch s {
	case Initialized:
		return "initialized"
	case Open:
		return "open"
	case Publish:
		return "publish"
	case Publishing:
		return "publishing"
	default:
		return "unknown"
	}
}
