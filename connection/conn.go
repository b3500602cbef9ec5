// Package connection dials an RTMP server, performs the handshake, and
// carries chunked messages over the resulting socket: a blocking Write for
// outbound messages and a background read pump that decodes inbound
// chunks and fans them out through an event dispatcher.
package connection

import (
	"bufio"
	"net"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"rtmppub/chunk"
	"rtmppub/event"
	"rtmppub/message"
)

// Conn is a single handshaken RTMP connection.
type Conn struct {
	nc net.Conn
	r  *bufio.Reader

	writeMu      sync.Mutex
	w            *bufio.Writer
	outChunkSize uint32

	decoder    *chunk.Decoder
	dispatcher *event.Dispatcher
	logger     *zap.SugaredLogger

	bytesSent int64
	bytesRecv int64

	ackMu         sync.Mutex
	ackWindowSize uint32
	bytesSinceAck uint32

	pendingMu sync.Mutex
	pending   map[float64]chan message.Command
	nextTxnID float64

	closed chan struct{}
	once   sync.Once
}

// Dial opens a TCP connection to addr, performs the RTMP handshake, and
// starts the background read pump. addr is host:port; the RTMP scheme and
// app path are not part of it.
func Dial(addr string, logger *zap.SugaredLogger) (*Conn, error) {
	nc, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "connection: dial %s", addr)
	}

	if err := clientHandshake(nc); err != nil {
		nc.Close()
		return nil, err
	}

	c := &Conn{
		nc:           nc,
		r:            bufio.NewReader(nc),
		w:            bufio.NewWriter(nc),
		outChunkSize: chunk.DefaultChunkSize,
		dispatcher:   event.NewDispatcher(),
		logger:       logger,
		pending:      make(map[float64]chan message.Command),
		closed:       make(chan struct{}),
	}
	c.decoder = chunk.NewDecoder(c.r)

	go c.readPump()
	return c, nil
}

// Dispatcher exposes the connection's event registry so other packages can
// subscribe to EventConnectionLost and EventCommand.
func (c *Conn) Dispatcher() *event.Dispatcher {
	return c.dispatcher
}

// SetOutgoingChunkSize changes the chunk size future Write calls fragment
// payloads at, and tells the peer about it with a Set Chunk Size message.
func (c *Conn) SetOutgoingChunkSize(size uint32) error {
	payload := message.EncodeSetChunkSize(size)
	h := chunk.Header{
		Type:          chunk.TypeFull,
		ChunkStreamID: chunk.StreamControl,
		MessageTypeID: uint8(message.TypeSetChunkSize),
		MessageLength: uint32(len(payload)),
	}
	if err := c.Write(h, payload); err != nil {
		return err
	}
	c.outChunkSize = size
	return nil
}

// SetWindowAckSize tells the peer the window size this client wants
// acknowledgements at, via a Window Acknowledgement Size message.
func (c *Conn) SetWindowAckSize(size uint32) error {
	payload := message.EncodeWindowAckSize(size)
	h := chunk.Header{
		Type:          chunk.TypeFull,
		ChunkStreamID: chunk.StreamControl,
		MessageTypeID: uint8(message.TypeWindowAckSize),
		MessageLength: uint32(len(payload)),
	}
	return c.Write(h, payload)
}

// Write encodes h and payload as one or more chunks and sends them,
// blocking until the underlying socket accepts the write.
func (c *Conn) Write(h chunk.Header, payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	encoded, err := chunk.Encode(h, payload, c.outChunkSize)
	if err != nil {
		return errors.Wrap(err, "connection: encode chunk")
	}
	n, err := c.w.Write(encoded)
	atomic.AddInt64(&c.bytesSent, int64(n))
	if err != nil {
		return errors.Wrap(err, "connection: write chunk")
	}
	return errors.Wrap(c.w.Flush(), "connection: flush chunk")
}

// ByteCount returns the total bytes written to the socket so far.
func (c *Conn) ByteCount() int64 {
	return atomic.LoadInt64(&c.bytesSent)
}

// Close tears down the socket. It is safe to call more than once.
func (c *Conn) Close() error {
	var err error
	c.once.Do(func() {
		close(c.closed)
		err = c.nc.Close()
	})
	return err
}

func (c *Conn) readPump() {
	for {
		hdr, payload, err := c.decoder.Read()
		if err != nil {
			c.logger.Debugw("connection read pump stopped", "error", err)
			c.dispatcher.Dispatch(EventConnectionLost, err)
			return
		}
		atomic.AddInt64(&c.bytesRecv, int64(len(payload)))
		c.handleMessage(hdr, payload)
		c.maybeAcknowledge(len(payload))
	}
}

func (c *Conn) handleMessage(hdr chunk.Header, payload []byte) {
	switch message.TypeID(hdr.MessageTypeID) {
	case message.TypeSetChunkSize:
		size, err := message.DecodeSetChunkSize(payload)
		if err != nil {
			c.logger.Errorw("failed to decode set chunk size", "error", err)
			return
		}
		c.decoder.SetChunkSize(size)
	case message.TypeWindowAckSize:
		size, err := message.DecodeWindowAckSize(payload)
		if err != nil {
			c.logger.Errorw("failed to decode window ack size", "error", err)
			return
		}
		c.ackMu.Lock()
		c.ackWindowSize = size
		c.ackMu.Unlock()
	case message.TypeUserControl:
		c.handleUserControl(payload)
	case message.TypeSetPeerBandwidth, message.TypeAcknowledgement:
		// Nothing further to do with these for a publish-only client.
	case message.TypeCommandAmf0:
		c.handleCommand(payload)
	default:
		c.logger.Debugw("dropping unhandled inbound message", "typeID", hdr.MessageTypeID)
	}
}

// handleUserControl reacts to an inbound User Control Message. The only
// event a publish-only client needs to answer is a Ping Request, which it
// must echo back as a Ping Response carrying the same timestamp.
func (c *Conn) handleUserControl(payload []byte) {
	eventType, data, err := message.DecodeUserControl(payload)
	if err != nil {
		c.logger.Errorw("failed to decode user control message", "error", err)
		return
	}
	if eventType != message.EventPingRequest {
		return
	}
	resp := message.EncodeUserControl(message.EventPingResponse, data...)
	h := chunk.Header{
		Type:          chunk.TypeFull,
		ChunkStreamID: chunk.StreamControl,
		MessageTypeID: uint8(message.TypeUserControl),
		MessageLength: uint32(len(resp)),
	}
	if err := c.Write(h, resp); err != nil {
		c.logger.Warnw("failed to reply to ping request", "error", err)
	}
}

// maybeAcknowledge sends an Acknowledgement once the peer's advertised
// window acknowledgement size has been received since the last one sent.
func (c *Conn) maybeAcknowledge(n int) {
	c.ackMu.Lock()
	defer c.ackMu.Unlock()
	if c.ackWindowSize == 0 {
		return
	}
	c.bytesSinceAck += uint32(n)
	if c.bytesSinceAck < c.ackWindowSize {
		return
	}
	c.bytesSinceAck = 0

	payload := message.EncodeAcknowledgement(uint32(atomic.LoadInt64(&c.bytesRecv)))
	h := chunk.Header{
		Type:          chunk.TypeFull,
		ChunkStreamID: chunk.StreamControl,
		MessageTypeID: uint8(message.TypeAcknowledgement),
		MessageLength: uint32(len(payload)),
	}
	if err := c.Write(h, payload); err != nil {
		c.logger.Warnw("failed to send acknowledgement", "error", err)
	}
}

func (c *Conn) handleCommand(payload []byte) {
	cmd, err := message.DecodeCommand(payload)
	if err != nil {
		c.logger.Warnw("failed to decode inbound command", "error", err)
		return
	}

	if cmd.Name == "_result" || cmd.Name == "_error" {
		c.pendingMu.Lock()
		reply, ok := c.pending[cmd.TransactionID]
		if ok {
			delete(c.pending, cmd.TransactionID)
		}
		c.pendingMu.Unlock()
		if ok {
			reply <- cmd
			return
		}
	}
	c.dispatcher.Dispatch(EventCommand, cmd)
}

// call sends an AMF0 command on the given message stream id and blocks for
// its _result/_error reply.
func (c *Conn) call(msgStreamID uint32, name string, args ...interface{}) (message.Command, error) {
	c.pendingMu.Lock()
	c.nextTxnID++
	txnID := c.nextTxnID
	reply := make(chan message.Command, 1)
	c.pending[txnID] = reply
	c.pendingMu.Unlock()

	payload, err := message.EncodeCommand(message.Command{Name: name, TransactionID: txnID, Args: args})
	if err != nil {
		return message.Command{}, err
	}
	h := chunk.Header{
		Type:            chunk.TypeFull,
		ChunkStreamID:   chunk.StreamCommand,
		MessageTypeID:   uint8(message.TypeCommandAmf0),
		MessageLength:   uint32(len(payload)),
		MessageStreamID: msgStreamID,
	}
	if err := c.Write(h, payload); err != nil {
		return message.Command{}, err
	}

	select {
	case resp := <-reply:
		return resp, nil
	case <-c.closed:
		return message.Command{}, errors.Errorf("connection: closed while awaiting reply to %q", name)
	}
}

// Connect performs NetConnection.connect against app, using tcURL as the
// URL the server sees the client as connecting to.
func (c *Conn) Connect(app, tcURL string) error {
	resp, err := c.call(0, "connect", map[string]interface{}{
		"app":          app,
		"flashVer":     "FMLE/3.0 (compatible; rtmppub)",
		"tcUrl":        tcURL,
		"fpad":         false,
		"capabilities": float64(15),
		"audioCodecs":  float64(0x0400),
		"videoCodecs":  float64(0x0080),
	})
	if err != nil {
		return err
	}
	if resp.Name == "_error" {
		return errors.Errorf("connection: connect rejected: %v", resp.Args)
	}
	return nil
}

// CreateStream performs NetConnection.createStream and returns the message
// stream id the server assigned.
func (c *Conn) CreateStream() (uint32, error) {
	resp, err := c.call(0, "createStream", nil)
	if err != nil {
		return 0, err
	}
	if resp.Name == "_error" {
		return 0, errors.Errorf("connection: createStream rejected: %v", resp.Args)
	}
	if len(resp.Args) < 2 {
		return 0, errors.New("connection: createStream _result missing stream id argument")
	}
	id, ok := resp.Args[1].(float64)
	if !ok {
		return 0, errors.Errorf("connection: createStream _result stream id is %T, not a number", resp.Args[1])
	}
	return uint32(id), nil
}

// Publish sends NetStream.publish for streamKey as a live stream on
// messageStreamID. Servers answer publish with onStatus, not a
// _result/_error reply, so this does not wait for one: it writes the
// command and returns as soon as the bytes are on the wire. The
// NetStream.Publish.Start/BadName/Denied/Failed notification arrives later
// as a command dispatched via EventCommand.
func (c *Conn) Publish(messageStreamID uint32, streamKey string) error {
	return c.notify(messageStreamID, "publish", nil, streamKey, "live")
}

// notify sends an AMF0 command that expects no _result/_error reply.
func (c *Conn) notify(msgStreamID uint32, name string, args ...interface{}) error {
	payload, err := message.EncodeCommand(message.Command{Name: name, TransactionID: 0, Args: args})
	if err != nil {
		return err
	}
	h := chunk.Header{
		Type:            chunk.TypeFull,
		ChunkStreamID:   chunk.StreamCommand,
		MessageTypeID:   uint8(message.TypeCommandAmf0),
		MessageLength:   uint32(len(payload)),
		MessageStreamID: msgStreamID,
	}
	return c.Write(h, payload)
}
