package connection

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"rtmppub/rand"
)

const (
	rtmpVersion       = 3
	handshakePackSize = 1536
)

// clientHandshake performs the plain (unencrypted) RTMP handshake as the
// client: send C0+C1, read S0+S1+S2, send C2 echoing S1's random payload.
func clientHandshake(rw io.ReadWriter) error {
	c1, err := buildC1()
	if err != nil {
		return errors.Wrap(err, "connection: build C1")
	}

	if _, err := rw.Write(append([]byte{rtmpVersion}, c1...)); err != nil {
		return errors.Wrap(err, "connection: send C0+C1")
	}

	s0 := make([]byte, 1)
	if _, err := io.ReadFull(rw, s0); err != nil {
		return errors.Wrap(err, "connection: read S0")
	}
	if s0[0] != rtmpVersion {
		return errors.Errorf("connection: server offered handshake version %d, want %d", s0[0], rtmpVersion)
	}

	s1 := make([]byte, handshakePackSize)
	if _, err := io.ReadFull(rw, s1); err != nil {
		return errors.Wrap(err, "connection: read S1")
	}

	s2 := make([]byte, handshakePackSize)
	if _, err := io.ReadFull(rw, s2); err != nil {
		return errors.Wrap(err, "connection: read S2")
	}

	c2 := buildC2(s1)
	if _, err := rw.Write(c2); err != nil {
		return errors.Wrap(err, "connection: send C2")
	}
	return nil
}

// buildC1 builds the 1536-byte C1 packet: a 4-byte time, 4 zero bytes, and
// 1528 bytes of random data the server echoes back in S2.
func buildC1() ([]byte, error) {
	b := make([]byte, handshakePackSize)
	binary.BigEndian.PutUint32(b[0:4], 0)
	// bytes 4:8 are zero per the plain handshake
	if err := rand.GenerateCryptoSafeRandomData(b[8:]); err != nil {
		return nil, err
	}
	return b, nil
}

// buildC2 echoes s1 back as the C2 packet: its time field and its random
// payload, with C2's own "time2" field set to s1's time.
func buildC2(s1 []byte) []byte {
	c2 := make([]byte, handshakePackSize)
	copy(c2, s1[:4])
	copy(c2[4:8], s1[:4])
	copy(c2[8:], s1[8:])
	return c2
}
