package connection

import (
	"io"
	"net"
	"testing"
	"time"
)

func TestClientHandshakeAgainstFakeServer(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- fakeServerHandshake(server)
	}()

	clientErr := make(chan error, 1)
	go func() {
		clientErr <- clientHandshake(client)
	}()

	select {
	case err := <-clientErr:
		if err != nil {
			t.Fatalf("clientHandshake: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("clientHandshake timed out")
	}
	if err := <-serverErr; err != nil {
		t.Fatalf("fake server side: %v", err)
	}
}

// fakeServerHandshake plays the server side of the plain RTMP handshake
// well enough to exercise the client's C0/C1/S0/S1/S2/C2 exchange.
func fakeServerHandshake(rw io.ReadWriter) error {
	c0 := make([]byte, 1)
	if _, err := io.ReadFull(rw, c0); err != nil {
		return err
	}
	c1 := make([]byte, handshakePackSize)
	if _, err := io.ReadFull(rw, c1); err != nil {
		return err
	}

	s1 := make([]byte, handshakePackSize)
	if _, err := rw.Write(append([]byte{rtmpVersion}, s1...)); err != nil {
		return err
	}
	if _, err := rw.Write(c1); err != nil { // S2 echoes C1
		return err
	}

	c2 := make([]byte, handshakePackSize)
	_, err := io.ReadFull(rw, c2)
	return err
}
