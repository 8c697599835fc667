// Package udpsink provides the concrete exporter.Sink: a connected
// net.UDPConn.
package udpsink

import (
	"net"

	"github.com/davidch/flow/internal/flowerr"
)

// Sink writes one datagram per Send call to a connected UDP socket.
type Sink struct {
	conn *net.UDPConn
}

// Dial opens a UDP socket connected to addr. The socket is opened once and
// must be closed exactly once via Close (spec.md §5).
func Dial(addr *net.UDPAddr) (*Sink, error) {
	conn, err := net.DialUDP("udp4", nil, addr)
	if err != nil {
		return nil, &flowerr.SocketError{Cause: err}
	}
	return &Sink{conn: conn}, nil
}

// Send writes datagram as a single UDP packet. The socket carries no
// timeout (spec.md §5): a blocking write blocks the pipeline.
func (s *Sink) Send(datagram []byte) error {
	_, err := s.conn.Write(datagram)
	return err
}

// Close closes the underlying socket.
func (s *Sink) Close() error {
	return s.conn.Close()
}
