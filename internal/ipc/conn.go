package ipc

import (
	"fmt"
	"io"
	"net"
	"sync"
)

// FrameConn wraps a net.Conn with frame-aware Send/Receive and serialises
// writes so concurrent senders never interleave partial frames.
type FrameConn struct {
	conn    net.Conn
	writeMu sync.Mutex
	dec     *Decoder
	readBuf [32 * 1024]byte
}

// NewFrameConn adopts conn as a framed transport.
func NewFrameConn(conn net.Conn) *FrameConn {
	return &FrameConn{conn: conn, dec: NewDecoder()}
}

// Send encodes and writes f atomically with respect to other Send calls.
func (c *FrameConn) Send(f Frame) error {
	b, err := Encode(f)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_, err = c.conn.Write(b)
	return err
}

// Receive blocks until one full frame is available, reading more bytes from
// the underlying conn as needed and resynchronising past any framing error.
func (c *FrameConn) Receive() (Frame, error) {
	for {
		f, err := c.dec.Next()
		if err == nil {
			return f, nil
		}
		if err != ErrIncomplete {
			// Malformed payload: already resynced past the bad frame by
			// Decoder.Next; keep trying with what remains buffered.
			continue
		}
		n, rerr := c.conn.Read(c.readBuf[:])
		if n > 0 {
			c.dec.Feed(c.readBuf[:n])
		}
		if rerr != nil {
			if n > 0 {
				// Give the freshly fed bytes one more decode attempt before
				// surfacing the read error.
				if f, ferr := c.dec.Next(); ferr == nil {
					return f, nil
				}
			}
			if rerr == io.EOF {
				return Frame{}, io.EOF
			}
			return Frame{}, fmt.Errorf("ipc: read: %w", rerr)
		}
	}
}

// Close closes the underlying connection.
func (c *FrameConn) Close() error { return c.conn.Close() }
