package wire

import "io"

// Conn is the typed-message send/receive interface the core depends on,
// keeping match and session logic decoupled from net.Conn so it can run
// against net.Pipe() or any other io.ReadWriteCloser in tests.
type Conn interface {
	Send(Message) error
	Receive() (Message, error)
	Close() error
}

// streamConn adapts any io.ReadWriteCloser to Conn using the wire framing.
type streamConn struct {
	rwc io.ReadWriteCloser
}

// NewConn wraps a stream (a Unix-domain socket connection, a net.Pipe
// end, or anything else satisfying io.ReadWriteCloser) as a Conn.
func NewConn(rwc io.ReadWriteCloser) Conn {
	return &streamConn{rwc: rwc}
}

func (c *streamConn) Send(m Message) error {
	return Write(c.rwc, m)
}

func (c *streamConn) Receive() (Message, error) {
	return Read(c.rwc)
}

func (c *streamConn) Close() error {
	return c.rwc.Close()
}
