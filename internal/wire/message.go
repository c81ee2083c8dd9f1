// Package wire implements the length-prefixed framed message protocol
// used between client and server: a one-byte type tag, a four-byte
// big-endian length, and a payload of that many bytes. It is treated as
// a collaborator at the specification level (the socket is a local
// endpoint, out of the core's scope) but something has to produce bytes
// on the wire, so this package gives the framing a concrete, reusable
// home above any io.Reader/io.Writer.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Type is a single-byte message type tag.
type Type byte

// Message type tags, per spec.md §6.
const (
	Register         Type = 'R'
	Cancel           Type = 'Q'
	ForceDisconnect  Type = 'D'
	Connect          Type = 'C'
	Wait             Type = 'W'
	OK               Type = 'K'
	Refuse           Type = 'N'
	Err              Type = 'E'
	StartGame        Type = 'S'
	EndGame          Type = 'Z'
	Play             Type = 'P'
	Card             Type = 'A'
)

// maxPayload guards against a corrupt or hostile length prefix causing an
// unbounded allocation; no real message in this protocol comes close.
const maxPayload = 1 << 20

// Message is one framed protocol message.
type Message struct {
	Type    Type
	Payload []byte
}

// New builds a Message from a type and a string payload.
func New(t Type, payload string) Message {
	return Message{Type: t, Payload: []byte(payload)}
}

// Text returns the payload as a string.
func (m Message) Text() string {
	return string(m.Payload)
}

// ErrPeerClosed is returned by Read when the peer has closed its end of
// the connection — distinguished from other I/O errors the way
// original_source/comsock.c distinguishes ENOTCONN from a generic read
// failure.
var ErrPeerClosed = errors.New("wire: peer closed connection")

// Write frames and writes m to w in a single call, so that on a stream
// socket the whole frame is written atomically from the writer's point
// of view (matching comsock.c's sendMessage contract).
func Write(w io.Writer, m Message) error {
	if len(m.Payload) > maxPayload {
		return fmt.Errorf("wire: payload too large: %d bytes", len(m.Payload))
	}
	buf := make([]byte, 5+len(m.Payload))
	buf[0] = byte(m.Type)
	binary.BigEndian.PutUint32(buf[1:5], uint32(len(m.Payload)))
	copy(buf[5:], m.Payload)

	_, err := w.Write(buf)
	if err != nil {
		if errors.Is(err, io.ErrClosedPipe) || errors.Is(err, io.EOF) {
			return ErrPeerClosed
		}
		return err
	}
	return nil
}

// Read blocks for one complete framed message from r.
func Read(r io.Reader) (Message, error) {
	var header [5]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Message{}, ErrPeerClosed
		}
		return Message{}, err
	}
	length := binary.BigEndian.Uint32(header[1:5])
	if length > maxPayload {
		return Message{}, fmt.Errorf("wire: declared length %d exceeds limit", length)
	}
	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return Message{}, ErrPeerClosed
			}
			return Message{}, err
		}
	}
	return Message{Type: Type(header[0]), Payload: payload}, nil
}
