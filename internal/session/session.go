// Package session implements the per-connection worker: it receives the
// first message on an accepted connection and drives registration,
// cancellation, forced disconnect, or the connect-and-pair handshake
// that hands off into a match.
package session

import (
	"errors"
	"io"

	"github.com/rs/zerolog"

	"github.com/leombro/labsol-13/internal/deck"
	"github.com/leombro/labsol-13/internal/match"
	"github.com/leombro/labsol-13/internal/registry"
	"github.com/leombro/labsol-13/internal/wire"
)

const (
	reasonFormat           = "format"
	reasonAlready          = "already"
	reasonNoUser           = "no user"
	reasonWrongPassword    = "wrong password"
	reasonInvalidCreds     = "invalid credentials"
	reasonAlreadyConnected = "already connected"
	reasonNotSupported     = "not supported"
)

// TranscriptFactory opens the log for a given match serial, named and
// formatted per spec.md §6 ("Transcript per match N").
type TranscriptFactory func(serial int64) (io.WriteCloser, error)

// MatchCounter hands out a new, strictly increasing serial for naming
// match transcripts. sync/atomic's Int64, as used by cmd/server,
// satisfies this.
type MatchCounter interface {
	Add(delta int64) int64
}

// Worker handles one accepted connection end to end.
type Worker struct {
	reg        *registry.Registry
	table      *Table
	engine     *match.Engine
	counter    MatchCounter
	newDeck    func() *deck.Deck
	transcript TranscriptFactory
	log        zerolog.Logger
}

// NewWorker builds a Worker sharing the registry, connection table, match
// engine and counter with the rest of the server.
func NewWorker(reg *registry.Registry, table *Table, engine *match.Engine, counter MatchCounter, newDeck func() *deck.Deck, transcript TranscriptFactory, log zerolog.Logger) *Worker {
	return &Worker{reg: reg, table: table, engine: engine, counter: counter, newDeck: newDeck, transcript: transcript, log: log}
}

// Handle drives conn through the session state machine of spec.md §4.8.
// It returns when the connection's work is done and closes conn itself on
// every path except two: the WAIT paths leave it open, registered in the
// Table for a future challenger, and a failed Receive or Send during the
// CONNECT handshake returns the error with conn left unclosed.
func (w *Worker) Handle(conn wire.Conn) error {
	msg, err := conn.Receive()
	if err != nil {
		return err
	}

	switch msg.Type {
	case wire.Register:
		return w.handleRegister(conn, msg.Text())
	case wire.Cancel:
		return w.handleCancel(conn, msg.Text())
	case wire.ForceDisconnect:
		return w.handleDisconnect(conn, msg.Text())
	case wire.Connect:
		return w.handleConnect(conn, msg.Text())
	default:
		_ = conn.Send(wire.New(wire.Err, reasonNotSupported))
		return conn.Close()
	}
}

func (w *Worker) handleRegister(conn wire.Conn, payload string) error {
	defer conn.Close()
	u, err := registry.ParseUser(payload)
	if err != nil {
		return conn.Send(wire.New(wire.Err, reasonFormat))
	}
	switch err := w.reg.Add(u); {
	case err == nil:
		return conn.Send(wire.New(wire.OK, ""))
	case errors.Is(err, registry.ErrDuplicateUser):
		return conn.Send(wire.New(wire.Refuse, reasonAlready))
	default:
		return conn.Send(wire.New(wire.Err, err.Error()))
	}
}

func (w *Worker) handleCancel(conn wire.Conn, payload string) error {
	defer conn.Close()
	u, err := registry.ParseUser(payload)
	if err != nil {
		return conn.Send(wire.New(wire.Err, reasonFormat))
	}
	switch err := w.reg.Remove(u); {
	case err == nil:
		return conn.Send(wire.New(wire.OK, ""))
	case errors.Is(err, registry.ErrNoSuchUser):
		return conn.Send(wire.New(wire.Refuse, reasonNoUser))
	case errors.Is(err, registry.ErrWrongPassword):
		return conn.Send(wire.New(wire.Refuse, reasonWrongPassword))
	default:
		return conn.Send(wire.New(wire.Err, err.Error()))
	}
}

func (w *Worker) handleDisconnect(conn wire.Conn, payload string) error {
	defer conn.Close()
	u, err := registry.ParseUser(payload)
	if err != nil {
		return conn.Send(wire.New(wire.Err, reasonFormat))
	}
	if !w.reg.CheckPassword(u.Name, u.Password) {
		return conn.Send(wire.New(wire.Refuse, reasonInvalidCreds))
	}
	w.reg.Reset(u.Name)
	return conn.Send(wire.New(wire.OK, ""))
}

func (w *Worker) handleConnect(conn wire.Conn, payload string) error {
	u, err := registry.ParseUser(payload)
	if err != nil {
		defer conn.Close()
		return conn.Send(wire.New(wire.Err, reasonFormat))
	}
	if !w.reg.CheckPassword(u.Name, u.Password) {
		defer conn.Close()
		return conn.Send(wire.New(wire.Refuse, reasonInvalidCreds))
	}

	status, err := w.reg.GetStatus(u.Name)
	if err != nil {
		defer conn.Close()
		return conn.Send(wire.New(wire.Refuse, reasonInvalidCreds))
	}
	if status == registry.Waiting || status == registry.Playing {
		defer conn.Close()
		return conn.Send(wire.New(wire.Err, reasonAlreadyConnected))
	}

	waiting := w.reg.ListByStatus(registry.Waiting)
	if waiting == registry.NoUsersSentinel {
		w.registerWaiting(conn, u.Name)
		return conn.Send(wire.New(wire.Wait, ""))
	}

	if err := conn.Send(wire.New(wire.OK, waiting)); err != nil {
		return err
	}

	second, err := conn.Receive()
	if err != nil {
		return err
	}
	switch second.Type {
	case wire.Wait:
		w.registerWaiting(conn, u.Name)
		return conn.Send(wire.New(wire.OK, ""))
	case wire.OK:
		return w.pair(conn, u.Name, second.Text())
	default:
		defer conn.Close()
		return conn.Send(wire.New(wire.Err, reasonNotSupported))
	}
}

// registerWaiting records conn in the connection table under a fresh
// handle and marks name Waiting with that handle as its channel.
func (w *Worker) registerWaiting(conn wire.Conn, name string) {
	handle := w.table.Register(conn)
	w.reg.SetChannel(name, handle)
	w.reg.SetStatus(name, registry.Waiting)
}

// pair resolves the chosen opponent, runs the match to completion, and
// resets both users and closes both connections before returning.
func (w *Worker) pair(conn wire.Conn, name, opponent string) error {
	oppStatus, err := w.reg.GetStatus(opponent)
	if err != nil || oppStatus != registry.Waiting {
		defer conn.Close()
		return conn.Send(wire.New(wire.Refuse, reasonNoUser))
	}
	oppHandle, err := w.reg.GetChannel(opponent)
	if err != nil {
		defer conn.Close()
		return conn.Send(wire.New(wire.Refuse, reasonNoUser))
	}
	oppConn, ok := w.table.Lookup(oppHandle)
	if !ok {
		defer conn.Close()
		return conn.Send(wire.New(wire.Refuse, reasonNoUser))
	}

	w.reg.SetStatus(name, registry.Playing)
	w.reg.SetStatus(opponent, registry.Playing)
	if err := conn.Send(wire.New(wire.OK, "")); err != nil {
		w.resetAndClose(name, opponent, oppHandle, conn, oppConn)
		return err
	}

	serial := w.counter.Add(1)
	tw, err := w.transcript(serial)
	if err != nil {
		w.log.Error().Err(err).Int64("serial", serial).Msg("failed to open match transcript")
		w.resetAndClose(name, opponent, oppHandle, conn, oppConn)
		return err
	}
	defer tw.Close()

	_, playErr := w.engine.Play(w.newDeck(), tw, match.Player{Name: name, Conn: conn}, match.Player{Name: opponent, Conn: oppConn})
	w.resetAndClose(name, opponent, oppHandle, conn, oppConn)
	return playErr
}

func (w *Worker) resetAndClose(name, opponent string, oppHandle int, conn, oppConn wire.Conn) {
	w.reg.Reset(name)
	w.reg.Reset(opponent)
	w.table.Remove(oppHandle)
	if err := conn.Close(); err != nil {
		w.log.Debug().Err(err).Msg("closing challenger connection")
	}
	if err := oppConn.Close(); err != nil {
		w.log.Debug().Err(err).Msg("closing opponent connection")
	}
}
