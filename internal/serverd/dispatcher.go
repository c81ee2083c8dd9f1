// Package serverd implements the two long-lived server threads described
// in spec.md §4.9/§4.10: the dispatcher (accept loop) and the signaler
// (signal handling and registry checkpointing).
package serverd

import (
	"net"

	"github.com/rs/zerolog"
)

// Dispatcher accepts connections on a listener and spawns one goroutine
// per connection, recording each worker's completion in an append-only
// slice. Grounded on original_source/brsserver.c's Dispatcher thread
// function: it loops on accept guarded by the termination flag, and its
// cleanup (joinAllThreads) only ever runs after the accept loop itself
// has returned — so Cleanup reading the slice here never races Serve's
// appends, the same sequencing the source gets for free from
// pthread_cancel only taking effect at accept's cancellation point.
type Dispatcher struct {
	ln      net.Listener
	term    *TermState
	handle  func(net.Conn)
	log     zerolog.Logger
	workers []chan struct{}
	served  chan struct{}
}

// NewDispatcher builds a Dispatcher that accepts on ln and runs handle
// for each accepted connection.
func NewDispatcher(ln net.Listener, term *TermState, handle func(net.Conn), log zerolog.Logger) *Dispatcher {
	return &Dispatcher{ln: ln, term: term, handle: handle, log: log, served: make(chan struct{})}
}

// Serve runs the accept loop until the listener is closed or the
// termination flag is set, then returns. Call Cleanup afterward to join
// every spawned worker.
func (d *Dispatcher) Serve() {
	defer close(d.served)
	for {
		if d.term.IsSet() {
			return
		}
		conn, err := d.ln.Accept()
		if err != nil {
			d.log.Debug().Err(err).Msg("dispatcher accept loop returning")
			return
		}
		done := make(chan struct{})
		d.workers = append(d.workers, done)
		go func() {
			defer close(done)
			d.handle(conn)
		}()
	}
}

// Stop closes the listener, unblocking a pending Accept so Serve returns.
func (d *Dispatcher) Stop() error {
	return d.ln.Close()
}

// Cleanup joins every worker spawned by Serve, in the order each was
// accepted. It first waits for Serve to return, so it must only be called
// once Serve has been started.
func (d *Dispatcher) Cleanup() {
	<-d.served
	for _, done := range d.workers {
		<-done
	}
	d.log.Info().Int("workers", len(d.workers)).Msg("all workers joined")
}
