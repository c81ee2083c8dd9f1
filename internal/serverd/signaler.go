package serverd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/leombro/labsol-13/internal/registry"
)

// Signaler blocks on interrupt, terminate, and the checkpoint signal,
// grounded on original_source/brsserver.c's Signaler thread function
// (sigwait over SIGINT/SIGTERM/SIGUSR1) and on the signal.Notify pattern
// used in _examples/other_examples/2f202ce4_lox-pokerforbots__sdk-examples-complex-main.go.go
// and _examples/other_examples/e54c2d8c_deepaucksharma-InfraGuide__nrdot-mvp-cmd-standalone-main.go.go.
//
// SIGUSR1 is the checkpoint signal (spec.md's "user-defined checkpoint
// signal"); SIGINT/SIGTERM set the termination flag and stop the
// dispatcher.
type Signaler struct {
	term           *TermState
	reg            *registry.Registry
	dispatcher     *Dispatcher
	checkpointPath string
	log            zerolog.Logger
}

// NewSignaler builds a Signaler that checkpoints reg to checkpointPath
// and stops dispatcher on interrupt/terminate.
func NewSignaler(term *TermState, reg *registry.Registry, dispatcher *Dispatcher, checkpointPath string, log zerolog.Logger) *Signaler {
	return &Signaler{term: term, reg: reg, dispatcher: dispatcher, checkpointPath: checkpointPath, log: log}
}

// Run blocks handling signals until an interrupt or terminate signal
// arrives, stops and joins the dispatcher, and returns. It blocks its
// caller (cmd/server runs it on the main goroutine), so Run's return
// means shutdown is complete.
func (s *Signaler) Run() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1)
	defer signal.Stop(sigs)

	for sig := range sigs {
		switch sig {
		case syscall.SIGINT, syscall.SIGTERM:
			s.log.Info().Str("signal", sig.String()).Msg("terminating")
			s.term.Set()
			if err := s.dispatcher.Stop(); err != nil {
				s.log.Error().Err(err).Msg("stopping dispatcher")
			}
			s.dispatcher.Cleanup()
			return
		case syscall.SIGUSR1:
			s.log.Info().Msg("checkpoint signal received")
			if err := s.checkpoint(); err != nil {
				s.log.Error().Err(err).Msg("checkpoint failed")
			}
		}
	}
}

// checkpoint serializes the registry to checkpointPath in lexicographic
// order, matching spec.md §6's "same format as registry file, written
// atomically to a fixed path".
func (s *Signaler) checkpoint() error {
	tmp := s.checkpointPath + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := s.reg.Store(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, s.checkpointPath)
}
