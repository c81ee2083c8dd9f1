// Command server runs the Briscola match server: it loads a user
// registry, listens on a Unix domain socket, and dispatches one session
// worker per accepted connection. See original_source/brsserver.c's
// main for the thread layout this mirrors (dispatcher + signaler).
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"net"
	"os"
	"sync/atomic"
	"time"

	"github.com/leombro/labsol-13/internal/deck"
	"github.com/leombro/labsol-13/internal/logging"
	"github.com/leombro/labsol-13/internal/match"
	"github.com/leombro/labsol-13/internal/registry"
	"github.com/leombro/labsol-13/internal/serverd"
	"github.com/leombro/labsol-13/internal/session"
	"github.com/leombro/labsol-13/internal/wire"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	testDeck := flag.Bool("t", false, "use a deterministic deck generator (testing)")
	socketPath := flag.String("socket", "/tmp/briscola.sock", "unix socket path")
	checkpointPath := flag.String("checkpoint", "", "checkpoint file path (default <users_file>.checkpoint)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: server [-t] [-debug] [-socket path] [-checkpoint path] users_file")
		os.Exit(1)
	}
	usersFile := flag.Arg(0)
	if *checkpointPath == "" {
		*checkpointPath = usersFile + ".checkpoint"
	}

	log := logging.New(*debug)

	reg := registry.New()
	uf, err := os.Open(usersFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", usersFile).Msg("opening users file")
	}
	n, err := reg.Load(uf)
	uf.Close()
	if err != nil {
		log.Fatal().Err(err).Msg("loading users file")
	}
	log.Info().Int("users", n).Msg("loaded registry")

	os.Remove(*socketPath)
	ln, err := net.Listen("unix", *socketPath)
	if err != nil {
		log.Fatal().Err(err).Str("socket", *socketPath).Msg("listening")
	}
	log.Info().Str("socket", *socketPath).Msg("listening")

	term := &serverd.TermState{}
	table := session.NewTable()
	engine := match.NewEngine(log)

	var counter atomic.Int64
	newDeck := realDeckSource
	if *testDeck {
		newDeck = func() *deck.Deck { return deck.New(deck.FixedOrderSource()) }
	}

	worker := session.NewWorker(reg, table, engine, &counter, newDeck, serverd.TranscriptFactory("."), log)

	dispatcher := serverd.NewDispatcher(ln, term, func(conn net.Conn) {
		if err := worker.Handle(wire.NewConn(conn)); err != nil {
			log.Debug().Err(err).Msg("session worker finished with error")
		}
	}, log)

	signaler := serverd.NewSignaler(term, reg, dispatcher, *checkpointPath, log)

	go dispatcher.Serve()
	signaler.Run()

	if sf, err := os.Create(usersFile); err != nil {
		log.Error().Err(err).Msg("persisting registry on shutdown")
	} else {
		if _, err := reg.Store(sf); err != nil {
			log.Error().Err(err).Msg("persisting registry on shutdown")
		}
		sf.Close()
	}

	log.Info().Msg("server shut down cleanly")
}

func realDeckSource() *deck.Deck {
	return deck.New(rand.New(rand.NewSource(time.Now().UnixNano())))
}
