// Package logging builds the single zerolog.Logger each binary
// constructs once at startup and passes down explicitly to every
// long-lived component (dispatcher, signaler, session worker, match
// engine) — no package-level global logger.
//
// Grounded on _examples/other_examples/2f202ce4_lox-pokerforbots__sdk-examples-complex-main.go.go's
// main(), which builds its logger the same way: a console writer on
// stderr, a level derived from a debug flag, a timestamp field.
package logging

import (
	"os"

	"github.com/rs/zerolog"
)

// New builds a console-writer zerolog.Logger on stderr at info level, or
// debug level when debug is true.
func New(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}
