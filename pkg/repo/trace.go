package repo

import (
	"os"

	"github.com/rs/zerolog"
)

// traceLogger returns the internal trace logger. It is a no-op unless
// GUTS_TRACE is set, in which case human-readable trace lines go to
// standard error.
func traceLogger() zerolog.Logger {
	if os.Getenv("GUTS_TRACE") == "" {
		return zerolog.Nop()
	}
	w := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(w).Level(zerolog.TraceLevel).With().Timestamp().Logger()
}
