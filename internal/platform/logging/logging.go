// Package logging builds the one zerolog.Logger every binary in this
// module uses, grounded on cmd/crawler's setLogLevel/zerolog.New idiom.
package logging

import (
	"os"

	"github.com/rs/zerolog"
)

// New builds a logger writing timestamped JSON to stdout at the given
// level ("debug", "info", "warn", "error"; anything else falls back to
// info), and sets it as zerolog's global level so library code that
// logs through zerolog's package-level helpers respects it too.
func New(level string) zerolog.Logger {
	SetLevel(level)

	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// SetLevel sets the global zerolog level, mirroring cmd/crawler's
// setLogLevel switch.
func SetLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
