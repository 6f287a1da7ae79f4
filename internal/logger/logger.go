//go:build !logless

// Package logger exposes the package-level structured logger used across
// the rowing core. Firmware builds that need to shed the zerolog
// dependency entirely opt in with the logless build tag.
package logger

import (
	"os"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// Log is the package-level logger. Replace it with Set for tests or
// alternate sinks.
var Log = zlog.With().Caller().Logger().Output(zerolog.ConsoleWriter{Out: os.Stderr})

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
}

// Set replaces the package-level logger, e.g. to capture output in a test
// or to redirect to a firmware console UART.
func Set(l zerolog.Logger) {
	Log = l
}
