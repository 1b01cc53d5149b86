// Package logging centralizes zerolog setup. Every component receives a
// zerolog.Logger value from main rather than reaching for a package-global
// logger, so tests can redirect output and attach per-component fields
// (connection remote addr, file path, worker id) the way the rest of the
// retrieved pack does.
package logging

import (
	"os"

	"github.com/rs/zerolog"
)

// EnvLevelVar is the environment variable consulted for verbosity, playing
// the role the original Rust binary gave to env_logger's RUST_LOG.
const EnvLevelVar = "SEARCHD_LOG_LEVEL"

// New builds a root logger writing to os.Stderr through a console writer,
// with its level taken from EnvLevelVar. An unset or unrecognized value
// defaults to info.
func New() zerolog.Logger {
	level := zerolog.InfoLevel
	if v := os.Getenv(EnvLevelVar); v != "" {
		if parsed, err := zerolog.ParseLevel(v); err == nil {
			level = parsed
		}
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		Level(level).
		With().Timestamp().Logger()
}
