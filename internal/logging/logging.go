// Package logging builds the diagnostic logger shared by commands.
package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Config selects the log level and output format.
type Config struct {
	Level  string // zerolog level name; empty means "warn"
	Format string // "console" or "json"
}

// New returns a logger writing to w.
func New(cfg Config, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.WarnLevel
	}

	if cfg.Format == "json" {
		zerolog.TimeFieldFormat = time.RFC3339
		return zerolog.New(w).Level(level).With().Timestamp().Logger()
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: true}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
