// Package logger builds the root zerolog instance for the engine.
// Modules derive their own sub-loggers from it via
// log.With().Str("service"|"component"|"handler", ...).
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config controls the root logger's level and output format
type Config struct {
	Level  string // debug, info, warn, error
	Pretty bool   // human-readable console output for dev mode
}

// New builds the root logger. Unrecognized levels fall back to info so a
// typo in LOG_LEVEL can never silence the engine.
func New(cfg Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	var output io.Writer = os.Stdout
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}

	return zerolog.New(output).With().Timestamp().Caller().Logger()
}

// SetGlobalLogger replaces zerolog's package-level logger so code that
// reaches for the global log.Logger shares the engine's configuration.
func SetGlobalLogger(l zerolog.Logger) {
	log.Logger = l
}
