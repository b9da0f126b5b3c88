// Package logging bootstraps the zerolog logger shared by the CLI and
// embedding hosts.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// EnvLogLevel overrides the configured level when set.
const EnvLogLevel = "PETRA_LOG_LEVEL"

// New builds the application logger at the given level, writing
// human-readable console output to w.
func New(w io.Writer, level string) zerolog.Logger {
	if env := os.Getenv(EnvLogLevel); env != "" {
		level = env
	}
	lvl := ParseLevel(level)
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	return zerolog.New(out).Level(lvl).With().Timestamp().Str("app", "petra").Logger()
}

// ParseLevel maps a config level name to a zerolog level. Unknown names
// fall back to info.
func ParseLevel(raw string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	}
	return zerolog.InfoLevel
}
