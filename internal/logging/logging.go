package logging

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global logger. Release mode emits structured JSON;
// anything else gets a console writer for local readability. Verbosity comes
// from LOG_LEVEL (error, warn, info, debug, trace), defaulting to info.
func Init(ginMode string) {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(ParseLevel(os.Getenv("LOG_LEVEL")))

	if ginMode != "release" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

// ParseLevel maps a LOG_LEVEL value onto a zerolog level. Unknown values fall
// back to info rather than failing boot.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return zerolog.ErrorLevel
	case "warn":
		return zerolog.WarnLevel
	case "debug":
		return zerolog.DebugLevel
	case "trace":
		return zerolog.TraceLevel
	default:
		return zerolog.InfoLevel
	}
}
