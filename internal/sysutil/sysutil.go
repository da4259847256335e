// Package sysutil holds process-level setup helpers shared by the server
// entrypoint: global logger configuration driven by the LOG_LEVEL and
// LOG_PRETTY settings.
package sysutil

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogging configures the global zerolog state for the process: the level
// first, then an optional human-readable console writer for local runs.
// Production deployments keep pretty off so log shippers receive JSON lines.
func InitLogging(level string, pretty bool) {
	SetLogLevel(level)
	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// SetLogLevel sets the global zerolog level from its string form. "warning"
// is accepted as an alias for "warn"; empty or unknown values fall back to
// info, so a typo in LOG_LEVEL can never silence the service.
func SetLogLevel(level string) {
	s := strings.ToLower(strings.TrimSpace(level))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
