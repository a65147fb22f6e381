package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

const defaultLogLevel = zerolog.WarnLevel

// newLogger builds the stderr logger. Terminals get the console writer,
// anything else gets JSON lines. An explicit level wins over --debug.
func newLogger(w io.Writer, level string, debugEnabled bool) (zerolog.Logger, error) {
	lvl := defaultLogLevel
	if debugEnabled {
		lvl = zerolog.DebugLevel
	}
	if name := strings.TrimSpace(level); name != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(name))
		if err != nil || parsed == zerolog.NoLevel {
			return zerolog.Nop(), ValidationError{Message: fmt.Sprintf("invalid --log-level %q (expected debug|info|warn|error)", level)}
		}
		lvl = parsed
	}

	if isTerminal(w) {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Str("app", "icd10").Logger(), nil
}
