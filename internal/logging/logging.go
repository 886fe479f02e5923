// Package logging configures the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Mode selects how much the service logs.
type Mode string

const (
	// ModeOff discards all output.
	ModeOff Mode = "off"
	// ModeCompact logs review milestones and per-clause verdicts (Info and above).
	ModeCompact Mode = "compact"
	// ModeVerbose adds collaborator traffic and raw previews (Debug and above).
	ModeVerbose Mode = "verbose"
)

// PreviewChars is the length raw model output is cut to in log lines.
const PreviewChars = 220

// ParseMode parses a mode name; empty means compact.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeCompact, nil
	case ModeOff, ModeCompact, ModeVerbose:
		return m, nil
	default:
		return "", fmt.Errorf("unknown log mode %q (want off, compact or verbose)", s)
	}
}

// Level returns the minimum slog level for the mode.
func (m Mode) Level() slog.Level {
	if m == ModeVerbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// Init configures the global slog default for the given mode and format and
// returns it. If w is nil, os.Stderr is used. Format is "text" or "json".
func Init(mode Mode, format string, w ...io.Writer) *slog.Logger {
	var writer io.Writer = os.Stderr
	if len(w) > 0 && w[0] != nil {
		writer = w[0]
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: mode.Level()}
	switch {
	case mode == ModeOff:
		handler = slog.DiscardHandler
	case format == "json":
		handler = slog.NewJSONHandler(writer, opts)
	default:
		handler = slog.NewTextHandler(writer, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// New returns a logger with a "component" attribute for module-scoped logging.
func New(component string) *slog.Logger {
	return slog.Default().With(slog.String("component", component))
}

// Truncate shortens s to n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
