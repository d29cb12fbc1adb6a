// Package log configures the process-wide slog default used by the
// binaries and hands out module-scoped loggers.
package log

import (
	"log/slog"
	"os"
	"strings"
)

// Setup installs a text handler on stderr as the slog default at the
// named level. Unrecognized level names fall back to info.
func Setup(logLevel string) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(logLevel))); err != nil {
		level = slog.LevelInfo
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// WithModule tags the default logger with a module field so log lines
// can be traced back to the subsystem that wrote them.
func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}
