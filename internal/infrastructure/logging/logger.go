package logging

import (
	"io"
	"log/slog"
	"strings"
)

const serviceName = "eazy-career-backend"

// New builds the service JSON logger at the named level.
func New(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})).
		With("service", serviceName)
}

// ParseLevel maps debug/info/warn/error onto slog levels. Unknown names are info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
