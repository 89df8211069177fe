// internal/logging/logging.go
package logging

import (
	"io"
	"log/slog"
)

// New creates a JSON logger writing to w, installs it as the slog default,
// and returns it.
func New(w io.Writer, level string) *slog.Logger {
	logLevel := new(slog.LevelVar)
	setLogLevel(level, logLevel)
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return logger
}

func setLogLevel(level string, v *slog.LevelVar) {
	switch level {
	case "debug":
		v.Set(slog.LevelDebug)
	case "warn":
		v.Set(slog.LevelWarn)
	case "error":
		v.Set(slog.LevelError)
	default:
		v.Set(slog.LevelInfo)
	}
}
