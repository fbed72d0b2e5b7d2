package logger

import (
	"log/slog"
	"os"
)

// Init configures the process-wide slog logger. Debug level is enabled
// via the DEBUG environment flag.
func Init(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	l := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(l)
	return l
}
