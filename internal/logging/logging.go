package logging

import (
	"io"
	"log/slog"
	"os"
)

// Init initializes the logging system. Logs go to stderr in text format;
// TASKWIRE_LOG_LEVEL selects the minimum level (debug, info, warn, error).
func Init() {
	InitWithWriter(os.Stderr)
}

// InitWithWriter is Init with an explicit destination, used by tests.
func InitWithWriter(w io.Writer) {
	level := slog.LevelInfo
	switch os.Getenv("TASKWIRE_LOG_LEVEL") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}
