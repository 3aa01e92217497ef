package resound

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// logger defaults to a discard handler so the library stays silent
// unless the host opts in via InitLogger or SetLogger.
var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

func ResolveLogLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level: %s", level)
	}
}

func InitLogger(level string) error {
	logLevel, err := ResolveLogLevel(level)
	if err != nil {
		return err
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	logger = slog.New(handler)
	return nil
}

// SetLogger routes library logging to a caller-provided logger.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}
