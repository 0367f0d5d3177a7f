// Package logger configures the process-wide slog logger.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/atjproject/lawcat/internal/config"
)

// LogFile is the file name used when the destination is "file".
const LogFile = "lawcat.log"

// Init installs the default slog logger. For the "file" destination the log
// is appended to lawcat.log inside logDir; the returned closer releases it.
func Init(logDir string, cfg config.LogConfig) (io.Closer, error) {
	var (
		writer io.Writer
		closer io.Closer = nopCloser{}
	)

	switch cfg.Destination {
	case "stdout":
		writer = os.Stdout
	case "file":
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
		logPath := filepath.Join(logDir, LogFile)
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("cannot create log file %s: %w", logPath, err)
		}
		writer, closer = f, f
	default:
		writer = os.Stderr
	}

	slog.SetDefault(slog.New(NewHandler(writer, cfg)))
	return closer, nil
}

// NewHandler builds the handler Init would install, writing to w.
func NewHandler(w io.Writer, cfg config.LogConfig) slog.Handler {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	if cfg.Format == "text" {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// ParseLevel converts a level name to slog.Level. Unknown names mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
