package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lmittmann/tint"
)

// New builds a tint-backed logger writing to w at the given level
// (debug, info, warn, error).
func New(w io.Writer, level string, noColor bool) (*slog.Logger, error) {
	var lv slog.Level
	if level == "" {
		level = "warn"
	}
	if err := lv.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level: %s", level)
	}
	handler := tint.NewHandler(w, &tint.Options{
		Level:      lv,
		NoColor:    noColor,
		TimeFormat: "15:04:05.000",
	})
	return slog.New(handler), nil
}

// Open returns a logger writing to path, or to stderr when path is empty.
// The returned func closes the log file.
func Open(path, level string, stderr io.Writer) (*slog.Logger, func(), error) {
	if path == "" {
		logger, err := New(stderr, level, !isTerminal(stderr))
		if err != nil {
			return nil, nil, err
		}
		return logger, func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	logFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	// Files never get ANSI escapes.
	logger, err := New(logFile, level, true)
	if err != nil {
		logFile.Close()
		return nil, nil, err
	}
	logger.Debug("logger initialized", "level", level, "path", path)
	return logger, func() { logFile.Close() }, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
