package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// New builds the process logger from LOG_LEVEL, LOG_FORMAT and LOG_FILE.
// Records go to stderr and, when logFile is set, are appended to that file
// as well, tagged with service=healthlog. The logger becomes the slog
// default so the store packages, which log through package-level slog, share
// it. Call the returned func on exit to close the file.
func New(level, format, logFile string) (*slog.Logger, func(), error) {
	var out io.Writer = os.Stderr
	closeFile := func() {}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file %s: %w", logFile, err)
		}
		out = io.MultiWriter(os.Stderr, f)
		closeFile = func() {
			if err := f.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "failed to close log file %s: %v\n", logFile, err)
			}
		}
	}

	logger := slog.New(newHandler(out, level, format)).With("service", "healthlog")
	slog.SetDefault(logger)
	return logger, closeFile, nil
}

// newHandler returns a text handler for LOG_FORMAT=text and JSON otherwise.
func newHandler(w io.Writer, level, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if strings.EqualFold(format, "text") {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// parseLevel maps LOG_LEVEL to a slog level; unknown values mean info.
func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
