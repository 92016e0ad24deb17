// Package logging sets up the file logger. The terminal is owned by the
// draw surface while a session runs, so nothing is ever logged to stdout.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	stateDirName = "lyreplay"
	logFileName  = "lyreplay.log"
)

// New returns a logger writing to the state directory log file, plus a
// closer for that file. On any failure it returns a no-op logger.
func New(level string) (zerolog.Logger, io.Closer) {
	path, err := logFilePath()
	if err != nil {
		return zerolog.Nop(), nopCloser{}
	}

	err = os.MkdirAll(filepath.Dir(path), 0755)
	if err != nil {
		return zerolog.Nop(), nopCloser{}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return zerolog.Nop(), nopCloser{}
	}

	return NewWithWriter(file, level), file
}

// NewWithWriter builds a logger on an arbitrary writer.
func NewWithWriter(w io.Writer, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	return zerolog.New(w).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Logger()
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return parsed
}

func logFilePath() (string, error) {
	xdgState := os.Getenv("XDG_STATE_HOME")
	if xdgState != "" {
		return filepath.Join(xdgState, stateDirName, logFileName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".local", "state", stateDirName, logFileName), nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
