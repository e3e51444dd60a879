// Package labctl implements the host bootstrap for the homelab stack: host
// fact detection, the setup wizard's backing logic, env file emission, and
// idempotent directory provisioning.
package labctl

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var log = zerolog.New(io.Discard)

// InitLogging configures the package logger for CLI use: console output on
// stderr, level taken from LABCTL_LOG_LEVEL (default warn so normal command
// output stays clean).
func InitLogging() {
	level := parseLevel(os.Getenv("LABCTL_LOG_LEVEL"), zerolog.WarnLevel)
	w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	log = zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// InitTUILogging redirects logging to a file while the wizard owns the
// terminal. Returns a close func; on any setup failure logging is simply
// discarded, never fatal.
func InitTUILogging() func() {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, "labctl", "labctl.log")
	if err := ensureDir(filepath.Dir(path), 0o750); err != nil {
		return func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return func() {}
	}
	level := parseLevel(os.Getenv("LABCTL_LOG_LEVEL"), zerolog.InfoLevel)
	log = zerolog.New(f).Level(level).With().Timestamp().Logger()
	return func() { _ = f.Close() }
}

// Logger exposes the package logger to the TUI layer.
func Logger() *zerolog.Logger { return &log }

func parseLevel(s string, fallback zerolog.Level) zerolog.Level {
	if s == "" {
		return fallback
	}
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return fallback
	}
	return level
}
