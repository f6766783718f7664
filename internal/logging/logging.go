// Package logging builds the zap loggers used by the CLI, the TUI and the API server.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// MaxQueryLogLength is the maximum length of a query to log.
const MaxQueryLogLength = 100

// Options selects level and destination.
type Options struct {
	Level string
	// File receives JSON lines when set. The terminal UI always logs to a file
	// because stdout and stderr belong to the screen.
	File string
}

// New builds a logger. Without a file it writes human readable lines to stderr.
func New(opts Options) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	if opts.File == "" {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(level)
		cfg.DisableStacktrace = true
		return cfg.Build()
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0o700); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{opts.File}
	cfg.ErrorOutputPaths = []string{opts.File}
	return cfg.Build()
}

// TruncateQuery shortens a SQL statement before it is logged. The cut never
// splits a UTF-8 sequence.
func TruncateQuery(query string) string {
	if len(query) <= MaxQueryLogLength {
		return query
	}
	cut := MaxQueryLogLength
	for cut > 0 && !utf8.RuneStart(query[cut]) {
		cut--
	}
	return query[:cut] + "..."
}
