// Package logging configures the engine's structured logger.
//
// By default the engine logs to stderr at Info level, which is all an
// embedding MCP host ever sees. --debug escalates to Debug level and adds a
// rotating file sink under DefaultLogDir, for the rare case a user needs to
// hand a log to a developer.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Config controls logger construction.
type Config struct {
	// Debug enables debug-level logging and file output.
	Debug bool

	// FilePath overrides the default rotating log file location.
	// Only used when Debug is true.
	FilePath string

	// MaxSizeMB is the size in megabytes at which the log file rotates.
	MaxSizeMB int

	// MaxFiles is the number of rotated files retained.
	MaxFiles int

	// JSON selects structured JSON output instead of text. Useful when the
	// engine is driven by an MCP host that captures stderr for its own logs.
	JSON bool
}

// DefaultConfig returns the engine's default logging configuration: text
// output to stderr at Info level, no file sink.
func DefaultConfig() Config {
	return Config{
		Debug:     false,
		MaxSizeMB: 10,
		MaxFiles:  5,
	}
}

// DebugConfig returns a configuration with debug-level logging and a
// rotating file sink at the default log path.
func DebugConfig() Config {
	cfg := DefaultConfig()
	cfg.Debug = true
	cfg.FilePath = DefaultLogPath()
	return cfg
}

// Setup builds a slog.Logger per cfg and returns it along with a cleanup
// function that must be called before the process exits to flush and close
// any rotating file sink. The returned cleanup is always safe to call, even
// when no file sink was created.
func Setup(cfg Config) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	var writer io.Writer = os.Stderr
	cleanup := func() {}

	if cfg.Debug {
		path := cfg.FilePath
		if path == "" {
			path = DefaultLogPath()
		}
		maxSize := cfg.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 10
		}
		maxFiles := cfg.MaxFiles
		if maxFiles <= 0 {
			maxFiles = 5
		}

		rw, err := NewRotatingWriter(path, maxSize, maxFiles)
		if err != nil {
			return nil, cleanup, fmt.Errorf("failed to set up log file: %w", err)
		}

		writer = io.MultiWriter(os.Stderr, rw)
		cleanup = func() {
			_ = rw.Sync()
			_ = rw.Close()
		}
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(writer, opts)
	} else {
		handler = slog.NewTextHandler(writer, opts)
	}

	logger := slog.New(handler)
	return logger, cleanup, nil
}

// ForCase returns a child logger with a case_id attribute attached to every
// record it emits, so a registry/casehandle/mcp call site working on behalf
// of one case can log without repeating "case_id" at every call. When the
// debug file sink is active, RotatingWriter.CaseActivity reads this same
// attribute back out of the formatted line to attribute log volume per case.
func ForCase(logger *slog.Logger, caseID string) *slog.Logger {
	return logger.With("case_id", caseID)
}
