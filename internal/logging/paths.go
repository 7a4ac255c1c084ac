package logging

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultLogDir returns the default log directory, ~/.caseintel/logs.
// Falls back to the current directory if the home directory cannot be resolved.
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./.caseintel/logs"
	}
	return filepath.Join(home, ".caseintel", "logs")
}

// DefaultLogPath returns the default path to the engine's log file.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "engine.log")
}

// EnsureLogDir creates the log directory if it does not already exist.
func EnsureLogDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}
	return nil
}

// FindLogFile locates the engine's active log file, checking the configured
// path first and falling back to the default location. Returns an error if
// neither exists, with a hint for how to produce one.
func FindLogFile(configuredPath string) (string, error) {
	candidates := []string{configuredPath, DefaultLogPath()}
	for _, path := range candidates {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no log file found; run with --debug to enable file logging (checked: %s)", DefaultLogPath())
}
