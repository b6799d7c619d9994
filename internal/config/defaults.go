package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths are the default locations, with environment overrides applied.
//   - MEDIASORT_CONFIG: config file (default ~/.config/mediasort.toml)
//   - MEDIASORT_HOME: state directory for logs and locks (default ~/.local/state/mediasort)
type Paths struct {
	ConfigPath string
	// ConfigFromEnv is true when ConfigPath came from MEDIASORT_CONFIG.
	ConfigFromEnv bool
	StateDir      string
}

// DefaultPaths resolves Paths for the current user.
func DefaultPaths() (Paths, error) {
	var p Paths
	if path := os.Getenv("MEDIASORT_CONFIG"); path != "" {
		p.ConfigPath = path
		p.ConfigFromEnv = true
	}
	if dir := os.Getenv("MEDIASORT_HOME"); dir != "" {
		p.StateDir = dir
	}
	if p.ConfigPath != "" && p.StateDir != "" {
		return p, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, fmt.Errorf("cannot determine home directory: %w", err)
	}
	if p.ConfigPath == "" {
		p.ConfigPath = filepath.Join(homeDir, ".config", "mediasort.toml")
	}
	if p.StateDir == "" {
		p.StateDir = filepath.Join(homeDir, ".local", "state", "mediasort")
	}
	return p, nil
}
