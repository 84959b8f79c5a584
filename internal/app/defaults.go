package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// Environment overrides for the default locations.
const (
	EnvConfigPath = "PFOCA_CONFIG_PATH"
	EnvHome       = "PFOCA_HOME"
)

// Paths are the locations pfoca uses before a config file has been read.
type Paths struct {
	// ConfigPath is the TOML config file.
	ConfigPath string
	// BaseDir holds projects, autosaves, the store, fonts and logs unless the
	// config points them elsewhere.
	BaseDir string
}

// DefaultPaths resolves Paths in order of precedence: PFOCA_CONFIG_PATH and
// PFOCA_HOME, then XDG_CONFIG_HOME and XDG_DATA_HOME, then ~/.config and
// ~/.local/share.
func DefaultPaths() (Paths, error) {
	configPath, err := resolvePath(EnvConfigPath, "XDG_CONFIG_HOME", "pfoca.toml", ".config")
	if err != nil {
		return Paths{}, err
	}
	baseDir, err := resolvePath(EnvHome, "XDG_DATA_HOME", "pfoca", ".local", "share")
	if err != nil {
		return Paths{}, err
	}
	return Paths{ConfigPath: configPath, BaseDir: baseDir}, nil
}

func resolvePath(override, xdgVar, name string, homeRel ...string) (string, error) {
	if p := os.Getenv(override); p != "" {
		return p, nil
	}
	if dir := os.Getenv(xdgVar); dir != "" {
		return filepath.Join(dir, name), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating %s: %w", name, err)
	}
	return filepath.Join(append(append([]string{home}, homeRel...), name)...), nil
}
