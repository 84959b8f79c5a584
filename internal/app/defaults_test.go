package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultPaths(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	tests := []struct {
		name       string
		env        map[string]string
		wantConfig string
		wantBase   string
	}{
		{
			name:       "home fallback",
			wantConfig: filepath.Join(home, ".config", "pfoca.toml"),
			wantBase:   filepath.Join(home, ".local", "share", "pfoca"),
		},
		{
			name:       "xdg dirs",
			env:        map[string]string{"XDG_CONFIG_HOME": "/xdg/conf", "XDG_DATA_HOME": "/xdg/data"},
			wantConfig: "/xdg/conf/pfoca.toml",
			wantBase:   "/xdg/data/pfoca",
		},
		{
			name: "pfoca overrides win over xdg",
			env: map[string]string{
				"XDG_CONFIG_HOME": "/xdg/conf",
				"XDG_DATA_HOME":   "/xdg/data",
				EnvConfigPath:     "/custom/cards.toml",
				EnvHome:           "/custom/cards",
			},
			wantConfig: "/custom/cards.toml",
			wantBase:   "/custom/cards",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{EnvConfigPath, EnvHome, "XDG_CONFIG_HOME", "XDG_DATA_HOME"} {
				t.Setenv(k, tt.env[k])
			}

			got, err := DefaultPaths()
			if err != nil {
				t.Fatalf("DefaultPaths() error = %v", err)
			}
			if got.ConfigPath != tt.wantConfig {
				t.Errorf("ConfigPath = %q, want %q", got.ConfigPath, tt.wantConfig)
			}
			if got.BaseDir != tt.wantBase {
				t.Errorf("BaseDir = %q, want %q", got.BaseDir, tt.wantBase)
			}
		})
	}
}
