package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		BaseDir:      "/home/user/.local/share/pfoca",
		DocumentsDir: "/home/user/Pictures/pfoca",
		AutosaveDir:  "/home/user/.local/share/pfoca/autosave",
		LogDir:       "/home/user/.local/share/pfoca/log",
		Layout:       LayoutConfig{BoxWidth: 300, BoxHeight: 200, Margin: 10, Gap: 5},
		Store:        StoreConfig{Type: "sqlite", DataDir: "/home/user/.local/share/pfoca/db"},
		Vaults: []VaultConfig{
			{Type: "filesystem", Name: "local", FSVaultRoot: "/backup/vault"},
			{Type: "s3", Name: "cloud", S3Bucket: "cards", S3Prefix: "pfoca/", S3Region: "eu-west-1"},
		},
		Fonts:    FontsConfig{CacheDir: "/tmp/fonts", BaseURL: "https://fonts.example.com", TimeoutSeconds: 5},
		Export:   ExportConfig{ScryptWorkFactor: 15},
		Autosave: AutosaveConfig{IntervalSeconds: 3},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.DocumentsDir != original.DocumentsDir {
		t.Errorf("DocumentsDir = %q, want %q", got.DocumentsDir, original.DocumentsDir)
	}
	if got.AutosaveDir != original.AutosaveDir {
		t.Errorf("AutosaveDir = %q, want %q", got.AutosaveDir, original.AutosaveDir)
	}
	if got.Layout != original.Layout {
		t.Errorf("Layout = %+v, want %+v", got.Layout, original.Layout)
	}
	if got.Store != original.Store {
		t.Errorf("Store = %+v, want %+v", got.Store, original.Store)
	}
	if len(got.Vaults) != 2 {
		t.Fatalf("len(Vaults) = %d, want 2", len(got.Vaults))
	}
	if got.Vaults[0] != original.Vaults[0] {
		t.Errorf("Vaults[0] = %+v, want %+v", got.Vaults[0], original.Vaults[0])
	}
	if got.Vaults[1] != original.Vaults[1] {
		t.Errorf("Vaults[1] = %+v, want %+v", got.Vaults[1], original.Vaults[1])
	}
	if got.Fonts != original.Fonts {
		t.Errorf("Fonts = %+v, want %+v", got.Fonts, original.Fonts)
	}
	if got.Export.ScryptWorkFactor != 15 {
		t.Errorf("Export.ScryptWorkFactor = %d, want 15", got.Export.ScryptWorkFactor)
	}
	if got.Autosave.Interval() != 3*time.Second {
		t.Errorf("Autosave.Interval() = %v, want 3s", got.Autosave.Interval())
	}
}

func TestManager_Read_Invalid(t *testing.T) {
	m := &Manager{}
	if _, err := m.Read(strings.NewReader("documents_dir = [")); err == nil {
		t.Error("Read() expected error for malformed TOML")
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/data/pfoca")

	tests := []struct {
		name, got, want string
	}{
		{"BaseDir", cfg.BaseDir, "/data/pfoca"},
		{"DocumentsDir", cfg.DocumentsDir, "/data/pfoca/projects"},
		{"AutosaveDir", cfg.AutosaveDir, "/data/pfoca/autosave"},
		{"LogDir", cfg.LogDir, "/data/pfoca/log"},
		{"Store.Type", cfg.Store.Type, "sqlite"},
		{"Store.DataDir", cfg.Store.DataDir, "/data/pfoca/db"},
		{"Fonts.CacheDir", cfg.Fonts.CacheDir, "/data/pfoca/fonts"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
	if cfg.Layout != DefaultLayout {
		t.Errorf("Layout = %+v, want %+v", cfg.Layout, DefaultLayout)
	}
}

func TestDurations(t *testing.T) {
	if got := (FontsConfig{}).Timeout(); got != 30*time.Second {
		t.Errorf("FontsConfig{}.Timeout() = %v, want 30s", got)
	}
	if got := (FontsConfig{TimeoutSeconds: 2}).Timeout(); got != 2*time.Second {
		t.Errorf("Timeout() = %v, want 2s", got)
	}
	if got := (AutosaveConfig{}).Interval(); got != 10*time.Second {
		t.Errorf("AutosaveConfig{}.Interval() = %v, want 10s", got)
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "conf", "pfoca.toml")

		if err := Init(path, NewConfig(dir)); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("config file not created: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("config file mode = %o, want 600", perm)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "pfoca.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}
		if err := Init(path, cfg); err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "pfoca.toml")
		cfg := NewConfig(dir)
		cfg.Store = StoreConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.Store.Type != "memory" {
			t.Errorf("Store.Type = %q, want %q", got.Store.Type, "memory")
		}
		if got.DocumentsDir != cfg.DocumentsDir {
			t.Errorf("DocumentsDir = %q, want %q", got.DocumentsDir, cfg.DocumentsDir)
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		if _, err := ReadFromFile("/nonexistent/path/pfoca.toml"); err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}
