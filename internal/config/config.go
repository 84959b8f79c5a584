package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for pfoca.
type Config struct {
	BaseDir      string         `toml:"base_dir"`
	DocumentsDir string         `toml:"documents_dir"`
	AutosaveDir  string         `toml:"autosave_dir"`
	LogDir       string         `toml:"log_dir"`
	Layout       LayoutConfig   `toml:"layout"`
	Store        StoreConfig    `toml:"store"`
	Vaults       []VaultConfig  `toml:"vaults"`
	Fonts        FontsConfig    `toml:"fonts"`
	Export       ExportConfig   `toml:"export"`
	Autosave     AutosaveConfig `toml:"autosave"`
}

// LayoutConfig describes the printed card, in points.
type LayoutConfig struct {
	BoxWidth  float64 `toml:"box_width"`
	BoxHeight float64 `toml:"box_height"`
	Margin    float64 `toml:"margin"`
	Gap       float64 `toml:"gap"`
}

// StoreConfig represents configuration for the key-value store holding the
// decoration layer library and recent fonts.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type StoreConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// VaultConfig represents configuration for a backup vault.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type VaultConfig struct {
	Type string `toml:"type"` // "memory", "s3", or "filesystem"
	Name string `toml:"name"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket          string `toml:"s3_bucket,omitempty"`
	S3Prefix          string `toml:"s3_prefix,omitempty"`
	S3Region          string `toml:"s3_region,omitempty"`
	S3Endpoint        string `toml:"s3_endpoint,omitempty"`
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`

	// FileSystem-specific fields (only used when Type == "filesystem")
	FSVaultRoot string `toml:"fs_vault_root,omitempty"`
}

// FontsConfig controls where fonts are downloaded from and cached.
type FontsConfig struct {
	CacheDir       string `toml:"cache_dir"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeout returns the download timeout, defaulting to 30s.
func (c FontsConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ExportConfig controls sealed exports.
type ExportConfig struct {
	ScryptWorkFactor int `toml:"scrypt_work_factor"` // log2 of the scrypt cost; 0 means age's default
}

// AutosaveConfig controls the background autosaver.
type AutosaveConfig struct {
	IntervalSeconds int `toml:"interval_seconds"`
}

// Interval returns the autosave period, defaulting to 10s.
func (c AutosaveConfig) Interval() time.Duration {
	if c.IntervalSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.IntervalSeconds) * time.Second
}

// DefaultLayout is a pair of 3.5x3.5 inch boxes on a card with quarter-inch
// margins.
var DefaultLayout = LayoutConfig{BoxWidth: 252, BoxHeight: 252, Margin: 18, Gap: 18}

// DefaultFontBaseURL serves the font files named by card.FontInfo.File.
const DefaultFontBaseURL = "https://github.com/google/fonts/raw/main/ofl"

// NewConfig creates a new Config with every directory below baseDir.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir:      baseDir,
		DocumentsDir: filepath.Join(baseDir, "projects"),
		AutosaveDir:  filepath.Join(baseDir, "autosave"),
		LogDir:       filepath.Join(baseDir, "log"),
		Layout:       DefaultLayout,
		Store:        StoreConfig{Type: "sqlite", DataDir: filepath.Join(baseDir, "db")},
		Fonts: FontsConfig{
			CacheDir:       filepath.Join(baseDir, "fonts"),
			BaseURL:        DefaultFontBaseURL,
			TimeoutSeconds: 30,
		},
		Autosave: AutosaveConfig{IntervalSeconds: 10},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

func writeToFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// 0600: the file may hold S3 credentials.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init writes cfg to path. It refuses to overwrite an existing file.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
