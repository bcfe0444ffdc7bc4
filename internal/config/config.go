package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for imagin.
type Config struct {
	BaseDir    string           `toml:"base_dir"`
	LogDir     string           `toml:"log_dir"`
	Library    LibraryConfig    `toml:"library"`
	Scan       ScanConfig       `toml:"scan"`
	Thumbnails ThumbnailsConfig `toml:"thumbnails"`
	Preview    PreviewConfig    `toml:"preview"`
	Sealing    SealingConfig    `toml:"sealing"`
	Settings   SettingsConfig   `toml:"settings"`
}

// LibraryConfig holds settings for the library facade.
type LibraryConfig struct {
	// ExtraExtensions are image extensions recognized on top of the
	// built-in set, with or without the leading dot.
	ExtraExtensions []string `toml:"extra_extensions"`
	// Workers bounds concurrent sidecar reads during folder selection.
	Workers int `toml:"workers"`
}

// ScanConfig holds settings for the folder tree scanner.
type ScanConfig struct {
	DepthLimit int      `toml:"depth_limit"` // folder levels fetched per expansion
	Locale     string   `toml:"locale"`      // collation locale for sibling ordering
	Ignore     []string `toml:"ignore"`      // folder name globs to leave out of the tree
}

// ThumbnailsConfig holds settings for the thumbnail loader.
type ThumbnailsConfig struct {
	Size    int                  `toml:"size"`    // bounding box in pixels
	Workers int                  `toml:"workers"` // concurrent decodes
	Cache   ThumbnailCacheConfig `toml:"cache"`
}

// ThumbnailCacheConfig represents configuration for a thumbnail cache backend.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type ThumbnailCacheConfig struct {
	Type string `toml:"type"`          // "disk" (default) or "memory"
	Dir  string `toml:"dir,omitempty"` // only used for type=disk
}

// PreviewConfig holds settings for the raw preview decoder.
type PreviewConfig struct {
	// Disabled skips starting the exiftool helper entirely. Raw files
	// then list without thumbnails or capture metadata.
	Disabled bool `toml:"disabled"`
}

// SealingConfig holds the identity used to seal folder access tokens.
type SealingConfig struct {
	Type         string `toml:"type"` // "age" (default) or "test"
	IdentityPath string `toml:"identity_path"`
}

// SettingsConfig represents configuration for the persistent settings store.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type SettingsConfig struct {
	Type string `toml:"type"`           // "sqlite" or "memory"
	Path string `toml:"path,omitempty"` // only used for type=sqlite
}

// NewConfig creates a new Config with the provided base directory and
// default values.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		Scan: ScanConfig{
			DepthLimit: 2,
			Locale:     "en",
		},
		Thumbnails: ThumbnailsConfig{
			Size:    256,
			Workers: 2,
			Cache:   ThumbnailCacheConfig{Type: "disk"},
		},
		Sealing: SealingConfig{
			IdentityPath: filepath.Join(baseDir, "keys", "imagin.key"),
		},
		Settings: SettingsConfig{Type: "sqlite"},
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

// writeToFile writes a Config to the specified file path.
// This is an internal helper and should not be exported.
func writeToFile(path string, cfg *Config) error {
	// Ensure the directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
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

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
