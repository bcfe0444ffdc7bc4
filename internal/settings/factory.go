package settings

import (
	"fmt"
	"path/filepath"

	"github.com/cristibaluta/Imagin-Raw-sub001/internal/config"
	"github.com/cristibaluta/Imagin-Raw-sub001/internal/library"
)

// NewStoreFromConfig creates a SettingsStore implementation based on the
// settings config type. baseDir locates the default database file when
// the config does not name one.
func NewStoreFromConfig(cfg config.SettingsConfig, baseDir string) (library.SettingsStore, error) {
	switch cfg.Type {
	case "sqlite":
		path := cfg.Path
		if path == "" {
			if baseDir == "" {
				return nil, fmt.Errorf("path or base dir required for sqlite settings")
			}
			path = filepath.Join(baseDir, "settings.db")
		}
		return NewSQLiteStore(path)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown settings store type: %s", cfg.Type)
	}
}
