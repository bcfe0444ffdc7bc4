package thumb

import (
	"fmt"
	"path/filepath"

	"github.com/cristibaluta/Imagin-Raw-sub001/internal/config"
	"github.com/cristibaluta/Imagin-Raw-sub001/internal/library"
)

// NewCacheFromConfig creates a Cache implementation based on the cache
// config type. baseDir locates the default cache directory when the
// config does not name one.
func NewCacheFromConfig(cfg config.ThumbnailCacheConfig, baseDir string, logger library.Logger) (Cache, error) {
	switch cfg.Type {
	case "disk", "":
		dir := cfg.Dir
		if dir == "" {
			if baseDir == "" {
				return nil, fmt.Errorf("dir or base dir required for disk cache")
			}
			dir = filepath.Join(baseDir, "thumbs")
		}
		return NewDiskCache(dir, logger)
	case "memory":
		return NewMemoryCache(), nil
	default:
		return nil, fmt.Errorf("unknown thumbnail cache type: %s", cfg.Type)
	}
}
