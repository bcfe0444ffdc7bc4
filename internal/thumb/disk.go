package thumb

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cristibaluta/Imagin-Raw-sub001/internal/library"
)

// DiskCache stores thumbnails as JPEG files named by key under a root
// directory, so thumbnails survive restarts. Writes go through a temp
// file and rename; a half-written file is never visible under its key.
type DiskCache struct {
	root   string
	logger library.Logger
}

// NewDiskCache creates a disk cache rooted at the given path.
func NewDiskCache(root string, logger library.Logger) (*DiskCache, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &DiskCache{
		root:   root,
		logger: logger,
	}, nil
}

func (c *DiskCache) Get(key string) ([]byte, bool) {
	data, err := os.ReadFile(filepath.Join(c.root, key+".jpg"))
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *DiskCache) Put(key string, data []byte) {
	if err := c.write(key, data); err != nil {
		c.logger.Warn("thumbnail cache write failed", "key", key, "error", err)
	}
}

// write stores data at the key's path using atomic write (temp file + rename).
func (c *DiskCache) write(key string, data []byte) error {
	tmpFile, err := os.CreateTemp(c.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	// Clean up temp file on failure
	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, filepath.Join(c.root, key+".jpg")); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Compile-time check
var _ Cache = (*DiskCache)(nil)
