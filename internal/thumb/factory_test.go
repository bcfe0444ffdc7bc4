package thumb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cristibaluta/Imagin-Raw-sub001/internal/config"
	"github.com/cristibaluta/Imagin-Raw-sub001/internal/library"
)

func TestNewCacheFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.ThumbnailCacheConfig
		baseDir string
		wantErr bool
	}{
		{
			name: "memory cache",
			cfg:  config.ThumbnailCacheConfig{Type: "memory"},
		},
		{
			name:    "disk cache without dir or base dir",
			cfg:     config.ThumbnailCacheConfig{Type: "disk"},
			wantErr: true,
		},
		{
			name:    "unknown cache type",
			cfg:     config.ThumbnailCacheConfig{Type: "redis"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewCacheFromConfig(tt.cfg, tt.baseDir, library.NewNopLogger())

			if (err != nil) != tt.wantErr {
				t.Errorf("NewCacheFromConfig() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && got == nil {
				t.Error("NewCacheFromConfig() returned nil cache")
			}
		})
	}
}

func TestNewCacheFromConfig_DefaultDir(t *testing.T) {
	baseDir := t.TempDir()

	cache, err := NewCacheFromConfig(config.ThumbnailCacheConfig{}, baseDir, library.NewNopLogger())
	if err != nil {
		t.Fatalf("NewCacheFromConfig() error = %v", err)
	}
	if _, ok := cache.(*DiskCache); !ok {
		t.Fatalf("cache = %T, want *DiskCache", cache)
	}

	if _, err := os.Stat(filepath.Join(baseDir, "thumbs")); err != nil {
		t.Errorf("default cache dir was not created: %v", err)
	}
}

func TestNewCacheFromConfig_ExplicitDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "custom-thumbs")

	cache, err := NewCacheFromConfig(config.ThumbnailCacheConfig{Type: "disk", Dir: dir}, "", library.NewNopLogger())
	if err != nil {
		t.Fatalf("NewCacheFromConfig() error = %v", err)
	}
	if _, ok := cache.(*DiskCache); !ok {
		t.Fatalf("cache = %T, want *DiskCache", cache)
	}

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("explicit cache dir was not created: %v", err)
	}
}
