package sidecar

import (
	"path/filepath"
	"strings"
)

// Ext is the sidecar file extension, lowercase with the dot.
const Ext = ".xmp"

var rasterExts = []string{
	".jpg", ".jpeg", ".png", ".gif", ".tif", ".tiff",
	".bmp", ".webp", ".heic", ".heif",
}

var rawExts = []string{
	".3fr", ".arw", ".cr2", ".cr3", ".crw", ".dcr", ".dng",
	".erf", ".fff", ".iiq", ".kdc", ".mef", ".mos", ".mrw",
	".nef", ".nrw", ".orf", ".pef", ".raf", ".raw", ".rw2",
	".rwl", ".sr2", ".srf", ".srw", ".x3f",
}

// ExtensionSet decides which directory entries count as images and
// which of those need a preview decoder. Extension matching is
// case-insensitive.
type ExtensionSet struct {
	images map[string]struct{}
	raw    map[string]struct{}
}

// DefaultExtensions covers the common raster formats plus the raw
// formats of the major camera vendors.
func DefaultExtensions() *ExtensionSet {
	s := &ExtensionSet{
		images: make(map[string]struct{}, len(rasterExts)+len(rawExts)),
		raw:    make(map[string]struct{}, len(rawExts)),
	}
	for _, ext := range rasterExts {
		s.images[ext] = struct{}{}
	}
	for _, ext := range rawExts {
		s.images[ext] = struct{}{}
		s.raw[ext] = struct{}{}
	}
	return s
}

// WithImages registers extra image extensions, with or without the
// leading dot.
func (s *ExtensionSet) WithImages(exts ...string) *ExtensionSet {
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		s.images[ext] = struct{}{}
	}
	return s
}

func (s *ExtensionSet) IsImage(name string) bool {
	_, ok := s.images[strings.ToLower(filepath.Ext(name))]
	return ok
}

// IsRaw reports whether the image needs the preview decoder instead of
// a stdlib image decode.
func (s *ExtensionSet) IsRaw(name string) bool {
	_, ok := s.raw[strings.ToLower(filepath.Ext(name))]
	return ok
}

func (s *ExtensionSet) IsSidecar(name string) bool {
	return strings.EqualFold(filepath.Ext(name), Ext)
}

// SidecarPath maps an image path to its sidecar path, replacing the
// image extension with .xmp.
func SidecarPath(imagePath string) string {
	return strings.TrimSuffix(imagePath, filepath.Ext(imagePath)) + Ext
}
