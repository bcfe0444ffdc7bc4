package tree

import (
	"path/filepath"
	"strings"
)

// IgnoreMatcher checks folder names against a set of glob patterns.
// The scanner treats a matching folder like a hidden one and never
// descends into it.
type IgnoreMatcher struct {
	patterns []string
}

// NewIgnoreMatcher creates an IgnoreMatcher from raw pattern strings.
// Blank entries and entries starting with '#' are skipped.
func NewIgnoreMatcher(rawPatterns []string) *IgnoreMatcher {
	var patterns []string
	for _, raw := range rawPatterns {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		patterns = append(patterns, raw)
	}
	return &IgnoreMatcher{patterns: patterns}
}

// Match reports whether a folder with the given name should be
// ignored.
func (m *IgnoreMatcher) Match(name string) bool {
	for _, p := range m.patterns {
		matched, err := filepath.Match(p, name)
		if err != nil {
			// Bad pattern, skip rather than crash.
			continue
		}
		if matched {
			return true
		}
	}
	return false
}
