package testutil

import (
	"github.com/cristibaluta/Imagin-Raw-sub001/internal/library"
	"github.com/cristibaluta/Imagin-Raw-sub001/internal/settings"
)

// NewTestSettings creates a new in-memory settings store for testing.
func NewTestSettings() library.SettingsStore {
	return settings.NewMemoryStore()
}
