package sidecar

import (
	"fmt"
	"os"
	"path/filepath"
)

// Write replaces a sidecar atomically. The text goes to a temp file in
// the same directory and moves into place with a rename, so a reader
// never observes a half-written sidecar.
func Write(path, text string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".imagin-*"+Ext)
	if err != nil {
		return fmt.Errorf("creating temp sidecar: %w", err)
	}
	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.WriteString(text); err != nil {
		return fmt.Errorf("writing temp sidecar: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp sidecar: %w", err)
	}
	// CreateTemp opens at 0600.
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("setting sidecar permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing sidecar %s: %w", path, err)
	}
	success = true
	return nil
}
