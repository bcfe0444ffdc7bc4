package thumb

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/cristibaluta/Imagin-Raw-sub001/internal/library"
)

func TestDiskCache_PutGet(t *testing.T) {
	cache, err := NewDiskCache(t.TempDir(), library.NewNopLogger())
	if err != nil {
		t.Fatalf("NewDiskCache() error = %v", err)
	}

	cache.Put("abc123", []byte("thumb bytes"))

	got, ok := cache.Get("abc123")
	if !ok {
		t.Fatal("Get() = miss, want hit")
	}
	if !bytes.Equal(got, []byte("thumb bytes")) {
		t.Errorf("Get() = %q, want %q", got, "thumb bytes")
	}

	if _, ok := cache.Get("absent"); ok {
		t.Error("Get() = hit for a key never stored")
	}
}

func TestDiskCache_SurvivesReopen(t *testing.T) {
	root := t.TempDir()

	first, err := NewDiskCache(root, library.NewNopLogger())
	if err != nil {
		t.Fatalf("NewDiskCache() error = %v", err)
	}
	first.Put("abc123", []byte("persisted"))

	second, err := NewDiskCache(root, library.NewNopLogger())
	if err != nil {
		t.Fatalf("reopening cache: %v", err)
	}
	got, ok := second.Get("abc123")
	if !ok || string(got) != "persisted" {
		t.Errorf("Get() after reopen = %q, %v, want persisted, true", got, ok)
	}
}

func TestDiskCache_LeavesNoTempFiles(t *testing.T) {
	root := t.TempDir()
	cache, err := NewDiskCache(root, library.NewNopLogger())
	if err != nil {
		t.Fatalf("NewDiskCache() error = %v", err)
	}

	cache.Put("abc123", []byte("thumb"))

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "abc123.jpg" {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("cache dir holds %v, want [abc123.jpg]", names)
	}
}

func TestDiskCache_RootNotCreatable(t *testing.T) {
	base := t.TempDir()
	file := filepath.Join(base, "occupied")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewDiskCache(filepath.Join(file, "cache"), library.NewNopLogger()); err == nil {
		t.Error("NewDiskCache() under a file should return error")
	}
}
