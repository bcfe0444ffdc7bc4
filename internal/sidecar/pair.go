package sidecar

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Pairing joins one image with the text of its sidecar. HasSidecar is
// false when no sidecar exists or the file could not be read.
type Pairing struct {
	ImagePath   string
	SidecarText string
	HasSidecar  bool
}

// Pair lists the images of one folder together with their sidecar
// texts. The directory is read exactly once. Sidecars pair with images
// by exact base filename; extension matching is case-insensitive but
// the base is not folded. Sidecar files are read concurrently with at
// most workers readers, and one that cannot be read pairs as absent
// rather than failing the listing. Orphan sidecars are ignored. Images
// come back sorted byte-wise by filename.
func Pair(ctx context.Context, dir string, exts *ExtensionSet, workers int) ([]Pairing, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading folder %s: %w", dir, err)
	}

	var images, sidecars []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		switch {
		case exts.IsImage(name):
			images = append(images, name)
		case exts.IsSidecar(name):
			sidecars = append(sidecars, name)
		}
	}
	sort.Strings(images)
	sort.Strings(sidecars)

	texts := make([]string, len(sidecars))
	read := make([]bool, len(sidecars))
	if workers < 1 {
		workers = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, name := range sidecars {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				return nil
			}
			texts[i] = string(data)
			read[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("reading sidecars in %s: %w", dir, err)
	}

	// First readable sidecar per base wins; sorted order keeps the
	// choice deterministic when bases collide across extension case.
	byBase := make(map[string]int, len(sidecars))
	for i, name := range sidecars {
		if !read[i] {
			continue
		}
		base := strings.TrimSuffix(name, filepath.Ext(name))
		if _, ok := byBase[base]; !ok {
			byBase[base] = i
		}
	}

	out := make([]Pairing, 0, len(images))
	for _, name := range images {
		p := Pairing{ImagePath: filepath.Join(dir, name)}
		base := strings.TrimSuffix(name, filepath.Ext(name))
		if i, ok := byBase[base]; ok {
			p.SidecarText = texts[i]
			p.HasSidecar = true
		}
		out = append(out, p)
	}
	return out, nil
}
