package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	bar "github.com/schollz/progressbar/v3"

	"github.com/cristibaluta/Imagin-Raw-sub001/internal/config"
	"github.com/cristibaluta/Imagin-Raw-sub001/internal/grant"
	"github.com/cristibaluta/Imagin-Raw-sub001/internal/library"
	"github.com/cristibaluta/Imagin-Raw-sub001/internal/rawpreview"
	"github.com/cristibaluta/Imagin-Raw-sub001/internal/seal"
	"github.com/cristibaluta/Imagin-Raw-sub001/internal/settings"
	"github.com/cristibaluta/Imagin-Raw-sub001/internal/sidecar"
	"github.com/cristibaluta/Imagin-Raw-sub001/internal/thumb"
	"github.com/cristibaluta/Imagin-Raw-sub001/internal/tree"
)

// ImaginApp is the application layer between the CLI and the library
// Service. It constructs all dependencies from config, exposes
// high-level operations that accept raw string paths, and manages the
// store and decoder lifecycle on Close.
type ImaginApp struct {
	cfg      *config.Config
	store    library.SettingsStore
	decoder  *rawpreview.Decoder
	previews library.PreviewDecoder
	exts     *sidecar.ExtensionSet
	service  *library.Service
	logger   library.Logger
	op       Operation
	logFile  *os.File
}

// NewImaginApp creates a fully wired ImaginApp from the given config.
// operation identifies the CLI command being run (e.g. "AddRoot",
// "SelectFolder"). The caller must call Close when done.
func NewImaginApp(cfg *config.Config, operation string) (*ImaginApp, error) {
	op := NewOperation(operation, library.RealClock{})
	slogger, logFile, err := newLogger(cfg.LogDir, op.ID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	sealer, err := seal.NewSealerFromConfig(cfg.Sealing)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating sealer: %w", err)
	}
	// First launch has no sealing identity yet.
	if !sealer.Ready() {
		if err := sealer.Setup(); err != nil {
			logFile.Close()
			return nil, fmt.Errorf("setting up sealing identity: %w", err)
		}
		logger.Info("sealing identity created", "path", cfg.Sealing.IdentityPath)
	}

	store, err := settings.NewStoreFromConfig(cfg.Settings, cfg.BaseDir)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating settings store: %w", err)
	}

	cache, err := thumb.NewCacheFromConfig(cfg.Thumbnails.Cache, cfg.BaseDir, logger)
	if err != nil {
		store.Close()
		logFile.Close()
		return nil, fmt.Errorf("creating thumbnail cache: %w", err)
	}

	// Raw previews degrade to unavailable when exiftool is missing;
	// raster formats keep working.
	var previews library.PreviewDecoder
	var decoder *rawpreview.Decoder
	if !cfg.Preview.Disabled {
		d, err := rawpreview.NewDecoder()
		if err != nil {
			logger.Warn("raw previews disabled", "error", err)
		} else {
			decoder = d
			previews = decoder
		}
	}

	exts := sidecar.DefaultExtensions().WithImages(cfg.Library.ExtraExtensions...)
	thumbs := thumb.NewLoader(previews, cache, exts, logger, cfg.Thumbnails.Size, cfg.Thumbnails.Workers)
	registry := grant.NewRegistry(sealer, logger, library.RealClock{})
	index := tree.NewIndex(tree.NewScanner(cfg.Scan.DepthLimit, cfg.Scan.Locale, cfg.Scan.Ignore...))
	svc := library.NewService(registry, index, store, thumbs, exts, logger, library.RealClock{}, library.UUIDGenerator{}, cfg.Library.Workers)

	return &ImaginApp{
		cfg:      cfg,
		store:    store,
		decoder:  decoder,
		previews: previews,
		exts:     exts,
		service:  svc,
		logger:   logger,
		op:       op,
		logFile:  logFile,
	}, nil
}

// RestoreState brings back the persisted roots and expansion state.
// The returned issues name roots that could not be restored; the rest
// of the library is usable regardless.
func (a *ImaginApp) RestoreState(ctx context.Context) ([]library.RestoreIssue, error) {
	return a.service.RestoreRoots(ctx)
}

// AddRoot resolves the given path and registers it as a library root.
func (a *ImaginApp) AddRoot(ctx context.Context, rawPath string) (*tree.Node, error) {
	p, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	return a.service.AddRoot(ctx, p)
}

// RemoveRoot resolves the given path and drops it from the library.
func (a *ImaginApp) RemoveRoot(rawPath string) error {
	p, err := filepath.Abs(rawPath)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}
	a.service.RemoveRoot(p)
	return nil
}

// Roots returns the current library roots in add order.
func (a *ImaginApp) Roots() []*tree.Node {
	return a.service.Roots()
}

// Expand locates the folder, loads its children, and records it as
// open for the next launch.
func (a *ImaginApp) Expand(ctx context.Context, rawPath string) (*tree.Node, error) {
	p, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	node, err := a.locate(ctx, p)
	if err != nil {
		return nil, err
	}
	if node.State() == tree.Unloaded {
		if _, err := a.service.LoadChildren(ctx, node); err != nil {
			return nil, err
		}
	}
	a.service.SetExpanded(node.Path(), true)
	return node, nil
}

// SelectFolder resolves the path, selects it, and returns its photo
// listing.
func (a *ImaginApp) SelectFolder(ctx context.Context, rawPath string) ([]*library.PhotoRecord, error) {
	p, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	node, err := a.locate(ctx, p)
	if err != nil {
		return nil, err
	}
	a.service.Select(ctx, node)
	return a.service.Photos(), nil
}

// LastSelection returns the folder selected when the previous session
// ended, empty when none was stored.
func (a *ImaginApp) LastSelection() string {
	return a.service.LastSelection()
}

// PhotoInfo is one photo's record plus the capture fields read from
// its raw preview, when one could be decoded.
type PhotoInfo struct {
	Record *library.PhotoRecord
	EXIF   *library.ExifFields
}

// Info selects the photo's folder and returns its record together
// with the capture fields from its embedded preview. EXIF stays nil
// for raster files and when no preview decoder is running.
func (a *ImaginApp) Info(ctx context.Context, rawPath string) (*PhotoInfo, error) {
	p, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	dir := filepath.Dir(p)
	node, err := a.locate(ctx, dir)
	if err != nil {
		return nil, err
	}
	a.service.Select(ctx, node)

	var rec *library.PhotoRecord
	for _, candidate := range a.service.Photos() {
		if candidate.Path == p {
			rec = candidate
			break
		}
	}
	if rec == nil {
		return nil, fmt.Errorf("%s is not a photo in %s", filepath.Base(p), dir)
	}

	info := &PhotoInfo{Record: rec}
	if a.previews != nil && a.exts.IsRaw(p) {
		preview, err := a.previews.Decode(p)
		if err != nil {
			a.logger.Warn("preview decode failed", "path", p, "error", err)
		} else {
			info.EXIF = &preview.EXIF
		}
	}
	return info, nil
}

// Rate applies a star rating to the given photo files, selecting each
// file's folder as it goes. Returns the number of photos updated.
func (a *ImaginApp) Rate(ctx context.Context, rating int, rawPaths ...string) (int, error) {
	return a.applyMetadata(ctx, rawPaths, func(photos ...*library.PhotoRecord) error {
		return a.service.ApplyRating(rating, photos...)
	})
}

// Label applies a color label to the given photo files. An empty label
// clears the existing one. Returns the number of photos updated.
func (a *ImaginApp) Label(ctx context.Context, label string, rawPaths ...string) (int, error) {
	return a.applyMetadata(ctx, rawPaths, func(photos ...*library.PhotoRecord) error {
		return a.service.ApplyLabel(label, photos...)
	})
}

// applyMetadata groups the files by folder, selects each folder, and
// applies one edit per folder to the matching records.
func (a *ImaginApp) applyMetadata(ctx context.Context, rawPaths []string, apply func(...*library.PhotoRecord) error) (int, error) {
	byDir := make(map[string][]string)
	var order []string
	for _, raw := range rawPaths {
		p, err := filepath.Abs(raw)
		if err != nil {
			return 0, fmt.Errorf("resolving path: %w", err)
		}
		dir := filepath.Dir(p)
		if _, seen := byDir[dir]; !seen {
			order = append(order, dir)
		}
		byDir[dir] = append(byDir[dir], p)
	}

	count := 0
	for _, dir := range order {
		node, err := a.locate(ctx, dir)
		if err != nil {
			return count, err
		}
		a.service.Select(ctx, node)

		listed := make(map[string]*library.PhotoRecord)
		for _, rec := range a.service.Photos() {
			listed[rec.Path] = rec
		}
		batch := make([]*library.PhotoRecord, 0, len(byDir[dir]))
		for _, p := range byDir[dir] {
			rec, ok := listed[p]
			if !ok {
				return count, fmt.Errorf("%s is not a photo in %s", filepath.Base(p), dir)
			}
			batch = append(batch, rec)
		}
		if err := apply(batch...); err != nil {
			return count, err
		}
		count += len(batch)
	}
	return count, nil
}

// Thumbs selects the folder and builds a thumbnail for every photo in
// it, warming the cache. Returns the number of thumbnails built.
func (a *ImaginApp) Thumbs(ctx context.Context, rawPath string) (int, error) {
	photos, err := a.SelectFolder(ctx, rawPath)
	if err != nil {
		return 0, err
	}

	progressBar := bar.Default(int64(len(photos)), "Building thumbnails")
	built := 0
	for _, p := range photos {
		if _, err := a.service.LoadThumbnail(p); err != nil {
			a.logger.Warn("thumbnail failed", "path", p.Path, "error", err)
		} else {
			built++
		}
		progressBar.Add(1)
	}
	return built, nil
}

// locate finds the tree node for dir, expanding unscanned folders on
// the way down from the containing root.
func (a *ImaginApp) locate(ctx context.Context, dir string) (*tree.Node, error) {
	if node := a.service.FindNode(dir); node != nil {
		return node, nil
	}

	var root *tree.Node
	for _, r := range a.service.Roots() {
		if within(dir, r.Path()) {
			root = r
			break
		}
	}
	if root == nil {
		return nil, fmt.Errorf("%s is not under any library root", dir)
	}

	node := root
	for node.Path() != dir {
		if node.State() == tree.Unloaded {
			if _, err := a.service.LoadChildren(ctx, node); err != nil {
				return nil, err
			}
		}
		next := step(node, dir)
		if next == nil {
			return nil, fmt.Errorf("folder %s not found under %s", dir, root.Path())
		}
		node = next
	}
	return node, nil
}

// step picks the child of node on the path toward dir.
func step(node *tree.Node, dir string) *tree.Node {
	for _, child := range node.Children() {
		if within(dir, child.Path()) {
			return child
		}
	}
	return nil
}

// within reports whether path is root itself or inside it.
func within(path, root string) bool {
	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}

// Close releases held grants and closes all resources.
func (a *ImaginApp) Close() error {
	var firstErr error

	a.service.Close()

	if a.decoder != nil {
		if err := a.decoder.Close(); err != nil {
			firstErr = fmt.Errorf("closing raw decoder: %w", err)
		}
	}

	if err := a.store.Close(); err != nil {
		if firstErr == nil {
			firstErr = fmt.Errorf("closing settings store: %w", err)
		}
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
