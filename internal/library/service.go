package library

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cristibaluta/Imagin-Raw-sub001/internal/sidecar"
	"github.com/cristibaluta/Imagin-Raw-sub001/internal/tree"
	"github.com/cristibaluta/Imagin-Raw-sub001/internal/xmp"
)

// Service is the orchestration layer the shell talks to. It owns the
// root list with its access grants, the selected folder's photo
// listing, and pushes every metadata edit through the sidecar codec.
// Tree and selection mutations are serialized on an internal mutex;
// scans and sidecar reads run on background workers.
type Service struct {
	grants   Grants
	index    *tree.Index
	settings SettingsStore
	thumbs   ThumbnailLoader
	exts     *sidecar.ExtensionSet
	logger   Logger
	clock    Clock
	idgen    IDGenerator
	workers  int

	mu        sync.Mutex
	roots     []*tree.Node
	held      map[string]ActiveGrant
	expanded  map[string]bool
	selection *selection
}

// selection binds a folder to its listing and the context its
// thumbnail loads run under. Replacing the selection cancels that
// context.
type selection struct {
	node   *tree.Node
	photos []*PhotoRecord
	ctx    context.Context
	cancel context.CancelFunc
}

// NewService creates a Service with the provided dependencies. workers
// bounds concurrent sidecar reads per listing.
func NewService(grants Grants, index *tree.Index, settings SettingsStore, thumbs ThumbnailLoader, exts *sidecar.ExtensionSet, logger Logger, clock Clock, idgen IDGenerator, workers int) *Service {
	if workers < 1 {
		workers = 4
	}
	return &Service{
		grants:   grants,
		index:    index,
		settings: settings,
		thumbs:   thumbs,
		exts:     exts,
		logger:   logger,
		clock:    clock,
		idgen:    idgen,
		workers:  workers,
		held:     make(map[string]ActiveGrant),
		expanded: make(map[string]bool),
	}
}

// AddRoot grants access to path and registers it as a library root
// with a freshly scanned subtree. Access is acquired before any
// filesystem walk; when the grant fails the root is not added. Adding
// a path that is already a root returns the existing node.
func (s *Service) AddRoot(ctx context.Context, path string) (*tree.Node, error) {
	s.mu.Lock()
	existing := s.findRoot(path)
	s.mu.Unlock()
	if existing != nil {
		return existing, nil
	}

	grant, err := s.grants.Acquire(path)
	if err != nil {
		return nil, fmt.Errorf("granting access to %s: %w", path, err)
	}

	node := tree.New(grant.Path())
	node.MarkUnloaded()
	node.SetToken(grant.Token())
	if _, err := s.index.Expand(ctx, node); err != nil {
		s.logger.Warn("initial scan interrupted", "path", path, "error", err)
	}

	s.mu.Lock()
	if existing := s.findRoot(path); existing != nil {
		s.mu.Unlock()
		grant.Release()
		return existing, nil
	}
	s.roots = append(s.roots, node)
	s.held[node.Path()] = grant
	s.mu.Unlock()

	s.saveRoots()
	s.logger.Info("root added", "path", node.Path(), "children", len(node.Children()))
	return node, nil
}

// RemoveRoot drops a root, releases its grant, and clears the
// selection if it pointed inside the removed subtree. Removing a path
// that is not a root is a no-op.
func (s *Service) RemoveRoot(path string) {
	s.mu.Lock()
	at := -1
	for i, r := range s.roots {
		if r.Path() == path {
			at = i
			break
		}
	}
	if at < 0 {
		s.mu.Unlock()
		return
	}
	s.roots = append(s.roots[:at], s.roots[at+1:]...)
	grant := s.held[path]
	delete(s.held, path)
	clearedSelection := false
	if s.selection != nil && pathWithin(s.selection.node.Path(), path) {
		s.selection.cancel()
		s.selection = nil
		clearedSelection = true
	}
	s.mu.Unlock()

	if grant != nil {
		grant.Release()
	}
	s.saveRoots()
	if clearedSelection {
		s.saveSelection("")
	}
	s.logger.Info("root removed", "path", path)
}

// RestoreIssue reports one root that could not come back on launch.
type RestoreIssue struct {
	Path string
	Err  error
}

// RestoreRoots rebuilds the root list from persisted tokens, restoring
// each grant and rescanning the subtree. Roots whose folder is gone or
// stale are dropped from the persisted list; the returned issues are
// the only user-visible report of that. The expanded-folder set is
// restored alongside.
func (s *Service) RestoreRoots(ctx context.Context) ([]RestoreIssue, error) {
	stored, err := s.loadRoots()
	if err != nil {
		return nil, fmt.Errorf("loading persisted roots: %w", err)
	}
	s.loadExpanded()

	var issues []RestoreIssue
	dropped := false
	for _, r := range stored {
		grant, err := s.grants.Restore(r.Token)
		if err != nil {
			s.logger.Warn("root not restored", "path", r.Path, "error", err)
			issues = append(issues, RestoreIssue{Path: r.Path, Err: err})
			dropped = true
			continue
		}

		s.mu.Lock()
		duplicate := s.findRoot(grant.Path()) != nil
		s.mu.Unlock()
		if duplicate {
			grant.Release()
			continue
		}

		node := tree.New(grant.Path())
		node.MarkUnloaded()
		node.SetToken(grant.Token())
		if _, err := s.index.Expand(ctx, node); err != nil {
			s.logger.Warn("restore scan interrupted", "path", grant.Path(), "error", err)
		}

		s.mu.Lock()
		s.roots = append(s.roots, node)
		s.held[node.Path()] = grant
		s.mu.Unlock()
		s.logger.Info("root restored", "path", node.Path())
	}

	if dropped {
		s.saveRoots()
	}
	return issues, nil
}

// Roots returns the current root nodes in add order.
func (s *Service) Roots() []*tree.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*tree.Node(nil), s.roots...)
}

// FindNode locates a folder node by path across all root subtrees.
// Only scanned nodes are findable.
func (s *Service) FindNode(path string) *tree.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, root := range s.roots {
		if n := tree.Find(root, path); n != nil {
			return n
		}
	}
	return nil
}

// LoadChildren expands one folder node, scanning its subfolders on
// demand. Concurrent expansions of the same node share a single scan.
func (s *Service) LoadChildren(ctx context.Context, node *tree.Node) ([]*tree.Node, error) {
	children, err := s.index.Expand(ctx, node)
	if err != nil {
		return nil, fmt.Errorf("expanding %s: %w", node.Path(), err)
	}
	return children, nil
}

// SetExpanded records whether a folder row is open in the shell.
// Collapsing a folder also abandons any scan still in flight for it,
// so a late result cannot reshape a row the user closed.
func (s *Service) SetExpanded(path string, expanded bool) {
	s.mu.Lock()
	if expanded {
		s.expanded[path] = true
	} else {
		delete(s.expanded, path)
	}
	s.mu.Unlock()

	if !expanded {
		s.index.Abandon(path)
	}
	s.saveExpanded()
}

// Expanded reports whether a folder row was left open.
func (s *Service) Expanded(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expanded[path]
}

// Select makes node the current folder and lists its photos: one
// directory read, sidecars paired by base name and parsed off the
// orchestration path. The previous selection's thumbnail context is
// canceled first. If the user has moved on again before the listing
// lands, it is discarded instead of replacing the newer selection. A
// folder that cannot be listed selects with an empty listing.
func (s *Service) Select(ctx context.Context, node *tree.Node) {
	s.mu.Lock()
	if s.selection != nil {
		s.selection.cancel()
	}
	thumbCtx, cancel := context.WithCancel(context.Background())
	sel := &selection{node: node, ctx: thumbCtx, cancel: cancel}
	s.selection = sel
	s.mu.Unlock()

	records, err := s.listFolder(ctx, node.Path())
	if err != nil {
		s.logger.Warn("folder listing failed", "path", node.Path(), "error", err)
		records = nil
	}

	s.mu.Lock()
	current := s.selection == sel
	if current {
		sel.photos = records
	}
	s.mu.Unlock()

	if current {
		s.saveSelection(node.Path())
		s.logger.Info("folder selected", "path", node.Path(), "photos", len(records))
	}
}

// listFolder builds the photo records for one folder.
func (s *Service) listFolder(ctx context.Context, dir string) ([]*PhotoRecord, error) {
	pairs, err := sidecar.Pair(ctx, dir, s.exts, s.workers)
	if err != nil {
		return nil, err
	}
	records := make([]*PhotoRecord, 0, len(pairs))
	for _, p := range pairs {
		rec := &PhotoRecord{
			ID:          s.idgen.New(),
			Path:        p.ImagePath,
			DateCreated: creationTime(p.ImagePath, s.clock),
		}
		if p.HasSidecar {
			rec.Metadata = xmp.Parse(p.SidecarText)
		}
		records = append(records, rec)
	}
	return records, nil
}

// SelectedFolder returns the node of the current selection, nil when
// nothing is selected.
func (s *Service) SelectedFolder() *tree.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selection == nil {
		return nil
	}
	return s.selection.node
}

// Photos returns the current selection's listing. The slice is
// replaced wholesale on selection change, never mutated in place.
func (s *Service) Photos() []*PhotoRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selection == nil {
		return nil
	}
	return s.selection.photos
}

// LoadThumbnail fetches a thumbnail under the current selection's
// context, so switching folders cancels it.
func (s *Service) LoadThumbnail(photo *PhotoRecord) (image.Image, error) {
	s.mu.Lock()
	ctx := context.Background()
	if s.selection != nil {
		ctx = s.selection.ctx
	}
	s.mu.Unlock()

	img, err := s.thumbs.Load(ctx, photo.Path)
	if err != nil {
		return nil, fmt.Errorf("loading thumbnail for %s: %w", photo.Path, err)
	}
	return img, nil
}

// ApplyRating writes a star rating through to each photo's sidecar,
// creating sidecars for photos that have none. The rating attribute is
// always written, zero included. In-memory records take the new
// snapshot only after their sidecar hits disk.
func (s *Service) ApplyRating(rating int, photos ...*PhotoRecord) error {
	if rating < 0 || rating > 5 {
		return fmt.Errorf("rating %d out of range 0-5", rating)
	}
	now := s.clock.Now()
	for _, p := range photos {
		doc := s.metadataOf(p)
		var next *xmp.Document
		if doc == nil {
			next = xmp.Parse(xmp.Create(rating, "", now))
		} else {
			next = doc.UpdateRating(rating, now)
		}
		if err := s.writeThrough(p, next); err != nil {
			return err
		}
		s.logger.Info("rating applied", "path", p.Path, "rating", rating)
	}
	return nil
}

// ApplyLabel writes a color label through to each photo's sidecar. An
// empty label removes the attribute instead of writing an empty value.
func (s *Service) ApplyLabel(label string, photos ...*PhotoRecord) error {
	now := s.clock.Now()
	for _, p := range photos {
		doc := s.metadataOf(p)
		var next *xmp.Document
		if doc == nil {
			next = xmp.Parse(xmp.Create(0, label, now))
		} else {
			next = doc.UpdateLabel(label, now)
		}
		if err := s.writeThrough(p, next); err != nil {
			return err
		}
		s.logger.Info("label applied", "path", p.Path, "label", label)
	}
	return nil
}

// ToggleMarkedForRemoval flips the session-scoped removal flag. The
// flag never touches disk and dies with the selection.
func (s *Service) ToggleMarkedForRemoval(photos ...*PhotoRecord) {
	s.mu.Lock()
	for _, p := range photos {
		p.MarkedForRemoval = !p.MarkedForRemoval
	}
	s.mu.Unlock()
}

func (s *Service) metadataOf(p *PhotoRecord) *xmp.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return p.Metadata
}

// writeThrough replaces the photo's sidecar on disk and only then
// swaps the in-memory snapshot, so a failed write leaves the record on
// the last persisted state.
func (s *Service) writeThrough(p *PhotoRecord, next *xmp.Document) error {
	path := sidecar.SidecarPath(p.Path)
	if err := sidecar.Write(path, next.Text()); err != nil {
		return fmt.Errorf("writing sidecar %s: %w", path, err)
	}
	s.mu.Lock()
	p.Metadata = next
	s.mu.Unlock()
	return nil
}

// Close cancels outstanding thumbnail work and releases every held
// grant. The settings store belongs to the caller.
func (s *Service) Close() {
	s.mu.Lock()
	if s.selection != nil {
		s.selection.cancel()
		s.selection = nil
	}
	grants := make([]ActiveGrant, 0, len(s.held))
	for _, g := range s.held {
		grants = append(grants, g)
	}
	s.held = make(map[string]ActiveGrant)
	s.roots = nil
	s.mu.Unlock()

	for _, g := range grants {
		g.Release()
	}
}

// findRoot returns the root with the exact path. Callers hold s.mu.
func (s *Service) findRoot(path string) *tree.Node {
	for _, r := range s.roots {
		if r.Path() == path {
			return r
		}
	}
	return nil
}

// pathWithin reports whether path is root itself or inside it.
func pathWithin(path, root string) bool {
	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}
