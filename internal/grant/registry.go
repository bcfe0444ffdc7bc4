package grant

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/cristibaluta/Imagin-Raw-sub001/internal/library"
	"github.com/cristibaluta/Imagin-Raw-sub001/internal/seal"
)

// payload is what a grant token seals: the folder path plus the
// identity of the folder behind it at mint time. Restore compares that
// identity against the current filesystem, so a token survives renames
// of siblings but not the folder itself being swapped out.
type payload struct {
	Path      string    `json:"path"`
	Dev       uint64    `json:"dev"`
	Ino       uint64    `json:"ino"`
	GrantedAt time.Time `json:"granted_at"`
}

// Registry mints and restores folder access grants. It implements the
// library Grants interface with tokens sealed to this installation.
// Sessions are refcounted per path; a path stays held until every
// grant covering it is released. Operations on one path run serially,
// distinct paths proceed in parallel.
type Registry struct {
	sealer seal.Sealer
	logger library.Logger
	clock  library.Clock

	mu       sync.Mutex
	sessions map[string]int
	locks    map[string]*sync.Mutex
}

// NewRegistry creates a Registry sealing tokens with the given sealer.
func NewRegistry(sealer seal.Sealer, logger library.Logger, clock library.Clock) *Registry {
	return &Registry{
		sealer:   sealer,
		logger:   logger,
		clock:    clock,
		sessions: make(map[string]int),
		locks:    make(map[string]*sync.Mutex),
	}
}

// Acquire grants access to path and mints a sealed token for it.
func (r *Registry) Acquire(path string) (library.ActiveGrant, error) {
	lock := r.pathLock(path)
	lock.Lock()
	defer lock.Unlock()

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, library.ErrAccessDenied)
		}
		return nil, fmt.Errorf("inspecting %s: %w", path, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a folder: %w", path, library.ErrAccessDenied)
	}

	dev, ino, err := folderIdentity(info)
	if err != nil {
		return nil, fmt.Errorf("identifying %s: %w", path, err)
	}

	raw, err := json.Marshal(payload{
		Path:      path,
		Dev:       dev,
		Ino:       ino,
		GrantedAt: r.clock.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("encoding grant: %w", err)
	}

	token, err := r.sealer.Seal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", library.ErrTokenCreation, err)
	}

	r.open(path)
	r.logger.Debug("grant acquired", "path", path)
	return &Grant{registry: r, path: path, token: token}, nil
}

// Restore reopens access from a previously minted token.
func (r *Registry) Restore(token []byte) (library.ActiveGrant, error) {
	raw, err := r.sealer.Unseal(token)
	if err != nil {
		return nil, fmt.Errorf("opening grant token: %w", err)
	}

	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decoding grant token: %w", err)
	}

	lock := r.pathLock(p.Path)
	lock.Lock()
	defer lock.Unlock()

	info, err := os.Stat(p.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", p.Path, library.ErrPathMissing)
		}
		return nil, fmt.Errorf("inspecting %s: %w", p.Path, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", p.Path, library.ErrStaleToken)
	}

	dev, ino, err := folderIdentity(info)
	if err != nil {
		return nil, fmt.Errorf("identifying %s: %w", p.Path, err)
	}
	if dev != p.Dev || ino != p.Ino {
		return nil, fmt.Errorf("%s: %w", p.Path, library.ErrStaleToken)
	}

	r.open(p.Path)
	r.logger.Debug("grant restored", "path", p.Path)
	return &Grant{registry: r, path: p.Path, token: append([]byte(nil), token...)}, nil
}

// Held returns the paths with at least one open session, sorted.
func (r *Registry) Held() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	paths := make([]string, 0, len(r.sessions))
	for p := range r.sessions {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// pathLock returns the mutex serializing operations on path. Lock
// entries live for the registry's lifetime; the set of paths a library
// touches is small.
func (r *Registry) pathLock(path string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[path]
	if !ok {
		l = &sync.Mutex{}
		r.locks[path] = l
	}
	return l
}

func (r *Registry) open(path string) {
	r.mu.Lock()
	r.sessions[path]++
	r.mu.Unlock()
}

func (r *Registry) release(path string) {
	r.mu.Lock()
	if n := r.sessions[path]; n > 1 {
		r.sessions[path] = n - 1
	} else {
		delete(r.sessions, path)
	}
	r.mu.Unlock()
	r.logger.Debug("grant released", "path", path)
}

// Grant is one open access session minted by the Registry.
type Grant struct {
	registry *Registry
	path     string
	token    []byte
	once     sync.Once
}

// Path is the folder the grant covers.
func (g *Grant) Path() string { return g.path }

// Token is the sealed form to persist for the next launch.
func (g *Grant) Token() []byte { return g.token }

// Release closes the session. Safe to call more than once.
func (g *Grant) Release() {
	g.once.Do(func() { g.registry.release(g.path) })
}

// Compile-time checks
var _ library.Grants = (*Registry)(nil)
var _ library.ActiveGrant = (*Grant)(nil)
