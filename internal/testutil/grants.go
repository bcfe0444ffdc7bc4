package testutil

import (
	"fmt"
	"strings"
	"sync"

	"github.com/cristibaluta/Imagin-Raw-sub001/internal/library"
)

const grantTokenPrefix = "grant:"

// FakeGrants is an in-memory Grants implementation. Tokens encode the
// granted path so Restore can round-trip without touching the filesystem.
type FakeGrants struct {
	mu         sync.Mutex
	acquireErr map[string]error
	restoreErr map[string]error
	acquired   []string
	released   []string
}

// NewFakeGrants creates a FakeGrants with no scripted failures.
func NewFakeGrants() *FakeGrants {
	return &FakeGrants{
		acquireErr: make(map[string]error),
		restoreErr: make(map[string]error),
	}
}

// FailAcquire makes Acquire return err for the given path.
func (f *FakeGrants) FailAcquire(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acquireErr[path] = err
}

// FailRestore makes Restore return err for tokens minted for the given path.
func (f *FakeGrants) FailRestore(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restoreErr[path] = err
}

func (f *FakeGrants) Acquire(path string) (library.ActiveGrant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.acquireErr[path]; err != nil {
		return nil, err
	}
	f.acquired = append(f.acquired, path)
	return &FakeGrant{owner: f, path: path, token: []byte(grantTokenPrefix + path)}, nil
}

func (f *FakeGrants) Restore(token []byte) (library.ActiveGrant, error) {
	path, ok := strings.CutPrefix(string(token), grantTokenPrefix)
	if !ok {
		return nil, fmt.Errorf("malformed grant token %q", token)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.restoreErr[path]; err != nil {
		return nil, err
	}
	f.acquired = append(f.acquired, path)
	return &FakeGrant{owner: f, path: path, token: append([]byte(nil), token...)}, nil
}

// Acquired returns every path granted so far, in order.
func (f *FakeGrants) Acquired() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.acquired...)
}

// Released returns every released path, in order.
func (f *FakeGrants) Released() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.released...)
}

// Active returns the number of grants acquired and not yet released.
func (f *FakeGrants) Active() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.acquired) - len(f.released)
}

func (f *FakeGrants) noteRelease(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = append(f.released, path)
}

// FakeGrant is the ActiveGrant handed out by FakeGrants. Release is
// idempotent.
type FakeGrant struct {
	owner *FakeGrants
	path  string
	token []byte
	once  sync.Once
}

func (g *FakeGrant) Path() string { return g.path }

func (g *FakeGrant) Token() []byte { return g.token }

func (g *FakeGrant) Release() {
	g.once.Do(func() { g.owner.noteRelease(g.path) })
}

// Compile-time checks
var _ library.Grants = (*FakeGrants)(nil)
var _ library.ActiveGrant = (*FakeGrant)(nil)
