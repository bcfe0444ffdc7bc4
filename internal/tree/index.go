package tree

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// FolderScanner is the scan seam of the Index.
type FolderScanner interface {
	Scan(root string) *Node
}

// Index owns tree expansion. Concurrent expansion requests for the
// same folder collapse into a single scan, and a request abandoned
// before its scan returns discards the result instead of touching the
// node.
type Index struct {
	scanner FolderScanner
	group   singleflight.Group

	mu     sync.Mutex
	epochs map[string]uint64
}

func NewIndex(scanner FolderScanner) *Index {
	return &Index{scanner: scanner, epochs: make(map[string]uint64)}
}

// Expand rescans the folder under node and installs the result as its
// children. Expanding a folder whose subfolders disappeared since the
// probe moves it to NoChildren. The returned slice is the scan result
// even when a concurrent Abandon kept it from being installed.
func (ix *Index) Expand(ctx context.Context, node *Node) ([]*Node, error) {
	path := node.Path()
	ix.mu.Lock()
	start := ix.epochs[path]
	ix.mu.Unlock()

	v, err, _ := ix.group.Do(path, func() (any, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		scanned := ix.scanner.Scan(path)
		ix.mu.Lock()
		defer ix.mu.Unlock()
		if ix.epochs[path] == start {
			node.SetChildren(scanned.Children())
		}
		return scanned.Children(), nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*Node), nil
}

// Abandon supersedes any in-flight expansion of path. The scan still
// runs to completion but its result is dropped, and the next Expand
// starts a fresh scan instead of joining the stale one.
func (ix *Index) Abandon(path string) {
	ix.mu.Lock()
	ix.epochs[path]++
	ix.mu.Unlock()
	ix.group.Forget(path)
}
