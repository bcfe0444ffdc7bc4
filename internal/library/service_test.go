package library_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cristibaluta/Imagin-Raw-sub001/internal/library"
	"github.com/cristibaluta/Imagin-Raw-sub001/internal/sidecar"
	"github.com/cristibaluta/Imagin-Raw-sub001/internal/testutil"
	"github.com/cristibaluta/Imagin-Raw-sub001/internal/tree"
)

const testSidecar = `<x:xmpmeta xmlns:x="adobe:ns:meta/">
 <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
  <rdf:Description rdf:about=""
    xmlns:xmp="http://ns.adobe.com/xap/1.0/"
    xmp:Label="Keep"
    xmp:Rating="2"/>
 </rdf:RDF>
</x:xmpmeta>
`

// testService bundles a Service with the fakes behind it.
type testService struct {
	svc      *library.Service
	grants   *testutil.FakeGrants
	settings library.SettingsStore
	thumbs   *testutil.FakeThumbnailLoader
	clock    *testutil.StubClock
}

func newTestService(t *testing.T) *testService {
	t.Helper()
	return newTestServiceWith(t, testutil.NewTestSettings())
}

// newTestServiceWith builds a Service on real folder scanning, with the
// given settings store so tests can share state across instances.
func newTestServiceWith(t *testing.T, settings library.SettingsStore) *testService {
	t.Helper()

	grants := testutil.NewFakeGrants()
	thumbs := testutil.NewFakeThumbnailLoader()
	clock := testutil.FixedClock()
	index := tree.NewIndex(tree.NewScanner(2, "en"))

	svc := library.NewService(grants, index, settings, thumbs,
		sidecar.DefaultExtensions(), library.NewNopLogger(), clock,
		testutil.NewStubIDGenerator(), 2)
	t.Cleanup(svc.Close)

	return &testService{svc: svc, grants: grants, settings: settings, thumbs: thumbs, clock: clock}
}

// writeFiles populates dir with the given file contents.
func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestService_AddRoot(t *testing.T) {
	t.Run("adds a new root with its grant", func(t *testing.T) {
		ts := newTestService(t)
		dir := t.TempDir()

		node, err := ts.svc.AddRoot(context.Background(), dir)
		if err != nil {
			t.Fatalf("AddRoot() error = %v", err)
		}
		if node.Path() != dir {
			t.Errorf("node path = %q, want %q", node.Path(), dir)
		}
		if len(node.Token()) == 0 {
			t.Error("node has no grant token")
		}
		if got := ts.svc.Roots(); len(got) != 1 {
			t.Errorf("Roots() returned %d roots, want 1", len(got))
		}
		if got := ts.grants.Acquired(); len(got) != 1 || got[0] != dir {
			t.Errorf("acquired grants = %v, want [%s]", got, dir)
		}
	})

	t.Run("scans the subtree on add", func(t *testing.T) {
		ts := newTestService(t)
		dir := t.TempDir()
		if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
			t.Fatal(err)
		}

		node, err := ts.svc.AddRoot(context.Background(), dir)
		if err != nil {
			t.Fatalf("AddRoot() error = %v", err)
		}
		if node.State() != tree.Loaded {
			t.Errorf("root state = %v, want %v", node.State(), tree.Loaded)
		}
		children := node.Children()
		if len(children) != 1 || children[0].Name() != "sub" {
			t.Errorf("children = %v, want one child named sub", children)
		}
	})

	t.Run("grant failure leaves the library untouched", func(t *testing.T) {
		ts := newTestService(t)
		dir := t.TempDir()
		ts.grants.FailAcquire(dir, errors.New("declined"))

		if _, err := ts.svc.AddRoot(context.Background(), dir); err == nil {
			t.Fatal("AddRoot() expected error, got nil")
		}
		if got := ts.svc.Roots(); len(got) != 0 {
			t.Errorf("Roots() returned %d roots, want 0", len(got))
		}
		if ts.grants.Active() != 0 {
			t.Errorf("active grants = %d, want 0", ts.grants.Active())
		}
	})

	t.Run("adding the same root twice returns the existing node", func(t *testing.T) {
		ts := newTestService(t)
		dir := t.TempDir()

		first, err := ts.svc.AddRoot(context.Background(), dir)
		if err != nil {
			t.Fatalf("AddRoot() error = %v", err)
		}
		second, err := ts.svc.AddRoot(context.Background(), dir)
		if err != nil {
			t.Fatalf("second AddRoot() error = %v", err)
		}
		if first != second {
			t.Error("second AddRoot() returned a different node")
		}
		if len(ts.svc.Roots()) != 1 {
			t.Errorf("Roots() returned %d roots, want 1", len(ts.svc.Roots()))
		}
		if got := ts.grants.Acquired(); len(got) != 1 {
			t.Errorf("acquired %d grants, want 1", len(got))
		}
	})
}

func TestService_RemoveRoot(t *testing.T) {
	t.Run("removes the root and releases its grant", func(t *testing.T) {
		ts := newTestService(t)
		dir := t.TempDir()
		if _, err := ts.svc.AddRoot(context.Background(), dir); err != nil {
			t.Fatalf("AddRoot() error = %v", err)
		}

		ts.svc.RemoveRoot(dir)

		if got := ts.svc.Roots(); len(got) != 0 {
			t.Errorf("Roots() returned %d roots, want 0", len(got))
		}
		if got := ts.grants.Released(); len(got) != 1 || got[0] != dir {
			t.Errorf("released grants = %v, want [%s]", got, dir)
		}
	})

	t.Run("removing twice releases exactly once", func(t *testing.T) {
		ts := newTestService(t)
		dir := t.TempDir()
		if _, err := ts.svc.AddRoot(context.Background(), dir); err != nil {
			t.Fatalf("AddRoot() error = %v", err)
		}

		ts.svc.RemoveRoot(dir)
		ts.svc.RemoveRoot(dir)

		if got := ts.grants.Released(); len(got) != 1 {
			t.Errorf("released grants = %v, want exactly one", got)
		}
	})

	t.Run("removing an unknown path is a no-op", func(t *testing.T) {
		ts := newTestService(t)
		dir := t.TempDir()
		if _, err := ts.svc.AddRoot(context.Background(), dir); err != nil {
			t.Fatalf("AddRoot() error = %v", err)
		}

		ts.svc.RemoveRoot(filepath.Join(dir, "nope"))

		if len(ts.svc.Roots()) != 1 {
			t.Errorf("Roots() returned %d roots, want 1", len(ts.svc.Roots()))
		}
		if len(ts.grants.Released()) != 0 {
			t.Errorf("released grants = %v, want none", ts.grants.Released())
		}
	})

	t.Run("clears a selection inside the removed root", func(t *testing.T) {
		ts := newTestService(t)
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{"a.jpg": "x"})
		node, err := ts.svc.AddRoot(context.Background(), dir)
		if err != nil {
			t.Fatalf("AddRoot() error = %v", err)
		}
		ts.svc.Select(context.Background(), node)
		if ts.svc.SelectedFolder() == nil {
			t.Fatal("selection missing after Select()")
		}

		ts.svc.RemoveRoot(dir)

		if ts.svc.SelectedFolder() != nil {
			t.Error("selection survived removal of its root")
		}
		if got := ts.svc.LastSelection(); got != "" {
			t.Errorf("LastSelection() = %q, want empty", got)
		}
	})

	t.Run("keeps a selection outside the removed root", func(t *testing.T) {
		ts := newTestService(t)
		dirA := t.TempDir()
		dirB := t.TempDir()
		nodeA, err := ts.svc.AddRoot(context.Background(), dirA)
		if err != nil {
			t.Fatalf("AddRoot() error = %v", err)
		}
		if _, err := ts.svc.AddRoot(context.Background(), dirB); err != nil {
			t.Fatalf("AddRoot() error = %v", err)
		}
		ts.svc.Select(context.Background(), nodeA)

		ts.svc.RemoveRoot(dirB)

		if got := ts.svc.SelectedFolder(); got != nodeA {
			t.Errorf("SelectedFolder() = %v, want node for %s", got, dirA)
		}
	})
}

func TestService_RestoreRoots(t *testing.T) {
	t.Run("restores persisted roots", func(t *testing.T) {
		store := testutil.NewTestSettings()
		dir := t.TempDir()

		first := newTestServiceWith(t, store)
		if _, err := first.svc.AddRoot(context.Background(), dir); err != nil {
			t.Fatalf("AddRoot() error = %v", err)
		}
		first.svc.Close()

		second := newTestServiceWith(t, store)
		issues, err := second.svc.RestoreRoots(context.Background())
		if err != nil {
			t.Fatalf("RestoreRoots() error = %v", err)
		}
		if len(issues) != 0 {
			t.Errorf("RestoreRoots() issues = %v, want none", issues)
		}
		roots := second.svc.Roots()
		if len(roots) != 1 || roots[0].Path() != dir {
			t.Errorf("Roots() = %v, want [%s]", roots, dir)
		}
	})

	t.Run("reports roots that no longer restore", func(t *testing.T) {
		store := testutil.NewTestSettings()
		dirA := t.TempDir()
		dirB := t.TempDir()

		first := newTestServiceWith(t, store)
		if _, err := first.svc.AddRoot(context.Background(), dirA); err != nil {
			t.Fatalf("AddRoot() error = %v", err)
		}
		if _, err := first.svc.AddRoot(context.Background(), dirB); err != nil {
			t.Fatalf("AddRoot() error = %v", err)
		}
		first.svc.Close()

		second := newTestServiceWith(t, store)
		second.grants.FailRestore(dirB, library.ErrPathMissing)

		issues, err := second.svc.RestoreRoots(context.Background())
		if err != nil {
			t.Fatalf("RestoreRoots() error = %v", err)
		}
		if len(issues) != 1 || issues[0].Path != dirB {
			t.Fatalf("issues = %v, want one for %s", issues, dirB)
		}
		if !errors.Is(issues[0].Err, library.ErrPathMissing) {
			t.Errorf("issue error = %v, want ErrPathMissing", issues[0].Err)
		}
		if roots := second.svc.Roots(); len(roots) != 1 || roots[0].Path() != dirA {
			t.Errorf("Roots() = %v, want [%s]", roots, dirA)
		}

		// The dropped root must not come back on the next launch
		third := newTestServiceWith(t, store)
		issues, err = third.svc.RestoreRoots(context.Background())
		if err != nil {
			t.Fatalf("RestoreRoots() error = %v", err)
		}
		if len(issues) != 0 {
			t.Errorf("issues on second restore = %v, want none", issues)
		}
		if roots := third.svc.Roots(); len(roots) != 1 || roots[0].Path() != dirA {
			t.Errorf("Roots() after second restore = %v, want [%s]", roots, dirA)
		}
	})

	t.Run("skips roots that are already present", func(t *testing.T) {
		store := testutil.NewTestSettings()
		dir := t.TempDir()

		first := newTestServiceWith(t, store)
		if _, err := first.svc.AddRoot(context.Background(), dir); err != nil {
			t.Fatalf("AddRoot() error = %v", err)
		}
		first.svc.Close()

		second := newTestServiceWith(t, store)
		if _, err := second.svc.AddRoot(context.Background(), dir); err != nil {
			t.Fatalf("AddRoot() error = %v", err)
		}
		if _, err := second.svc.RestoreRoots(context.Background()); err != nil {
			t.Fatalf("RestoreRoots() error = %v", err)
		}
		if len(second.svc.Roots()) != 1 {
			t.Errorf("Roots() returned %d roots, want 1", len(second.svc.Roots()))
		}
		if second.grants.Active() != 1 {
			t.Errorf("active grants = %d, want 1", second.grants.Active())
		}
	})
}

func TestService_FindNode(t *testing.T) {
	ts := newTestService(t)
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := ts.svc.AddRoot(context.Background(), dir); err != nil {
		t.Fatalf("AddRoot() error = %v", err)
	}

	if got := ts.svc.FindNode(dir); got == nil || got.Path() != dir {
		t.Errorf("FindNode(root) = %v, want node for %s", got, dir)
	}
	if got := ts.svc.FindNode(sub); got == nil || got.Path() != sub {
		t.Errorf("FindNode(sub) = %v, want node for %s", got, sub)
	}
	if got := ts.svc.FindNode(filepath.Join(dir, "nope")); got != nil {
		t.Errorf("FindNode(missing) = %v, want nil", got)
	}
}

func TestService_LoadChildren(t *testing.T) {
	ts := newTestService(t)
	dir := t.TempDir()
	deep := filepath.Join(dir, "a", "b", "c")
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatal(err)
	}

	if _, err := ts.svc.AddRoot(context.Background(), dir); err != nil {
		t.Fatalf("AddRoot() error = %v", err)
	}

	// The add scan stops at depth 2, leaving a/b marked but unloaded
	b := ts.svc.FindNode(filepath.Join(dir, "a", "b"))
	if b == nil {
		t.Fatal("node for a/b not found after add scan")
	}
	if b.State() != tree.Unloaded {
		t.Fatalf("a/b state = %v, want %v", b.State(), tree.Unloaded)
	}

	children, err := ts.svc.LoadChildren(context.Background(), b)
	if err != nil {
		t.Fatalf("LoadChildren() error = %v", err)
	}
	if len(children) != 1 || children[0].Name() != "c" {
		t.Errorf("children = %v, want one child named c", children)
	}
	if b.State() != tree.Loaded {
		t.Errorf("a/b state after load = %v, want %v", b.State(), tree.Loaded)
	}
}

func TestService_Expanded(t *testing.T) {
	ts := newTestService(t)
	dir := t.TempDir()

	if ts.svc.Expanded(dir) {
		t.Error("Expanded() = true before any SetExpanded")
	}

	ts.svc.SetExpanded(dir, true)
	if !ts.svc.Expanded(dir) {
		t.Error("Expanded() = false after expanding")
	}

	ts.svc.SetExpanded(dir, false)
	if ts.svc.Expanded(dir) {
		t.Error("Expanded() = true after collapsing")
	}
}

func TestService_Select(t *testing.T) {
	t.Run("lists photos with sidecars paired by base name", func(t *testing.T) {
		ts := newTestService(t)
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{
			"IMG_1.jpg": "jpeg bytes",
			"IMG_1.xmp": testSidecar,
			"IMG_2.nef": "raw bytes",
			"notes.txt": "not a photo",
		})
		node, err := ts.svc.AddRoot(context.Background(), dir)
		if err != nil {
			t.Fatalf("AddRoot() error = %v", err)
		}

		ts.svc.Select(context.Background(), node)

		photos := ts.svc.Photos()
		if len(photos) != 2 {
			t.Fatalf("Photos() returned %d records, want 2", len(photos))
		}
		if photos[0].Name() != "IMG_1.jpg" || photos[1].Name() != "IMG_2.nef" {
			t.Errorf("photo order = [%s %s], want [IMG_1.jpg IMG_2.nef]", photos[0].Name(), photos[1].Name())
		}
		if photos[0].Rating() != 2 {
			t.Errorf("IMG_1 rating = %d, want 2", photos[0].Rating())
		}
		if photos[0].Label() != "Keep" {
			t.Errorf("IMG_1 label = %q, want Keep", photos[0].Label())
		}
		if photos[1].Metadata != nil {
			t.Error("IMG_2 has metadata, want none without a sidecar")
		}
		if photos[0].ID == "" || photos[0].ID == photos[1].ID {
			t.Errorf("photo IDs = %q and %q, want distinct non-empty", photos[0].ID, photos[1].ID)
		}
		if photos[0].DateCreated.IsZero() {
			t.Error("IMG_1 has zero creation date")
		}
		if got := ts.svc.LastSelection(); got != dir {
			t.Errorf("LastSelection() = %q, want %q", got, dir)
		}
	})

	t.Run("selecting an unreadable folder degrades to an empty listing", func(t *testing.T) {
		ts := newTestService(t)
		dir := t.TempDir()
		node := tree.New(filepath.Join(dir, "gone"))

		ts.svc.Select(context.Background(), node)

		if got := ts.svc.SelectedFolder(); got != node {
			t.Errorf("SelectedFolder() = %v, want the selected node", got)
		}
		if photos := ts.svc.Photos(); len(photos) != 0 {
			t.Errorf("Photos() returned %d records, want 0", len(photos))
		}
	})

	t.Run("reselecting replaces the listing wholesale", func(t *testing.T) {
		ts := newTestService(t)
		dirA := t.TempDir()
		dirB := t.TempDir()
		writeFiles(t, dirA, map[string]string{"a.jpg": "x", "b.jpg": "x"})
		writeFiles(t, dirB, map[string]string{"c.jpg": "x"})
		nodeA, err := ts.svc.AddRoot(context.Background(), dirA)
		if err != nil {
			t.Fatalf("AddRoot() error = %v", err)
		}
		nodeB, err := ts.svc.AddRoot(context.Background(), dirB)
		if err != nil {
			t.Fatalf("AddRoot() error = %v", err)
		}

		ts.svc.Select(context.Background(), nodeA)
		ts.svc.Select(context.Background(), nodeB)

		if got := ts.svc.SelectedFolder(); got != nodeB {
			t.Errorf("SelectedFolder() = %v, want node for %s", got, dirB)
		}
		photos := ts.svc.Photos()
		if len(photos) != 1 || photos[0].Name() != "c.jpg" {
			t.Errorf("Photos() = %v, want [c.jpg]", photos)
		}
	})

	t.Run("switching folders cancels in-flight thumbnail loads", func(t *testing.T) {
		ts := newTestService(t)
		dirA := t.TempDir()
		dirB := t.TempDir()
		writeFiles(t, dirA, map[string]string{"a.jpg": "x"})
		nodeA, err := ts.svc.AddRoot(context.Background(), dirA)
		if err != nil {
			t.Fatalf("AddRoot() error = %v", err)
		}
		nodeB, err := ts.svc.AddRoot(context.Background(), dirB)
		if err != nil {
			t.Fatalf("AddRoot() error = %v", err)
		}

		ts.svc.Select(context.Background(), nodeA)
		photos := ts.svc.Photos()
		if len(photos) != 1 {
			t.Fatalf("Photos() returned %d records, want 1", len(photos))
		}

		ts.thumbs.Block()
		errc := make(chan error, 1)
		go func() {
			_, err := ts.svc.LoadThumbnail(photos[0])
			errc <- err
		}()
		waitFor(t, func() bool { return len(ts.thumbs.Calls()) == 1 })

		ts.svc.Select(context.Background(), nodeB)

		select {
		case err := <-errc:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("LoadThumbnail() error = %v, want context.Canceled", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("thumbnail load was not canceled by reselection")
		}
	})
}

func TestService_LoadThumbnail(t *testing.T) {
	ts := newTestService(t)
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.jpg": "x"})
	node, err := ts.svc.AddRoot(context.Background(), dir)
	if err != nil {
		t.Fatalf("AddRoot() error = %v", err)
	}
	ts.svc.Select(context.Background(), node)
	photos := ts.svc.Photos()

	img, err := ts.svc.LoadThumbnail(photos[0])
	if err != nil {
		t.Fatalf("LoadThumbnail() error = %v", err)
	}
	if img == nil {
		t.Fatal("LoadThumbnail() returned nil image")
	}
	if calls := ts.thumbs.Calls(); len(calls) != 1 || calls[0] != photos[0].Path {
		t.Errorf("loader calls = %v, want [%s]", calls, photos[0].Path)
	}
}

func TestService_ApplyRating(t *testing.T) {
	t.Run("writes the rating through to the sidecar", func(t *testing.T) {
		ts := newTestService(t)
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{"a.jpg": "x", "a.xmp": testSidecar})
		node, err := ts.svc.AddRoot(context.Background(), dir)
		if err != nil {
			t.Fatalf("AddRoot() error = %v", err)
		}
		ts.svc.Select(context.Background(), node)
		photo := ts.svc.Photos()[0]

		if err := ts.svc.ApplyRating(5, photo); err != nil {
			t.Fatalf("ApplyRating() error = %v", err)
		}

		if got := photo.Rating(); got != 5 {
			t.Errorf("in-memory rating = %d, want 5", got)
		}
		onDisk, err := os.ReadFile(filepath.Join(dir, "a.xmp"))
		if err != nil {
			t.Fatalf("reading sidecar: %v", err)
		}
		if !strings.Contains(string(onDisk), `xmp:Rating="5"`) {
			t.Errorf("sidecar on disk = %q, want it to contain xmp:Rating=\"5\"", onDisk)
		}
		if !strings.Contains(string(onDisk), `xmp:ModifyDate="2026-02-11T09:15:00+00:00"`) {
			t.Errorf("sidecar on disk = %q, want the modify date stamped", onDisk)
		}
	})

	t.Run("creates a sidecar for photos without one", func(t *testing.T) {
		ts := newTestService(t)
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{"b.nef": "raw"})
		node, err := ts.svc.AddRoot(context.Background(), dir)
		if err != nil {
			t.Fatalf("AddRoot() error = %v", err)
		}
		ts.svc.Select(context.Background(), node)
		photo := ts.svc.Photos()[0]

		if err := ts.svc.ApplyRating(4, photo); err != nil {
			t.Fatalf("ApplyRating() error = %v", err)
		}

		onDisk, err := os.ReadFile(filepath.Join(dir, "b.xmp"))
		if err != nil {
			t.Fatalf("created sidecar not readable: %v", err)
		}
		if !strings.Contains(string(onDisk), `xmp:Rating="4"`) {
			t.Errorf("created sidecar = %q, want it to contain xmp:Rating=\"4\"", onDisk)
		}
		if photo.Metadata == nil {
			t.Error("photo record still has no metadata after rating")
		}
	})

	t.Run("zero is written explicitly", func(t *testing.T) {
		ts := newTestService(t)
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{"a.jpg": "x", "a.xmp": testSidecar})
		node, err := ts.svc.AddRoot(context.Background(), dir)
		if err != nil {
			t.Fatalf("AddRoot() error = %v", err)
		}
		ts.svc.Select(context.Background(), node)
		photo := ts.svc.Photos()[0]

		if err := ts.svc.ApplyRating(0, photo); err != nil {
			t.Fatalf("ApplyRating() error = %v", err)
		}

		onDisk, err := os.ReadFile(filepath.Join(dir, "a.xmp"))
		if err != nil {
			t.Fatalf("reading sidecar: %v", err)
		}
		if !strings.Contains(string(onDisk), `xmp:Rating="0"`) {
			t.Errorf("sidecar on disk = %q, want an explicit zero rating", onDisk)
		}
	})

	t.Run("rejects ratings outside 0-5", func(t *testing.T) {
		ts := newTestService(t)
		photo := &library.PhotoRecord{Path: "/photos/a.jpg"}

		for _, rating := range []int{-1, 6} {
			if err := ts.svc.ApplyRating(rating, photo); err == nil {
				t.Errorf("ApplyRating(%d) expected error, got nil", rating)
			}
		}
	})

	t.Run("failed write keeps the last persisted state", func(t *testing.T) {
		ts := newTestService(t)
		dir := t.TempDir()
		photo := &library.PhotoRecord{Path: filepath.Join(dir, "missing", "c.jpg")}

		if err := ts.svc.ApplyRating(3, photo); err == nil {
			t.Fatal("ApplyRating() expected error for unwritable sidecar, got nil")
		}
		if photo.Metadata != nil {
			t.Error("photo record took new metadata despite the failed write")
		}
	})
}

func TestService_ApplyLabel(t *testing.T) {
	t.Run("writes the label through to the sidecar", func(t *testing.T) {
		ts := newTestService(t)
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{"a.jpg": "x", "a.xmp": testSidecar})
		node, err := ts.svc.AddRoot(context.Background(), dir)
		if err != nil {
			t.Fatalf("AddRoot() error = %v", err)
		}
		ts.svc.Select(context.Background(), node)
		photo := ts.svc.Photos()[0]

		if err := ts.svc.ApplyLabel("Approved", photo); err != nil {
			t.Fatalf("ApplyLabel() error = %v", err)
		}

		if got := photo.Label(); got != "Approved" {
			t.Errorf("in-memory label = %q, want Approved", got)
		}
		onDisk, err := os.ReadFile(filepath.Join(dir, "a.xmp"))
		if err != nil {
			t.Fatalf("reading sidecar: %v", err)
		}
		if !strings.Contains(string(onDisk), `xmp:Label="Approved"`) {
			t.Errorf("sidecar on disk = %q, want it to contain xmp:Label=\"Approved\"", onDisk)
		}
	})

	t.Run("empty label removes the attribute", func(t *testing.T) {
		ts := newTestService(t)
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{"a.jpg": "x", "a.xmp": testSidecar})
		node, err := ts.svc.AddRoot(context.Background(), dir)
		if err != nil {
			t.Fatalf("AddRoot() error = %v", err)
		}
		ts.svc.Select(context.Background(), node)
		photo := ts.svc.Photos()[0]

		if err := ts.svc.ApplyLabel("", photo); err != nil {
			t.Fatalf("ApplyLabel() error = %v", err)
		}

		if got := photo.Label(); got != "" {
			t.Errorf("in-memory label = %q, want empty", got)
		}
		onDisk, err := os.ReadFile(filepath.Join(dir, "a.xmp"))
		if err != nil {
			t.Fatalf("reading sidecar: %v", err)
		}
		if strings.Contains(string(onDisk), "xmp:Label") {
			t.Errorf("sidecar on disk = %q, want the label attribute gone", onDisk)
		}
	})

	t.Run("creates a sidecar for photos without one", func(t *testing.T) {
		ts := newTestService(t)
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{"b.nef": "raw"})
		node, err := ts.svc.AddRoot(context.Background(), dir)
		if err != nil {
			t.Fatalf("AddRoot() error = %v", err)
		}
		ts.svc.Select(context.Background(), node)
		photo := ts.svc.Photos()[0]

		if err := ts.svc.ApplyLabel("Review", photo); err != nil {
			t.Fatalf("ApplyLabel() error = %v", err)
		}

		onDisk, err := os.ReadFile(filepath.Join(dir, "b.xmp"))
		if err != nil {
			t.Fatalf("created sidecar not readable: %v", err)
		}
		if !strings.Contains(string(onDisk), `xmp:Label="Review"`) {
			t.Errorf("created sidecar = %q, want it to contain xmp:Label=\"Review\"", onDisk)
		}
	})
}

func TestService_ToggleMarkedForRemoval(t *testing.T) {
	ts := newTestService(t)
	a := &library.PhotoRecord{Path: "/photos/a.jpg"}
	b := &library.PhotoRecord{Path: "/photos/b.jpg"}

	ts.svc.ToggleMarkedForRemoval(a, b)
	if !a.MarkedForRemoval || !b.MarkedForRemoval {
		t.Error("toggle did not mark both photos")
	}

	ts.svc.ToggleMarkedForRemoval(a)
	if a.MarkedForRemoval {
		t.Error("second toggle did not unmark the photo")
	}
	if !b.MarkedForRemoval {
		t.Error("toggling one photo changed another")
	}
}

func TestService_Close(t *testing.T) {
	ts := newTestService(t)
	dirA := t.TempDir()
	dirB := t.TempDir()
	if _, err := ts.svc.AddRoot(context.Background(), dirA); err != nil {
		t.Fatalf("AddRoot() error = %v", err)
	}
	if _, err := ts.svc.AddRoot(context.Background(), dirB); err != nil {
		t.Fatalf("AddRoot() error = %v", err)
	}

	ts.svc.Close()

	if ts.grants.Active() != 0 {
		t.Errorf("active grants after Close() = %d, want 0", ts.grants.Active())
	}
	if len(ts.svc.Roots()) != 0 {
		t.Errorf("Roots() after Close() = %v, want none", ts.svc.Roots())
	}
}
