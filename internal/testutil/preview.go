package testutil

import (
	"fmt"
	"sync"

	"github.com/cristibaluta/Imagin-Raw-sub001/internal/library"
)

// FakePreviewDecoder serves canned previews keyed by path.
type FakePreviewDecoder struct {
	mu       sync.Mutex
	previews map[string]*library.Preview
	err      error
	calls    []string
}

func NewFakePreviewDecoder() *FakePreviewDecoder {
	return &FakePreviewDecoder{previews: make(map[string]*library.Preview)}
}

// AddPreview registers the preview returned for path.
func (f *FakePreviewDecoder) AddPreview(path string, p *library.Preview) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.previews[path] = p
}

// Fail makes every Decode return err.
func (f *FakePreviewDecoder) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *FakePreviewDecoder) Decode(path string) (*library.Preview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, path)
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.previews[path]
	if !ok {
		return nil, fmt.Errorf("no preview registered for %s", path)
	}
	return p, nil
}

// Calls returns every decoded path, in order.
func (f *FakePreviewDecoder) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Compile-time check
var _ library.PreviewDecoder = (*FakePreviewDecoder)(nil)
