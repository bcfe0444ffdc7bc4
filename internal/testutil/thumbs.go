package testutil

import (
	"context"
	"image"
	"sync"

	"github.com/cristibaluta/Imagin-Raw-sub001/internal/library"
)

// FakeThumbnailLoader serves a fixed image and records every request.
type FakeThumbnailLoader struct {
	mu    sync.Mutex
	img   image.Image
	err   error
	block chan struct{}
	calls []string
}

func NewFakeThumbnailLoader() *FakeThumbnailLoader {
	return &FakeThumbnailLoader{img: image.NewRGBA(image.Rect(0, 0, 2, 2))}
}

// Fail makes every Load return err.
func (f *FakeThumbnailLoader) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// Block makes subsequent Loads wait until Unblock or context cancellation.
func (f *FakeThumbnailLoader) Block() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.block = make(chan struct{})
}

// Unblock releases Loads blocked by Block.
func (f *FakeThumbnailLoader) Unblock() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.block != nil {
		close(f.block)
		f.block = nil
	}
}

func (f *FakeThumbnailLoader) Load(ctx context.Context, path string) (image.Image, error) {
	f.mu.Lock()
	f.calls = append(f.calls, path)
	block := f.block
	img, err := f.img, f.err
	f.mu.Unlock()

	if block != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-block:
		}
	}
	if err != nil {
		return nil, err
	}
	return img, nil
}

// Calls returns every requested path, in order.
func (f *FakeThumbnailLoader) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Compile-time check
var _ library.ThumbnailLoader = (*FakeThumbnailLoader)(nil)
