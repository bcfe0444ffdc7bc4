package thumb

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/jpeg"
	"os"

	_ "image/gif" // register decoders for raster formats
	_ "image/png"

	"github.com/nfnt/resize"
	"golang.org/x/sync/singleflight"

	"github.com/cristibaluta/Imagin-Raw-sub001/internal/library"
	"github.com/cristibaluta/Imagin-Raw-sub001/internal/sidecar"
)

// DefaultBox is the bounding box edge for thumbnails, in pixels.
const DefaultBox = 256

// Loader turns image files into bounded thumbnails. Concurrent
// requests for the same file collapse into one decode, finished
// thumbnails land in the cache keyed by path and file version, and a
// semaphore bounds how many decodes run at once.
type Loader struct {
	previews library.PreviewDecoder
	cache    Cache
	exts     *sidecar.ExtensionSet
	logger   library.Logger
	box      uint
	sem      chan struct{}
	group    singleflight.Group
}

// NewLoader creates a Loader. previews may be nil, in which case RAW
// files fail to load and raster files still work.
func NewLoader(previews library.PreviewDecoder, cache Cache, exts *sidecar.ExtensionSet, logger library.Logger, box, workers int) *Loader {
	if box < 1 {
		box = DefaultBox
	}
	if workers < 1 {
		workers = 2
	}
	return &Loader{
		previews: previews,
		cache:    cache,
		exts:     exts,
		logger:   logger,
		box:      uint(box),
		sem:      make(chan struct{}, workers),
	}
}

// Load returns the thumbnail for the image at path, from cache when
// the file has not changed since it was built.
func (l *Loader) Load(ctx context.Context, path string) (image.Image, error) {
	key, err := l.cacheKey(path)
	if err != nil {
		return nil, fmt.Errorf("keying thumbnail for %s: %w", path, err)
	}

	if data, ok := l.cache.Get(key); ok {
		img, err := jpeg.Decode(bytes.NewReader(data))
		if err == nil {
			return img, nil
		}
		l.logger.Warn("cached thumbnail unreadable", "path", path, "error", err)
	}

	ch := l.group.DoChan(key, func() (any, error) {
		return l.build(ctx, path, key)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(image.Image), nil
	}
}

// build decodes, scales, and caches one thumbnail.
func (l *Loader) build(ctx context.Context, path, key string) (image.Image, error) {
	select {
	case l.sem <- struct{}{}:
		defer func() { <-l.sem }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	img, err := l.decode(path)
	if err != nil {
		return nil, err
	}

	thumb := resize.Thumbnail(l.box, l.box, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("encoding thumbnail for %s: %w", path, err)
	}
	l.cache.Put(key, buf.Bytes())

	return thumb, nil
}

// decode reads the full-size source. RAW files go through the embedded
// preview decoder; raster files decode directly.
func (l *Loader) decode(path string) (image.Image, error) {
	if l.exts.IsRaw(path) {
		if l.previews == nil {
			return nil, fmt.Errorf("no preview decoder available for %s", path)
		}
		preview, err := l.previews.Decode(path)
		if err != nil {
			return nil, fmt.Errorf("extracting preview from %s: %w", path, err)
		}
		img, err := jpeg.Decode(bytes.NewReader(preview.JPEG))
		if err != nil {
			return nil, fmt.Errorf("decoding preview of %s: %w", path, err)
		}
		return img, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

// cacheKey hashes the path with the file's size and mtime, so an
// edited file misses its stale entry instead of serving it.
func (l *Loader) cacheKey(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|%d", path, info.Size(), info.ModTime().UnixNano())
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Compile-time check
var _ library.ThumbnailLoader = (*Loader)(nil)
