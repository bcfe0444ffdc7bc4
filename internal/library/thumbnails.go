package library

import (
	"context"
	"image"
)

// ThumbnailLoader produces reduced-size previews for the photo grid.
// Loads are keyed by image path; concurrent loads for the same path
// collapse into one decode. The context carries cancellation: when the
// selection moves to another folder the Library cancels the previous
// folder's context and abandoned loads return early.
type ThumbnailLoader interface {
	Load(ctx context.Context, path string) (image.Image, error)
}
