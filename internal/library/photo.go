package library

import (
	"path/filepath"
	"time"

	"github.com/cristibaluta/Imagin-Raw-sub001/internal/xmp"
)

// PhotoRecord is one image in the selected folder's listing. Metadata
// is the parsed sidecar, nil when the photo has none. Records live for
// the duration of a selection; MarkedForRemoval is session state and
// is never persisted.
type PhotoRecord struct {
	ID               string
	Path             string
	DateCreated      time.Time
	Metadata         *xmp.Document
	MarkedForRemoval bool
}

// Name is the display name, the image filename.
func (p *PhotoRecord) Name() string { return filepath.Base(p.Path) }

// Rating reads the sidecar rating; photos without a sidecar are
// unrated.
func (p *PhotoRecord) Rating() int {
	if p.Metadata == nil {
		return 0
	}
	return p.Metadata.Rating()
}

// Label reads the sidecar color label, empty when unlabeled.
func (p *PhotoRecord) Label() string {
	if p.Metadata == nil {
		return ""
	}
	return p.Metadata.Label()
}
