package rawpreview

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	exif "github.com/barasher/go-exiftool"

	"github.com/cristibaluta/Imagin-Raw-sub001/internal/library"
)

// previewFields are the maker tags that can hold the embedded JPEG, in
// preference order. JpgFromRaw is usually full size, ThumbnailImage is
// a last resort.
var previewFields = []string{"JpgFromRaw", "PreviewImage", "OtherImage", "ThumbnailImage"}

// dateLayout is exiftool's colon-separated timestamp format.
const dateLayout = "2006:01:02 15:04:05"

// Decoder extracts embedded previews from raw files through a
// long-lived exiftool helper process. Extraction is not reentrant, so
// a mutex serializes all access; callers queue.
type Decoder struct {
	mu sync.Mutex
	et *exif.Exiftool
}

// NewDecoder starts the exiftool helper process. It fails when the
// exiftool binary is not installed; callers should treat raw previews
// as unavailable rather than abort.
func NewDecoder() (*Decoder, error) {
	et, err := exif.NewExiftool(exif.ExtractAllBinaryMetadata())
	if err != nil {
		return nil, fmt.Errorf("starting exiftool: %w", err)
	}
	return &Decoder{et: et}, nil
}

// Decode reads the embedded preview JPEG and the capture fields from
// the raw file at path.
func (d *Decoder) Decode(path string) (*library.Preview, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	metas := d.et.ExtractMetadata(path)
	if len(metas) == 0 {
		return nil, fmt.Errorf("no metadata extracted from %s", path)
	}
	if metas[0].Err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, metas[0].Err)
	}
	fields := metas[0].Fields

	data, err := embeddedJPEG(fields)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &library.Preview{JPEG: data, EXIF: exifFields(fields)}, nil
}

// Close stops the exiftool helper process.
func (d *Decoder) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.et.Close()
}

// embeddedJPEG picks the first preview tag present. Binary tags come
// back base64 encoded with a "base64:" prefix.
func embeddedJPEG(fields map[string]interface{}) ([]byte, error) {
	for _, name := range previewFields {
		value, ok := fields[name].(string)
		if !ok {
			continue
		}
		encoded, found := strings.CutPrefix(value, "base64:")
		if !found {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", name, err)
		}
		return data, nil
	}
	return nil, errors.New("no embedded preview")
}

// exifFields maps exiftool output to the coarse display fields.
// exiftool emits numbers for some tags and strings for others, so both
// are accepted.
func exifFields(fields map[string]interface{}) library.ExifFields {
	return library.ExifFields{
		CameraModel:  text(fields, "Model"),
		Lens:         text(fields, "LensModel", "LensID", "Lens"),
		FocalLength:  text(fields, "FocalLength"),
		Aperture:     text(fields, "Aperture", "FNumber"),
		ShutterSpeed: text(fields, "ShutterSpeed", "ExposureTime"),
		ISO:          text(fields, "ISO"),
		ExposureBias: text(fields, "ExposureCompensation"),
		CaptureDate:  captureDate(fields),
	}
}

// text returns the first of the named fields present, formatting
// numeric values as plain decimals.
func text(fields map[string]interface{}, names ...string) string {
	for _, name := range names {
		switch value := fields[name].(type) {
		case string:
			return value
		case float64:
			return strconv.FormatFloat(value, 'f', -1, 64)
		}
	}
	return ""
}

func captureDate(fields map[string]interface{}) time.Time {
	for _, name := range []string{"CreateDate", "DateTimeOriginal"} {
		raw, ok := fields[name].(string)
		if !ok {
			continue
		}
		if date, err := time.Parse(dateLayout, raw); err == nil {
			return date
		}
	}
	return time.Time{}
}

// Compile-time check that Decoder implements the PreviewDecoder interface
var _ library.PreviewDecoder = (*Decoder)(nil)
