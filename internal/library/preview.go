package library

import "time"

// PreviewDecoder extracts the embedded preview from a raw camera file.
// Implementations are expected to serialize access: raw decoding is
// not reentrant, so callers queue rather than decode in parallel.
type PreviewDecoder interface {
	Decode(path string) (*Preview, error)
}

// Preview is the embedded JPEG of a raw file plus the capture fields
// the shell displays next to it.
type Preview struct {
	JPEG []byte
	EXIF ExifFields
}

// ExifFields carries display strings straight from the camera maker's
// metadata. Empty fields were not present in the file.
type ExifFields struct {
	CameraModel  string
	Lens         string
	FocalLength  string
	Aperture     string
	ShutterSpeed string
	ISO          string
	ExposureBias string
	CaptureDate  time.Time
}
