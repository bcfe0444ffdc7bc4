package thumb

// Cache stores encoded thumbnails by key. Implementations must be safe
// for concurrent use.
type Cache interface {
	// Get returns the cached thumbnail for key, if present.
	Get(key string) ([]byte, bool)

	// Put stores an encoded thumbnail under key. Put is best effort
	// and failures are not reported.
	Put(key string, data []byte)
}
