package library

// SettingsStore persists small named values across launches: the root
// list, the expanded-folder set, the last selection. No business logic
// lives behind this interface, values are opaque bytes.
type SettingsStore interface {
	// Get returns the stored value, or nil when the name was never set.
	Get(name string) ([]byte, error)

	// Put stores or replaces the value under name.
	Put(name string, value []byte) error

	// Delete removes the value. Deleting an absent name is a no-op.
	Delete(name string) error

	// Close closes the underlying store.
	Close() error
}
