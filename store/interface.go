package store

// KVStore defines the interface for the key-value persistence backing all
// task state, catalogs and settings. Values are JSON-serialized by the
// typed layer in tasks.go; the store itself treats them as opaque bytes.
type KVStore interface {
	// Initialize configures the store with backend-specific settings such
	// as file path and data format. It must be called before any other
	// store operation.
	Initialize(config map[string]string) error

	// Get retrieves the value for a key. The second return value reports
	// whether the key exists.
	Get(key string) ([]byte, bool, error)

	// Set stores a value under a key, creating or replacing it.
	Set(key string, value []byte) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(key string) error

	// Keys returns every key currently present.
	Keys() ([]string, error)

	// Close releases any resources held by the store, such as file locks.
	Close() error
}
