package card

// KeyValueStore is the flat persisted store used for the decoration-layer
// library and recently-used caches. It is never used for project archives.
type KeyValueStore interface {
	// Get returns the value for key. ok is false if the key is absent.
	Get(key string) (value []byte, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
}
