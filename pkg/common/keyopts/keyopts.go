package keyopts

// KeyData binds a caller-chosen key ID to the SKI of the stored key.
type KeyData struct {
	ID  string
	SKI string
}

type Options interface {
	Set(kVs ...interface{}) error
	Get(key string) (interface{}, bool)
}

// KeyOpts manages the metadata that maps key IDs to stored keys.
type KeyOpts interface {
	// Import binds the key ID found in opts to ski.
	Import(ski string, opts Options) error

	// Get returns the metadata of the key ID found in opts.
	Get(opts Options) (*KeyData, error)

	// GetAll returns the metadata of every known key, sorted by key ID.
	GetAll() []*KeyData

	// Delete removes the key ID found in opts.
	Delete(opts Options) error
}
