package keystore

import "github.com/mr-shifu/pkc-lib/pkg/common/keyopts"

type Keystore interface {
	// Import stores key under ski and binds the key ID in opts to it.
	Import(ski string, key []byte, opts keyopts.Options) error

	// Update replaces the key bound to the key ID in opts.
	Update(key []byte, opts keyopts.Options) error

	// Get returns the key bound to the key ID in opts.
	Get(opts keyopts.Options) ([]byte, error)

	// Delete unbinds the key ID in opts and drops the key once no other ID
	// refers to it.
	Delete(opts keyopts.Options) error

	// KeyAccessor returns a handle on a single key.
	KeyAccessor(ski string, opts keyopts.Options) KeyAccessor
}

type KeyAccessor interface {
	Import(key []byte) error
	Get() ([]byte, error)
	Delete() error
}
