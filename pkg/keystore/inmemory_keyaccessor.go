package keystore

import "github.com/mr-shifu/pkc-lib/pkg/common/keyopts"

// InMemoryKeyAccessor pins one key ID to one SKI.
type InMemoryKeyAccessor struct {
	opts keyopts.Options
	ski  string
	ks   *InMemoryKeystore
}

func NewInMemoryKeyAccessor(ski string, opts keyopts.Options, ks *InMemoryKeystore) *InMemoryKeyAccessor {
	return &InMemoryKeyAccessor{ski: ski, opts: opts, ks: ks}
}

func (ka *InMemoryKeyAccessor) Import(key []byte) error {
	return ka.ks.Import(ka.ski, key, ka.opts)
}

// Get fails with ErrKeyNotFound once the key ID has been rebound elsewhere.
func (ka *InMemoryKeyAccessor) Get() ([]byte, error) {
	kd, err := ka.ks.kr.Get(ka.opts)
	if err != nil {
		return nil, err
	}
	if kd.SKI != ka.ski {
		return nil, ErrKeyNotFound
	}
	return ka.ks.v.Get(ka.ski)
}

func (ka *InMemoryKeyAccessor) Delete() error {
	return ka.ks.Delete(ka.opts)
}
