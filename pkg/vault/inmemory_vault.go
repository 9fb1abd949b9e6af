package vault

import (
	"errors"
	"sync"

	"github.com/mr-shifu/pkc-lib/core/math/arith"
	"github.com/mr-shifu/pkc-lib/pkg/common/vault"
)

var (
	ErrKeyNotFound = errors.New("vault: key not found")
	ErrEmptySKI    = errors.New("vault: empty ski")
)

var _ vault.Vault = (*InMemoryVault)(nil)

// InMemoryVault keeps private copies of the imported keys. Deleted or
// replaced entries are wiped.
type InMemoryVault struct {
	lock sync.RWMutex
	keys map[string][]byte
}

func NewInMemoryVault() *InMemoryVault {
	return &InMemoryVault{
		keys: make(map[string][]byte),
	}
}

func (store *InMemoryVault) Import(ski string, key []byte) error {
	if ski == "" {
		return ErrEmptySKI
	}

	store.lock.Lock()
	defer store.lock.Unlock()

	if old, ok := store.keys[ski]; ok {
		arith.ZeroizeBytes(old)
	}
	store.keys[ski] = append([]byte(nil), key...)
	return nil
}

func (store *InMemoryVault) Get(ski string) ([]byte, error) {
	store.lock.RLock()
	defer store.lock.RUnlock()

	key, ok := store.keys[ski]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return append([]byte(nil), key...), nil
}

// Delete is a no-op for an unknown ski.
func (store *InMemoryVault) Delete(ski string) error {
	store.lock.Lock()
	defer store.lock.Unlock()

	if key, ok := store.keys[ski]; ok {
		arith.ZeroizeBytes(key)
		delete(store.keys, ski)
	}
	return nil
}
