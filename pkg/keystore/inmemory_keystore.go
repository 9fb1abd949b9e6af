package keystore

import (
	"errors"

	"github.com/mr-shifu/pkc-lib/pkg/common/keyopts"
	"github.com/mr-shifu/pkc-lib/pkg/common/keystore"
	"github.com/mr-shifu/pkc-lib/pkg/common/vault"
)

var (
	ErrKeyNotFound = errors.New("keystore: key not found")
)

var _ keystore.Keystore = (*InMemoryKeystore)(nil)

type InMemoryKeystore struct {
	v  vault.Vault
	kr keyopts.KeyOpts
}

func NewInMemoryKeystore(v vault.Vault, kr keyopts.KeyOpts) *InMemoryKeystore {
	return &InMemoryKeystore{
		v:  v,
		kr: kr,
	}
}

func (ks *InMemoryKeystore) Import(ski string, key []byte, opts keyopts.Options) error {
	// bind the key ID first so a rejected ID leaves the vault untouched
	if err := ks.kr.Import(ski, opts); err != nil {
		return err
	}

	if err := ks.v.Import(ski, key); err != nil {
		_ = ks.kr.Delete(opts)
		return err
	}

	return nil
}

func (ks *InMemoryKeystore) Update(key []byte, opts keyopts.Options) error {
	kd, err := ks.kr.Get(opts)
	if err != nil {
		return err
	}
	if kd.SKI == "" {
		return ErrKeyNotFound
	}
	return ks.v.Import(kd.SKI, key)
}

func (ks *InMemoryKeystore) Get(opts keyopts.Options) ([]byte, error) {
	kd, err := ks.kr.Get(opts)
	if err != nil {
		return nil, err
	}

	return ks.v.Get(kd.SKI)
}

func (ks *InMemoryKeystore) Delete(opts keyopts.Options) error {
	kd, err := ks.kr.Get(opts)
	if err != nil {
		return err
	}

	if err := ks.kr.Delete(opts); err != nil {
		return err
	}

	// the same key may be imported under several IDs
	for _, other := range ks.kr.GetAll() {
		if other.SKI == kd.SKI {
			return nil
		}
	}
	return ks.v.Delete(kd.SKI)
}

func (ks *InMemoryKeystore) KeyAccessor(ski string, opts keyopts.Options) keystore.KeyAccessor {
	return NewInMemoryKeyAccessor(ski, opts, ks)
}
