package keystore

import (
	"github.com/mr-shifu/pkc-lib/pkg/common/keystore"
	"github.com/mr-shifu/pkc-lib/pkg/keyopts"
	"github.com/mr-shifu/pkc-lib/pkg/vault"
)

type InmemoryKeystoreFactory struct{}

// NewKeystore creates a new Keystore instance backed by a fresh in-memory
// vault and key options repository.
func (f InmemoryKeystoreFactory) NewKeystore(cfg interface{}) keystore.Keystore {
	return NewInMemoryKeystore(vault.NewInMemoryVault(), keyopts.NewInMemoryKeyOpts())
}
