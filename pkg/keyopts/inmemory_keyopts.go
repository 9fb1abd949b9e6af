package keyopts

import (
	"errors"
	"sort"
	"sync"

	"github.com/mr-shifu/pkc-lib/pkg/common/keyopts"
)

var (
	ErrInvalidParamsKeyID = errors.New("keyopts: invalid keyID")
	ErrInvalidSKI         = errors.New("keyopts: invalid ski")
	ErrKeyNotFound        = errors.New("keyopts: key not found")
	ErrKeyExists          = errors.New("keyopts: key ID already bound to another key")
)

var _ keyopts.KeyOpts = (*KeyOpts)(nil)

type KeyOpts struct {
	lock sync.RWMutex

	// keys maps a key ID to its metadata.
	keys map[string]*keyopts.KeyData
}

func NewInMemoryKeyOpts() *KeyOpts {
	return &KeyOpts{
		keys: make(map[string]*keyopts.KeyData),
	}
}

// Import binds the key ID in opts to ski. Importing the same pair twice is
// allowed; rebinding an ID to a different key is not.
func (kr *KeyOpts) Import(ski string, opts keyopts.Options) error {
	if ski == "" {
		return ErrInvalidSKI
	}
	kid, err := KeyID(opts)
	if err != nil {
		return err
	}

	kr.lock.Lock()
	defer kr.lock.Unlock()

	if kd, ok := kr.keys[kid]; ok && kd.SKI != ski {
		return ErrKeyExists
	}
	kr.keys[kid] = &keyopts.KeyData{
		ID:  kid,
		SKI: ski,
	}

	return nil
}

func (kr *KeyOpts) Get(opts keyopts.Options) (*keyopts.KeyData, error) {
	kid, err := KeyID(opts)
	if err != nil {
		return nil, err
	}

	kr.lock.RLock()
	defer kr.lock.RUnlock()

	kd, ok := kr.keys[kid]
	if !ok {
		return nil, ErrKeyNotFound
	}
	c := *kd
	return &c, nil
}

func (kr *KeyOpts) GetAll() []*keyopts.KeyData {
	kr.lock.RLock()
	defer kr.lock.RUnlock()

	result := make([]*keyopts.KeyData, 0, len(kr.keys))
	for _, kd := range kr.keys {
		c := *kd
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (kr *KeyOpts) Delete(opts keyopts.Options) error {
	kid, err := KeyID(opts)
	if err != nil {
		return err
	}

	kr.lock.Lock()
	defer kr.lock.Unlock()

	if _, ok := kr.keys[kid]; !ok {
		return ErrKeyNotFound
	}
	delete(kr.keys, kid)

	return nil
}
