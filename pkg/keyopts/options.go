package keyopts

import (
	"errors"

	"github.com/google/uuid"
	com_keyopts "github.com/mr-shifu/pkc-lib/pkg/common/keyopts"
)

// IDKey is the option naming the key ID.
const IDKey = "id"

var ErrInvalidOptions = errors.New("keyopts: invalid options")

type Options map[string]interface{}

var _ com_keyopts.Options = Options{}

// NewOptions returns Options holding the given key/value pairs.
func NewOptions(kVs ...interface{}) (Options, error) {
	opts := make(Options)
	if err := opts.Set(kVs...); err != nil {
		return nil, err
	}
	return opts, nil
}

func (opts Options) Set(kVs ...interface{}) error {
	if len(kVs)%2 != 0 {
		return ErrInvalidOptions
	}

	for i := 0; i < len(kVs); i += 2 {
		key, ok := kVs[i].(string)
		if !ok {
			return ErrInvalidOptions
		}
		opts[key] = kVs[i+1]
	}

	return nil
}

func (opts Options) Get(key string) (interface{}, bool) {
	val, ok := opts[key]
	return val, ok
}

// KeyID extracts the key ID from opts.
func KeyID(opts com_keyopts.Options) (string, error) {
	if opts == nil {
		return "", ErrInvalidParamsKeyID
	}
	ID, ok := opts.Get(IDKey)
	if !ok {
		return "", ErrInvalidParamsKeyID
	}
	kid, ok := ID.(string)
	if !ok || kid == "" {
		return "", ErrInvalidParamsKeyID
	}
	return kid, nil
}

// EnsureKeyID returns the key ID in opts. When opts carries none, a random
// UUID is assigned first; a nil opts is replaced by fresh Options.
func EnsureKeyID(opts com_keyopts.Options) (com_keyopts.Options, string, error) {
	if o, ok := opts.(Options); opts == nil || (ok && o == nil) {
		opts = Options{}
	}
	if _, ok := opts.Get(IDKey); !ok {
		if err := opts.Set(IDKey, uuid.NewString()); err != nil {
			return nil, "", err
		}
	}
	kid, err := KeyID(opts)
	if err != nil {
		return nil, "", err
	}
	return opts, kid, nil
}
