package elgamal

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"io"
	"strconv"
	"sync"

	"github.com/mr-shifu/pkc-lib/core/elgamal"
	"github.com/mr-shifu/pkc-lib/core/hash"
	"github.com/mr-shifu/pkc-lib/core/math/arith"
	"github.com/mr-shifu/pkc-lib/core/math/prime"
	cs_elgamal "github.com/mr-shifu/pkc-lib/pkg/common/cryptosuite/elgamal"
	"github.com/mr-shifu/pkc-lib/pkg/common/keyopts"
	"github.com/mr-shifu/pkc-lib/pkg/common/keystore"
	pkg_keyopts "github.com/mr-shifu/pkc-lib/pkg/keyopts"
	"github.com/mr-shifu/pkc-lib/pkg/logging"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

const publicSuffix = ".pub"

const DefaultBits = 1024

type Config struct {
	// Bits is the size of p for generated groups; 0 selects DefaultBits.
	Bits      int
	Certainty int
	Mode      prime.Mode
	// Params seeds the group cache. Generated groups are added to it.
	Params elgamal.ParamTable
	// Rand defaults to crypto/rand.
	Rand   io.Reader
	Logger logging.Logger
}

var _ cs_elgamal.ElgamalKeyManager = (*ElgamalKeyManager)(nil)

// ElgamalKeyManager stores ElGamal keys and shares one group per bit length
// between the keys it generates.
type ElgamalKeyManager struct {
	keystore keystore.Keystore
	cfg      Config
	log      logging.Logger

	mu     sync.RWMutex
	params elgamal.ParamTable
	flight singleflight.Group
}

func NewElgamalKeyManager(store keystore.Keystore, cfg *Config) *ElgamalKeyManager {
	c := Config{}
	if cfg != nil {
		c = *cfg
	}
	if c.Bits == 0 {
		c.Bits = DefaultBits
	}
	if c.Rand == nil {
		c.Rand = rand.Reader
	}
	c.Logger = logging.OrDiscard(c.Logger)

	params := make(elgamal.ParamTable, len(c.Params))
	for bits, pp := range c.Params {
		params[bits] = pp
	}
	return &ElgamalKeyManager{
		keystore: store,
		cfg:      c,
		log:      c.Logger.With("suite", algorithmTag),
		params:   params,
	}
}

// GenerateParams returns the cached group for the configured bit length,
// generating it on first use. Concurrent callers share one search; each one
// waits only as long as its own ctx allows, and a search aborted by the
// caller that started it is restarted for the callers still waiting.
func (mgr *ElgamalKeyManager) GenerateParams(ctx context.Context) (*elgamal.Params, error) {
	bits := mgr.cfg.Bits

	for {
		mgr.mu.RLock()
		pp, ok := mgr.params.Lookup(bits)
		mgr.mu.RUnlock()
		if ok {
			return pp, nil
		}

		ch := mgr.flight.DoChan(strconv.Itoa(bits), func() (interface{}, error) {
			return mgr.generateParams(ctx, bits)
		})
		select {
		case <-ctx.Done():
			return nil, errors.WithMessage(ctx.Err(), "elgamal: failed to generate params")
		case res := <-ch:
			if res.Err != nil {
				if ctx.Err() == nil && isContextErr(res.Err) {
					continue
				}
				return nil, errors.WithMessage(res.Err, "elgamal: failed to generate params")
			}
			return res.Val.(*elgamal.Params), nil
		}
	}
}

func (mgr *ElgamalKeyManager) generateParams(ctx context.Context, bits int) (*elgamal.Params, error) {
	pp, err := elgamal.GenerateParams(ctx, mgr.cfg.Rand, elgamal.Config{
		Bits:      bits,
		Certainty: mgr.cfg.Certainty,
		Mode:      mgr.cfg.Mode,
		Logger:    mgr.log,
	})
	if err != nil {
		return nil, err
	}
	mgr.mu.Lock()
	mgr.params[bits] = pp
	mgr.mu.Unlock()
	return pp, nil
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// GenerateKey generates a new ElGamal key pair in the shared group and stores
// it under the key ID in opts. A random key ID is assigned to opts when it
// carries none.
func (mgr *ElgamalKeyManager) GenerateKey(ctx context.Context, opts keyopts.Options) (cs_elgamal.ElgamalKey, error) {
	opts, kid, err := pkg_keyopts.EnsureKeyID(opts)
	if err != nil {
		return nil, err
	}

	params, err := mgr.GenerateParams(ctx)
	if err != nil {
		return nil, err
	}
	kp, err := elgamal.GenerateKeyWithParams(mgr.cfg.Rand, params)
	if err != nil {
		return nil, errors.WithMessage(err, "elgamal: failed to generate key")
	}

	k, err := NewElgamalKey(kp.Public, kp.Private)
	if err != nil {
		return nil, err
	}

	if err := mgr.store(k, opts); err != nil {
		return nil, err
	}
	mgr.log.Info(ctx, "elgamal: key stored", "id", kid, "bits", params.BitLen())

	return k, nil
}

// ImportKey imports an ElGamal key from its byte representation or an
// ElgamalKey. Byte input is validated before it is stored.
func (mgr *ElgamalKeyManager) ImportKey(raw interface{}, opts keyopts.Options) (cs_elgamal.ElgamalKey, error) {
	opts, _, err := pkg_keyopts.EnsureKeyID(opts)
	if err != nil {
		return nil, err
	}

	var k *ElgamalKey
	switch tt := raw.(type) {
	case []byte:
		k, err = fromBytes(tt, true)
		if err != nil {
			return nil, errors.WithMessage(err, "elgamal: failed to import key")
		}
	case cs_elgamal.ElgamalKey:
		key, ok := tt.(*ElgamalKey)
		if !ok {
			return nil, errors.New("elgamal: invalid key type")
		}
		k = key
	default:
		return nil, errors.New("elgamal: invalid key type")
	}

	if err := mgr.store(k, opts); err != nil {
		return nil, err
	}

	return k, nil
}

// GetKey returns the ElGamal key bound to the key ID in opts.
func (mgr *ElgamalKeyManager) GetKey(opts keyopts.Options) (cs_elgamal.ElgamalKey, error) {
	kb, err := mgr.keystore.Get(opts)
	if err != nil {
		return nil, errors.WithMessage(err, "elgamal: failed to get key from keystore")
	}
	defer arith.ZeroizeBytes(kb)

	k, err := fromBytes(kb, false)
	if err != nil {
		return nil, errors.WithMessage(err, "elgamal: failed to decode stored key")
	}

	return k, nil
}

func (mgr *ElgamalKeyManager) DeleteKey(opts keyopts.Options) error {
	if err := mgr.keystore.Delete(opts); err != nil {
		return errors.WithMessage(err, "elgamal: failed to delete key from keystore")
	}
	return nil
}

func (mgr *ElgamalKeyManager) Encrypt(block []byte, opts keyopts.Options) ([]byte, error) {
	k, err := mgr.GetKey(opts)
	if err != nil {
		return nil, err
	}
	return k.Encrypt(mgr.cfg.Rand, block)
}

func (mgr *ElgamalKeyManager) Decrypt(ct []byte, opts keyopts.Options) ([]byte, error) {
	k, err := mgr.GetKey(opts)
	if err != nil {
		return nil, err
	}
	return k.Decrypt(ct)
}

func (mgr *ElgamalKeyManager) Sign(alg hash.Algorithm, msg []byte, opts keyopts.Options) ([]byte, error) {
	k, err := mgr.GetKey(opts)
	if err != nil {
		return nil, err
	}
	return k.Sign(mgr.cfg.Rand, alg, msg)
}

// Verify fails only when no key is bound to opts; a bad signature yields false.
func (mgr *ElgamalKeyManager) Verify(alg hash.Algorithm, msg, sig []byte, opts keyopts.Options) (bool, error) {
	k, err := mgr.GetKey(opts)
	if err != nil {
		return false, err
	}
	return k.Verify(alg, msg, sig), nil
}

func (mgr *ElgamalKeyManager) store(k *ElgamalKey, opts keyopts.Options) error {
	kb, err := k.Bytes()
	if err != nil {
		return errors.WithMessage(err, "elgamal: failed to serialize key")
	}
	defer arith.ZeroizeBytes(kb)

	if err := mgr.keystore.Import(vaultSKI(k), kb, opts); err != nil {
		return errors.WithMessage(err, "elgamal: failed to import key to keystore")
	}
	return nil
}

// vaultSKI is the vault entry of k. Public-only records live apart from the
// private record of the same key, so importing one never replaces the other.
func vaultSKI(k *ElgamalKey) string {
	ski := hex.EncodeToString(k.SKI())
	if !k.Private() {
		return ski + publicSuffix
	}
	return ski
}
