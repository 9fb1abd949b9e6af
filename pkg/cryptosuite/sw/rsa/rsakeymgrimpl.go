package rsa

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"io"

	"github.com/mr-shifu/pkc-lib/core/hash"
	"github.com/mr-shifu/pkc-lib/core/math/arith"
	"github.com/mr-shifu/pkc-lib/core/rsa"
	cs_rsa "github.com/mr-shifu/pkc-lib/pkg/common/cryptosuite/rsa"
	"github.com/mr-shifu/pkc-lib/pkg/common/keyopts"
	"github.com/mr-shifu/pkc-lib/pkg/common/keystore"
	pkg_keyopts "github.com/mr-shifu/pkc-lib/pkg/keyopts"
	"github.com/mr-shifu/pkc-lib/pkg/logging"
	"github.com/pkg/errors"
)

const publicSuffix = ".pub"

const DefaultBits = 2048

type Config struct {
	// Bits is the modulus length of generated keys; 0 selects DefaultBits.
	Bits           int
	PublicExponent int
	Certainty      int
	// Rand defaults to crypto/rand.
	Rand   io.Reader
	Logger logging.Logger
}

var _ cs_rsa.RSAKeyManager = (*RSAKeyManager)(nil)

type RSAKeyManager struct {
	keystore keystore.Keystore
	cfg      Config
	log      logging.Logger
}

func NewRSAKeyManager(store keystore.Keystore, cfg *Config) *RSAKeyManager {
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
	return &RSAKeyManager{
		keystore: store,
		cfg:      c,
		log:      c.Logger.With("suite", algorithmTag),
	}
}

// GenerateKey generates a new RSA key pair and stores it under the key ID in
// opts. A random key ID is assigned to opts when it carries none.
func (mgr *RSAKeyManager) GenerateKey(ctx context.Context, opts keyopts.Options) (cs_rsa.RSAKey, error) {
	opts, kid, err := pkg_keyopts.EnsureKeyID(opts)
	if err != nil {
		return nil, err
	}

	kp, err := rsa.GenerateKey(ctx, mgr.cfg.Rand, rsa.Config{
		Bits:           mgr.cfg.Bits,
		PublicExponent: mgr.cfg.PublicExponent,
		Certainty:      mgr.cfg.Certainty,
		Logger:         mgr.log,
	})
	if err != nil {
		return nil, errors.WithMessage(err, "rsa: failed to generate key")
	}

	k, err := NewRSAKey(kp.Public, kp.Private)
	if err != nil {
		return nil, err
	}

	if err := mgr.store(k, opts); err != nil {
		return nil, err
	}
	mgr.log.Info(ctx, "rsa: key stored", "id", kid, "bits", k.Bits())

	return k, nil
}

// ImportKey imports an RSA key from its byte representation or an RSAKey.
// Byte input is validated before it is stored.
func (mgr *RSAKeyManager) ImportKey(raw interface{}, opts keyopts.Options) (cs_rsa.RSAKey, error) {
	opts, _, err := pkg_keyopts.EnsureKeyID(opts)
	if err != nil {
		return nil, err
	}

	var k *RSAKey
	switch tt := raw.(type) {
	case []byte:
		k, err = fromBytes(tt, true)
		if err != nil {
			return nil, errors.WithMessage(err, "rsa: failed to import key")
		}
	case cs_rsa.RSAKey:
		key, ok := tt.(*RSAKey)
		if !ok {
			return nil, errors.New("rsa: invalid key type")
		}
		k = key
	default:
		return nil, errors.New("rsa: invalid key type")
	}

	if err := mgr.store(k, opts); err != nil {
		return nil, err
	}

	return k, nil
}

// GetKey returns the RSA key bound to the key ID in opts.
func (mgr *RSAKeyManager) GetKey(opts keyopts.Options) (cs_rsa.RSAKey, error) {
	kb, err := mgr.keystore.Get(opts)
	if err != nil {
		return nil, errors.WithMessage(err, "rsa: failed to get key from keystore")
	}
	defer arith.ZeroizeBytes(kb)

	k, err := fromBytes(kb, false)
	if err != nil {
		return nil, errors.WithMessage(err, "rsa: failed to decode stored key")
	}

	return k, nil
}

func (mgr *RSAKeyManager) DeleteKey(opts keyopts.Options) error {
	if err := mgr.keystore.Delete(opts); err != nil {
		return errors.WithMessage(err, "rsa: failed to delete key from keystore")
	}
	return nil
}

func (mgr *RSAKeyManager) Sign(alg hash.Algorithm, msg []byte, opts keyopts.Options) ([]byte, error) {
	k, err := mgr.GetKey(opts)
	if err != nil {
		return nil, err
	}
	return k.Sign(alg, msg)
}

// Verify fails only when no key is bound to opts; a bad signature yields false.
func (mgr *RSAKeyManager) Verify(alg hash.Algorithm, msg, sig []byte, opts keyopts.Options) (bool, error) {
	k, err := mgr.GetKey(opts)
	if err != nil {
		return false, err
	}
	return k.Verify(alg, msg, sig), nil
}

func (mgr *RSAKeyManager) Encrypt(block []byte, opts keyopts.Options) ([]byte, error) {
	k, err := mgr.GetKey(opts)
	if err != nil {
		return nil, err
	}
	return k.Encrypt(block)
}

func (mgr *RSAKeyManager) Decrypt(block []byte, opts keyopts.Options) ([]byte, error) {
	k, err := mgr.GetKey(opts)
	if err != nil {
		return nil, err
	}
	return k.Decrypt(block)
}

func (mgr *RSAKeyManager) store(k *RSAKey, opts keyopts.Options) error {
	kb, err := k.Bytes()
	if err != nil {
		return errors.WithMessage(err, "rsa: failed to serialize key")
	}
	defer arith.ZeroizeBytes(kb)

	if err := mgr.keystore.Import(vaultSKI(k), kb, opts); err != nil {
		return errors.WithMessage(err, "rsa: failed to import key to keystore")
	}
	return nil
}

// vaultSKI is the vault entry of k. Public-only records live apart from the
// private record of the same key, so importing one never replaces the other.
func vaultSKI(k *RSAKey) string {
	ski := hex.EncodeToString(k.SKI())
	if !k.Private() {
		return ski + publicSuffix
	}
	return ski
}
