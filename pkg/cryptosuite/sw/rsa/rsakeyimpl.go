package rsa

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/mr-shifu/pkc-lib/core/hash"
	"github.com/mr-shifu/pkc-lib/core/math/arith"
	"github.com/mr-shifu/pkc-lib/core/rsa"
	"github.com/mr-shifu/pkc-lib/core/signature"
	cs_rsa "github.com/mr-shifu/pkc-lib/pkg/common/cryptosuite/rsa"
	"github.com/pkg/errors"
)

const algorithmTag = "rsa"

var (
	ErrInvalidKey = errors.New("rsa: invalid key")
	ErrPublicKey  = errors.New("rsa: operation needs a private key")
)

var _ cs_rsa.RSAKey = (*RSAKey)(nil)

// RSAKey holds an RSA public key and, for private keys, the matching private
// key with its factorization.
type RSAKey struct {
	public  *rsa.PublicKey
	private *rsa.PrivateKey
}

type rawRSAKey struct {
	Algorithm string
	Public    []byte
	Private   []byte
}

// NewRSAKey pairs pub with an optional priv sharing its modulus.
func NewRSAKey(pub *rsa.PublicKey, priv *rsa.PrivateKey) (*RSAKey, error) {
	if pub == nil {
		return nil, errors.WithMessage(ErrInvalidKey, "rsa: missing public key")
	}
	if priv == nil {
		return &RSAKey{public: pub}, nil
	}
	if priv.N().Cmp(pub.N()) != 0 {
		return nil, errors.WithMessage(ErrInvalidKey, "rsa: private key does not match public key")
	}
	return &RSAKey{public: pub, private: priv.WithPublicExponent(pub.E())}, nil
}

// Bytes returns the CBOR record of the raw public and private encodings.
func (key *RSAKey) Bytes() ([]byte, error) {
	raw := &rawRSAKey{Algorithm: algorithmTag}

	pub, err := key.public.MarshalRaw()
	if err != nil {
		return nil, err
	}
	raw.Public = pub

	if key.Private() {
		priv, err := key.private.MarshalRaw()
		if err != nil {
			return nil, err
		}
		defer arith.ZeroizeBytes(priv)
		raw.Private = priv
	}
	return cbor.Marshal(raw)
}

// SKI is the BLAKE3 hash of the raw public key.
func (key *RSAKey) SKI() []byte {
	raw, err := key.public.MarshalRaw()
	if err != nil {
		return nil
	}
	return hash.SKI(raw)
}

func (key *RSAKey) Private() bool {
	return key.private != nil
}

func (key *RSAKey) PublicKey() cs_rsa.RSAKey {
	return &RSAKey{public: key.public}
}

func (key *RSAKey) PublicKeyRaw() *rsa.PublicKey {
	return key.public
}

func (key *RSAKey) Bits() int {
	return key.public.BitLen()
}

func (key *RSAKey) Sign(alg hash.Algorithm, msg []byte) ([]byte, error) {
	if !key.Private() {
		return nil, ErrPublicKey
	}
	engine, err := signature.New(alg)
	if err != nil {
		return nil, errors.WithMessage(err, "rsa: failed to create signature engine")
	}
	return engine.SignRSA(key.private, msg)
}

// Verify returns false for a digest without an implementation.
func (key *RSAKey) Verify(alg hash.Algorithm, msg, sig []byte) bool {
	engine, err := signature.New(alg)
	if err != nil {
		return false
	}
	return engine.VerifyRSA(key.public, msg, sig)
}

func (key *RSAKey) Encrypt(block []byte) ([]byte, error) {
	return rsa.EncryptBlock(key.public, block)
}

func (key *RSAKey) Decrypt(block []byte) ([]byte, error) {
	if !key.Private() {
		return nil, ErrPublicKey
	}
	return rsa.DecryptBlock(key.private, block)
}

// fromBytes decodes the output of Bytes. With validate set, the private half
// is checked against the public half and for internal consistency.
func fromBytes(data []byte, validate bool) (*RSAKey, error) {
	raw := &rawRSAKey{}
	if err := cbor.Unmarshal(data, raw); err != nil {
		return nil, errors.WithMessage(err, "rsa: failed to decode key record")
	}
	defer arith.ZeroizeBytes(raw.Private)
	if raw.Algorithm != algorithmTag {
		return nil, errors.WithMessagef(ErrInvalidKey, "rsa: unexpected key type %q", raw.Algorithm)
	}

	pub, err := rsa.ParsePublicKeyRaw(raw.Public)
	if err != nil {
		return nil, err
	}
	if len(raw.Private) == 0 {
		return &RSAKey{public: pub}, nil
	}

	priv, err := rsa.ParsePrivateKeyRaw(raw.Private)
	if err != nil {
		return nil, err
	}
	key, err := NewRSAKey(pub, priv)
	if err != nil {
		return nil, err
	}
	if validate {
		if err := key.private.Validate(); err != nil {
			return nil, err
		}
	}
	return key, nil
}
