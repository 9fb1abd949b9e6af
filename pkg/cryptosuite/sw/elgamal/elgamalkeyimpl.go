package elgamal

import (
	"io"
	"math/big"

	"github.com/fxamacker/cbor/v2"
	"github.com/mr-shifu/pkc-lib/core/elgamal"
	"github.com/mr-shifu/pkc-lib/core/hash"
	"github.com/mr-shifu/pkc-lib/core/math/arith"
	"github.com/mr-shifu/pkc-lib/core/signature"
	cs_elgamal "github.com/mr-shifu/pkc-lib/pkg/common/cryptosuite/elgamal"
	"github.com/pkg/errors"
)

const algorithmTag = "elgamal"

var (
	ErrInvalidKey = errors.New("elgamal: invalid key")
	ErrPublicKey  = errors.New("elgamal: operation needs a private key")
)

var _ cs_elgamal.ElgamalKey = (*ElgamalKey)(nil)

type ElgamalKey struct {
	public  *elgamal.PublicKey
	private *elgamal.PrivateKey
}

type rawElgamalKey struct {
	Algorithm string
	Public    []byte
	Secret    []byte
}

// NewElgamalKey wraps a public key, or a private key when priv is not nil.
func NewElgamalKey(pub *elgamal.PublicKey, priv *elgamal.PrivateKey) (*ElgamalKey, error) {
	if priv != nil {
		if pub != nil && !pub.Equal(priv.Public()) {
			return nil, errors.WithMessage(ErrInvalidKey, "elgamal: public key does not match private key")
		}
		return &ElgamalKey{public: priv.Public(), private: priv}, nil
	}
	if pub == nil {
		return nil, errors.WithMessage(ErrInvalidKey, "elgamal: missing public key")
	}
	return &ElgamalKey{public: pub}, nil
}

// Bytes returns the CBOR record of the raw public and private encodings.
func (key *ElgamalKey) Bytes() ([]byte, error) {
	raw := &rawElgamalKey{Algorithm: algorithmTag}

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
		raw.Secret = priv
	}
	return cbor.Marshal(raw)
}

// SKI is the BLAKE3 hash of the raw public key, so it covers p and g too.
func (key *ElgamalKey) SKI() []byte {
	raw, err := key.public.MarshalRaw()
	if err != nil {
		return nil
	}
	return hash.SKI(raw)
}

func (key *ElgamalKey) Private() bool {
	return key.private != nil
}

func (key *ElgamalKey) PublicKey() cs_elgamal.ElgamalKey {
	return &ElgamalKey{public: key.public}
}

func (key *ElgamalKey) PublicKeyRaw() *elgamal.PublicKey {
	return key.public
}

func (key *ElgamalKey) Params() *elgamal.Params {
	return key.public.Params()
}

// Encrypt reads block as a big-endian integer below p and returns the
// marshalled ciphertext.
func (key *ElgamalKey) Encrypt(rng io.Reader, block []byte) ([]byte, error) {
	if len(block) > key.public.Size() {
		return nil, elgamal.ErrInvalidInput
	}
	ct, err := key.public.Encrypt(rng, new(big.Int).SetBytes(block))
	if err != nil {
		return nil, err
	}
	return ct.MarshalBinary()
}

// Decrypt returns the plaintext left-padded to the byte length of p.
func (key *ElgamalKey) Decrypt(ct []byte) ([]byte, error) {
	if !key.Private() {
		return nil, ErrPublicKey
	}
	c := elgamal.NewCiphertext(key.Params())
	if err := c.UnmarshalBinary(ct); err != nil {
		return nil, err
	}
	m, err := key.private.Decrypt(c)
	if err != nil {
		return nil, err
	}
	defer arith.ZeroizeInt(m)
	return arith.LeftPad(m, key.public.Size()), nil
}

func (key *ElgamalKey) Sign(rng io.Reader, alg hash.Algorithm, msg []byte) ([]byte, error) {
	if !key.Private() {
		return nil, ErrPublicKey
	}
	engine, err := signature.New(alg)
	if err != nil {
		return nil, errors.WithMessage(err, "elgamal: failed to create signature engine")
	}
	return engine.SignElGamal(rng, key.private, msg)
}

func (key *ElgamalKey) Verify(alg hash.Algorithm, msg, sig []byte) bool {
	engine, err := signature.New(alg)
	if err != nil {
		return false
	}
	return engine.VerifyElGamal(key.public, msg, sig)
}

// fromBytes decodes the output of Bytes. With validate set, p is checked for
// primality and a private key must reproduce its public value.
func fromBytes(data []byte, validate bool) (*ElgamalKey, error) {
	raw := &rawElgamalKey{}
	if err := cbor.Unmarshal(data, raw); err != nil {
		return nil, errors.WithMessage(err, "elgamal: failed to decode key record")
	}
	defer arith.ZeroizeBytes(raw.Secret)
	if raw.Algorithm != algorithmTag {
		return nil, errors.WithMessagef(ErrInvalidKey, "elgamal: unexpected key type %q", raw.Algorithm)
	}

	pub, err := elgamal.ParsePublicKeyRaw(raw.Public)
	if err != nil {
		return nil, err
	}
	if len(raw.Secret) == 0 {
		if validate {
			if err := pub.Params().Validate(); err != nil {
				return nil, err
			}
		}
		return &ElgamalKey{public: pub}, nil
	}

	priv, err := elgamal.ParsePrivateKeyRaw(raw.Secret)
	if err != nil {
		return nil, err
	}
	if validate {
		if err := priv.Validate(); err != nil {
			return nil, err
		}
	}
	return NewElgamalKey(pub, priv)
}
