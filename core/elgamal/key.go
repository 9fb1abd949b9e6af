package elgamal

import (
	"io"
	"math/big"

	"github.com/mr-shifu/pkc-lib/core/encoding"
	"github.com/mr-shifu/pkc-lib/core/math/arith"
	"github.com/pkg/errors"
)

// PublicKey is y = gˣ mod p in the group described by its Params.
type PublicKey struct {
	params *Params
	y      *big.Int
}

// PrivateKey extends PublicKey with the secret exponent x.
type PrivateKey struct {
	PublicKey
	x *big.Int
}

// NewPublicKey checks 1 ≤ y < p and copies y.
func NewPublicKey(params *Params, y *big.Int) (*PublicKey, error) {
	if params == nil || y == nil {
		return nil, errors.WithMessage(ErrInvalidKey, "elgamal: missing params or y")
	}
	if y.Sign() <= 0 || y.Cmp(params.p) >= 0 {
		return nil, errors.WithMessage(ErrInvalidKey, "elgamal: y out of range")
	}
	return &PublicKey{params: params, y: new(big.Int).Set(y)}, nil
}

// NewPrivateKey derives y from x. x must lie in [1, p-2].
func NewPrivateKey(params *Params, x *big.Int) (*PrivateKey, error) {
	if params == nil || x == nil {
		return nil, errors.WithMessage(ErrInvalidKey, "elgamal: missing params or x")
	}
	if x.Sign() <= 0 || x.Cmp(new(big.Int).Sub(params.p, two)) > 0 {
		return nil, errors.WithMessage(ErrInvalidKey, "elgamal: x out of range")
	}
	y := arith.ExpMod(params.g, x, params.p)
	return &PrivateKey{
		PublicKey: PublicKey{params: params, y: y},
		x:         new(big.Int).Set(x),
	}, nil
}

// Params returns the group of the key.
func (k *PublicKey) Params() *Params { return k.params }

// Y returns a copy of the public value.
func (k *PublicKey) Y() *big.Int { return new(big.Int).Set(k.y) }

// Size is the byte length of p.
func (k *PublicKey) Size() int { return arith.ByteLen(k.params.p) }

// Equal reports whether both keys share the group and public value.
func (k *PublicKey) Equal(other *PublicKey) bool {
	return other != nil && k.params.Equal(other.params) && k.y.Cmp(other.y) == 0
}

// Public returns the public half of k.
func (k *PrivateKey) Public() *PublicKey {
	pub := k.PublicKey
	return &pub
}

// X returns a copy of the secret exponent.
func (k *PrivateKey) X() *big.Int { return new(big.Int).Set(k.x) }

// Validate checks y = gˣ mod p and the primality of p.
func (k *PrivateKey) Validate() error {
	if err := k.params.Validate(); err != nil {
		return err
	}
	y := arith.ExpMod(k.params.g, k.x, k.params.p)
	if y.Cmp(k.y) != 0 {
		return errors.WithMessage(ErrInvalidKey, "elgamal: y ≠ gˣ")
	}
	return nil
}

// Zeroize wipes x. The key is unusable afterwards.
func (k *PrivateKey) Zeroize() {
	arith.ZeroizeInt(k.x)
}

// Encrypt encrypts the integer block m ∈ [0, p-1].
func (k *PublicKey) Encrypt(rng io.Reader, m *big.Int) (*Ciphertext, error) {
	a, b, err := Encrypt(rng, k.params.p, k.params.g, k.y, m)
	if err != nil {
		return nil, err
	}
	return &Ciphertext{A: a, B: b, width: k.Size()}, nil
}

// Decrypt recovers the block encrypted into c.
func (k *PrivateKey) Decrypt(c *Ciphertext) (*big.Int, error) {
	if c == nil || c.A == nil || c.B == nil {
		return nil, ErrInvalidInput
	}
	return Decrypt(k.params.p, k.x, c.A, c.B)
}

// Sign signs the integer m ∈ [0, p-2].
func (k *PrivateKey) Sign(rng io.Reader, m *big.Int) (a, b *big.Int, err error) {
	return Sign(rng, k.params.p, k.params.g, k.x, m)
}

// Verify checks a signature produced by PrivateKey.Sign.
func (k *PublicKey) Verify(m, a, b *big.Int) bool {
	return Verify(k.params.p, k.params.g, k.y, m, a, b)
}

// MarshalRaw encodes the key as the integer sequence p, g, y.
func (k *PublicKey) MarshalRaw() ([]byte, error) {
	return encoding.MarshalInts(k.params.p, k.params.g, k.y)
}

// ParsePublicKeyRaw decodes the output of PublicKey.MarshalRaw.
func ParsePublicKeyRaw(data []byte) (*PublicKey, error) {
	ints, err := encoding.UnmarshalInts(data, 3)
	if err != nil {
		return nil, errors.WithMessage(err, "elgamal: failed to decode public key")
	}
	params, err := NewParams(ints[0], ints[1])
	if err != nil {
		return nil, err
	}
	return NewPublicKey(params, ints[2])
}

// MarshalRaw encodes the key as the integer sequence p, g, x.
func (k *PrivateKey) MarshalRaw() ([]byte, error) {
	return encoding.MarshalInts(k.params.p, k.params.g, k.x)
}

// ParsePrivateKeyRaw decodes the output of PrivateKey.MarshalRaw.
func ParsePrivateKeyRaw(data []byte) (*PrivateKey, error) {
	ints, err := encoding.UnmarshalInts(data, 3)
	if err != nil {
		return nil, errors.WithMessage(err, "elgamal: failed to decode private key")
	}
	defer arith.ZeroizeInt(ints[2])
	params, err := NewParams(ints[0], ints[1])
	if err != nil {
		return nil, err
	}
	return NewPrivateKey(params, ints[2])
}
