package rsa

import (
	"math/big"

	"github.com/mr-shifu/pkc-lib/core/encoding"
	"github.com/mr-shifu/pkc-lib/core/math/arith"
	"github.com/pkg/errors"
)

var (
	ErrInvalidKey    = errors.New("rsa: invalid key")
	ErrInvalidInput  = errors.New("rsa: input out of range")
	ErrNotInvertible = errors.New("rsa: value has no modular inverse")
)

var one = big.NewInt(1)

func copyInt(x *big.Int) *big.Int {
	if x == nil {
		return nil
	}
	return new(big.Int).Set(x)
}

// PublicKey is an RSA modulus and public exponent.
type PublicKey struct {
	n, e *big.Int
}

// NewPublicKey copies n and e into a PublicKey.
func NewPublicKey(n, e *big.Int) (*PublicKey, error) {
	if n == nil || e == nil {
		return nil, errors.WithMessage(ErrInvalidKey, "rsa: missing modulus or exponent")
	}
	if n.Cmp(big.NewInt(2)) <= 0 || n.Bit(0) == 0 {
		return nil, errors.WithMessage(ErrInvalidKey, "rsa: modulus must be odd and greater than 2")
	}
	if e.Sign() <= 0 {
		return nil, errors.WithMessage(ErrInvalidKey, "rsa: exponent must be positive")
	}
	return &PublicKey{n: copyInt(n), e: copyInt(e)}, nil
}

// N returns a copy of the modulus.
func (k *PublicKey) N() *big.Int { return copyInt(k.n) }

// E returns a copy of the public exponent.
func (k *PublicKey) E() *big.Int { return copyInt(k.e) }

// BitLen is the modulus length in bits.
func (k *PublicKey) BitLen() int { return k.n.BitLen() }

// Size is the modulus length in bytes.
func (k *PublicKey) Size() int { return arith.ByteLen(k.n) }

// Equal reports whether both keys carry the same modulus and exponent.
func (k *PublicKey) Equal(other *PublicKey) bool {
	return other != nil && k.n.Cmp(other.n) == 0 && k.e.Cmp(other.e) == 0
}

// MarshalRaw encodes the key as the integer sequence e, n.
func (k *PublicKey) MarshalRaw() ([]byte, error) {
	return encoding.MarshalInts(k.e, k.n)
}

// ParsePublicKeyRaw decodes the output of PublicKey.MarshalRaw.
func ParsePublicKeyRaw(data []byte) (*PublicKey, error) {
	ints, err := encoding.UnmarshalInts(data, 2)
	if err != nil {
		return nil, errors.WithMessage(err, "rsa: failed to decode public key")
	}
	return NewPublicKey(ints[1], ints[0])
}

// PrivateKey holds the private exponent and, optionally, the factorization
// n = p⋅q with u = q⁻¹ (mod p). Exponentiation runs through the CRT only when
// p, q and u are all present. The public exponent is optional.
type PrivateKey struct {
	n, e, d *big.Int
	p, q, u *big.Int

	mod *arith.Modulus
}

// NewPrivateKey copies its arguments into a PrivateKey. p, q and u may be
// nil. When u does not match q⁻¹ (mod p) but does match with the factors
// exchanged, the key is accepted and exponentiation swaps them internally.
func NewPrivateKey(n, d, p, q, u *big.Int) (*PrivateKey, error) {
	if n == nil || d == nil {
		return nil, errors.WithMessage(ErrInvalidKey, "rsa: missing modulus or private exponent")
	}
	if n.Cmp(big.NewInt(2)) <= 0 || n.Bit(0) == 0 || d.Sign() <= 0 {
		return nil, errors.WithMessage(ErrInvalidKey, "rsa: modulus or private exponent out of range")
	}
	if (p == nil) != (q == nil) {
		return nil, errors.WithMessage(ErrInvalidKey, "rsa: only one prime factor given")
	}
	if p != nil && new(big.Int).Mul(p, q).Cmp(n) != 0 {
		return nil, errors.WithMessage(ErrInvalidKey, "rsa: n ≠ p⋅q")
	}

	k := &PrivateKey{
		n: copyInt(n), d: copyInt(d),
		p: copyInt(p), q: copyInt(q), u: copyInt(u),
	}
	if p != nil && u != nil {
		mod, err := arith.ModulusFromFactors(k.p, k.q, k.u)
		if err != nil {
			return nil, errors.WithMessage(ErrNotInvertible, "rsa: CRT coefficient")
		}
		k.mod = mod
	} else {
		k.mod = arith.ModulusFromN(k.n)
	}
	return k, nil
}

// WithPublicExponent returns a copy of k that also knows e. The copy owns
// its secrets; zeroizing either key leaves the other intact.
func (k *PrivateKey) WithPublicExponent(e *big.Int) *PrivateKey {
	return &PrivateKey{
		n: copyInt(k.n), e: copyInt(e), d: copyInt(k.d),
		p: copyInt(k.p), q: copyInt(k.q), u: copyInt(k.u),
		// read-only once built
		mod: k.mod,
	}
}

// N returns a copy of the modulus.
func (k *PrivateKey) N() *big.Int { return copyInt(k.n) }

// D returns a copy of the private exponent.
func (k *PrivateKey) D() *big.Int { return copyInt(k.d) }

// E returns a copy of the public exponent, or nil when it is unknown.
func (k *PrivateKey) E() *big.Int { return copyInt(k.e) }

// Primes returns copies of p, q and u. Any of them may be nil.
func (k *PrivateKey) Primes() (p, q, u *big.Int) {
	return copyInt(k.p), copyInt(k.q), copyInt(k.u)
}

// HasCRT reports whether exponentiation uses the factorization.
func (k *PrivateKey) HasCRT() bool {
	return k.p != nil && k.q != nil && k.u != nil
}

// Size is the modulus length in bytes.
func (k *PrivateKey) Size() int { return arith.ByteLen(k.n) }

// Public returns the matching public key. It fails when e is unknown.
func (k *PrivateKey) Public() (*PublicKey, error) {
	if k.e == nil {
		return nil, errors.WithMessage(ErrInvalidKey, "rsa: public exponent unknown")
	}
	return NewPublicKey(k.n, k.e)
}

// Validate checks the internal consistency of an imported key.
func (k *PrivateKey) Validate() error {
	if k.p == nil {
		return nil
	}
	for _, f := range []*big.Int{k.p, k.q} {
		if f.Cmp(one) <= 0 || !f.ProbablyPrime(20) {
			return errors.WithMessage(ErrInvalidKey, "rsa: factor is not prime")
		}
	}
	if k.u != nil {
		t := new(big.Int).Mul(k.u, k.q)
		s := new(big.Int).Mul(k.u, k.p)
		if t.Mod(t, k.p).Cmp(one) != 0 && s.Mod(s, k.q).Cmp(one) != 0 {
			return errors.WithMessage(ErrInvalidKey, "rsa: u is not the CRT coefficient")
		}
	}
	if k.e != nil {
		pm1 := new(big.Int).Sub(k.p, one)
		qm1 := new(big.Int).Sub(k.q, one)
		g := new(big.Int).GCD(nil, nil, pm1, qm1)
		lambda := new(big.Int).Mul(pm1, qm1)
		lambda.Quo(lambda, g)
		ed := new(big.Int).Mul(k.e, k.d)
		if ed.Mod(ed, lambda).Cmp(one) != 0 {
			return errors.WithMessage(ErrInvalidKey, "rsa: e⋅d ≢ 1")
		}
		arith.ZeroizeInt(ed)
	}
	return nil
}

// MarshalRaw encodes the key as the integer sequence d, p, q, u. Keys without
// their factorization cannot be encoded.
func (k *PrivateKey) MarshalRaw() ([]byte, error) {
	if !k.HasCRT() {
		return nil, errors.WithMessage(ErrInvalidKey, "rsa: raw encoding needs p, q and u")
	}
	return encoding.MarshalInts(k.d, k.p, k.q, k.u)
}

// ParsePrivateKeyRaw decodes the output of PrivateKey.MarshalRaw.
func ParsePrivateKeyRaw(data []byte) (*PrivateKey, error) {
	ints, err := encoding.UnmarshalInts(data, 4)
	if err != nil {
		return nil, errors.WithMessage(err, "rsa: failed to decode private key")
	}
	d, p, q, u := ints[0], ints[1], ints[2], ints[3]
	k, err := NewPrivateKey(new(big.Int).Mul(p, q), d, p, q, u)
	for _, x := range ints {
		arith.ZeroizeInt(x)
	}
	return k, err
}

// Zeroize wipes the secret values held by k. The key is unusable afterwards.
func (k *PrivateKey) Zeroize() {
	for _, x := range []*big.Int{k.d, k.p, k.q, k.u} {
		arith.ZeroizeInt(x)
	}
	k.mod = nil
}
