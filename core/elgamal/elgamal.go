// Package elgamal implements ElGamal encryption and signatures over the
// multiplicative group of a prime field, plus generation of groups and keys.
package elgamal

import (
	"io"
	"math/big"

	"github.com/mr-shifu/pkc-lib/core/math/arith"
	"github.com/mr-shifu/pkc-lib/core/math/prime"
	"github.com/mr-shifu/pkc-lib/core/math/sample"
	"github.com/pkg/errors"
)

var (
	ErrInvalidParams = errors.New("elgamal: invalid group parameters")
	ErrInvalidKey    = errors.New("elgamal: invalid key")
	ErrInvalidInput  = errors.New("elgamal: input out of range")
	// ErrNotInvertible means the key or ciphertext is corrupt. Its message
	// never carries operand values.
	ErrNotInvertible = errors.New("elgamal: key not generated properly")
)

// nonce returns an odd k in [1, p-2] with gcd(k, p-1) = 1.
func nonce(rng io.Reader, p *big.Int) (*big.Int, error) {
	if rng == nil {
		return nil, prime.ErrNoRandom
	}
	pm1 := new(big.Int).Sub(p, one)
	hi := new(big.Int).Sub(p, two)
	g := new(big.Int)
	for {
		k, err := sample.IntRange(rng, one, hi)
		if err != nil {
			return nil, err
		}
		k.SetBit(k, 0, 1)
		if g.GCD(nil, nil, k, pm1).Cmp(one) == 0 {
			return k, nil
		}
		arith.ZeroizeInt(k)
	}
}

func checkGroup(p, g *big.Int) error {
	if p == nil || g == nil || p.Cmp(big.NewInt(3)) < 0 || p.Bit(0) == 0 {
		return errors.WithMessage(ErrInvalidParams, "elgamal: p must be an odd prime")
	}
	if g.Cmp(one) <= 0 || g.Cmp(p) >= 0 {
		return errors.WithMessage(ErrInvalidParams, "elgamal: g out of range")
	}
	return nil
}

// Encrypt returns (a, b) = (gᵏ, yᵏ⋅m) mod p for a fresh nonce k. m must lie in
// [0, p-1].
func Encrypt(rng io.Reader, p, g, y, m *big.Int) (a, b *big.Int, err error) {
	if err := checkGroup(p, g); err != nil {
		return nil, nil, err
	}
	if y == nil || y.Sign() <= 0 || y.Cmp(p) >= 0 {
		return nil, nil, errors.WithMessage(ErrInvalidKey, "elgamal: public value out of range")
	}
	if m.Sign() < 0 || m.Cmp(p) >= 0 {
		return nil, nil, ErrInvalidInput
	}
	k, err := nonce(rng, p)
	if err != nil {
		return nil, nil, err
	}
	defer arith.ZeroizeInt(k)

	a = arith.ExpMod(g, k, p)
	b = arith.ExpMod(y, k, p)
	b.Mul(b, m).Mod(b, p)
	return a, b, nil
}

// Decrypt returns b⋅(aˣ)⁻¹ mod p.
func Decrypt(p, x, a, b *big.Int) (*big.Int, error) {
	if p == nil || x == nil {
		return nil, errors.WithMessage(ErrInvalidKey, "elgamal: missing p or x")
	}
	if a.Sign() < 0 || a.Cmp(p) >= 0 || b.Sign() < 0 || b.Cmp(p) >= 0 {
		return nil, ErrInvalidInput
	}
	s := arith.ExpMod(a, x, p)
	defer arith.ZeroizeInt(s)
	inv, err := arith.ModInverse(s, p)
	if err != nil {
		return nil, ErrNotInvertible
	}
	defer arith.ZeroizeInt(inv)
	m := new(big.Int).Mul(b, inv)
	return m.Mod(m, p), nil
}

// Sign returns the signature (a, b) of m ∈ [0, p-2]: a = gᵏ mod p and
// b = k⁻¹⋅(m - x⋅a) mod (p-1).
func Sign(rng io.Reader, p, g, x, m *big.Int) (a, b *big.Int, err error) {
	if err := checkGroup(p, g); err != nil {
		return nil, nil, err
	}
	if x == nil || x.Sign() <= 0 {
		return nil, nil, errors.WithMessage(ErrInvalidKey, "elgamal: missing private exponent")
	}
	pm1 := new(big.Int).Sub(p, one)
	pm2 := new(big.Int).Sub(p, two)
	if m.Sign() < 0 || m.Cmp(pm2) > 0 {
		return nil, nil, ErrInvalidInput
	}

	for {
		k, err := nonce(rng, p)
		if err != nil {
			return nil, nil, err
		}
		a = arith.ExpMod(g, k, p)
		if a.Cmp(pm1) == 0 {
			// outside the range Verify accepts
			arith.ZeroizeInt(k)
			continue
		}
		kInv, err := arith.ModInverse(k, pm1)
		arith.ZeroizeInt(k)
		if err != nil {
			return nil, nil, ErrNotInvertible
		}
		b = new(big.Int).Mul(x, a)
		b.Sub(m, b).Mod(b, pm1)
		b.Mul(b, kInv).Mod(b, pm1)
		arith.ZeroizeInt(kInv)
		return a, b, nil
	}
}

// Verify reports whether (a, b) is a valid signature of m, i.e.
// yᵃ⋅aᵇ ≡ gᵐ (mod p). Out of range values yield false.
func Verify(p, g, y, m, a, b *big.Int) bool {
	if checkGroup(p, g) != nil || y == nil || m == nil || a == nil || b == nil {
		return false
	}
	pm2 := new(big.Int).Sub(p, two)
	for _, v := range []*big.Int{m, a, b} {
		if v.Sign() < 0 || v.Cmp(pm2) > 0 {
			return false
		}
	}
	lhs := new(big.Int).Exp(y, a, p)
	lhs.Mul(lhs, new(big.Int).Exp(a, b, p)).Mod(lhs, p)
	return lhs.Cmp(new(big.Int).Exp(g, m, p)) == 0
}
