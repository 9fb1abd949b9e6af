// Package rsa implements RSA key generation and the raw RSA transform, with
// CRT acceleration when the factorization of the modulus is known.
package rsa

import (
	"math/big"

	"github.com/mr-shifu/pkc-lib/core/math/arith"
	"github.com/pkg/errors"
)

// Transform returns x^exp (mod n) for an odd n. When p is non-nil, p⋅q must
// equal n and the result is computed
// from two half-size exponentiations mod p and mod q recombined with
// u = q⁻¹ (mod p). If u does not match, p and q are exchanged and u is
// recomputed.
func Transform(x, n, exp, p, q, u *big.Int) (*big.Int, error) {
	if x == nil || n == nil || exp == nil {
		return nil, errors.WithMessage(ErrInvalidKey, "rsa: missing operand")
	}
	if n.Cmp(big.NewInt(2)) <= 0 || n.Bit(0) == 0 {
		return nil, errors.WithMessage(ErrInvalidKey, "rsa: modulus must be odd and greater than 2")
	}
	if exp.Sign() < 0 || x.Sign() < 0 {
		return nil, ErrInvalidInput
	}
	if p == nil {
		return arith.ModulusFromN(n).Exp(x, exp), nil
	}
	if q == nil {
		return nil, errors.WithMessage(ErrInvalidKey, "rsa: only one prime factor given")
	}
	if new(big.Int).Mul(p, q).Cmp(n) != 0 {
		return nil, errors.WithMessage(ErrInvalidKey, "rsa: n ≠ p⋅q")
	}
	mod, err := arith.ModulusFromFactors(p, q, u)
	if err != nil {
		return nil, errors.WithMessage(ErrNotInvertible, "rsa: CRT coefficient")
	}
	return mod.Exp(x, exp), nil
}

// Exp returns x^d (mod n) using the key's cached modulus.
func (k *PrivateKey) Exp(x *big.Int) (*big.Int, error) {
	if k.mod == nil {
		return nil, errors.WithMessage(ErrInvalidKey, "rsa: key was zeroized")
	}
	if x.Sign() < 0 || x.Cmp(k.n) >= 0 {
		return nil, ErrInvalidInput
	}
	return k.mod.Exp(x, k.d), nil
}

// Exp returns x^e (mod n).
func (k *PublicKey) Exp(x *big.Int) (*big.Int, error) {
	if x.Sign() < 0 || x.Cmp(k.n) >= 0 {
		return nil, ErrInvalidInput
	}
	return new(big.Int).Exp(x, k.e, k.n), nil
}

// Encrypt applies the public transform to the integer block m, 0 ≤ m < n.
func Encrypt(pub *PublicKey, m *big.Int) (*big.Int, error) {
	return pub.Exp(m)
}

// Decrypt applies the private transform to the integer block c, 0 ≤ c < n.
func Decrypt(priv *PrivateKey, c *big.Int) (*big.Int, error) {
	return priv.Exp(c)
}

// EncryptBlock is Encrypt on a big-endian block. The result is left-padded
// to the modulus size.
func EncryptBlock(pub *PublicKey, block []byte) ([]byte, error) {
	if len(block) > pub.Size() {
		return nil, ErrInvalidInput
	}
	c, err := Encrypt(pub, new(big.Int).SetBytes(block))
	if err != nil {
		return nil, err
	}
	return arith.LeftPad(c, pub.Size()), nil
}

// DecryptBlock reverses EncryptBlock. The plaintext is left-padded to the
// modulus size.
func DecryptBlock(priv *PrivateKey, block []byte) ([]byte, error) {
	if len(block) != priv.Size() {
		return nil, ErrInvalidInput
	}
	m, err := Decrypt(priv, new(big.Int).SetBytes(block))
	if err != nil {
		return nil, err
	}
	out := arith.LeftPad(m, priv.Size())
	arith.ZeroizeInt(m)
	return out, nil
}
