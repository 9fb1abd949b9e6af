// Package signature signs and verifies messages with PKCS#1 v1.5 frames,
// exponentiated either with an RSA key or fed to the ElGamal signature
// equation. One Engine serves every digest in the hash table.
package signature

import (
	"crypto/subtle"
	"io"
	"math/big"

	"github.com/mr-shifu/pkc-lib/core/elgamal"
	"github.com/mr-shifu/pkc-lib/core/hash"
	"github.com/mr-shifu/pkc-lib/core/math/arith"
	"github.com/mr-shifu/pkc-lib/core/pkcs1"
	"github.com/mr-shifu/pkc-lib/core/rsa"
	"github.com/pkg/errors"
)

// Engine binds a digest algorithm to its DigestInfo prefix.
type Engine struct {
	alg   hash.Algorithm
	algID []byte
}

// New returns an Engine for alg. It fails when no implementation of alg is
// available.
func New(alg hash.Algorithm) (*Engine, error) {
	algID, err := alg.AlgorithmID()
	if err != nil {
		return nil, err
	}
	if !alg.Available() {
		return nil, errors.WithMessage(hash.ErrDigestUnavailable, alg.String())
	}
	return &Engine{alg: alg, algID: algID}, nil
}

// Algorithm returns the digest the engine signs with.
func (e *Engine) Algorithm() hash.Algorithm {
	return e.alg
}

// Frame digests msg and returns the frame of size bytes embedding it.
func (e *Engine) Frame(msg []byte, size int) ([]byte, error) {
	if pkcs1.PadLen(size, len(e.algID), e.alg.Size()) < 0 {
		return nil, pkcs1.ErrPaddingLength
	}
	digest, err := e.alg.Sum(msg)
	if err != nil {
		return nil, err
	}
	defer arith.ZeroizeBytes(digest)
	return pkcs1.BuildFrame(digest, e.algID, size)
}

// SignRSA returns the signature of msg, left-padded to the modulus size.
func (e *Engine) SignRSA(priv *rsa.PrivateKey, msg []byte) ([]byte, error) {
	size := priv.Size()
	frame, err := e.Frame(msg, size)
	if err != nil {
		return nil, err
	}
	defer arith.ZeroizeBytes(frame)

	m := new(big.Int).SetBytes(frame)
	defer arith.ZeroizeInt(m)
	s, err := priv.Exp(m)
	if err != nil {
		return nil, errors.WithMessage(err, "signature: RSA transform failed")
	}
	return arith.LeftPad(s, size), nil
}

// VerifyRSA reports whether sig is a valid signature of msg under pub.
func (e *Engine) VerifyRSA(pub *rsa.PublicKey, msg, sig []byte) bool {
	size := pub.Size()
	if len(sig) != size {
		return false
	}
	expected, err := e.Frame(msg, size)
	if err != nil {
		return false
	}
	m, err := pub.Exp(new(big.Int).SetBytes(sig))
	if err != nil {
		return false
	}
	computed := arith.LeftPad(m, size)
	return subtle.ConstantTimeCompare(computed, expected) == 1
}

// SignElGamal returns a‖b, each half left-padded to the byte length of p.
// The frame read as an integer is the signed value.
func (e *Engine) SignElGamal(rng io.Reader, priv *elgamal.PrivateKey, msg []byte) ([]byte, error) {
	size := priv.Size()
	frame, err := e.Frame(msg, size)
	if err != nil {
		return nil, err
	}
	defer arith.ZeroizeBytes(frame)

	a, b, err := priv.Sign(rng, new(big.Int).SetBytes(frame))
	if err != nil {
		return nil, errors.WithMessage(err, "signature: ElGamal signing failed")
	}
	out := make([]byte, 2*size)
	a.FillBytes(out[:size])
	b.FillBytes(out[size:])
	return out, nil
}

// VerifyElGamal reports whether sig is a valid signature of msg under pub.
func (e *Engine) VerifyElGamal(pub *elgamal.PublicKey, msg, sig []byte) bool {
	size := pub.Size()
	if len(sig) != 2*size {
		return false
	}
	frame, err := e.Frame(msg, size)
	if err != nil {
		return false
	}
	a := new(big.Int).SetBytes(sig[:size])
	b := new(big.Int).SetBytes(sig[size:])
	return pub.Verify(new(big.Int).SetBytes(frame), a, b)
}
