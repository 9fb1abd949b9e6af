// Package sample draws random integers from an injected entropy source.
package sample

import (
	cryptorand "crypto/rand"
	"io"
	"math/big"

	"github.com/pkg/errors"
	"github.com/zeebo/blake3"
)

const (
	SeedSize = 32
)

var (
	ErrInvalidBits  = errors.New("sample: bit length must be positive")
	ErrInvalidRange = errors.New("sample: empty range")
)

func reader(rand io.Reader) io.Reader {
	if rand == nil {
		return cryptorand.Reader
	}
	return rand
}

// Bits returns a uniform integer in [0, 2^bits).
func Bits(rand io.Reader, bits int) (*big.Int, error) {
	if bits <= 0 {
		return nil, ErrInvalidBits
	}
	buf := make([]byte, (bits+7)/8)
	defer zero(buf)
	if _, err := io.ReadFull(reader(rand), buf); err != nil {
		return nil, errors.WithMessage(err, "sample: failed to read random bytes")
	}
	if excess := uint(len(buf)*8 - bits); excess > 0 {
		buf[0] &= 0xff >> excess
	}
	return new(big.Int).SetBytes(buf), nil
}

// ExactBits returns a uniform integer whose bit length is exactly bits.
func ExactBits(rand io.Reader, bits int) (*big.Int, error) {
	x, err := Bits(rand, bits)
	if err != nil {
		return nil, err
	}
	return x.SetBit(x, bits-1, 1), nil
}

// OddExactBits is ExactBits with the lowest bit forced on.
func OddExactBits(rand io.Reader, bits int) (*big.Int, error) {
	x, err := ExactBits(rand, bits)
	if err != nil {
		return nil, err
	}
	return x.SetBit(x, 0, 1), nil
}

// IntRange returns a uniform integer in [lo, hi].
func IntRange(rand io.Reader, lo, hi *big.Int) (*big.Int, error) {
	span := new(big.Int).Sub(hi, lo)
	if span.Sign() < 0 {
		return nil, ErrInvalidRange
	}
	span.Add(span, big.NewInt(1))
	x, err := cryptorand.Int(reader(rand), span)
	if err != nil {
		return nil, errors.WithMessage(err, "sample: failed to sample in range")
	}
	return x.Add(x, lo), nil
}

// NewSeededReader returns a deterministic stream expanded from seed with the
// BLAKE3 extendable output function. Two readers built from the same seed
// produce the same bytes.
func NewSeededReader(seed []byte) io.Reader {
	h := blake3.New()
	_, _ = h.Write(seed)
	return h.Digest()
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
