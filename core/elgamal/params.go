package elgamal

import (
	"context"
	"io"
	"math/big"

	"github.com/mr-shifu/pkc-lib/core/math/prime"
	"github.com/mr-shifu/pkc-lib/core/math/sample"
	"github.com/pkg/errors"
)

// MinPrimeBits is the smallest modulus accepted for ElGamal parameters.
const MinPrimeBits = 256

var (
	one = big.NewInt(1)
	two = big.NewInt(2)

	// tried before random candidates
	smallGenerators = []int64{2, 3, 5, 7, 11}
)

// Params is an ElGamal group: a prime p and a base g with 1 < g < p.
type Params struct {
	p, g *big.Int
}

// NewParams copies p and g into Params after checking their ranges.
func NewParams(p, g *big.Int) (*Params, error) {
	if p == nil || g == nil {
		return nil, errors.WithMessage(ErrInvalidParams, "elgamal: missing p or g")
	}
	if p.Bit(0) == 0 {
		return nil, errors.WithMessage(ErrInvalidParams, "elgamal: p must be odd")
	}
	if p.BitLen() < MinPrimeBits {
		return nil, errors.WithMessagef(ErrInvalidParams, "elgamal: p has %d bits, need %d", p.BitLen(), MinPrimeBits)
	}
	if g.Cmp(one) <= 0 || g.Cmp(p) >= 0 {
		return nil, errors.WithMessage(ErrInvalidParams, "elgamal: g out of range")
	}
	return &Params{p: new(big.Int).Set(p), g: new(big.Int).Set(g)}, nil
}

// P returns a copy of the modulus.
func (pp *Params) P() *big.Int { return new(big.Int).Set(pp.p) }

// G returns a copy of the base.
func (pp *Params) G() *big.Int { return new(big.Int).Set(pp.g) }

// BitLen is the bit length of p.
func (pp *Params) BitLen() int { return pp.p.BitLen() }

// Equal reports whether both groups have the same p and g.
func (pp *Params) Equal(other *Params) bool {
	return other != nil && pp.p.Cmp(other.p) == 0 && pp.g.Cmp(other.g) == 0
}

// Validate runs a probabilistic primality check on p.
func (pp *Params) Validate() error {
	if !pp.p.ProbablyPrime(20) {
		return errors.WithMessage(ErrInvalidParams, "elgamal: p is not prime")
	}
	return nil
}

// IsGenerator reports whether g generates the full multiplicative group mod
// p, given every distinct prime factor of p-1.
func IsGenerator(g, p *big.Int, factors []*big.Int) bool {
	if g.Cmp(one) <= 0 || g.Cmp(p) >= 0 {
		return false
	}
	pm1 := new(big.Int).Sub(p, one)
	e := new(big.Int)
	for _, q := range factors {
		e.Quo(pm1, q)
		if new(big.Int).Exp(g, e, p).Cmp(one) == 0 {
			return false
		}
	}
	return true
}

// FindGenerator returns a generator of the group mod p. factors must contain
// every prime factor of p-1; repeats are ignored. A few small bases are tried
// before random (bitlen(p)-1)-bit candidates.
func FindGenerator(ctx context.Context, p *big.Int, factors []*big.Int, rng io.Reader) (*big.Int, error) {
	if rng == nil {
		return nil, prime.ErrNoRandom
	}
	if p == nil || p.Cmp(big.NewInt(3)) < 0 || len(factors) == 0 {
		return nil, errors.WithMessage(ErrInvalidParams, "elgamal: need p > 2 and the factors of p-1")
	}
	pm1 := new(big.Int).Sub(p, one)
	distinct := prime.Distinct(factors)
	m := new(big.Int)
	for _, q := range distinct {
		if q.Cmp(one) <= 0 || m.Mod(pm1, q).Sign() != 0 {
			return nil, errors.WithMessage(ErrInvalidParams, "elgamal: factor does not divide p-1")
		}
	}

	for _, c := range smallGenerators {
		g := big.NewInt(c)
		if IsGenerator(g, p, distinct) {
			return g, nil
		}
	}
	bits := p.BitLen() - 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, errors.WithMessage(err, "elgamal: generator search aborted")
		}
		g, err := sample.Bits(rng, bits)
		if err != nil {
			return nil, err
		}
		if IsGenerator(g, p, distinct) {
			return g, nil
		}
	}
}

// ParamTable maps a modulus bit length to fixed parameters that key
// generation uses instead of searching for a new group.
type ParamTable map[int]*Params

// Lookup returns the entry for bits, if any.
func (t ParamTable) Lookup(bits int) (*Params, bool) {
	pp, ok := t[bits]
	return pp, ok && pp != nil
}
