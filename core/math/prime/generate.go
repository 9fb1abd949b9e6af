package prime

import (
	"context"
	"io"
	"math/big"
	"strings"

	"github.com/mr-shifu/pkc-lib/core/math/sample"
	"github.com/pkg/errors"
)

// MinBits is the smallest bit length accepted by the structured generators.
const MinBits = 16

var (
	ErrInvalidBits = errors.New("prime: bit length out of range")
	ErrNoRandom    = errors.New("prime: no random source")
	ErrInvalidMode = errors.New("prime: unknown generation mode")
)

var one = big.NewInt(1)

// Mode selects how an ElGamal modulus is generated.
type Mode int

const (
	// Plain samples random primes until p-1 factors over the sieve table
	// with a large enough largest factor.
	Plain Mode = iota
	// Strong builds p as a Gordon strong prime.
	Strong
	// Germain builds p = 2q+1 with q prime.
	Germain
)

func (m Mode) String() string {
	switch m {
	case Plain:
		return "plain"
	case Strong:
		return "strong"
	case Germain:
		return "germain"
	default:
		return "unknown"
	}
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "plain":
		return Plain, nil
	case "strong":
		return Strong, nil
	case "germain":
		return Germain, nil
	}
	return 0, errors.WithMessage(ErrInvalidMode, s)
}

// StrongPrime is a Gordon strong prime P with its witnesses: R | P-1,
// S | P+1 and T | R-1.
type StrongPrime struct {
	P, R, S, T *big.Int
}

func aborted(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.WithMessage(err, "prime: search aborted")
	}
	return nil
}

// Random returns a probable prime with exactly bits bits.
func Random(ctx context.Context, rng io.Reader, bits, certainty int) (*big.Int, error) {
	if rng == nil {
		return nil, ErrNoRandom
	}
	if bits < 2 {
		return nil, ErrInvalidBits
	}
	for {
		if err := aborted(ctx); err != nil {
			return nil, err
		}
		c, err := sample.OddExactBits(rng, bits)
		if err != nil {
			return nil, err
		}
		if IsProbablePrimeFast(c, certainty) {
			return c, nil
		}
	}
}

// Gordon returns a strong prime of exactly bits bits. s and t have roughly
// bits/2 bits, small enough that the final search steps are a fraction of
// the target range.
func Gordon(ctx context.Context, rng io.Reader, bits, certainty int) (*StrongPrime, error) {
	if bits < MinBits {
		return nil, ErrInvalidBits
	}
	sBits := bits/2 - 4
	tBits := bits/2 - 8
	if tBits < 2 {
		tBits = 2
	}
	low := new(big.Int).Lsh(one, uint(bits-1))

	for {
		s, err := Random(ctx, rng, sBits, certainty)
		if err != nil {
			return nil, err
		}
		t, err := Random(ctx, rng, tBits, certainty)
		if err != nil {
			return nil, err
		}

		// r = 2·i·t + 1, i = 1, 2, ...
		step := new(big.Int).Lsh(t, 1)
		r := new(big.Int).Add(step, one)
		for !IsProbablePrimeFast(r, certainty) {
			if err := aborted(ctx); err != nil {
				return nil, err
			}
			r.Add(r, step)
		}
		if r.Cmp(s) == 0 {
			continue
		}

		// p₀ = 2·(s^(r-2) mod r)·s - 1
		p := new(big.Int).Exp(s, new(big.Int).Sub(r, big.NewInt(2)), r)
		p.Mul(p, s).Lsh(p, 1).Sub(p, one)

		// p = p₀ + 2·j·r·s, starting at the first j that reaches bits bits
		step = new(big.Int).Mul(r, s)
		step.Lsh(step, 1)
		if p.Cmp(low) < 0 {
			j := new(big.Int).Sub(low, p)
			j.Add(j, step).Sub(j, one).Quo(j, step)
			p.Add(p, j.Mul(j, step))
		}
		for p.BitLen() == bits && !IsProbablePrimeFast(p, certainty) {
			if err := aborted(ctx); err != nil {
				return nil, err
			}
			p.Add(p, step)
		}
		if p.BitLen() != bits {
			continue
		}
		return &StrongPrime{P: p, R: r, S: s, T: t}, nil
	}
}

// germainSieve reports whether q or 2q+1 has a factor among the first 100
// primes. q must exceed the largest of them.
func germainSieve(q *big.Int) bool {
	for _, g := range germainGroups {
		r := residue(q, g.product)
		for _, p := range g.primes {
			// p | 2q+1 iff q ≡ (p-1)/2 (mod p)
			if rp := r % p; rp == 0 || rp == (p-1)/2 {
				return true
			}
		}
	}
	return false
}

// SafePrime returns a prime p of exactly bits bits such that (p-1)/2 is prime.
func SafePrime(ctx context.Context, rng io.Reader, bits, certainty int) (*big.Int, error) {
	if rng == nil {
		return nil, ErrNoRandom
	}
	if bits < MinBits {
		return nil, ErrInvalidBits
	}
	rounds := Rounds(certainty)
	for {
		if err := aborted(ctx); err != nil {
			return nil, err
		}
		q, err := sample.OddExactBits(rng, bits-1)
		if err != nil {
			return nil, err
		}
		if germainSieve(q) || !q.ProbablyPrime(rounds) {
			continue
		}
		p := new(big.Int).Lsh(q, 1)
		p.Add(p, one)
		if IsProbablePrimeFast(p, certainty) {
			return p, nil
		}
	}
}

// ElGamal returns a prime p suitable as an ElGamal modulus together with the
// complete factorization of p-1, with multiplicity, in ascending order.
func ElGamal(ctx context.Context, rng io.Reader, bits, certainty int, mode Mode) (*big.Int, []*big.Int, error) {
	if bits < MinBits {
		return nil, nil, ErrInvalidBits
	}
	switch mode {
	case Plain:
		for {
			p, err := Random(ctx, rng, bits, certainty)
			if err != nil {
				return nil, nil, err
			}
			factors, ok := SmallFactors(new(big.Int).Sub(p, one), certainty)
			if !ok {
				continue
			}
			// a smooth p-1 leaves the discrete log open to Pohlig-Hellman
			if factors[len(factors)-1].BitLen() <= p.BitLen()/2 {
				continue
			}
			return p, factors, nil
		}

	case Strong:
		for {
			sp, err := Gordon(ctx, rng, bits, certainty)
			if err != nil {
				return nil, nil, err
			}
			factors, ok := SmallFactorsKnown(new(big.Int).Sub(sp.P, one), sp.R, certainty)
			if !ok {
				continue
			}
			return sp.P, factors, nil
		}

	case Germain:
		p, err := SafePrime(ctx, rng, bits, certainty)
		if err != nil {
			return nil, nil, err
		}
		q := new(big.Int).Rsh(p, 1)
		return p, []*big.Int{big.NewInt(2), q}, nil
	}
	return nil, nil, ErrInvalidMode
}
