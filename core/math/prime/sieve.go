// Package prime searches for probable primes: plain random primes, Gordon
// strong primes, Sophie Germain primes and ElGamal group moduli together with
// the factorization of p-1.
package prime

import (
	"math/big"
	"math/bits"
	"sort"
)

const (
	// DefaultCertainty bounds the error probability of a composite being
	// accepted by 2^-certainty.
	DefaultCertainty = 80

	// SieveLimit is the exclusive upper bound of the trial division table.
	SieveLimit = 50000

	wheel       = 30030 // 2·3·5·7·11·13
	wheelPrimes = 6
	quickPrimes = 100
)

var (
	// smallPrimes lists every prime below SieveLimit.
	smallPrimes []uint64
	// wheelComposite[r] is set when gcd(r, 30030) > 1.
	wheelComposite [wheel]bool
	// groups packs smallPrimes into runs whose product fits in 64 bits so a
	// single big.Int reduction yields residues for the whole run.
	groups []primeGroup
	// quickGroups covers primes 17..541 (indices wheelPrimes..quickPrimes-1).
	quickGroups []primeGroup
	// germainGroups covers the odd primes among the first 100.
	germainGroups []primeGroup

	bigWheel = big.NewInt(wheel)
)

type primeGroup struct {
	product uint64
	primes  []uint64
}

func init() {
	composite := make([]bool, SieveLimit)
	for i := 2; i < SieveLimit; i++ {
		if composite[i] {
			continue
		}
		smallPrimes = append(smallPrimes, uint64(i))
		for j := i * i; j < SieveLimit; j += i {
			composite[j] = true
		}
	}

	for _, p := range smallPrimes[:wheelPrimes] {
		for r := 0; r < wheel; r += int(p) {
			wheelComposite[r] = true
		}
	}

	groups = buildGroups(smallPrimes)
	quickGroups = buildGroups(smallPrimes[wheelPrimes:quickPrimes])
	germainGroups = buildGroups(smallPrimes[1:quickPrimes])
}

func buildGroups(primes []uint64) []primeGroup {
	var out []primeGroup
	cur := primeGroup{product: 1}
	for _, p := range primes {
		if hi, _ := bits.Mul64(cur.product, p); hi != 0 {
			out = append(out, cur)
			cur = primeGroup{product: 1}
		}
		cur.product *= p
		cur.primes = append(cur.primes, p)
	}
	if len(cur.primes) > 0 {
		out = append(out, cur)
	}
	return out
}

// SmallPrimes returns a copy of the trial division table.
func SmallPrimes() []uint64 {
	out := make([]uint64, len(smallPrimes))
	copy(out, smallPrimes)
	return out
}

// Rounds converts a certainty into a Miller-Rabin round count; each round
// halves the error bound at least twice.
func Rounds(certainty int) int {
	r := (certainty + 1) / 2
	if r < 1 {
		r = 1
	}
	return r
}

func isSmallPrime(v uint64) bool {
	i := sort.Search(len(smallPrimes), func(i int) bool { return smallPrimes[i] >= v })
	return i < len(smallPrimes) && smallPrimes[i] == v
}

// residue returns n mod m for a positive n.
func residue(n *big.Int, m uint64) uint64 {
	return new(big.Int).Mod(n, new(big.Int).SetUint64(m)).Uint64()
}

// hasFactorIn reports whether one of the primes in gs divides n.
func hasFactorIn(n *big.Int, gs []primeGroup) bool {
	for _, g := range gs {
		r := residue(n, g.product)
		for _, p := range g.primes {
			if r%p == 0 {
				return true
			}
		}
	}
	return false
}

// IsProbablePrimeFast reports whether n is probably prime. Candidates sharing
// a factor with 30030 or with one of the first 100 primes are rejected before
// the Miller-Rabin test runs.
func IsProbablePrimeFast(n *big.Int, certainty int) bool {
	if n.Sign() <= 0 {
		return false
	}
	if n.IsUint64() && n.Uint64() < SieveLimit {
		return isSmallPrime(n.Uint64())
	}
	if wheelComposite[new(big.Int).Mod(n, bigWheel).Uint64()] {
		return false
	}
	if hasFactorIn(n, quickGroups) {
		return false
	}
	return n.ProbablyPrime(Rounds(certainty))
}
