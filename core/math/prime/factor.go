package prime

import (
	"math/big"
	"sort"
)

// SmallFactors factors n by trial division over the primes below SieveLimit.
// Repeated factors appear once per multiplicity and the list is sorted in
// ascending order. If the cofactor left after trial division is neither 1 nor
// a probable prime, ok is false.
func SmallFactors(n *big.Int, certainty int) (factors []*big.Int, ok bool) {
	if n.Sign() <= 0 {
		return nil, false
	}
	rest := new(big.Int).Set(n)
	factors = []*big.Int{}
	one := big.NewInt(1)
	q, m := new(big.Int), new(big.Int)

	for _, g := range groups {
		if rest.Cmp(one) == 0 {
			break
		}
		r := residue(rest, g.product)
		for _, p := range g.primes {
			if r%p != 0 {
				continue
			}
			bp := new(big.Int).SetUint64(p)
			for {
				q.QuoRem(rest, bp, m)
				if m.Sign() != 0 {
					break
				}
				rest.Set(q)
				factors = append(factors, new(big.Int).Set(bp))
			}
		}
	}

	if rest.Cmp(one) != 0 {
		if !IsProbablePrimeFast(rest, certainty) {
			return nil, false
		}
		factors = append(factors, rest)
	}
	sortInts(factors)
	return factors, true
}

// SmallFactorsKnown is SmallFactors for an n with a known large prime factor.
// Every power of known dividing n is removed before trial division. If known
// does not divide n, ok is false.
func SmallFactorsKnown(n, known *big.Int, certainty int) (factors []*big.Int, ok bool) {
	if n.Sign() <= 0 || known.Cmp(big.NewInt(1)) <= 0 {
		return nil, false
	}
	rest := new(big.Int).Set(n)
	q, m := new(big.Int), new(big.Int)
	var powers int
	for {
		q.QuoRem(rest, known, m)
		if m.Sign() != 0 {
			break
		}
		rest.Set(q)
		powers++
	}
	if powers == 0 {
		return nil, false
	}

	factors, ok = SmallFactors(rest, certainty)
	if !ok {
		return nil, false
	}
	for i := 0; i < powers; i++ {
		factors = append(factors, new(big.Int).Set(known))
	}
	sortInts(factors)
	return factors, true
}

// Distinct returns the distinct values of factors in ascending order.
func Distinct(factors []*big.Int) []*big.Int {
	sorted := make([]*big.Int, len(factors))
	copy(sorted, factors)
	sortInts(sorted)
	var out []*big.Int
	for _, f := range sorted {
		if len(out) > 0 && out[len(out)-1].Cmp(f) == 0 {
			continue
		}
		out = append(out, f)
	}
	return out
}

func sortInts(xs []*big.Int) {
	sort.Slice(xs, func(i, j int) bool { return xs[i].Cmp(xs[j]) < 0 })
}
