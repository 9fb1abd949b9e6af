package arith

import (
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/pkg/errors"
)

var (
	ErrNotInvertible = errors.New("arith: value has no modular inverse")
	ErrFactorization = errors.New("arith: p·q does not match modulus")
)

// Modulus wraps a saferith.Modulus and enables faster modular exponentiation when
// the factorization is known.
// When n = p⋅q, xᵉ (mod n) can be computed with two half-size exponentiations
// mod p and mod q, recombined with Garner's formula.
type Modulus struct {
	// represents modulus n
	*saferith.Modulus
	// n = p⋅q
	p, q *saferith.Modulus
	// p-1 and q-1, used to shrink exponents
	pMinus1, qMinus1 *saferith.Modulus
	// u = q⁻¹ (mod p)
	qNat, u *saferith.Nat
}

// ModulusFromN creates a simple wrapper around a given odd modulus n. Exp
// falls back to a single full-size exponentiation. Callers reject even n.
func ModulusFromN(n *big.Int) *Modulus {
	return &Modulus{
		Modulus: saferith.ModulusFromNat(natFromBig(n)),
	}
}

// ModulusFromFactors creates the cached values that accelerate
// exponentiation mod n = p⋅q.
//
// u must satisfy u⋅q ≡ 1 (mod p). If it does not, the roles of p and q are
// swapped and u is recomputed as p⁻¹ (mod q). A nil u is computed the same
// way. The reordering is internal; the caller's values are not modified.
func ModulusFromFactors(p, q, u *big.Int) (*Modulus, error) {
	if p.Sign() <= 0 || q.Sign() <= 0 {
		return nil, ErrFactorization
	}
	if u == nil || !inverseOf(u, q, p) {
		// try the same u against the swapped pair before computing afresh
		p, q = q, p
		if u == nil || !inverseOf(u, q, p) {
			u = new(big.Int).ModInverse(q, p)
			if u == nil {
				return nil, ErrNotInvertible
			}
		}
	}

	pNat, qNat := natFromBig(p), natFromBig(q)
	one := new(saferith.Nat).SetUint64(1)
	nNat := new(saferith.Nat).Mul(pNat, qNat, -1)
	return &Modulus{
		Modulus: saferith.ModulusFromNat(nNat),
		p:       saferith.ModulusFromNat(pNat),
		q:       saferith.ModulusFromNat(qNat),
		pMinus1: saferith.ModulusFromNat(new(saferith.Nat).Sub(pNat, one, -1)),
		qMinus1: saferith.ModulusFromNat(new(saferith.Nat).Sub(qNat, one, -1)),
		qNat:    qNat,
		u:       natFromBig(new(big.Int).Mod(u, p)),
	}, nil
}

// inverseOf reports whether u⋅q ≡ 1 (mod p).
func inverseOf(u, q, p *big.Int) bool {
	if p.Cmp(big.NewInt(1)) <= 0 {
		return false
	}
	t := new(big.Int).Mul(u, q)
	return t.Mod(t, p).Cmp(big.NewInt(1)) == 0
}

// N returns the modulus as a big.Int.
func (n *Modulus) N() *big.Int {
	return n.Modulus.Nat().Big()
}

// Exp returns xᵉ (mod n). x may be any non-negative value; it is reduced
// first.
func (n *Modulus) Exp(x, e *big.Int) *big.Int {
	xNat, eNat := natFromBig(x), natFromBig(e)
	if !n.hasFactorization() {
		xNat.Mod(xNat, n.Modulus)
		return new(saferith.Nat).Exp(xNat, eNat, n.Modulus).Big()
	}

	var xp, xq, ep, eq saferith.Nat
	ep.Mod(eNat, n.pMinus1)
	eq.Mod(eNat, n.qMinus1)
	// keep 0ᵉ = 0 when e is a non-zero multiple of p-1 or q-1
	nonZero := 1 ^ eNat.EqZero()
	ep.CondAssign(ep.EqZero()&nonZero, n.pMinus1.Nat())
	eq.CondAssign(eq.EqZero()&nonZero, n.qMinus1.Nat())
	xp.Mod(xNat, n.p)
	xq.Mod(xNat, n.q)
	xp.Exp(&xp, &ep, n.p) // x₁ = xᵉ (mod p)
	xq.Exp(&xq, &eq, n.q) // x₂ = xᵉ (mod q)

	// k = (x₁ - x₂) ⋅ u (mod p), r = x₂ + q ⋅ k
	var k saferith.Nat
	k.Mod(&xq, n.p)
	k.ModSub(&xp, &k, n.p)
	k.ModMul(&k, n.u, n.p)
	r := new(saferith.Nat).Mul(n.qNat, &k, -1)
	r.Add(r, &xq, -1)
	return r.Mod(r, n.Modulus).Big()
}

func (n *Modulus) hasFactorization() bool {
	return n.p != nil && n.q != nil && n.qNat != nil && n.u != nil
}

// ExpMod returns xᵉ (mod m) without secret-dependent branching on e. m must
// be odd; the RSA and ElGamal constructors reject even moduli before they get
// here.
func ExpMod(x, e, m *big.Int) *big.Int {
	mod := saferith.ModulusFromNat(natFromBig(m))
	xNat := new(saferith.Nat).Mod(natFromBig(x), mod)
	return new(saferith.Nat).Exp(xNat, natFromBig(e), mod).Big()
}

// ModInverse returns x⁻¹ (mod m), or ErrNotInvertible when gcd(x, m) ≠ 1.
func ModInverse(x, m *big.Int) (*big.Int, error) {
	if m.Sign() <= 0 {
		return nil, ErrNotInvertible
	}
	inv := new(big.Int).ModInverse(x, m)
	if inv == nil {
		return nil, ErrNotInvertible
	}
	return inv, nil
}

func natFromBig(x *big.Int) *saferith.Nat {
	return new(saferith.Nat).SetBig(x, x.BitLen())
}
