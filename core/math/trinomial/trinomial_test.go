package trinomial

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func randomElement(t *testing.T, l, k int) *LFSR {
	e, err := New(l, k)
	require.NoError(t, err)
	require.NoError(t, e.SetRandom(rand.Reader))
	return e
}

// toPoly reads t as a big.Int whose bit d is the coefficient of x^d.
func toPoly(t *testing.T, e *LFSR) *big.Int {
	p := new(big.Int)
	for d := 0; d < e.Degree(); d++ {
		on, err := e.Coefficient(d)
		require.NoError(t, err)
		if on {
			p.SetBit(p, d, 1)
		}
	}
	return p
}

// schoolbook multiplies two polynomials over GF(2) and reduces them modulo
// x^l + x^k + 1.
func schoolbook(a, b *big.Int, l, k int) *big.Int {
	prod := new(big.Int)
	for i := 0; i < b.BitLen(); i++ {
		if b.Bit(i) == 1 {
			prod.Xor(prod, new(big.Int).Lsh(a, uint(i)))
		}
	}
	for d := prod.BitLen() - 1; d >= l; d-- {
		if prod.Bit(d) == 0 {
			continue
		}
		prod.SetBit(prod, d, 0)
		prod.SetBit(prod, d-l+k, prod.Bit(d-l+k)^1)
		prod.SetBit(prod, d-l, prod.Bit(d-l)^1)
	}
	return prod
}

func TestNew_Degrees(t *testing.T) {
	_, err := New(7, 0)
	assert.ErrorIs(t, err, ErrInvalidDegree)
	_, err = New(7, 7)
	assert.ErrorIs(t, err, ErrInvalidDegree)
	_, err = New(5000, 3)
	assert.ErrorIs(t, err, ErrInvalidDegree)

	e, err := New(7, 1)
	require.NoError(t, err)
	assert.True(t, e.IsZero())
	assert.Equal(t, "0", e.String())
}

func TestIndexMapping(t *testing.T) {
	e, err := New(11, 4)
	require.NoError(t, err)
	for d := 0; d < 11; d++ {
		assert.Equal(t, d, e.DegreeAt(e.IndexOf(d)))
	}
	assert.Equal(t, 0, e.IndexOf(4))
	assert.Equal(t, 7, e.IndexOf(0))
}

func TestOneAndX(t *testing.T) {
	e, err := New(7, 1)
	require.NoError(t, err)
	assert.Equal(t, "1", e.One().String())
	assert.Equal(t, "x", e.X().String())
	assert.Equal(t, big.NewInt(1), toPoly(t, e.One()))
	assert.Equal(t, big.NewInt(2), toPoly(t, e.X()))
}

func TestClock_IsMultiplyByX(t *testing.T) {
	for _, g := range [][2]int{{7, 1}, {7, 3}, {63, 1}, {127, 63}, {521, 32}, {1279, 216}} {
		l, k := g[0], g[1]
		a := randomElement(t, l, k)
		want := schoolbook(toPoly(t, a), big.NewInt(2), l, k)

		b := a.Clone()
		b.Clock(1)
		assert.Equal(t, want, toPoly(t, b), "L=%d K=%d", l, k)

		c := a.Clone()
		c.Clock(100)
		d := a.Clone()
		for i := 0; i < 100; i++ {
			d.Clock(1)
		}
		assert.True(t, c.Equal(d), "L=%d K=%d", l, k)
	}
}

func TestXPowL_IsXPowKPlusOne(t *testing.T) {
	e, err := New(127, 1)
	require.NoError(t, err)

	xl, err := e.X().Power(big.NewInt(127))
	require.NoError(t, err)

	want := e.One()
	require.NoError(t, want.SetCoefficient(1, true))
	assert.True(t, want.Equal(xl))
	assert.Equal(t, "x + 1", xl.String())
}

func TestMultiply_MatchesSchoolbook(t *testing.T) {
	for _, g := range [][2]int{{7, 1}, {89, 38}, {521, 32}, {607, 105}} {
		l, k := g[0], g[1]
		a := randomElement(t, l, k)
		b := randomElement(t, l, k)
		want := schoolbook(toPoly(t, a), toPoly(t, b), l, k)

		ab := a.Clone()
		require.NoError(t, ab.Multiply(b))
		assert.Equal(t, want, toPoly(t, ab), "L=%d K=%d", l, k)

		ba := b.Clone()
		require.NoError(t, ba.Multiply(a))
		assert.True(t, ab.Equal(ba))
	}
}

func TestMultiply_Identity(t *testing.T) {
	a := randomElement(t, 89, 38)
	b := a.Clone()
	require.NoError(t, b.Multiply(a.One()))
	assert.True(t, a.Equal(b))

	zero, err := New(89, 38)
	require.NoError(t, err)
	require.NoError(t, b.Multiply(zero))
	assert.True(t, b.IsZero())
}

func TestSquare_MatchesPow2(t *testing.T) {
	a := randomElement(t, 127, 1)

	sq := a.Clone()
	sq.Square()

	mul := a.Clone()
	require.NoError(t, mul.Multiply(a))

	pow := a.Clone()
	require.NoError(t, pow.Pow(big.NewInt(2)))

	assert.True(t, sq.Equal(mul))
	assert.True(t, sq.Equal(pow))
}

func TestAdd_SelfInverse(t *testing.T) {
	a := randomElement(t, 521, 32)
	b := randomElement(t, 521, 32)
	c := a.Clone()
	require.NoError(t, c.Add(b))
	require.NoError(t, c.Subtract(b))
	assert.True(t, a.Equal(c))

	require.NoError(t, c.Add(c.Clone()))
	assert.True(t, c.IsZero())
}

func TestGroupMismatch(t *testing.T) {
	a := randomElement(t, 7, 1)
	b := randomElement(t, 7, 3)
	before := a.Clone()

	assert.ErrorIs(t, a.Add(b), ErrGroupMismatch)
	assert.ErrorIs(t, a.Multiply(b), ErrGroupMismatch)
	assert.ErrorIs(t, a.Set(b), ErrGroupMismatch)
	assert.False(t, a.Equal(b))
	assert.True(t, a.Equal(before))
}

func TestPow_MultiplicativeOrder(t *testing.T) {
	// x^7 + x + 1 is primitive, so x generates the 127-element group
	e, err := New(7, 1)
	require.NoError(t, err)

	x := e.X()
	require.NoError(t, x.Pow(big.NewInt(127)))
	assert.True(t, x.Equal(e.One()))

	zero, err := e.X().Power(big.NewInt(0))
	require.NoError(t, err)
	assert.True(t, zero.Equal(e.One()))

	_, err = e.X().Power(big.NewInt(-1))
	assert.ErrorIs(t, err, ErrNegativePower)
}

func TestPower_CacheSurvivesUntilMutation(t *testing.T) {
	a := randomElement(t, 127, 1)
	exp := new(big.Int).Lsh(big.NewInt(1), 100)
	exp.Add(exp, big.NewInt(12345))

	first, err := a.Power(exp)
	require.NoError(t, err)
	second, err := a.Power(exp)
	require.NoError(t, err)
	assert.True(t, first.Equal(second))

	// mutating a must drop the cached squares of the old value
	a.Clock(3)
	third, err := a.Power(exp)
	require.NoError(t, err)

	fresh := a.Clone()
	want, err := fresh.Power(exp)
	require.NoError(t, err)
	assert.True(t, want.Equal(third))
}

func TestPow_LawOfExponents(t *testing.T) {
	a := randomElement(t, 89, 38)
	m, n := big.NewInt(1000003), big.NewInt(77777)

	am, err := a.Power(m)
	require.NoError(t, err)
	an, err := a.Power(n)
	require.NoError(t, err)
	require.NoError(t, am.Multiply(an))

	amn, err := a.Power(new(big.Int).Add(m, n))
	require.NoError(t, err)
	assert.True(t, am.Equal(amn))
}

func TestConcurrentClones(t *testing.T) {
	base := randomElement(t, 607, 105)
	want := base.Clone()
	require.NoError(t, want.Pow(big.NewInt(65537)))

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		c := base.Clone()
		g.Go(func() error {
			if err := c.Pow(big.NewInt(65537)); err != nil {
				return err
			}
			if !c.Equal(want) {
				return assert.AnError
			}
			return nil
		})
	}
	assert.NoError(t, g.Wait())
}
