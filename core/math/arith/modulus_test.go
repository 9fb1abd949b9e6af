package arith

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModulus_Textbook(t *testing.T) {
	p, q := big.NewInt(61), big.NewInt(53)
	n, err := ModulusFromFactors(p, q, big.NewInt(38))
	require.NoError(t, err)
	assert.Equal(t, int64(3233), n.N().Int64())

	c := n.Exp(big.NewInt(65), big.NewInt(17))
	assert.Equal(t, int64(2790), c.Int64())

	m := n.Exp(c, big.NewInt(2753))
	assert.Equal(t, int64(65), m.Int64())
}

func TestModulus_SwappedFactors(t *testing.T) {
	// 38 is 53⁻¹ mod 61; passing the factors the other way round must still work
	n, err := ModulusFromFactors(big.NewInt(53), big.NewInt(61), big.NewInt(38))
	require.NoError(t, err)
	assert.Equal(t, int64(65), n.Exp(big.NewInt(2790), big.NewInt(2753)).Int64())

	// a wrong u is recomputed
	n, err = ModulusFromFactors(big.NewInt(61), big.NewInt(53), big.NewInt(5))
	require.NoError(t, err)
	assert.Equal(t, int64(65), n.Exp(big.NewInt(2790), big.NewInt(2753)).Int64())

	n, err = ModulusFromFactors(big.NewInt(61), big.NewInt(53), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2790), n.Exp(big.NewInt(65), big.NewInt(17)).Int64())
}

func TestModulus_CommonFactor(t *testing.T) {
	_, err := ModulusFromFactors(big.NewInt(15), big.NewInt(21), nil)
	assert.ErrorIs(t, err, ErrNotInvertible)
}

func TestModulus_CRTMatchesDirect(t *testing.T) {
	p, err := rand.Prime(rand.Reader, 256)
	require.NoError(t, err)
	q, err := rand.Prime(rand.Reader, 256)
	require.NoError(t, err)
	if p.Cmp(q) == 0 {
		t.Skip("identical primes")
	}

	crt, err := ModulusFromFactors(p, q, nil)
	require.NoError(t, err)
	plain := ModulusFromN(new(big.Int).Mul(p, q))

	for i := 0; i < 16; i++ {
		x, err := rand.Int(rand.Reader, crt.N())
		require.NoError(t, err)
		e, err := rand.Int(rand.Reader, crt.N())
		require.NoError(t, err)
		want := new(big.Int).Exp(x, e, crt.N())
		assert.Equal(t, want, crt.Exp(x, e))
		assert.Equal(t, want, plain.Exp(x, e))
	}

	// x ≡ 0 (mod p) with an exponent that is a multiple of p-1
	pm1 := new(big.Int).Sub(p, big.NewInt(1))
	assert.Equal(t, new(big.Int).Exp(p, pm1, crt.N()), crt.Exp(p, pm1))
}

func TestExpMod(t *testing.T) {
	assert.Equal(t, int64(2790), ExpMod(big.NewInt(65), big.NewInt(17), big.NewInt(3233)).Int64())
	assert.Equal(t, int64(1), ExpMod(big.NewInt(5), big.NewInt(0), big.NewInt(23)).Int64())
}

func TestModInverse(t *testing.T) {
	inv, err := ModInverse(big.NewInt(53), big.NewInt(61))
	require.NoError(t, err)
	assert.Equal(t, int64(38), inv.Int64())

	_, err = ModInverse(big.NewInt(6), big.NewInt(9))
	assert.ErrorIs(t, err, ErrNotInvertible)
}

func TestLeftPadAndZeroize(t *testing.T) {
	x := big.NewInt(0x0102)
	assert.Equal(t, []byte{0, 0, 1, 2}, LeftPad(x, 4))
	assert.Nil(t, LeftPad(x, 1))
	assert.Equal(t, 2, ByteLen(x))

	y := new(big.Int).Lsh(big.NewInt(1), 300)
	words := y.Bits()
	ZeroizeInt(y)
	assert.Zero(t, y.Sign())
	for _, w := range words {
		assert.Zero(t, w)
	}

	b := []byte{1, 2, 3}
	ZeroizeBytes(b)
	assert.Equal(t, []byte{0, 0, 0}, b)
}
