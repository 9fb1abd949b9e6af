package register

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomRegister(t *testing.T, size int) *Register {
	r, err := New(size)
	require.NoError(t, err)
	require.NoError(t, r.SetRandom(rand.Reader))
	return r
}

func TestNew_Bounds(t *testing.T) {
	_, err := New(1)
	assert.ErrorIs(t, err, ErrInvalidSize)
	_, err = New(4097)
	assert.ErrorIs(t, err, ErrInvalidSize)

	r, err := New(2)
	assert.NoError(t, err)
	assert.True(t, r.IsZero())
	assert.Equal(t, -1, r.HighestSetBit())
	assert.Equal(t, -1, r.LowestSetBit())
}

func TestBitOps(t *testing.T) {
	r, err := New(130)
	require.NoError(t, err)

	assert.NoError(t, r.SetBit(0))
	assert.NoError(t, r.SetBit(64))
	assert.NoError(t, r.SetBit(129))
	assert.ErrorIs(t, r.SetBit(130), ErrOutOfRange)
	assert.ErrorIs(t, r.SetBit(-1), ErrOutOfRange)

	assert.Equal(t, 3, r.CountSetBits())
	assert.Equal(t, 129, r.HighestSetBit())
	assert.Equal(t, 0, r.LowestSetBit())

	assert.NoError(t, r.FlipBit(0))
	on, err := r.TestBit(0)
	assert.NoError(t, err)
	assert.False(t, on)
	assert.Equal(t, 64, r.LowestSetBit())

	assert.NoError(t, r.ClearBit(129))
	assert.Equal(t, 64, r.HighestSetBit())
}

func TestLogicOps_SizeMismatch(t *testing.T) {
	a := randomRegister(t, 100)
	b := randomRegister(t, 101)
	before := a.Clone()

	assert.ErrorIs(t, a.And(b), ErrSizeMismatch)
	assert.ErrorIs(t, a.Or(b), ErrSizeMismatch)
	assert.ErrorIs(t, a.Xor(b), ErrSizeMismatch)
	assert.ErrorIs(t, a.AndNot(b), ErrSizeMismatch)
	assert.True(t, a.Equal(before), "failed operation must not mutate")
}

func TestXorTwice(t *testing.T) {
	for _, size := range []int{2, 63, 64, 65, 200, 4096} {
		x := randomRegister(t, size)
		y := randomRegister(t, size)
		z := x.Clone()
		require.NoError(t, z.Xor(y))
		require.NoError(t, z.Xor(y))
		assert.True(t, x.Equal(z), "size %d", size)
	}
}

func TestNot_KeepsPadding(t *testing.T) {
	r, err := New(70)
	require.NoError(t, err)
	r.Not()
	assert.Equal(t, 70, r.CountSetBits())
	assert.Equal(t, 69, r.HighestSetBit())

	b := r.Bytes()
	assert.Len(t, b, 9)
	assert.Equal(t, byte(0x3f), b[8])
}

func TestAndNot(t *testing.T) {
	a := randomRegister(t, 90)
	b := a.Clone()
	require.NoError(t, a.AndNot(b))
	assert.True(t, a.IsZero())
}

func TestShift_RoundTrip(t *testing.T) {
	for _, size := range []int{2, 17, 64, 65, 191, 1024} {
		for _, n := range []int{0, 1, 7, 63, 64, 65, size - 1} {
			if n < 0 || n >= size {
				continue
			}
			orig := randomRegister(t, size)
			r := orig.Clone()
			r.ShiftLeft(n)
			r.ShiftRight(n)

			// only the low size-n bits survive the round trip
			want := orig.Clone()
			want.ShiftLeft(n)
			want.ShiftRight(n)
			for i := 0; i < size-n; i++ {
				got, _ := r.TestBit(i)
				exp, _ := orig.TestBit(i)
				require.Equal(t, exp, got, "size %d shift %d bit %d", size, n, i)
			}
			assert.True(t, want.Equal(r))
			assert.LessOrEqual(t, r.HighestSetBit(), size-n-1)
		}
	}
}

func TestShift_NegativeAndOverflow(t *testing.T) {
	r := randomRegister(t, 100)
	a := r.Clone()
	b := r.Clone()
	a.ShiftLeft(-5)
	b.ShiftRight(5)
	assert.True(t, a.Equal(b))

	r.ShiftLeft(100)
	assert.True(t, r.IsZero())

	s, err := New(8)
	require.NoError(t, err)
	require.NoError(t, s.SetBit(7))
	s.ShiftLeft(1)
	assert.True(t, s.IsZero(), "bits shifted past the top are dropped")
}

func TestRotate_RoundTrip(t *testing.T) {
	for _, size := range []int{2, 5, 64, 100, 129, 4096} {
		orig := randomRegister(t, size)
		for _, n := range []int{0, 1, 3, 64, size - 1, size, size + 3, -2} {
			r := orig.Clone()
			r.RotateLeft(n)
			assert.Equal(t, orig.CountSetBits(), r.CountSetBits())
			r.RotateRight(n)
			assert.True(t, orig.Equal(r), "size %d rotate %d", size, n)
		}
	}
}

func TestRotateLeft_MovesTopBitToBottom(t *testing.T) {
	r, err := New(10)
	require.NoError(t, err)
	require.NoError(t, r.SetBit(9))
	r.RotateLeft(1)
	on, _ := r.TestBit(0)
	assert.True(t, on)
	assert.Equal(t, 1, r.CountSetBits())
}

func TestGetSetBits(t *testing.T) {
	r, err := New(200)
	require.NoError(t, err)

	require.NoError(t, r.SetBits(60, 10, 0x3ff))
	assert.Equal(t, 10, r.CountSetBits())
	assert.Equal(t, 60, r.LowestSetBit())
	assert.Equal(t, 69, r.HighestSetBit())

	v, err := r.GetBits(58, 16)
	assert.NoError(t, err)
	assert.Equal(t, uint64(0x0ffc), v)

	require.NoError(t, r.SetBits(100, 64, 0xdeadbeefcafebabe))
	v, err = r.GetBits(100, 64)
	assert.NoError(t, err)
	assert.Equal(t, uint64(0xdeadbeefcafebabe), v)

	require.NoError(t, r.SetBits(60, 10, 0))
	v, err = r.GetBits(60, 10)
	assert.NoError(t, err)
	assert.Zero(t, v)

	_, err = r.GetBits(190, 11)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = r.GetBits(0, 65)
	assert.ErrorIs(t, err, ErrInvalidCount)
	assert.ErrorIs(t, r.SetBits(0, 0, 1), ErrInvalidCount)
}

func TestBytes_LittleEndian(t *testing.T) {
	r, err := New(20)
	require.NoError(t, err)
	require.NoError(t, r.SetBytes([]byte{0x01, 0x80, 0xff}))

	// the top nibble of the last byte falls outside the register
	assert.Equal(t, []byte{0x01, 0x80, 0x0f}, r.Bytes())
	assert.Equal(t, 0, r.LowestSetBit())
	assert.Equal(t, 19, r.HighestSetBit())

	assert.ErrorIs(t, r.SetBytes(make([]byte, 4)), ErrInputTooLong)

	orig := randomRegister(t, 333)
	back, err := New(333)
	require.NoError(t, err)
	require.NoError(t, back.SetBytes(orig.Bytes()))
	assert.True(t, orig.Equal(back))
}

func TestString(t *testing.T) {
	r, err := New(5)
	require.NoError(t, err)
	require.NoError(t, r.SetBit(0))
	require.NoError(t, r.SetBit(3))
	assert.Equal(t, "01001", r.String())
}
