package hash

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSum_KnownAnswers(t *testing.T) {
	cases := []struct {
		alg  Algorithm
		msg  string
		want string
	}{
		{MD5, "", "d41d8cd98f00b204e9800998ecf8427e"},
		{SHA1, "abc", "a9993e364706816aba3e25717850c26c9cd0d89d"},
		{RIPEMD160, "", "9c1185a5c5e9fc54612808977ee8f548b2258d31"},
		{SHA256, "abc", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{SHA3_256, "", "a7ffc6f8bf1ed76651c14756a061d662f580ff4de43b49fa82d80a4b80f8434a"},
	}
	for _, c := range cases {
		t.Run(c.alg.String(), func(t *testing.T) {
			got, err := c.alg.Sum([]byte(c.msg))
			require.NoError(t, err)
			assert.Equal(t, c.want, hex.EncodeToString(got))
			assert.Len(t, got, c.alg.Size())
		})
	}
}

func TestAlgorithmID_DigestInfoShape(t *testing.T) {
	for _, a := range Algorithms() {
		id, err := a.AlgorithmID()
		require.NoError(t, err)
		// outer SEQUENCE length covers the prefix and the digest
		assert.Equal(t, byte(0x30), id[0], a.String())
		assert.Equal(t, len(id)+a.Size(), int(id[1])+2, a.String())
		assert.Equal(t, byte(0x04), id[len(id)-2], a.String())
		assert.Equal(t, a.Size(), int(id[len(id)-1]), a.String())
	}

	id, err := SHA256.AlgorithmID()
	require.NoError(t, err)
	id[0] = 0
	again, err := SHA256.AlgorithmID()
	require.NoError(t, err)
	assert.Equal(t, byte(0x30), again[0], "AlgorithmID returns a copy")

	_, err = Algorithm(99).AlgorithmID()
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestMD2_NeedsRegistration(t *testing.T) {
	assert.False(t, MD2.Available())
	_, err := MD2.Sum([]byte("x"))
	assert.ErrorIs(t, err, ErrDigestUnavailable)

	assert.ErrorIs(t, Register(MD2, sha256.New), ErrDigestUnavailable)
	assert.ErrorIs(t, Register(Algorithm(99), md5.New), ErrUnknownAlgorithm)

	// any 16 byte digest stands in for MD2 here
	require.NoError(t, Register(MD2, md5.New))
	defer func() {
		mu.Lock()
		table[MD2].newFn = nil
		mu.Unlock()
	}()
	assert.True(t, MD2.Available())
	got, err := MD2.Sum(nil)
	require.NoError(t, err)
	assert.Len(t, got, 16)
}

func TestParse(t *testing.T) {
	for _, a := range Algorithms() {
		got, err := Parse(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}
	got, err := Parse("sha256")
	require.NoError(t, err)
	assert.Equal(t, SHA256, got)

	got, err = Parse("ripemd160")
	require.NoError(t, err)
	assert.Equal(t, RIPEMD160, got)

	_, err = Parse("whirlpool")
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestSKI(t *testing.T) {
	a := SKI([]byte("public"))
	assert.Len(t, a, 32)
	assert.Equal(t, a, SKI([]byte("public")))
	assert.NotEqual(t, a, SKI([]byte("Public")))
}
