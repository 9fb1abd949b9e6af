package pkcs1

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sha1ID = []byte{0x30, 0x21, 0x30, 0x09, 0x06, 0x05, 0x2b, 0x0e, 0x03, 0x02, 0x1a, 0x05, 0x00, 0x04, 0x14}
	digest = bytes.Repeat([]byte{0xab}, 20)
)

func TestBuildFrame_Layout(t *testing.T) {
	frame, err := BuildFrame(digest, sha1ID, 64)
	require.NoError(t, err)
	require.Len(t, frame, 64)

	padLen := 64 - 3 - len(sha1ID) - len(digest)
	assert.Equal(t, byte(0x00), frame[0])
	assert.Equal(t, byte(0x01), frame[1])
	assert.Equal(t, bytes.Repeat([]byte{0xff}, padLen), frame[2:2+padLen])
	assert.Equal(t, byte(0x00), frame[2+padLen])
	assert.Equal(t, sha1ID, frame[3+padLen:3+padLen+len(sha1ID)])
	assert.Equal(t, digest, frame[64-len(digest):])
}

func TestBuildFrame_Deterministic(t *testing.T) {
	a, err := BuildFrame(digest, sha1ID, 128)
	require.NoError(t, err)
	b, err := BuildFrame(digest, sha1ID, 128)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestBuildFrame_TooShort(t *testing.T) {
	exact := 3 + len(sha1ID) + len(digest)
	frame, err := BuildFrame(digest, sha1ID, exact)
	require.NoError(t, err)
	assert.Equal(t, byte(0x00), frame[2], "separator directly after block type")

	_, err = BuildFrame(digest, sha1ID, exact-1)
	assert.ErrorIs(t, err, ErrPaddingLength)
}

func TestParseFrame(t *testing.T) {
	frame, err := BuildFrame(digest, sha1ID, 128)
	require.NoError(t, err)

	got, err := ParseFrame(frame, sha1ID, len(digest))
	require.NoError(t, err)
	assert.Equal(t, digest, got)

	for _, i := range []int{0, 1, 5, 128 - len(digest) - len(sha1ID) - 1, 128 - len(digest) - 2} {
		bad := append([]byte(nil), frame...)
		bad[i] ^= 0x01
		_, err := ParseFrame(bad, sha1ID, len(digest))
		assert.ErrorIs(t, err, ErrMalformed, "byte %d", i)
	}

	short, err := BuildFrame(digest, sha1ID, 3+len(sha1ID)+len(digest)+MinPadding-1)
	require.NoError(t, err)
	_, err = ParseFrame(short, sha1ID, len(digest))
	assert.ErrorIs(t, err, ErrMalformed)
}
