package vault

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryVault(t *testing.T) {
	v := InmemoryVaultFactory{}.NewVault(nil)

	key := []byte{1, 2, 3}
	require.NoError(t, v.Import("ski", key))

	// the vault keeps its own copy
	key[0] = 9
	got, err := v.Get("ski")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)

	got[1] = 9
	again, err := v.Get("ski")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, again)

	require.NoError(t, v.Import("ski", []byte{4}))
	got, err = v.Get("ski")
	require.NoError(t, err)
	assert.Equal(t, []byte{4}, got)

	require.NoError(t, v.Delete("ski"))
	_, err = v.Get("ski")
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.NoError(t, v.Delete("ski"))

	assert.ErrorIs(t, v.Import("", key), ErrEmptySKI)
}

func TestInMemoryVault_DeleteWipes(t *testing.T) {
	v := NewInMemoryVault()
	require.NoError(t, v.Import("ski", []byte{1, 2, 3}))

	stored := v.keys["ski"]
	require.NoError(t, v.Delete("ski"))
	assert.Equal(t, []byte{0, 0, 0}, stored)
}
