package main

import (
	"bytes"
	"context"
	"crypto/rand"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mr-shifu/pkc-lib/core/elgamal"
	sw_rsa "github.com/mr-shifu/pkc-lib/pkg/cryptosuite/sw/rsa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEnv() (*env, *bytes.Buffer) {
	out := new(bytes.Buffer)
	return &env{
		stdout: out,
		stderr: new(bytes.Buffer),
		now:    func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) },
	}, out
}

func runCLI(t *testing.T, args ...string) (string, error) {
	e, out := newEnv()
	err := run(context.Background(), e, args)
	return out.String(), err
}

func TestRun_Usage(t *testing.T) {
	_, err := runCLI(t)
	assert.ErrorIs(t, err, errUsage)

	_, err = runCLI(t, "frobnicate")
	assert.ErrorIs(t, err, errUsage)

	out, err := runCLI(t, "help")
	require.NoError(t, err)
	for _, c := range commands {
		assert.Contains(t, out, c.name)
	}

	_, err = runCLI(t, "rsa-keygen", "-bits", "x")
	assert.ErrorIs(t, err, errUsage)
	_, err = runCLI(t, "rsa-keygen", "extra")
	assert.ErrorIs(t, err, errUsage)
	_, err = runCLI(t, "elgamal-keygen", "-mode", "lucky")
	assert.ErrorIs(t, err, errUsage)
	_, err = runCLI(t, "sign", "-message", "m")
	assert.ErrorIs(t, err, errUsage)
}

func TestRSA_KeygenSignVerify(t *testing.T) {
	dir := t.TempDir()
	keyPath := filepath.Join(dir, "key.json")
	pubPath := filepath.Join(dir, "pub.json")
	sigPath := filepath.Join(dir, "sig.txt")

	_, err := runCLI(t, "rsa-keygen", "-bits", "512", "-out", keyPath, "-public-out", pubPath)
	require.NoError(t, err)

	kf, err := readKeyFile(keyPath)
	require.NoError(t, err)
	assert.Equal(t, algRSA, kf.Algorithm)
	assert.Equal(t, 512, kf.Bits)
	assert.NotEmpty(t, kf.Key)
	assert.Equal(t, "2024-01-02T03:04:05Z", kf.CreatedAt)

	pf, err := readKeyFile(pubPath)
	require.NoError(t, err)
	assert.Empty(t, pf.Key)
	assert.Equal(t, kf.SKI, pf.SKI)
	assert.Equal(t, kf.PublicKey, pf.PublicKey)

	_, err = runCLI(t, "sign", "-key", keyPath, "-message", "hello", "-out", sigPath)
	require.NoError(t, err)

	out, err := runCLI(t, "verify", "-key", pubPath, "-message", "hello", "-sig", "@"+sigPath)
	require.NoError(t, err)
	assert.Equal(t, "valid\n", out)

	out, err = runCLI(t, "verify", "-key", pubPath, "-message", "hullo", "-sig", "@"+sigPath)
	assert.ErrorIs(t, err, errInvalidSignature)
	assert.Equal(t, "invalid\n", out)

	// the digest is part of the frame
	_, err = runCLI(t, "verify", "-key", pubPath, "-alg", "sha1", "-message", "hello", "-sig", "@"+sigPath)
	assert.ErrorIs(t, err, errInvalidSignature)

	_, err = runCLI(t, "sign", "-key", pubPath, "-message", "hello")
	assert.ErrorIs(t, err, sw_rsa.ErrPublicKey)
}

func TestRSA_SignFromFile(t *testing.T) {
	dir := t.TempDir()
	keyPath := filepath.Join(dir, "key.json")
	msgPath := filepath.Join(dir, "msg.bin")
	require.NoError(t, os.WriteFile(msgPath, []byte{0, 1, 2, 0xff}, 0o600))

	_, err := runCLI(t, "rsa-keygen", "-bits", "512", "-out", keyPath)
	require.NoError(t, err)

	sig, err := runCLI(t, "sign", "-key", keyPath, "-alg", "RIPEMD-160", "-in", msgPath)
	require.NoError(t, err)

	out, err := runCLI(t, "verify", "-key", keyPath, "-alg", "ripemd160", "-in", msgPath, "-sig", strings.TrimSpace(sig))
	require.NoError(t, err)
	assert.Equal(t, "valid\n", out)
}

func TestRSA_SeededKeygen(t *testing.T) {
	a, err := runCLI(t, "rsa-keygen", "-bits", "512", "-seed", "fixed")
	require.NoError(t, err)
	b, err := runCLI(t, "rsa-keygen", "-bits", "512", "-seed", "fixed")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := runCLI(t, "rsa-keygen", "-bits", "512", "-seed", "other")
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func writeTestTable(t *testing.T, dir string, bits int) string {
	p, err := rand.Prime(rand.Reader, bits)
	require.NoError(t, err)
	pp, err := elgamal.NewParams(p, big.NewInt(2))
	require.NoError(t, err)
	data, err := encodeTable(elgamal.ParamTable{bits: pp})
	require.NoError(t, err)
	path := filepath.Join(dir, "params.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestElGamal_KeygenSignVerify(t *testing.T) {
	dir := t.TempDir()
	tablePath := writeTestTable(t, dir, 512)
	keyPath := filepath.Join(dir, "key.json")
	pubPath := filepath.Join(dir, "pub.json")

	_, err := runCLI(t, "elgamal-keygen", "-bits", "512", "-table", tablePath, "-out", keyPath, "-public-out", pubPath)
	require.NoError(t, err)

	kf, err := readKeyFile(keyPath)
	require.NoError(t, err)
	assert.Equal(t, algElGamal, kf.Algorithm)
	assert.Equal(t, 512, kf.Bits)

	sig, err := runCLI(t, "sign", "-key", keyPath, "-alg", "SHA3-256", "-message", "hello")
	require.NoError(t, err)

	out, err := runCLI(t, "verify", "-key", pubPath, "-alg", "SHA3-256", "-message", "hello", "-sig", strings.TrimSpace(sig))
	require.NoError(t, err)
	assert.Equal(t, "valid\n", out)

	_, err = runCLI(t, "verify", "-key", pubPath, "-alg", "SHA3-256", "-message", "bye", "-sig", strings.TrimSpace(sig))
	assert.ErrorIs(t, err, errInvalidSignature)
}

func TestElGamal_ParamsFromTable(t *testing.T) {
	dir := t.TempDir()
	tablePath := writeTestTable(t, dir, 512)
	want, err := loadTable(tablePath)
	require.NoError(t, err)

	out, err := runCLI(t, "elgamal-params", "-bits", "512", "-table", tablePath)
	require.NoError(t, err)
	got, err := decodeTable([]byte(out))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, want[512].Equal(got[512]))
}

func TestElGamal_ParamsGenerate(t *testing.T) {
	if testing.Short() {
		t.Skip("group generation")
	}
	dir := t.TempDir()
	tablePath := writeTestTable(t, dir, 512)

	out, err := runCLI(t, "elgamal-params", "-bits", "256", "-mode", "germain", "-seed", "group", "-table", tablePath)
	require.NoError(t, err)
	table, err := decodeTable([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, []int{256, 512}, tableSizes(table))

	q := new(big.Int).Rsh(table[256].P(), 1)
	assert.True(t, q.ProbablyPrime(20))

	again, err := runCLI(t, "elgamal-params", "-bits", "256", "-mode", "germain", "-seed", "group", "-table", tablePath)
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestElGamal_Timeout(t *testing.T) {
	_, err := runCLI(t, "elgamal-keygen", "-bits", "4096", "-timeout", "1ns")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDecodeTable_Rejects(t *testing.T) {
	_, err := decodeTable([]byte("params: [1, 2"))
	assert.ErrorIs(t, err, errBadTable)

	_, err = decodeTable([]byte("params:\n  300:\n    p: zz\n    g: \"02\"\n"))
	assert.ErrorIs(t, err, errBadTable)

	// keyed by the wrong size
	p, err := rand.Prime(rand.Reader, 256)
	require.NoError(t, err)
	pp, err := elgamal.NewParams(p, big.NewInt(2))
	require.NoError(t, err)
	data, err := encodeTable(elgamal.ParamTable{300: pp})
	require.NoError(t, err)
	_, err = decodeTable(data)
	assert.ErrorIs(t, err, errBadTable)
}
