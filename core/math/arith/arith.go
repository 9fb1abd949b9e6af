// Package arith holds the big-integer helpers shared by the RSA and ElGamal
// code: CRT exponentiation, fixed-width encoding and wiping of secrets.
package arith

import (
	"math/big"
	"runtime"
)

// ByteLen returns the number of bytes needed to hold x.
func ByteLen(x *big.Int) int {
	return (x.BitLen() + 7) / 8
}

// LeftPad returns x as a big-endian byte string of exactly size bytes. It
// returns nil when x does not fit.
func LeftPad(x *big.Int, size int) []byte {
	if ByteLen(x) > size || x.Sign() < 0 {
		return nil
	}
	return x.FillBytes(make([]byte, size))
}

// ZeroizeBytes overwrites b with zeros.
func ZeroizeBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}

// ZeroizeInt overwrites the words backing x and sets it to zero. It is a no-op
// for nil.
func ZeroizeInt(x *big.Int) {
	if x == nil {
		return
	}
	words := x.Bits()
	for i := range words {
		words[i] = 0
	}
	runtime.KeepAlive(words)
	x.SetInt64(0)
}
