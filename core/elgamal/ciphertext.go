package elgamal

import (
	"io"
	"math/big"

	"github.com/mr-shifu/pkc-lib/core/math/arith"
)

type Ciphertext struct {
	// A = gᵏ mod p
	A *big.Int
	// B = yᵏ⋅m mod p
	B *big.Int

	// byte length of each half when marshalled; 0 means minimal.
	width int
}

// NewCiphertext returns an empty ciphertext whose halves marshal to the byte
// length of p.
func NewCiphertext(params *Params) *Ciphertext {
	return &Ciphertext{
		A:     new(big.Int),
		B:     new(big.Int),
		width: arith.ByteLen(params.p),
	}
}

// Valid returns true if both halves lie in [1, p-1].
func (c *Ciphertext) Valid(params *Params) bool {
	if c == nil || c.A == nil || c.B == nil || params == nil {
		return false
	}
	for _, v := range []*big.Int{c.A, c.B} {
		if v.Sign() <= 0 || v.Cmp(params.p) >= 0 {
			return false
		}
	}
	return true
}

func (c *Ciphertext) halfWidth() int {
	w := c.width
	for _, v := range []*big.Int{c.A, c.B} {
		if n := arith.ByteLen(v); n > w {
			w = n
		}
	}
	return w
}

// MarshalBinary writes A then B, each left-padded to the same width.
func (c *Ciphertext) MarshalBinary() ([]byte, error) {
	if c.A == nil || c.B == nil {
		return nil, ErrInvalidInput
	}
	w := c.halfWidth()
	buf := make([]byte, 2*w)
	c.A.FillBytes(buf[:w])
	c.B.FillBytes(buf[w:])
	return buf, nil
}

// UnmarshalBinary splits data into two halves of equal length.
func (c *Ciphertext) UnmarshalBinary(data []byte) error {
	if len(data) == 0 || len(data)%2 != 0 {
		return io.ErrShortBuffer
	}
	w := len(data) / 2
	c.A = new(big.Int).SetBytes(data[:w])
	c.B = new(big.Int).SetBytes(data[w:])
	c.width = w
	return nil
}

// WriteTo writes the MarshalBinary form of c to w.
func (c *Ciphertext) WriteTo(w io.Writer) (int64, error) {
	buf, err := c.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(buf)
	return int64(n), err
}
