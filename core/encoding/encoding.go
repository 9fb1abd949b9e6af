// Package encoding implements the raw key format: a sequence of non-negative
// integers, each written as a big-endian uint16 bit length followed by the
// big-endian magnitude without leading zeros.
package encoding

import (
	"encoding/binary"
	"math/big"

	"github.com/pkg/errors"
)

// MaxBits is the largest bit length a uint16 prefix can describe.
const MaxBits = 1<<16 - 1

var (
	ErrNegative   = errors.New("encoding: negative integer")
	ErrTooLarge   = errors.New("encoding: integer exceeds 65535 bits")
	ErrTruncated  = errors.New("encoding: truncated input")
	ErrTrailing   = errors.New("encoding: trailing bytes")
	ErrNotMinimal = errors.New("encoding: bit length does not match magnitude")
)

// AppendInt appends the encoding of x to buf.
func AppendInt(buf []byte, x *big.Int) ([]byte, error) {
	if x.Sign() < 0 {
		return nil, ErrNegative
	}
	bits := x.BitLen()
	if bits > MaxBits {
		return nil, ErrTooLarge
	}
	buf = binary.BigEndian.AppendUint16(buf, uint16(bits))
	return append(buf, x.Bytes()...), nil
}

// ReadInt decodes one integer from the front of data and returns it with the
// remaining bytes.
func ReadInt(data []byte) (*big.Int, []byte, error) {
	if len(data) < 2 {
		return nil, nil, ErrTruncated
	}
	bits := int(binary.BigEndian.Uint16(data))
	n := (bits + 7) / 8
	data = data[2:]
	if len(data) < n {
		return nil, nil, ErrTruncated
	}
	x := new(big.Int).SetBytes(data[:n])
	if x.BitLen() != bits {
		return nil, nil, ErrNotMinimal
	}
	return x, data[n:], nil
}

// MarshalInts encodes xs in order.
func MarshalInts(xs ...*big.Int) ([]byte, error) {
	var buf []byte
	for i, x := range xs {
		if x == nil {
			return nil, errors.Errorf("encoding: integer %d is missing", i)
		}
		var err error
		if buf, err = AppendInt(buf, x); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// UnmarshalInts decodes exactly count integers from data.
func UnmarshalInts(data []byte, count int) ([]*big.Int, error) {
	out := make([]*big.Int, 0, count)
	for i := 0; i < count; i++ {
		x, rest, err := ReadInt(data)
		if err != nil {
			return nil, errors.WithMessagef(err, "encoding: integer %d", i)
		}
		out = append(out, x)
		data = rest
	}
	if len(data) != 0 {
		return nil, ErrTrailing
	}
	return out, nil
}
