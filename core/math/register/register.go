// Package register provides a fixed-width mutable bit vector.
package register

import (
	"fmt"
	"io"
	"math/bits"
	"strings"

	"github.com/pkg/errors"
)

const (
	// MinSize is the smallest register width, in bits.
	MinSize = 2
	// MaxSize is the largest register width, in bits.
	MaxSize = 4096

	wordBits = 64
)

var (
	ErrInvalidSize  = errors.New("register: invalid size")
	ErrSizeMismatch = errors.New("register: operand size mismatch")
	ErrOutOfRange   = errors.New("register: bit index out of range")
	ErrInvalidCount = errors.New("register: invalid bit count")
	ErrInputTooLong = errors.New("register: input longer than register")
)

// Register is a fixed-size mutable bit vector.
//
// Bit i lives in word i/64 at position i%64. Bits at index Size() and above
// are kept at zero after every mutating operation.
//
// A Register is a plain value with a single owner; it is not safe for
// concurrent mutation. Use Clone to hand an independent copy to another
// goroutine.
type Register struct {
	size  int
	words []uint64
}

// New returns an all-zero register of the given width.
func New(size int) (*Register, error) {
	if size < MinSize || size > MaxSize {
		return nil, ErrInvalidSize
	}
	return &Register{
		size:  size,
		words: make([]uint64, (size+wordBits-1)/wordBits),
	}, nil
}

// Size returns the register width in bits.
func (r *Register) Size() int {
	return r.size
}

// Clone returns an independent copy of r.
func (r *Register) Clone() *Register {
	words := make([]uint64, len(r.words))
	copy(words, r.words)
	return &Register{size: r.size, words: words}
}

// Set copies the value of src into r.
func (r *Register) Set(src *Register) error {
	if err := r.sameSize(src); err != nil {
		return err
	}
	copy(r.words, src.words)
	return nil
}

// Equal reports whether r and other have the same width and value.
func (r *Register) Equal(other *Register) bool {
	if other == nil || r.size != other.size {
		return false
	}
	for i, w := range r.words {
		if w != other.words[i] {
			return false
		}
	}
	return true
}

// IsZero reports whether no bit is set.
func (r *Register) IsZero() bool {
	for _, w := range r.words {
		if w != 0 {
			return false
		}
	}
	return true
}

// Reset clears every bit.
func (r *Register) Reset() {
	for i := range r.words {
		r.words[i] = 0
	}
}

func (r *Register) sameSize(other *Register) error {
	if other == nil || other.size != r.size {
		return ErrSizeMismatch
	}
	return nil
}

// pad clears the unused high bits of the top word.
func (r *Register) pad() {
	if rem := r.size % wordBits; rem != 0 {
		r.words[len(r.words)-1] &= (uint64(1) << rem) - 1
	}
}

// And sets r = r & other.
func (r *Register) And(other *Register) error {
	if err := r.sameSize(other); err != nil {
		return err
	}
	for i := range r.words {
		r.words[i] &= other.words[i]
	}
	return nil
}

// Or sets r = r | other.
func (r *Register) Or(other *Register) error {
	if err := r.sameSize(other); err != nil {
		return err
	}
	for i := range r.words {
		r.words[i] |= other.words[i]
	}
	return nil
}

// Xor sets r = r ^ other.
func (r *Register) Xor(other *Register) error {
	if err := r.sameSize(other); err != nil {
		return err
	}
	for i := range r.words {
		r.words[i] ^= other.words[i]
	}
	return nil
}

// AndNot sets r = r &^ other.
func (r *Register) AndNot(other *Register) error {
	if err := r.sameSize(other); err != nil {
		return err
	}
	for i := range r.words {
		r.words[i] &^= other.words[i]
	}
	return nil
}

// Not inverts every bit of r.
func (r *Register) Not() {
	for i := range r.words {
		r.words[i] = ^r.words[i]
	}
	r.pad()
}

// ShiftLeft moves every bit n positions towards the high end. Bits pushed
// past the top are lost and zeros enter at the bottom. A negative n shifts
// right instead.
func (r *Register) ShiftLeft(n int) {
	if n < 0 {
		r.ShiftRight(-n)
		return
	}
	if n == 0 {
		return
	}
	if n >= r.size {
		r.Reset()
		return
	}
	wordShift, bitShift := n/wordBits, uint(n%wordBits)
	for i := len(r.words) - 1; i >= 0; i-- {
		src := i - wordShift
		var v uint64
		if src >= 0 {
			v = r.words[src] << bitShift
			if bitShift != 0 && src > 0 {
				v |= r.words[src-1] >> (wordBits - bitShift)
			}
		}
		r.words[i] = v
	}
	r.pad()
}

// ShiftRight moves every bit n positions towards the low end. A negative n
// shifts left instead.
func (r *Register) ShiftRight(n int) {
	if n < 0 {
		r.ShiftLeft(-n)
		return
	}
	if n == 0 {
		return
	}
	if n >= r.size {
		r.Reset()
		return
	}
	wordShift, bitShift := n/wordBits, uint(n%wordBits)
	for i := range r.words {
		src := i + wordShift
		var v uint64
		if src < len(r.words) {
			v = r.words[src] >> bitShift
			if bitShift != 0 && src+1 < len(r.words) {
				v |= r.words[src+1] << (wordBits - bitShift)
			}
		}
		r.words[i] = v
	}
	r.pad()
}

// RotateLeft rotates r by n positions towards the high end, modulo Size().
func (r *Register) RotateLeft(n int) {
	n %= r.size
	if n < 0 {
		n += r.size
	}
	if n == 0 {
		return
	}
	low := r.Clone()
	low.ShiftRight(r.size - n)
	r.ShiftLeft(n)
	for i := range r.words {
		r.words[i] |= low.words[i]
	}
}

// RotateRight rotates r by n positions towards the low end, modulo Size().
func (r *Register) RotateRight(n int) {
	n %= r.size
	if n < 0 {
		n += r.size
	}
	if n == 0 {
		return
	}
	r.RotateLeft(r.size - n)
}

func (r *Register) checkIndex(i int) error {
	if i < 0 || i >= r.size {
		return ErrOutOfRange
	}
	return nil
}

// SetBit sets bit i.
func (r *Register) SetBit(i int) error {
	if err := r.checkIndex(i); err != nil {
		return err
	}
	r.words[i/wordBits] |= uint64(1) << uint(i%wordBits)
	return nil
}

// ClearBit clears bit i.
func (r *Register) ClearBit(i int) error {
	if err := r.checkIndex(i); err != nil {
		return err
	}
	r.words[i/wordBits] &^= uint64(1) << uint(i%wordBits)
	return nil
}

// FlipBit inverts bit i.
func (r *Register) FlipBit(i int) error {
	if err := r.checkIndex(i); err != nil {
		return err
	}
	r.words[i/wordBits] ^= uint64(1) << uint(i%wordBits)
	return nil
}

// TestBit reports whether bit i is set.
func (r *Register) TestBit(i int) (bool, error) {
	if err := r.checkIndex(i); err != nil {
		return false, err
	}
	return r.words[i/wordBits]&(uint64(1)<<uint(i%wordBits)) != 0, nil
}

func lowMask(count int) uint64 {
	if count >= wordBits {
		return ^uint64(0)
	}
	return (uint64(1) << uint(count)) - 1
}

func (r *Register) checkWindow(index, count int) error {
	if count < 1 || count > wordBits {
		return ErrInvalidCount
	}
	if index < 0 || index+count > r.size {
		return ErrOutOfRange
	}
	return nil
}

// GetBits returns the count (1..64) bits starting at index, packed so that
// bit index of r becomes bit 0 of the result.
func (r *Register) GetBits(index, count int) (uint64, error) {
	if err := r.checkWindow(index, count); err != nil {
		return 0, err
	}
	w, off := index/wordBits, uint(index%wordBits)
	v := r.words[w] >> off
	if off != 0 && int(off)+count > wordBits {
		v |= r.words[w+1] << (wordBits - off)
	}
	return v & lowMask(count), nil
}

// SetBits overwrites the count (1..64) bits starting at index with the low
// count bits of value.
func (r *Register) SetBits(index, count int, value uint64) error {
	if err := r.checkWindow(index, count); err != nil {
		return err
	}
	mask := lowMask(count)
	value &= mask
	w, off := index/wordBits, uint(index%wordBits)
	r.words[w] = r.words[w]&^(mask<<off) | value<<off
	if off != 0 && int(off)+count > wordBits {
		r.words[w+1] = r.words[w+1]&^(mask>>(wordBits-off)) | value>>(wordBits-off)
	}
	return nil
}

// HighestSetBit returns the index of the most significant set bit, or -1 if
// the register is zero.
func (r *Register) HighestSetBit() int {
	for i := len(r.words) - 1; i >= 0; i-- {
		if w := r.words[i]; w != 0 {
			return i*wordBits + wordBits - 1 - bits.LeadingZeros64(w)
		}
	}
	return -1
}

// LowestSetBit returns the index of the least significant set bit, or -1 if
// the register is zero.
func (r *Register) LowestSetBit() int {
	for i, w := range r.words {
		if w != 0 {
			return i*wordBits + bits.TrailingZeros64(w)
		}
	}
	return -1
}

// CountSetBits returns the number of set bits.
func (r *Register) CountSetBits() int {
	n := 0
	for _, w := range r.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// ByteLen is the length of the byte encoding of r.
func (r *Register) ByteLen() int {
	return (r.size + 7) / 8
}

// Bytes exports r least significant byte first.
func (r *Register) Bytes() []byte {
	out := make([]byte, r.ByteLen())
	for i := range out {
		out[i] = byte(r.words[i/8] >> (uint(i%8) * 8))
	}
	return out
}

// SetBytes imports buf, least significant byte first. A short buffer leaves
// the upper part zero; bits of the last byte beyond Size() are dropped.
func (r *Register) SetBytes(buf []byte) error {
	if len(buf) > r.ByteLen() {
		return ErrInputTooLong
	}
	r.Reset()
	for i, b := range buf {
		r.words[i/8] |= uint64(b) << (uint(i%8) * 8)
	}
	r.pad()
	return nil
}

// SetRandom fills r with bits read from rand.
func (r *Register) SetRandom(rand io.Reader) error {
	buf := make([]byte, r.ByteLen())
	if _, err := io.ReadFull(rand, buf); err != nil {
		return errors.WithMessage(err, "register: failed to read random bits")
	}
	err := r.SetBytes(buf)
	for i := range buf {
		buf[i] = 0
	}
	return err
}

// String renders r most significant bit first.
func (r *Register) String() string {
	var sb strings.Builder
	sb.Grow(r.size)
	for i := r.size - 1; i >= 0; i-- {
		if r.words[i/wordBits]&(uint64(1)<<uint(i%wordBits)) != 0 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// GoString is used by %#v.
func (r *Register) GoString() string {
	return fmt.Sprintf("register.Register{size: %d, bits: %s}", r.size, r.String())
}
