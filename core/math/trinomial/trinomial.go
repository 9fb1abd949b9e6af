// Package trinomial implements arithmetic in the ring Z₂[x]/(xᴸ + xᴷ + 1)
// on top of a register clocked as a linear feedback shift register. When the
// trinomial is irreducible the ring is the field GF(2ᴸ).
package trinomial

import (
	"io"
	"math/big"
	"strconv"

	"github.com/mr-shifu/pkc-lib/core/math/register"
	"github.com/pkg/errors"
)

var (
	ErrInvalidDegree = errors.New("trinomial: invalid degree")
	ErrGroupMismatch = errors.New("trinomial: elements belong to different groups")
	ErrNegativePower = errors.New("trinomial: negative exponent")
)

// LFSR is an element of Z₂[x]/(xᴸ + xᴷ + 1).
//
// Register index i holds the coefficient of x^((i+K) mod L). With that
// layout, multiplying by x is one clock of the register: a shift towards the
// high end whose feedback into index 0 is the XOR of indices L-1 and L-1-K.
//
// Like register.Register, an LFSR has a single owner and is not safe for
// concurrent mutation.
type LFSR struct {
	l, k  int
	state *register.Register

	// powers[i] = state^(2^i); nil whenever state changed since it was built.
	powers []*register.Register
}

// New returns the zero element of the ring defined by xᴸ + xᴷ + 1.
func New(l, k int) (*LFSR, error) {
	if k < 1 || k > l-1 {
		return nil, ErrInvalidDegree
	}
	state, err := register.New(l)
	if err != nil {
		return nil, errors.WithMessage(ErrInvalidDegree, err.Error())
	}
	return &LFSR{l: l, k: k, state: state}, nil
}

// Degree returns L.
func (t *LFSR) Degree() int { return t.l }

// MidTap returns K.
func (t *LFSR) MidTap() int { return t.k }

// SameGroup reports whether t and other share L and K.
func (t *LFSR) SameGroup(other *LFSR) bool {
	return other != nil && t.l == other.l && t.k == other.k
}

func (t *LFSR) checkGroup(other *LFSR) error {
	if !t.SameGroup(other) {
		return ErrGroupMismatch
	}
	return nil
}

func (t *LFSR) invalidate() {
	t.powers = nil
}

// Clone returns an independent copy of t. The power table is not shared.
func (t *LFSR) Clone() *LFSR {
	return &LFSR{l: t.l, k: t.k, state: t.state.Clone()}
}

// Set copies the value of other into t.
func (t *LFSR) Set(other *LFSR) error {
	if err := t.checkGroup(other); err != nil {
		return err
	}
	t.invalidate()
	return t.state.Set(other.state)
}

// Equal reports whether t and other are the same element of the same group.
func (t *LFSR) Equal(other *LFSR) bool {
	return t.SameGroup(other) && t.state.Equal(other.state)
}

// IsZero reports whether t is the zero polynomial.
func (t *LFSR) IsZero() bool {
	return t.state.IsZero()
}

// Register returns a copy of the underlying register.
func (t *LFSR) Register() *register.Register {
	return t.state.Clone()
}

// SetRegister loads the raw register layout described on LFSR.
func (t *LFSR) SetRegister(r *register.Register) error {
	if r == nil || r.Size() != t.l {
		return ErrGroupMismatch
	}
	t.invalidate()
	return t.state.Set(r)
}

// SetRandom replaces t with a uniformly random element.
func (t *LFSR) SetRandom(rand io.Reader) error {
	t.invalidate()
	return t.state.SetRandom(rand)
}

// IndexOf maps a polynomial degree to its register index.
func (t *LFSR) IndexOf(degree int) int {
	return ((degree-t.k)%t.l + t.l) % t.l
}

// DegreeAt maps a register index to the polynomial degree it holds.
func (t *LFSR) DegreeAt(index int) int {
	return (index + t.k) % t.l
}

// Coefficient reports whether the term x^degree is present.
func (t *LFSR) Coefficient(degree int) (bool, error) {
	if degree < 0 || degree >= t.l {
		return false, ErrInvalidDegree
	}
	return t.state.TestBit(t.IndexOf(degree))
}

// SetCoefficient turns the term x^degree on or off.
func (t *LFSR) SetCoefficient(degree int, on bool) error {
	if degree < 0 || degree >= t.l {
		return ErrInvalidDegree
	}
	t.invalidate()
	if on {
		return t.state.SetBit(t.IndexOf(degree))
	}
	return t.state.ClearBit(t.IndexOf(degree))
}

// One returns the multiplicative identity of t's group.
func (t *LFSR) One() *LFSR {
	one := &LFSR{l: t.l, k: t.k, state: blank(t.l)}
	_ = one.state.SetBit(one.IndexOf(0))
	return one
}

// X returns the element x of t's group.
func (t *LFSR) X() *LFSR {
	x := &LFSR{l: t.l, k: t.k, state: blank(t.l)}
	_ = x.state.SetBit(x.IndexOf(1))
	return x
}

func blank(l int) *register.Register {
	// l was validated when the group was first built
	r, _ := register.New(l)
	return r
}

// chunk is the number of clock steps whose feedback bits can be computed
// from the current state alone.
func (t *LFSR) chunk() int {
	c := 64
	if t.k < c {
		c = t.k
	}
	if t.l-t.k < c {
		c = t.l - t.k
	}
	return c
}

// Clock advances the register by ticks steps, i.e. t = t·x^ticks.
func (t *LFSR) Clock(ticks int) {
	if ticks <= 0 {
		return
	}
	t.invalidate()
	clock(t.state, t.l, t.k, t.chunk(), ticks)
}

func clock(state *register.Register, l, k, chunk, ticks int) {
	for ticks > 0 {
		c := chunk
		if ticks < c {
			c = ticks
		}
		hi, _ := state.GetBits(l-c, c)
		mid, _ := state.GetBits(l-c-k, c)
		state.ShiftLeft(c)
		_ = state.SetBits(0, c, hi^mid)
		ticks -= c
	}
}

// Add sets t = t + other. Addition in characteristic 2 is XOR.
func (t *LFSR) Add(other *LFSR) error {
	if err := t.checkGroup(other); err != nil {
		return err
	}
	t.invalidate()
	return t.state.Xor(other.state)
}

// Subtract sets t = t - other, which equals t + other.
func (t *LFSR) Subtract(other *LFSR) error {
	return t.Add(other)
}

// Multiply sets t = t·other.
func (t *LFSR) Multiply(other *LFSR) error {
	if err := t.checkGroup(other); err != nil {
		return err
	}
	product := t.multiply(t.state, other.state)
	t.invalidate()
	return t.state.Set(product)
}

// multiply returns a·b. The operand with fewer set bits drives the sum
// Σ a·x^deg(i) over its set bits i.
func (t *LFSR) multiply(a, b *register.Register) *register.Register {
	if b.CountSetBits() > a.CountSetBits() {
		a, b = b, a
	}
	acc := blank(t.l)
	if b.IsZero() {
		return acc
	}
	shifted := a.Clone()
	chunk := t.chunk()
	at := 0
	// walk b by increasing degree: indices L-K..L-1 hold degrees 0..K-1,
	// indices 0..L-K-1 hold degrees K..L-1
	for n := 0; n < t.l; n++ {
		i := (n + t.l - t.k) % t.l
		if on, _ := b.TestBit(i); !on {
			continue
		}
		d := t.DegreeAt(i)
		clock(shifted, t.l, t.k, chunk, d-at)
		at = d
		_ = acc.Xor(shifted)
	}
	return acc
}

// Square sets t = t².
func (t *LFSR) Square() {
	sq := t.multiply(t.state, t.state)
	t.invalidate()
	_ = t.state.Set(sq)
}

func (t *LFSR) powerTable(bits int) []*register.Register {
	if len(t.powers) == 0 {
		t.powers = []*register.Register{t.state.Clone()}
	}
	for len(t.powers) < bits {
		last := t.powers[len(t.powers)-1]
		t.powers = append(t.powers, t.multiply(last, last))
	}
	return t.powers
}

// Power returns t^e, leaving t unchanged. The squares t^(2^i) are cached
// on t and reused by later calls until t is mutated.
func (t *LFSR) Power(e *big.Int) (*LFSR, error) {
	if e.Sign() < 0 {
		return nil, ErrNegativePower
	}
	table := t.powerTable(e.BitLen())
	result := t.One()
	for i := 0; i < e.BitLen(); i++ {
		if e.Bit(i) == 1 {
			result.state = t.multiply(result.state, table[i])
		}
	}
	return result, nil
}

// Pow sets t = t^e.
func (t *LFSR) Pow(e *big.Int) error {
	p, err := t.Power(e)
	if err != nil {
		return err
	}
	t.invalidate()
	return t.state.Set(p.state)
}

// String renders t as a polynomial in x, highest degree first.
func (t *LFSR) String() string {
	var out []byte
	for d := t.l - 1; d >= 0; d-- {
		on, _ := t.Coefficient(d)
		if !on {
			continue
		}
		if len(out) > 0 {
			out = append(out, " + "...)
		}
		switch d {
		case 0:
			out = append(out, '1')
		case 1:
			out = append(out, 'x')
		default:
			out = append(out, "x^"...)
			out = strconv.AppendInt(out, int64(d), 10)
		}
	}
	if len(out) == 0 {
		return "0"
	}
	return string(out)
}
