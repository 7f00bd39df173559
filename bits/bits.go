// Package bits provides the bit-sequence representation shared by the
// takeskip compiler and executor.
package bits

import (
	"fmt"
)

// Bits is an ordered, finite sequence of binary digits, indexed from 0.
// Each element is 0 or 1.
type Bits []uint8

// Parse builds a Bits value from a string of '0' and '1' characters.
func Parse(s string) (Bits, error) {
	b := make(Bits, len(s))
	for i, c := range []byte(s) {
		switch c {
		case '0':
			b[i] = 0
		case '1':
			b[i] = 1
		default:
			return nil, fmt.Errorf("bits: invalid character %q at position %d", c, i)
		}
	}
	return b, nil
}

// MustParse is Parse for known-good literals. It panics on invalid input.
func MustParse(s string) Bits {
	b, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return b
}

// String renders the sequence as a string of '0' and '1' characters.
func (b Bits) String() string {
	buf := make([]byte, len(b))
	for i, v := range b {
		buf[i] = '0' + v
	}
	return string(buf)
}

// Clone returns a copy that shares no storage with b.
func (b Bits) Clone() Bits {
	if b == nil {
		return nil
	}
	out := make(Bits, len(b))
	copy(out, b)
	return out
}

// Equal reports whether two sequences have the same length and digits.
func (b Bits) Equal(other Bits) bool {
	if len(b) != len(other) {
		return false
	}
	for i, v := range b {
		if v != other[i] {
			return false
		}
	}
	return true
}

// Validate checks that every element is 0 or 1.
func (b Bits) Validate() error {
	for i, v := range b {
		if v > 1 {
			return fmt.Errorf("bits: element %d at position %d is not a binary digit", v, i)
		}
	}
	return nil
}

// Zeros returns a sequence of n zero bits.
func Zeros(n int) Bits {
	return make(Bits, n)
}

// Ones returns a sequence of n one bits.
func Ones(n int) Bits {
	b := make(Bits, n)
	for i := range b {
		b[i] = 1
	}
	return b
}
