// Package vm executes parsed takeskip command trees against bit
// sequences. Each execution owns a single read cursor and a growing
// output buffer; programs themselves are immutable and may be executed
// concurrently.
package vm

import (
	"fmt"
	"math"

	"github.com/jolsten/takeskip/bits"
	"github.com/jolsten/takeskip/compiler"
)

// maxPadBits caps how many bits a single pad command may emit. Counts
// beyond this cannot be materialized and would otherwise panic inside
// make.
const maxPadBits = 1 << 30

// Run executes a program against an input sequence and applies the
// remnant policy to whatever the cursor left unconsumed. The returned
// sequence is newly allocated and never aliases the input's storage. The
// input is never mutated.
//
// The cursor starts at 0 and is validated after every cursor-moving
// command, at any nesting depth: a Backup that would drive it below 0 or
// a read that would drive it past the end of the input aborts with a
// *BoundsError naming the offending command and its position in the
// tree. Control flow depends only on lengths and cursor positions, never
// on bit values, so output length is a function of the program and
// len(input) alone.
func Run(prog compiler.Program, input bits.Bits, remnant Remnant) (bits.Bits, error) {
	if !remnant.Valid() {
		return nil, &ConfigError{Value: remnant.String()}
	}

	x := &run{input: input, out: make(bits.Bits, 0, len(input))}
	if err := x.sequence(prog); err != nil {
		return nil, err
	}

	switch remnant {
	case RemnantKeep:
		x.out = append(x.out, x.input[x.ptr:]...)
	case RemnantPad:
		for len(x.out) < len(x.input) {
			x.out = append(x.out, 0)
		}
	}
	return x.out, nil
}

// run holds the mutable state of one execution: the shared cursor and
// the output buffer. The input is fixed for the whole execution.
type run struct {
	input bits.Bits
	ptr   int
	out   bits.Bits
}

// sequence executes commands left to right, annotating bounds failures
// with their position.
func (x *run) sequence(prog compiler.Program) error {
	for i, cmd := range prog {
		if err := x.exec(cmd); err != nil {
			return locate(err, fmt.Sprintf("command %d", i+1))
		}
	}
	return nil
}

// exec dispatches one command. The command set is closed; the switch is
// exhaustive over compiler's node types.
func (x *run) exec(cmd compiler.Command) error {
	switch c := cmd.(type) {
	case *compiler.Take:
		w, err := x.window(c, c.N)
		if err != nil {
			return err
		}
		x.out = append(x.out, w...)
		return nil

	case *compiler.Skip:
		_, err := x.window(c, c.N)
		return err

	case *compiler.Reverse:
		w, err := x.window(c, c.N)
		if err != nil {
			return err
		}
		for i := len(w) - 1; i >= 0; i-- {
			x.out = append(x.out, w[i])
		}
		return nil

	case *compiler.Invert:
		w, err := x.window(c, c.N)
		if err != nil {
			return err
		}
		for _, b := range w {
			x.out = append(x.out, b^1)
		}
		return nil

	case *compiler.ReverseInvert:
		w, err := x.window(c, c.N)
		if err != nil {
			return err
		}
		for i := len(w) - 1; i >= 0; i-- {
			x.out = append(x.out, w[i]^1)
		}
		return nil

	case *compiler.Backup:
		if x.ptr-c.N < 0 {
			return &BoundsError{
				Cmd:     c.String(),
				Pointer: x.ptr - c.N,
				Length:  len(x.input),
				Msg:     "pointer cannot be negative",
			}
		}
		x.ptr -= c.N
		return nil

	case *compiler.Zeros:
		if err := checkPad(c, c.N, len(x.input)); err != nil {
			return err
		}
		x.out = append(x.out, bits.Zeros(c.N)...)
		return nil

	case *compiler.Ones:
		if err := checkPad(c, c.N, len(x.input)); err != nil {
			return err
		}
		x.out = append(x.out, bits.Ones(c.N)...)
		return nil

	case *compiler.Data:
		x.out = append(x.out, c.Bits...)
		return nil

	case *compiler.Permute:
		return x.permute(c)

	case *compiler.Group:
		for rep := 0; rep < c.Repeat; rep++ {
			for i, sub := range c.Body {
				if err := x.exec(sub); err != nil {
					return locate(err, fmt.Sprintf("pass %d > command %d", rep+1, i+1))
				}
			}
		}
		return nil

	default:
		return fmt.Errorf("unknown command kind %T", cmd)
	}
}

// window reads n bits at the cursor and advances it, or fails if the
// read would run past the end of the input. The check is written so that
// counts near the integer ceiling cannot wrap the addition.
func (x *run) window(c compiler.Command, n int) (bits.Bits, error) {
	if n > len(x.input)-x.ptr {
		end := x.ptr + n
		if end < x.ptr { // wrapped; clamp for reporting
			end = math.MaxInt
		}
		return nil, &BoundsError{
			Cmd:     c.String(),
			Pointer: end,
			Length:  len(x.input),
			Msg:     fmt.Sprintf("pointer %d exceeds input length %d", end, len(x.input)),
		}
	}
	w := x.input[x.ptr : x.ptr+n]
	x.ptr += n
	return w, nil
}

// permute appends the input bit at each selected 1-based position, in
// selector order. Ranges expand ascending or descending per their
// direction. The cursor does not move, but every resolved position must
// lie within the input.
func (x *run) permute(c *compiler.Permute) error {
	for _, sel := range c.Selectors {
		step := 1
		if sel.Start > sel.End {
			step = -1
		}
		for pos := sel.Start; ; pos += step {
			if pos < 1 || pos > len(x.input) {
				return &BoundsError{
					Cmd:     c.String(),
					Pointer: pos,
					Length:  len(x.input),
					Msg:     fmt.Sprintf("position %d exceeds input length %d", pos, len(x.input)),
				}
			}
			x.out = append(x.out, x.input[pos-1])
			if pos == sel.End {
				break
			}
		}
	}
	return nil
}

// checkPad rejects pad counts too large to allocate.
func checkPad(c compiler.Command, n, length int) error {
	if n > maxPadBits {
		return &BoundsError{
			Cmd:     c.String(),
			Pointer: n,
			Length:  length,
			Msg:     fmt.Sprintf("pad count %d is too large", n),
		}
	}
	return nil
}

// locate prepends a tree position to a bounds failure as the stack
// unwinds, so nested group failures read outermost first.
func locate(err error, prefix string) error {
	if be, ok := err.(*BoundsError); ok {
		if be.Path == "" {
			be.Path = prefix
		} else {
			be.Path = prefix + " > " + be.Path
		}
	}
	return err
}
