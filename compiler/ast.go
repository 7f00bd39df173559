package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jolsten/takeskip/bits"
)

// ---------------------------------------------------------------------------
// Command tree: the parsed, immutable representation of a command string
// ---------------------------------------------------------------------------

// Command is the interface implemented by all command nodes. The set of
// implementations is closed; the executor dispatches with an exhaustive
// type switch.
//
// A Command is immutable once built. Comparing a Command against nil (or
// any node of a different kind) via Equal reports false, never panics.
type Command interface {
	// String renders the command in source notation, e.g. "t4" or "(t1s1)4".
	String() string
	// Equal compares variant and payload.
	Equal(other Command) bool
	command() // marker method
}

// Program is an ordered sequence of top-level commands, the parser's
// output. It is read-only after construction and safe for concurrent use
// by any number of executions.
type Program []Command

// String renders the program in source notation.
func (p Program) String() string {
	var b strings.Builder
	for _, c := range p {
		b.WriteString(c.String())
	}
	return b.String()
}

// Equal reports whether two programs are structurally equal.
func (p Program) Equal(other Program) bool {
	if len(p) != len(other) {
		return false
	}
	for i, c := range p {
		if !c.Equal(other[i]) {
			return false
		}
	}
	return true
}

// Validate checks the structural invariants of every node: counts are
// non-negative, group repeats are positive, permute selectors are 1-based,
// and data literals are strictly binary. Programs built by Parse always
// satisfy these; Validate guards programs rebuilt from external storage.
func (p Program) Validate() error {
	for _, c := range p {
		if err := validateCommand(c); err != nil {
			return err
		}
	}
	return nil
}

func validateCommand(c Command) error {
	switch c := c.(type) {
	case *Take:
		return validateCount(c, c.N)
	case *Skip:
		return validateCount(c, c.N)
	case *Reverse:
		return validateCount(c, c.N)
	case *Invert:
		return validateCount(c, c.N)
	case *ReverseInvert:
		return validateCount(c, c.N)
	case *Backup:
		return validateCount(c, c.N)
	case *Zeros:
		return validateCount(c, c.N)
	case *Ones:
		return validateCount(c, c.N)
	case *Data:
		if err := c.Bits.Validate(); err != nil {
			return &ValidationError{Cmd: c.String(), Msg: "data literal may only contain 0 and 1"}
		}
		return nil
	case *Permute:
		if len(c.Selectors) == 0 {
			return &ValidationError{Cmd: c.String(), Msg: "permute requires at least one selector"}
		}
		for _, s := range c.Selectors {
			if s.Start < 1 || s.End < 1 {
				return &ValidationError{Cmd: c.String(), Msg: "permute positions are 1-based and must be positive"}
			}
		}
		return nil
	case *Group:
		if c.Repeat < 1 {
			return &ValidationError{Cmd: c.String(), Msg: "group repeat count must be positive"}
		}
		return Program(c.Body).Validate()
	default:
		return &ValidationError{Cmd: fmt.Sprintf("%T", c), Msg: "unknown command kind"}
	}
}

func validateCount(c Command, n int) error {
	if n < 0 {
		return &ValidationError{Cmd: c.String(), Msg: "count must be non-negative"}
	}
	return nil
}

// Equal compares two commands by variant and payload. Either side may be
// nil; a nil is equal only to a nil.
func Equal(a, b Command) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

// ValidationError reports a structurally valid token carrying an invalid
// payload, detected at parse or construction time.
type ValidationError struct {
	Cmd string // source notation of the offending command
	Msg string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid command %q: %s", e.Cmd, e.Msg)
}

// ---------------------------------------------------------------------------
// Command nodes
// ---------------------------------------------------------------------------

// Take copies n bits from the cursor to the output and advances the
// cursor by n.
type Take struct {
	N int
}

func (c *Take) String() string { return "t" + strconv.Itoa(c.N) }
func (c *Take) command()       {}
func (c *Take) Equal(other Command) bool {
	o, ok := other.(*Take)
	return ok && o.N == c.N
}

// Skip advances the cursor by n without producing output.
type Skip struct {
	N int
}

func (c *Skip) String() string { return "s" + strconv.Itoa(c.N) }
func (c *Skip) command()       {}
func (c *Skip) Equal(other Command) bool {
	o, ok := other.(*Skip)
	return ok && o.N == c.N
}

// Reverse copies n bits in reversed order and advances the cursor by n.
type Reverse struct {
	N int
}

func (c *Reverse) String() string { return "r" + strconv.Itoa(c.N) }
func (c *Reverse) command()       {}
func (c *Reverse) Equal(other Command) bool {
	o, ok := other.(*Reverse)
	return ok && o.N == c.N
}

// Invert copies n bits with each bit flipped and advances the cursor by n.
type Invert struct {
	N int
}

func (c *Invert) String() string { return "i" + strconv.Itoa(c.N) }
func (c *Invert) command()       {}
func (c *Invert) Equal(other Command) bool {
	o, ok := other.(*Invert)
	return ok && o.N == c.N
}

// ReverseInvert copies n bits reversed and flipped, advancing the cursor
// by n.
type ReverseInvert struct {
	N int
}

func (c *ReverseInvert) String() string { return "ri" + strconv.Itoa(c.N) }
func (c *ReverseInvert) command()       {}
func (c *ReverseInvert) Equal(other Command) bool {
	o, ok := other.(*ReverseInvert)
	return ok && o.N == c.N
}

// Backup moves the cursor backward by n without producing output.
type Backup struct {
	N int
}

func (c *Backup) String() string { return "b" + strconv.Itoa(c.N) }
func (c *Backup) command()       {}
func (c *Backup) Equal(other Command) bool {
	o, ok := other.(*Backup)
	return ok && o.N == c.N
}

// Zeros appends n zero bits to the output. The cursor does not move.
type Zeros struct {
	N int
}

func (c *Zeros) String() string { return "z" + strconv.Itoa(c.N) }
func (c *Zeros) command()       {}
func (c *Zeros) Equal(other Command) bool {
	o, ok := other.(*Zeros)
	return ok && o.N == c.N
}

// Ones appends n one bits to the output. The cursor does not move.
type Ones struct {
	N int
}

func (c *Ones) String() string { return "n" + strconv.Itoa(c.N) }
func (c *Ones) command()       {}
func (c *Ones) Equal(other Command) bool {
	o, ok := other.(*Ones)
	return ok && o.N == c.N
}

// Data appends a literal bit pattern to the output. The cursor does not
// move.
type Data struct {
	Bits bits.Bits
}

func (c *Data) String() string { return "d" + c.Bits.String() }
func (c *Data) command()       {}
func (c *Data) Equal(other Command) bool {
	o, ok := other.(*Data)
	return ok && o.Bits.Equal(c.Bits)
}

// Selector is a single 1-based position or an inclusive range of
// positions used by Permute. Start > End denotes descending traversal.
// A single position is stored with Start == End.
type Selector struct {
	Start int
	End   int
}

func (s Selector) String() string {
	if s.Start == s.End {
		return strconv.Itoa(s.Start)
	}
	return strconv.Itoa(s.Start) + "-" + strconv.Itoa(s.End)
}

// Len returns the number of positions the selector resolves to.
func (s Selector) Len() int {
	if s.Start <= s.End {
		return s.End - s.Start + 1
	}
	return s.Start - s.End + 1
}

// Permute reads the input at each selected 1-based position, in selector
// order, and appends the bits read. Positions may repeat. The cursor does
// not move.
type Permute struct {
	Selectors []Selector
}

func (c *Permute) String() string {
	parts := make([]string, len(c.Selectors))
	for i, s := range c.Selectors {
		parts[i] = s.String()
	}
	return "p" + strings.Join(parts, ",")
}

func (c *Permute) command() {}
func (c *Permute) Equal(other Command) bool {
	o, ok := other.(*Permute)
	if !ok || len(o.Selectors) != len(c.Selectors) {
		return false
	}
	for i, s := range c.Selectors {
		if o.Selectors[i] != s {
			return false
		}
	}
	return true
}

// Group executes its body in order, Repeat times in sequence. The cursor
// carries across iterations; bodies may nest further groups.
type Group struct {
	Body   []Command
	Repeat int
}

func (c *Group) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for _, sub := range c.Body {
		b.WriteString(sub.String())
	}
	b.WriteByte(')')
	b.WriteString(strconv.Itoa(c.Repeat))
	return b.String()
}

func (c *Group) command() {}
func (c *Group) Equal(other Command) bool {
	o, ok := other.(*Group)
	if !ok || o.Repeat != c.Repeat {
		return false
	}
	return Program(c.Body).Equal(Program(o.Body))
}
