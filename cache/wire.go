package cache

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/jolsten/takeskip/bits"
	"github.com/jolsten/takeskip/compiler"
)

// ---------------------------------------------------------------------------
// Wire format: canonical CBOR encoding of command trees
// ---------------------------------------------------------------------------

// cborEncMode uses canonical mode so equal programs always encode to
// identical bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("cache: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// wireCommand is the storage form of a single command node. Op selects
// the variant; the remaining fields carry the variant's payload.
type wireCommand struct {
	Op        string        `cbor:"op"`
	N         int           `cbor:"n,omitempty"`
	Bits      []byte        `cbor:"bits,omitempty"`
	Selectors [][2]int      `cbor:"sel,omitempty"`
	Repeat    int           `cbor:"rep,omitempty"`
	Body      []wireCommand `cbor:"body,omitempty"`
}

// MarshalProgram serializes a program to CBOR bytes.
func MarshalProgram(prog compiler.Program) ([]byte, error) {
	return cborEncMode.Marshal(encodeProgram(prog))
}

// UnmarshalProgram deserializes a program from CBOR bytes. The rebuilt
// tree is validated before being returned: persisted data is outside the
// parser's control and must not smuggle invalid payloads past it.
func UnmarshalProgram(data []byte) (compiler.Program, error) {
	var wire []wireCommand
	if err := cbor.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("cache: unmarshal program: %w", err)
	}
	prog, err := decodeProgram(wire)
	if err != nil {
		return nil, err
	}
	if err := prog.Validate(); err != nil {
		return nil, fmt.Errorf("cache: stored program is invalid: %w", err)
	}
	return prog, nil
}

func encodeProgram(prog compiler.Program) []wireCommand {
	wire := make([]wireCommand, 0, len(prog))
	for _, cmd := range prog {
		wire = append(wire, encodeCommand(cmd))
	}
	return wire
}

func encodeCommand(cmd compiler.Command) wireCommand {
	switch c := cmd.(type) {
	case *compiler.Take:
		return wireCommand{Op: "t", N: c.N}
	case *compiler.Skip:
		return wireCommand{Op: "s", N: c.N}
	case *compiler.Reverse:
		return wireCommand{Op: "r", N: c.N}
	case *compiler.Invert:
		return wireCommand{Op: "i", N: c.N}
	case *compiler.ReverseInvert:
		return wireCommand{Op: "ri", N: c.N}
	case *compiler.Backup:
		return wireCommand{Op: "b", N: c.N}
	case *compiler.Zeros:
		return wireCommand{Op: "z", N: c.N}
	case *compiler.Ones:
		return wireCommand{Op: "n", N: c.N}
	case *compiler.Data:
		return wireCommand{Op: "d", Bits: []byte(c.Bits)}
	case *compiler.Permute:
		sel := make([][2]int, len(c.Selectors))
		for i, s := range c.Selectors {
			sel[i] = [2]int{s.Start, s.End}
		}
		return wireCommand{Op: "p", Selectors: sel}
	case *compiler.Group:
		return wireCommand{Op: "g", Repeat: c.Repeat, Body: encodeProgram(c.Body)}
	default:
		// Unreachable for trees built by the parser.
		panic(fmt.Sprintf("cache: unknown command kind %T", cmd))
	}
}

func decodeProgram(wire []wireCommand) (compiler.Program, error) {
	prog := make(compiler.Program, 0, len(wire))
	for _, w := range wire {
		cmd, err := decodeCommand(w)
		if err != nil {
			return nil, err
		}
		prog = append(prog, cmd)
	}
	return prog, nil
}

func decodeCommand(w wireCommand) (compiler.Command, error) {
	switch w.Op {
	case "t":
		return &compiler.Take{N: w.N}, nil
	case "s":
		return &compiler.Skip{N: w.N}, nil
	case "r":
		return &compiler.Reverse{N: w.N}, nil
	case "i":
		return &compiler.Invert{N: w.N}, nil
	case "ri":
		return &compiler.ReverseInvert{N: w.N}, nil
	case "b":
		return &compiler.Backup{N: w.N}, nil
	case "z":
		return &compiler.Zeros{N: w.N}, nil
	case "n":
		return &compiler.Ones{N: w.N}, nil
	case "d":
		return &compiler.Data{Bits: bits.Bits(w.Bits)}, nil
	case "p":
		sels := make([]compiler.Selector, len(w.Selectors))
		for i, s := range w.Selectors {
			sels[i] = compiler.Selector{Start: s[0], End: s[1]}
		}
		return &compiler.Permute{Selectors: sels}, nil
	case "g":
		body, err := decodeProgram(w.Body)
		if err != nil {
			return nil, err
		}
		return &compiler.Group{Body: body, Repeat: w.Repeat}, nil
	default:
		return nil, fmt.Errorf("cache: unknown wire opcode %q", w.Op)
	}
}
