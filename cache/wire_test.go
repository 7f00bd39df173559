package cache

import (
	"bytes"
	"testing"

	"github.com/jolsten/takeskip/compiler"
)

func TestWireRoundTrip(t *testing.T) {
	commands := []string{
		"t4",
		"s2t4",
		"t4r4i2ri2b1",
		"z3n2d101",
		"p1-4,8-5,3",
		"(t8s8)3",
		"(t1(s1t1)2)3p1,2",
		"",
	}

	for _, cmd := range commands {
		prog, err := compiler.Parse(cmd)
		if err != nil {
			t.Fatalf("Parse(%q): %v", cmd, err)
		}

		blob, err := MarshalProgram(prog)
		if err != nil {
			t.Fatalf("MarshalProgram(%q): %v", cmd, err)
		}
		back, err := UnmarshalProgram(blob)
		if err != nil {
			t.Fatalf("UnmarshalProgram(%q): %v", cmd, err)
		}
		if !prog.Equal(back) {
			t.Errorf("round trip of %q: %s != %s", cmd, prog, back)
		}
	}
}

func TestWireDeterministicEncoding(t *testing.T) {
	prog, err := compiler.Parse("(t2ri2)2p1-4d101")
	if err != nil {
		t.Fatal(err)
	}
	a, err := MarshalProgram(prog)
	if err != nil {
		t.Fatal(err)
	}
	b, err := MarshalProgram(prog)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("canonical encoding produced different bytes for equal programs")
	}
}

func TestWireUnknownOpcode(t *testing.T) {
	blob, err := cborEncMode.Marshal([]wireCommand{{Op: "q", N: 4}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := UnmarshalProgram(blob); err == nil {
		t.Error("expected error for unknown wire opcode")
	}
}

func TestWireRejectsInvalidPayloads(t *testing.T) {
	tests := []struct {
		wire []wireCommand
		desc string
	}{
		{[]wireCommand{{Op: "t", N: -1}}, "negative count"},
		{[]wireCommand{{Op: "d", Bits: []byte{0, 2}}}, "non-binary data"},
		{[]wireCommand{{Op: "g", Repeat: 0, Body: []wireCommand{{Op: "t", N: 1}}}}, "zero repeat"},
		{[]wireCommand{{Op: "p", Selectors: [][2]int{{0, 4}}}}, "zero permute position"},
	}

	for _, tc := range tests {
		blob, err := cborEncMode.Marshal(tc.wire)
		if err != nil {
			t.Fatalf("%s: marshal: %v", tc.desc, err)
		}
		if _, err := UnmarshalProgram(blob); err == nil {
			t.Errorf("%s: expected validation error, got nil", tc.desc)
		}
	}
}

func TestWireGarbageInput(t *testing.T) {
	if _, err := UnmarshalProgram([]byte("not cbor at all")); err == nil {
		t.Error("expected error for undecodable bytes")
	}
}
