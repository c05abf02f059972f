package isa

import "testing"

func TestLookupKnownAndUnknown(t *testing.T) {
	if _, ok := Lookup("mov"); !ok {
		t.Error("mov should be a known opcode")
	}
	if _, ok := Lookup("frobnicate"); ok {
		t.Error("frobnicate should not be a known opcode")
	}
}

func TestNamesCoversAllSixteenOpcodes(t *testing.T) {
	names := Names()
	if len(names) != 16 {
		t.Fatalf("Names() returned %d entries, want 16", len(names))
	}
}

func TestLeaForbidsImmediateSource(t *testing.T) {
	lea, _ := Lookup("lea")
	if lea.AllowsSrc(Immediate) {
		t.Error("lea should not allow an immediate source")
	}
	if !lea.AllowsSrc(Direct) || !lea.AllowsSrc(Matrix) {
		t.Error("lea should allow direct and matrix sources")
	}
}

func TestSingleOperandOpcodesHaveNoSource(t *testing.T) {
	for _, name := range []string{"clr", "not", "inc", "dec", "red"} {
		in, ok := Lookup(name)
		if !ok {
			t.Fatalf("missing opcode %q", name)
		}
		if in.HasSrc() {
			t.Errorf("%q should not take a source operand", name)
		}
		if !in.HasDst() {
			t.Errorf("%q should take a destination operand", name)
		}
		if in.AllowsDst(Immediate) {
			t.Errorf("%q should not allow an immediate destination", name)
		}
	}
}

func TestPrnAllowsImmediateDestination(t *testing.T) {
	prn, _ := Lookup("prn")
	if !prn.AllowsDst(Immediate) {
		t.Error("prn should uniquely allow an immediate destination")
	}
}

func TestJumpFamilyDestinationOnly(t *testing.T) {
	for _, name := range []string{"jmp", "bne", "jsr"} {
		in, _ := Lookup(name)
		if in.HasSrc() {
			t.Errorf("%q should not take a source operand", name)
		}
		if in.AllowsDst(Immediate) || in.AllowsDst(Matrix) {
			t.Errorf("%q destination should be direct/register only", name)
		}
		if !in.AllowsDst(Direct) || !in.AllowsDst(Register) {
			t.Errorf("%q should allow direct and register destinations", name)
		}
	}
}

func TestRtsAndStopTakeNoOperands(t *testing.T) {
	for _, name := range []string{"rts", "stop"} {
		in, _ := Lookup(name)
		if in.HasSrc() || in.HasDst() {
			t.Errorf("%q should take no operands", name)
		}
	}
}

func TestModeString(t *testing.T) {
	cases := map[Mode]string{
		Immediate: "immediate",
		Direct:    "direct",
		Matrix:    "matrix",
		Register:  "register",
	}
	for m, want := range cases {
		if got := m.String(); got != want {
			t.Errorf("Mode(%d).String() = %q, want %q", m, got, want)
		}
	}
}
