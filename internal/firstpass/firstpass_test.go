package firstpass

import (
	"strings"
	"testing"
)

func TestSimpleInstructionEncoding(t *testing.T) {
	src := "MAIN: mov #-1, r3\nstop\n"
	r := Run("t.as", src)
	if r.Diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", r.Diags.Errors)
	}
	if r.IC != ICInit+4 {
		t.Fatalf("IC = %d, want %d", r.IC, ICInit+4)
	}
	if len(r.Commands) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(r.Commands))
	}
	mov := r.Commands[0]
	if mov.StartIC != ICInit || mov.Length != 3 {
		t.Errorf("mov command = %+v, want StartIC=%d Length=3", mov, ICInit)
	}
	stopCmd := r.Commands[1]
	if stopCmd.StartIC != ICInit+3 || stopCmd.Length != 1 {
		t.Errorf("stop command = %+v", stopCmd)
	}
	sym := r.Symbols.Find("MAIN")
	if sym == nil || sym.Address != ICInit {
		t.Errorf("MAIN symbol = %+v, want address %d", sym, ICInit)
	}
}

func TestRegisterRegisterSharesOneWord(t *testing.T) {
	r := Run("t.as", "mov r1, r2\n")
	if r.Diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", r.Diags.Errors)
	}
	if r.Commands[0].Length != 2 {
		t.Errorf("register-register mov length = %d, want 2 (shared word)", r.Commands[0].Length)
	}
}

func TestMatrixOperandLength(t *testing.T) {
	r := Run("t.as", "mov M[r1][r2], r3\n")
	if r.Diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", r.Diags.Errors)
	}
	if r.Commands[0].Length != 4 {
		t.Errorf("matrix src length = %d, want 4 (opcode + 2 matrix words + 1 register word)", r.Commands[0].Length)
	}
}

func TestUnknownOpcodeIsError(t *testing.T) {
	r := Run("t.as", "frobnicate r1\n")
	if !r.Diags.HasErrors() {
		t.Fatal("expected unknown-opcode error")
	}
}

func TestImmediateOutOfRangeStillAdvancesIC(t *testing.T) {
	r := Run("t.as", "mov #200, r1\nstop\n")
	if !r.Diags.HasErrors() {
		t.Fatal("expected out-of-range immediate error")
	}
	// stop must still land right after the full 3-word mov, proving IC
	// advanced by the full expected length despite the range error.
	if len(r.Commands) != 2 || r.Commands[1].StartIC != ICInit+3 {
		t.Fatalf("stop command = %+v, want StartIC %d", r.Commands[1], ICInit+3)
	}
}

func TestIllegalAddressingModeForOpcode(t *testing.T) {
	// lea forbids an immediate source.
	r := Run("t.as", "lea #5, r1\n")
	if !r.Diags.HasErrors() {
		t.Fatal("expected illegal addressing mode error for lea with immediate source")
	}
}

func TestDataDirectiveRange(t *testing.T) {
	r := Run("t.as", "D: .data 1, -2, 600\n")
	if !r.Diags.HasErrors() {
		t.Fatal("expected out-of-range .data value error")
	}
}

func TestStringDirectiveEncodesAndTerminates(t *testing.T) {
	r := Run("t.as", `S: .string "ab"`+"\n")
	if r.Diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", r.Diags.Errors)
	}
	if len(r.Directives) != 1 {
		t.Fatalf("expected 1 directive, got %d", len(r.Directives))
	}
	words := r.Directives[0].Words
	if len(words) != 3 || words[0] != 'a' || words[1] != 'b' || words[2] != 0 {
		t.Errorf("string words = %v, want ['a','b',0]", words)
	}
}

func TestExternSymbolAndDirectiveRecorded(t *testing.T) {
	r := Run("t.as", ".extern K\nmov K, r1\n")
	if r.Diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", r.Diags.Errors)
	}
	sym := r.Symbols.Find("K")
	if sym == nil || sym.Kind.String() != "external" {
		t.Errorf("K symbol = %+v, want external", sym)
	}
	found := false
	for _, d := range r.Directives {
		if d.IsExtern && d.ArgLabel == "K" {
			found = true
		}
	}
	if !found {
		t.Error("expected an .extern directive record for K")
	}
}

func TestEntryDirectiveDeferredToSecondPass(t *testing.T) {
	r := Run("t.as", "MAIN: stop\n.entry MAIN\n")
	if r.Diags.HasErrors() {
		t.Fatalf("first pass should not resolve .entry, got errors: %v", r.Diags.Errors)
	}
	found := false
	for _, d := range r.Directives {
		if d.IsEntry && d.ArgLabel == "MAIN" {
			found = true
		}
	}
	if !found {
		t.Error("expected an .entry directive record for MAIN")
	}
}

func TestDataSymbolRelocatedAfterFirstPass(t *testing.T) {
	r := Run("t.as", "stop\nD: .data 7\n")
	sym := r.Symbols.Find("D")
	if sym == nil {
		t.Fatal("D symbol not found")
	}
	if sym.Address != r.IC {
		t.Errorf("D address = %d, want relocated address %d (ICF)", sym.Address, r.IC)
	}
}

func TestTrailingCommaIsError(t *testing.T) {
	r := Run("t.as", "mov r1, r2,\n")
	if !r.Diags.HasErrors() {
		t.Fatal("expected trailing-comma error")
	}
}

func TestMatDirectivePadsWithZeros(t *testing.T) {
	r := Run("t.as", "M: .mat [2][2] 1,2\n")
	if r.Diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", r.Diags.Errors)
	}
	words := r.Directives[0].Words
	if len(words) != 4 || words[2] != 0 || words[3] != 0 {
		t.Errorf(".mat words = %v, want [1,2,0,0]", words)
	}
}

func TestLabelPrecedingExternIsWarningNotError(t *testing.T) {
	r := Run("t.as", "FOO: .extern BAR\nmov BAR, r1\n")
	if r.Diags.HasErrors() {
		t.Fatalf("label preceding .extern must not be an error, got: %v", r.Diags.Errors)
	}
	if len(r.Diags.Warnings) != 1 {
		t.Fatalf("expected exactly one warning, got %d: %v", len(r.Diags.Warnings), r.Diags.Warnings)
	}
}

func TestLabelPrecedingEntryIsWarningNotError(t *testing.T) {
	r := Run("t.as", "MAIN: stop\nFOO: .entry MAIN\n")
	if r.Diags.HasErrors() {
		t.Fatalf("label preceding .entry must not be an error, got: %v", r.Diags.Errors)
	}
	if len(r.Diags.Warnings) != 1 {
		t.Fatalf("expected exactly one warning, got %d: %v", len(r.Diags.Warnings), r.Diags.Warnings)
	}
}

func TestMemoryOverflowIsReportedNotPanicked(t *testing.T) {
	saved := MaxMemory
	MaxMemory = 3
	defer func() { MaxMemory = saved }()

	var src strings.Builder
	for i := 0; i < 5; i++ {
		src.WriteString("stop\n")
	}
	r := Run("t.as", src.String())
	if !r.Diags.HasErrors() {
		t.Fatal("expected a memory-overflow error")
	}
}

func TestImageSetAndGetIgnoreOutOfRangeIndices(t *testing.T) {
	var img Image
	img.Set(-1, 42)
	img.Set(hardMaxMemory, 42)
	if img.Get(-1) != 0 || img.Get(hardMaxMemory) != 0 {
		t.Fatal("out-of-range Image access should be a no-op, not a panic")
	}
}

func TestOverLongLineIsError(t *testing.T) {
	saved := MaxLineLen
	MaxLineLen = 10
	defer func() { MaxLineLen = saved }()

	r := Run("t.as", "mov r1, r2 ; this line is much longer than ten characters\n")
	if !r.Diags.HasErrors() {
		t.Fatal("expected an over-long-line error")
	}
}
