package diag

import "testing"

func TestPositionString(t *testing.T) {
	p := Position{Filename: "prog.as", Line: 12}
	if p.String() != "prog.as:12" {
		t.Errorf("got %q", p.String())
	}
	if (Position{Line: 12}).String() != "line 12" {
		t.Errorf("got %q", (Position{Line: 12}).String())
	}
}

func TestErrorMessageIncludesToken(t *testing.T) {
	err := New(Position{Filename: "prog.as", Line: 3}, FirstPass, "mov", "unknown opcode")
	got := err.Error()
	if got != `prog.as:3: first_pass: unknown opcode ("mov")` {
		t.Errorf("got %q", got)
	}
}

func TestErrorMessageOmitsEmptyToken(t *testing.T) {
	err := New(Position{Filename: "prog.as", Line: 3}, Symbol, "", "duplicate symbol")
	got := err.Error()
	if got != "prog.as:3: symbol: duplicate symbol" {
		t.Errorf("got %q", got)
	}
}

func TestDiagnosticsAccumulate(t *testing.T) {
	var d Diagnostics
	if d.HasErrors() {
		t.Fatal("new Diagnostics should have no errors")
	}
	d.Add(Position{Line: 1}, Preprocessor, "FOO", "duplicate macro")
	d.AddErr(New(Position{Line: 2}, FirstPass, "", "unknown opcode"))
	if !d.HasErrors() || d.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", d.Count())
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		Preprocessor: "preprocessor",
		FirstPass:    "first_pass",
		SecondPass:   "second_pass",
		Symbol:       "symbol",
		Helpers:      "helpers",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(k), got, want)
		}
	}
}
