package fmtsrc

import (
	"strings"
	"testing"
)

func TestFormatCleansOrdinaryLines(t *testing.T) {
	got := Format("   mov   r1,r2   ; comment\n")
	if got != "mov r1, r2\n" {
		t.Errorf("got %q", got)
	}
}

func TestFormatDropsBlankLines(t *testing.T) {
	got := Format("mov r1, r2\n\n   \nstop\n")
	if strings.Count(got, "\n\n") != 0 {
		t.Errorf("expected no blank lines, got %q", got)
	}
}

func TestFormatPreservesMacroBodyVerbatim(t *testing.T) {
	src := "mcro M\n   mov    r1,   r2   \nmcroend\nM\n"
	got := Format(src)
	if !strings.Contains(got, "   mov    r1,   r2   \n") {
		t.Errorf("expected macro body preserved verbatim, got:\n%q", got)
	}
}

func TestFormatEndsWithSingleTrailingNewline(t *testing.T) {
	got := Format("stop\n")
	if !strings.HasSuffix(got, "stop\n") || strings.HasSuffix(got, "stop\n\n") {
		t.Errorf("got %q", got)
	}
}
