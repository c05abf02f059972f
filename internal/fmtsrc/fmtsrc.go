// Package fmtsrc rewrites an assembly source file through the line
// cleaner, normalizing comment/whitespace style without touching macro
// bodies (which spec section 4.3 requires to be preserved verbatim).
// Adapted from the teacher's tools/format.go file-rewrite shape.
package fmtsrc

import (
	"strings"

	"github.com/lookbusy1344/asm10/internal/clean"
)

// Format cleans every line of source that is not inside a mcro/mcroend
// body, leaving macro body lines (and the closing mcroend line) as
// written. Empty lines are dropped everywhere, macro bodies included.
func Format(source string) string {
	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))

	insideMacro := false
	for _, raw := range lines {
		if insideMacro {
			out = append(out, raw)
			if firstToken(raw) == "mcroend" {
				insideMacro = false
			}
			continue
		}

		line := clean.Line(raw)
		if firstToken(line) == "mcro" {
			insideMacro = true
		}
		out = append(out, line)
	}

	// Drop every empty line (including one left empty by cleaning, or an
	// empty line inside a macro body), matching the assembler's
	// own "empty lines are skipped" rule (spec section 4.1), but keep a
	// single trailing newline for a well-formed text file.
	filtered := out[:0]
	for _, l := range out {
		if l != "" {
			filtered = append(filtered, l)
		}
	}
	return strings.Join(filtered, "\n") + "\n"
}

func firstToken(s string) string {
	s = strings.TrimSpace(s)
	idx := strings.IndexAny(s, " \t")
	if idx < 0 {
		return s
	}
	return s[:idx]
}
