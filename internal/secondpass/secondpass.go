// Package secondpass implements the assembler's second pass: it walks the
// command list emitted by the first pass, resolves every symbolic operand
// against the symbol table, patches addresses and A/R/E bits into the
// placeholder words, and assembles the object/entries/externals output
// records, per spec section 4.7.
package secondpass

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lookbusy1344/asm10/internal/diag"
	"github.com/lookbusy1344/asm10/internal/firstpass"
	"github.com/lookbusy1344/asm10/internal/isa"
	"github.com/lookbusy1344/asm10/internal/operand"
	"github.com/lookbusy1344/asm10/internal/symtab"
	"github.com/lookbusy1344/asm10/internal/word"
)

// ObjectLine is one "<addr> <word>" line of the object file, in decimal
// form -- callers render it to base-4 letters when writing the file.
type ObjectLine struct {
	Addr int
	Word int
}

// LabelLine is one "<label> <addr>" line of the entries or externals file.
type LabelLine struct {
	Label string
	Addr  int
}

// Result holds everything the second pass produces, before it is rendered
// to the base-4-letter text format and written to disk.
type Result struct {
	Diags     *diag.Diagnostics
	Object    []ObjectLine
	Entries   []LabelLine
	Externals []LabelLine
}

// Run patches fr's code image and produces the object/entries/externals
// records. fr must come from a completed, error-free first pass.
func Run(filename string, fr *firstpass.Result) *Result {
	r := &Result{Diags: &diag.Diagnostics{}}

	for _, cmd := range fr.Commands {
		patchCommand(r, filename, fr, cmd)
	}

	buildEntries(r, filename, fr)
	buildObject(r, fr)

	return r
}

func errf(r *Result, filename string, line int, token, format string, args ...any) {
	r.Diags.Add(diag.Position{Filename: filename, Line: line}, diag.SecondPass, token, fmt.Sprintf(format, args...))
}

// patchCommand re-derives the command's addressing modes from its stored
// operand text and resolves each extra word in source-then-destination
// order, per spec section 4.7.
func patchCommand(r *Result, filename string, fr *firstpass.Result, cmd *firstpass.Command) {
	idx := cmd.StartIC - firstpass.ICInit + 1
	line := cmd.Pos.Line

	haveSrc := cmd.Src != ""
	haveDst := cmd.Dst != ""
	var srcMode, dstMode isa.Mode
	if haveSrc {
		srcMode = operand.Classify(cmd.Src)
	}
	if haveDst {
		dstMode = operand.Classify(cmd.Dst)
	}

	if haveSrc && haveDst && srcMode == isa.Register && dstMode == isa.Register {
		markAbsolute(fr.Image, idx)
		return
	}

	if haveSrc {
		idx = patchOperand(r, filename, fr, line, idx, srcMode, cmd.Src)
	}
	if haveDst {
		idx = patchOperand(r, filename, fr, line, idx, dstMode, cmd.Dst)
	}
}

// patchOperand resolves one operand's extra word(s) at idx and returns
// the next free index.
func patchOperand(r *Result, filename string, fr *firstpass.Result, line, idx int, mode isa.Mode, text string) int {
	switch mode {
	case isa.Register, isa.Immediate:
		markAbsolute(fr.Image, idx)
		return idx + 1

	case isa.Direct:
		resolveDirect(r, filename, fr, line, idx, text)
		return idx + 1

	case isa.Matrix:
		m, err := operand.ParseMatrix(text)
		if err != nil {
			errf(r, filename, line, text, "%v", err)
			return idx + 2
		}
		resolveDirect(r, filename, fr, line, idx, m.Label)
		markAbsolute(fr.Image, idx+1)
		return idx + 2

	default:
		return idx + 1
	}
}

// resolveDirect looks up name and writes its patched word at idx,
// recording an external reference if name is an EXTERNAL symbol.
func resolveDirect(r *Result, filename string, fr *firstpass.Result, line, idx int, name string) {
	sym := fr.Symbols.Find(name)
	if sym == nil {
		errf(r, filename, line, name, "undefined symbol %q", name)
		fr.Image.Set(idx, 0)
		return
	}
	addr := firstpass.ICInit + idx
	if sym.Kind == symtab.EXTERNAL {
		fr.Image.Set(idx, word.AREExternal)
		r.Externals = append(r.Externals, LabelLine{Label: name, Addr: addr})
		return
	}
	fr.Image.Set(idx, word.PackDirect(sym.Address, word.ARERelocatable))
}

// markAbsolute clears the A/R/E bits of the word already at idx, leaving
// the rest of the word (register nibbles, immediate payload) untouched.
func markAbsolute(img *firstpass.Image, idx int) {
	img.Set(idx, img.Get(idx)&^0b11)
}

// buildEntries resolves every .entry directive's argument symbol, per
// spec section 4.7: missing symbol or an EXTERNAL symbol are both errors,
// and a symbol never appears in both an error and the entries list.
func buildEntries(r *Result, filename string, fr *firstpass.Result) {
	for _, d := range fr.Directives {
		if !d.IsEntry {
			continue
		}
		sym := fr.Symbols.Find(d.ArgLabel)
		line := d.Pos.Line
		switch {
		case sym == nil:
			errf(r, filename, line, d.ArgLabel, "entry refers to undefined symbol %q", d.ArgLabel)
		case sym.Kind == symtab.EXTERNAL:
			errf(r, filename, line, d.ArgLabel, "entry symbol %q is also declared extern", d.ArgLabel)
		default:
			r.Entries = append(r.Entries, LabelLine{Label: d.ArgLabel, Addr: sym.Address})
		}
	}
}

// buildObject emits code words first, then each directive's data words in
// insertion order, per spec section 4.7.
func buildObject(r *Result, fr *firstpass.Result) {
	for addr := firstpass.ICInit; addr < fr.IC; addr++ {
		r.Object = append(r.Object, ObjectLine{Addr: addr, Word: fr.Image.Get(addr - firstpass.ICInit)})
	}
	for _, d := range fr.Directives {
		for j, w := range d.Words {
			r.Object = append(r.Object, ObjectLine{Addr: fr.IC + d.DataAddr + j, Word: w})
		}
	}
}

// RenderObject renders Object lines as "<addr5> <word5>\n" text.
func RenderObject(lines []ObjectLine) string {
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(word.ToBase4Letters(l.Addr))
		sb.WriteByte(' ')
		sb.WriteString(word.ToBase4Letters(l.Word))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// RenderLabels renders entry/external LabelLines as "<label> <addr5>\n"
// text, in the order given -- callers decide whether to sort.
func RenderLabels(lines []LabelLine) string {
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l.Label)
		sb.WriteByte(' ')
		sb.WriteString(word.ToBase4Letters(l.Addr))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// SortedExternals returns externals sorted by address then label, purely
// for deterministic, readable output -- the spec does not mandate an
// order beyond "one line per reference site".
func SortedExternals(lines []LabelLine) []LabelLine {
	out := make([]LabelLine, len(lines))
	copy(out, lines)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Addr != out[j].Addr {
			return out[i].Addr < out[j].Addr
		}
		return out[i].Label < out[j].Label
	})
	return out
}
