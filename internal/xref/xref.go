// Package xref generates a symbol cross-reference report over a completed
// assembly session: for every symbol, its kind and address and every
// command that references it. The line that defines a symbol is not
// recorded. Adapted from the teacher's ARM-specific
// XRefGenerator, re-targeted at the ten-bit ISA's operand model.
package xref

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lookbusy1344/asm10/internal/firstpass"
	"github.com/lookbusy1344/asm10/internal/isa"
	"github.com/lookbusy1344/asm10/internal/operand"
	"github.com/lookbusy1344/asm10/internal/symtab"
)

// RefKind classifies how a command refers to a symbol.
type RefKind int

const (
	RefSource RefKind = iota
	RefDestination
	RefMatrixBase
)

func (k RefKind) String() string {
	switch k {
	case RefSource:
		return "source operand"
	case RefDestination:
		return "destination operand"
	case RefMatrixBase:
		return "matrix base"
	default:
		return "unknown"
	}
}

// Reference is a single use of a symbol by a command.
type Reference struct {
	Kind RefKind
	Line int
}

// Entry is one symbol's definition and every reference to it.
type Entry struct {
	Name       string
	Kind       symtab.Kind
	Address    int
	References []Reference
}

// Build walks fr's symbol table and command list and produces one Entry
// per symbol, sorted by address.
func Build(fr *firstpass.Result) []Entry {
	entries := make(map[string]*Entry, len(fr.Symbols.All()))
	for _, sym := range fr.Symbols.All() {
		entries[sym.Name] = &Entry{Name: sym.Name, Kind: sym.Kind, Address: sym.Address}
	}

	for _, cmd := range fr.Commands {
		if cmd.Src != "" {
			addReference(entries, cmd.Src, RefSource, cmd.Pos.Line)
		}
		if cmd.Dst != "" {
			addReference(entries, cmd.Dst, RefDestination, cmd.Pos.Line)
		}
	}

	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

// addReference re-parses operand text exactly as the second pass does,
// and records a reference if it names a symbol (DIRECT or MATRIX mode).
func addReference(entries map[string]*Entry, text string, kind RefKind, line int) {
	mode := operand.Classify(text)
	switch mode {
	case isa.Direct:
		if e, ok := entries[text]; ok {
			e.References = append(e.References, Reference{Kind: kind, Line: line})
		}
	case isa.Matrix:
		m, err := operand.ParseMatrix(text)
		if err != nil {
			return
		}
		if e, ok := entries[m.Label]; ok {
			e.References = append(e.References, Reference{Kind: RefMatrixBase, Line: line})
		}
	}
}

// Render formats entries as a human-readable report.
func Render(entries []Entry) string {
	var sb strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&sb, "%-20s %-9s addr=%-4d refs=%d\n", e.Name, e.Kind, e.Address, len(e.References))
		for _, ref := range e.References {
			fmt.Fprintf(&sb, "    line %-4d %s\n", ref.Line, ref.Kind)
		}
	}
	return sb.String()
}
