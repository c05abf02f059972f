// Package preprocess implements the macro preprocessor: a line-oriented
// state machine that collects mcro/mcroend bodies and substitutes them
// verbatim at each call site, per spec section 4.3.
package preprocess

import (
	"fmt"
	"strings"

	"github.com/lookbusy1344/asm10/internal/clean"
	"github.com/lookbusy1344/asm10/internal/diag"
	"github.com/lookbusy1344/asm10/internal/isa"
	"github.com/lookbusy1344/asm10/internal/symtab"
)

// reserved is the full reserved-word set (opcodes, registers, directive
// bases, macro keywords) that a macro name must not collide with.
var reserved = symtab.BuildReserved(isa.Names())

// Macro is a named sequence of source lines, recorded in declaration order.
type Macro struct {
	Name      string
	Body      string // body lines as cleaned, in order, each ending in "\n"; empty lines dropped
	StartLine int
}

type state int

const (
	outside state = iota
	insideMacro
)

// Preprocessor runs the OUTSIDE/INSIDE_MACRO state machine described in
// spec section 4.3.
type Preprocessor struct {
	filename string
	diags    *diag.Diagnostics

	state    state
	macros   map[string]*Macro
	order    []string
	curName  string
	curStart int
	bodyBuf  strings.Builder
}

// New creates a Preprocessor for a single file's processing.
func New(filename string) *Preprocessor {
	return &Preprocessor{
		filename: filename,
		diags:    &diag.Diagnostics{},
		macros:   make(map[string]*Macro),
	}
}

// Diagnostics returns the accumulated error list.
func (p *Preprocessor) Diagnostics() *diag.Diagnostics {
	return p.diags
}

// Macros returns every finalized macro, in declaration order.
func (p *Preprocessor) Macros() []*Macro {
	out := make([]*Macro, len(p.order))
	for i, name := range p.order {
		out[i] = p.macros[name]
	}
	return out
}

// Run processes raw source text line by line and returns the expanded,
// cleaned source.
func (p *Preprocessor) Run(source string) string {
	lines := strings.Split(source, "\n")
	var out strings.Builder

	for i, raw := range lines {
		lineNum := i + 1
		line := clean.Line(raw)
		if line == "" {
			continue
		}
		p.processLine(line, lineNum, &out)
	}

	if p.state == insideMacro {
		p.errf(p.curStart, "unterminated macro %q: reached end of file before mcroend", p.curName)
	}

	return out.String()
}

func (p *Preprocessor) processLine(line string, lineNum int, out *strings.Builder) {
	first, rest := splitFirstToken(line)

	if p.state == insideMacro {
		if first == "mcroend" {
			if rest != "" {
				p.errf(lineNum, "extra tokens after mcroend: %q", rest)
				return
			}
			p.macros[p.curName] = &Macro{Name: p.curName, Body: p.bodyBuf.String(), StartLine: p.curStart}
			p.order = append(p.order, p.curName)
			p.state = outside
			p.curName = ""
			p.bodyBuf.Reset()
			return
		}
		p.bodyBuf.WriteString(line)
		p.bodyBuf.WriteString("\n")
		return
	}

	// state == outside
	if first == "mcro" {
		name, extra := splitFirstToken(rest)
		if name == "" || extra != "" {
			p.errf(lineNum, "mcro requires exactly one name, got %q", rest)
			return
		}
		if !symtab.ValidName(name) {
			p.errf(lineNum, "illegal macro name %q", name)
			return
		}
		if reserved[name] {
			p.errf(lineNum, "macro name %q collides with a reserved word", name)
			return
		}
		if _, exists := p.macros[name]; exists {
			p.errf(lineNum, "macro %q already defined", name)
			return
		}
		p.state = insideMacro
		p.curName = name
		p.curStart = lineNum
		p.bodyBuf.Reset()
		return
	}

	if first == "mcroend" {
		p.errf(lineNum, "mcroend without matching mcro")
		return
	}

	// A line may be "label: NAME" (label-prefixed macro call) or just
	// "NAME" (bare macro call). Both require no extra tokens after NAME.
	label, afterLabel, hasLabel := splitLabel(line)
	callText := line
	prefix := ""
	if hasLabel {
		callText = afterLabel
		prefix = label + ": "
	}
	callName, callExtra := splitFirstToken(callText)
	if _, ok := p.macros[callName]; ok {
		if callExtra != "" {
			p.errf(lineNum, "extra tokens after macro call %q: %q", callName, callExtra)
			return
		}
		out.WriteString(prefix)
		out.WriteString(p.macros[callName].Body)
		return
	}

	out.WriteString(line)
	out.WriteString("\n")
}

// splitLabel splits "label: rest" into (label, rest, true), or returns
// ("", line, false) if line has no label prefix.
func splitLabel(line string) (string, string, bool) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return "", line, false
	}
	label := line[:idx]
	if strings.ContainsAny(label, " \t") {
		return "", line, false
	}
	rest := strings.TrimSpace(line[idx+1:])
	return label, rest, true
}

// splitFirstToken splits s on the first whitespace run, returning the
// first token and the (trimmed) remainder.
func splitFirstToken(s string) (string, string) {
	s = strings.TrimSpace(s)
	idx := strings.IndexAny(s, " \t")
	if idx < 0 {
		return s, ""
	}
	return s[:idx], strings.TrimSpace(s[idx+1:])
}

func (p *Preprocessor) errf(line int, format string, args ...any) {
	p.diags.Add(diag.Position{Filename: p.filename, Line: line}, diag.Preprocessor, "", fmt.Sprintf(format, args...))
}
