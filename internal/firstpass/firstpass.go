package firstpass

import (
	"fmt"
	"strings"

	"github.com/lookbusy1344/asm10/internal/diag"
	"github.com/lookbusy1344/asm10/internal/isa"
	"github.com/lookbusy1344/asm10/internal/operand"
	"github.com/lookbusy1344/asm10/internal/symtab"
	"github.com/lookbusy1344/asm10/internal/word"
)

// Result is everything the first pass produces for a single file, ready
// to be handed to the second pass.
type Result struct {
	Diags      *diag.Diagnostics
	Symbols    *symtab.Table
	Commands   []*Command
	Directives []*Directive
	Image      *Image
	IC         int // final IC (ICF)
	DC         int // final DC (DCF)
}

// pass holds the mutable state threaded through one file's first-pass run.
// Per spec section 5, this state is owned by the caller and reinitialized
// between files -- it is never a process global.
type pass struct {
	filename string
	diags    *diag.Diagnostics
	symbols  *symtab.Table
	image    *Image
	commands []*Command
	dirs     []*Directive
	ic       int
	dc       int
}

// Run executes the first pass over already-preprocessed, cleaned source
// text (one statement per line, blank lines already removed is not
// required -- blank lines are skipped here too).
func Run(filename, source string) *Result {
	p := &pass{
		filename: filename,
		diags:    &diag.Diagnostics{},
		symbols:  symtab.New(isa.Names()),
		image:    &Image{},
		ic:       ICInit,
		dc:       0,
	}

	for i, raw := range strings.Split(source, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if len(line) > MaxLineLen {
			p.errf(i+1, "", "line exceeds the %d-character limit (%d characters)", MaxLineLen, len(line))
			continue
		}
		p.line(i+1, line)
	}

	p.symbols.RelocateData(p.ic)

	limit := MaxMemory
	if limit > hardMaxMemory {
		limit = hardMaxMemory
	}
	if p.ic+p.dc > limit {
		p.diags.Add(p.pos(0), diag.FirstPass, "",
			fmt.Sprintf("program requires %d words (code+data), exceeding the %d-word memory", p.ic+p.dc, limit))
	}

	return &Result{
		Diags:      p.diags,
		Symbols:    p.symbols,
		Commands:   p.commands,
		Directives: p.dirs,
		Image:      p.image,
		IC:         p.ic,
		DC:         p.dc,
	}
}

func (p *pass) pos(line int) diag.Position {
	return diag.Position{Filename: p.filename, Line: line}
}

func (p *pass) errf(line int, token, format string, args ...any) {
	p.diags.Add(p.pos(line), diag.FirstPass, token, fmt.Sprintf(format, args...))
}

// line processes one cleaned, non-empty source line.
func (p *pass) line(lineNum int, text string) {
	label, rest, hasLabel := extractLabel(text)
	if hasLabel {
		if !symtab.ValidName(label) || p.symbols.IsReserved(label) {
			p.errf(lineNum, label, "illegal label name")
			hasLabel = false
			label = ""
		}
		text = rest
	}

	first, operandText := splitFirstToken(text)
	if first == "" {
		return
	}

	if strings.HasPrefix(first, ".") {
		p.directive(lineNum, first, operandText, label, hasLabel)
		return
	}

	p.instruction(lineNum, first, operandText, label, hasLabel)
}

// extractLabel splits "label: rest" off the front of a line. Returns
// ok=false if there is no ':' token at the start.
func extractLabel(text string) (label, rest string, ok bool) {
	idx := strings.IndexByte(text, ':')
	if idx < 0 {
		return "", text, false
	}
	candidate := text[:idx]
	if candidate == "" || strings.ContainsAny(candidate, " \t") {
		return "", text, false
	}
	return candidate, strings.TrimSpace(text[idx+1:]), true
}

func splitFirstToken(s string) (string, string) {
	s = strings.TrimSpace(s)
	idx := strings.IndexAny(s, " \t")
	if idx < 0 {
		return s, ""
	}
	return s[:idx], strings.TrimSpace(s[idx+1:])
}

// splitOperands splits operand text on the single comma allowed between
// source and destination operands. More than one comma is an error.
func splitOperands(text string) (parts []string, err error) {
	if text == "" {
		return nil, nil
	}
	if strings.HasSuffix(text, ",") {
		return nil, fmt.Errorf("trailing comma")
	}
	fields := strings.Split(text, ",")
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	if len(fields) > 2 {
		return nil, fmt.Errorf("too many commas in operand list %q", text)
	}
	return fields, nil
}

// --- instructions -----------------------------------------------------

func (p *pass) instruction(lineNum int, mnemonic, operandText, label string, hasLabel bool) {
	inst, ok := isa.Lookup(mnemonic)
	if !ok {
		p.errf(lineNum, mnemonic, "unknown opcode")
		return
	}

	operands, err := splitOperands(operandText)
	if err != nil {
		p.errf(lineNum, operandText, "%v", err)
		return
	}

	var srcText, dstText string
	switch len(operands) {
	case 0:
		// no operands supplied
	case 1:
		dstText = operands[0]
	case 2:
		srcText, dstText = operands[0], operands[1]
	}

	wantSrc := inst.HasSrc()
	wantDst := inst.HasDst()
	haveSrc := srcText != ""
	haveDst := dstText != ""

	expected := 0
	if wantSrc {
		expected++
	}
	if wantDst {
		expected++
	}
	got := len(operands)
	if got != expected {
		p.errf(lineNum, mnemonic, "opcode %q expects %d operand(s), got %d", mnemonic, expected, got)
		return
	}
	if wantSrc != haveSrc || wantDst != haveDst {
		p.errf(lineNum, mnemonic, "opcode %q operand shape mismatch", mnemonic)
		return
	}

	var srcMode, dstMode isa.Mode
	if haveSrc {
		srcMode = operand.Classify(srcText)
		if !inst.AllowsSrc(srcMode) {
			p.errf(lineNum, srcText, "addressing mode %s not allowed as source for %q", srcMode, mnemonic)
			return
		}
	}
	if haveDst {
		dstMode = operand.Classify(dstText)
		if !inst.AllowsDst(dstMode) {
			p.errf(lineNum, dstText, "addressing mode %s not allowed as destination for %q", dstMode, mnemonic)
			return
		}
	}

	length := instructionLength(haveSrc, srcMode, haveDst, dstMode)

	if hasLabel {
		if err := p.symbols.Add(label, p.ic, symtab.CODE); err != nil {
			p.errf(lineNum, label, "%v", err)
		}
	}

	cmd := &Command{
		Label:   label,
		StartIC: p.ic,
		Length:  length,
		Opcode:  inst.Opcode,
		Src:     srcText,
		Dst:     dstText,
		Pos:     p.pos(lineNum),
	}
	p.commands = append(p.commands, cmd)

	p.emit(lineNum, cmd, inst, haveSrc, srcMode, srcText, haveDst, dstMode, dstText)

	p.ic += length
}

// instructionLength computes L per spec section 4.6 step 4.5: base 1 for
// the opcode word, +1 shared word if both operands are REGISTER,
// otherwise +1 per operand except MATRIX which adds 2.
func instructionLength(haveSrc bool, srcMode isa.Mode, haveDst bool, dstMode isa.Mode) int {
	length := 1
	if haveSrc && haveDst && srcMode == isa.Register && dstMode == isa.Register {
		return length + 1
	}
	if haveSrc {
		if srcMode == isa.Matrix {
			length += 2
		} else {
			length++
		}
	}
	if haveDst {
		if dstMode == isa.Matrix {
			length += 2
		} else {
			length++
		}
	}
	return length
}

// emit writes the opcode word and every extra-word placeholder into the
// image, advancing by the full expected length even when an operand's
// numeric value is out of range, so that downstream addresses remain
// valid and pass 2 can still run. Per spec section 9, this is intentional.
func (p *pass) emit(lineNum int, cmd *Command, inst isa.Instruction, haveSrc bool, srcMode isa.Mode, srcText string, haveDst bool, dstMode isa.Mode, dstText string) {
	idx := cmd.StartIC - ICInit
	p.image.Set(idx, word.PackOpcode(inst.Opcode, int(modeOrZero(haveSrc, srcMode)), int(modeOrZero(haveDst, dstMode)), word.AREAbsolute))
	idx++

	if haveSrc && haveDst && srcMode == isa.Register && dstMode == isa.Register {
		srcReg, _ := operand.Register(srcText)
		dstReg, _ := operand.Register(dstText)
		p.image.Set(idx, word.PackSharedRegister(srcReg, dstReg))
		return
	}

	if haveSrc {
		idx = p.emitOperand(lineNum, idx, srcMode, srcText, true)
	}
	if haveDst {
		idx = p.emitOperand(lineNum, idx, dstMode, dstText, false)
	}
}

func modeOrZero(have bool, m isa.Mode) isa.Mode {
	if !have {
		return 0
	}
	return m
}

// emitOperand writes one operand's extra word(s) at idx and returns the
// next free index.
func (p *pass) emitOperand(lineNum int, idx int, mode isa.Mode, text string, isSrc bool) int {
	switch mode {
	case isa.Register:
		reg, _ := operand.Register(text)
		p.image.Set(idx, word.PackRegister(reg, isSrc))
		return idx + 1

	case isa.Immediate:
		value, err := operand.Immediate(text)
		if err != nil {
			p.errf(lineNum, text, "%v", err)
		} else if value < ImmMin || value > ImmMax {
			p.errf(lineNum, text, "immediate value %d out of range [%d,%d]", value, ImmMin, ImmMax)
		} else {
			p.image.Set(idx, word.PackImmediate(value))
		}
		return idx + 1

	case isa.Direct:
		// Placeholder; resolved in the second pass.
		p.image.Set(idx, 0)
		return idx + 1

	case isa.Matrix:
		// Base-label placeholder, followed by the register-pair word.
		m, err := operand.ParseMatrix(text)
		if err != nil {
			p.errf(lineNum, text, "%v", err)
			p.image.Set(idx, 0)
			p.image.Set(idx+1, 0)
			return idx + 2
		}
		p.image.Set(idx, 0)
		p.image.Set(idx+1, word.PackMatrixRegisters(m.Row, m.Col))
		return idx + 2

	default:
		return idx + 1
	}
}

// --- directives ---------------------------------------------------------

func (p *pass) directive(lineNum int, name, operandText, label string, hasLabel bool) {
	switch name {
	case ".data":
		p.dataDirective(lineNum, operandText, label, hasLabel)
	case ".string":
		p.stringDirective(lineNum, operandText, label, hasLabel)
	case ".mat":
		p.matDirective(lineNum, operandText, label, hasLabel)
	case ".extern":
		p.externDirective(lineNum, operandText, label, hasLabel)
	case ".entry":
		p.entryDirective(lineNum, operandText, label, hasLabel)
	default:
		p.errf(lineNum, name, "unknown directive")
	}
}

func (p *pass) dataDirective(lineNum int, operandText, label string, hasLabel bool) {
	if strings.HasSuffix(strings.TrimSpace(operandText), ",") {
		p.errf(lineNum, operandText, "trailing comma in .data operand list")
		return
	}
	var values []int
	if strings.TrimSpace(operandText) != "" {
		for _, tok := range strings.Split(operandText, ",") {
			tok = strings.TrimSpace(tok)
			v, err := operand.ParseSignedInt(tok)
			if err != nil {
				p.errf(lineNum, tok, "%v", err)
				continue
			}
			if v < DataWordMin || v > DataWordMax {
				p.errf(lineNum, tok, "data value %d out of range [%d,%d]", v, DataWordMin, DataWordMax)
				continue
			}
			values = append(values, v)
		}
	}

	dataAddr := p.dc
	if hasLabel {
		if err := p.symbols.Add(label, dataAddr, symtab.DATA); err != nil {
			p.errf(lineNum, label, "%v", err)
		}
	}
	p.dirs = append(p.dirs, &Directive{
		Label:    label,
		Words:    values,
		DataAddr: dataAddr,
		Pos:      p.pos(lineNum),
	})
	p.dc += len(values)
}

func (p *pass) stringDirective(lineNum int, operandText, label string, hasLabel bool) {
	s, err := parseStringLiteral(operandText)
	if err != nil {
		p.errf(lineNum, operandText, "%v", err)
		return
	}

	words := make([]int, 0, len(s)+1)
	for _, c := range []byte(s) {
		words = append(words, int(c))
	}
	words = append(words, 0)

	dataAddr := p.dc
	if hasLabel {
		if err := p.symbols.Add(label, dataAddr, symtab.DATA); err != nil {
			p.errf(lineNum, label, "%v", err)
		}
	}
	p.dirs = append(p.dirs, &Directive{
		Label:    label,
		Words:    words,
		DataAddr: dataAddr,
		Pos:      p.pos(lineNum),
	})
	p.dc += len(words)
}

// parseStringLiteral validates and unquotes a "..." literal: the opening
// and closing quote must both be present, and nothing but whitespace may
// follow the closing quote.
func parseStringLiteral(text string) (string, error) {
	text = strings.TrimSpace(text)
	if len(text) < 2 || text[0] != '"' {
		return "", fmt.Errorf("missing opening quote in %q", text)
	}
	closeIdx := strings.IndexByte(text[1:], '"')
	if closeIdx < 0 {
		return "", fmt.Errorf("missing closing quote in %q", text)
	}
	closeIdx++ // index within text
	trailing := strings.TrimSpace(text[closeIdx+1:])
	if trailing != "" {
		return "", fmt.Errorf("trailing text after closing quote in %q", text)
	}
	return text[1:closeIdx], nil
}

func (p *pass) matDirective(lineNum int, operandText, label string, hasLabel bool) {
	dims, rest, err := parseMatDims(operandText)
	if err != nil {
		p.errf(lineNum, operandText, "%v", err)
		return
	}
	rows, cols := dims[0], dims[1]
	if rows <= 0 || cols <= 0 {
		p.errf(lineNum, operandText, ".mat dimensions must be positive, got [%d][%d]", rows, cols)
		return
	}
	cells := rows * cols

	var values []int
	rest = strings.TrimSpace(rest)
	if strings.HasSuffix(rest, ",") {
		p.errf(lineNum, rest, "trailing comma in .mat operand list")
		return
	}
	if rest != "" {
		for _, tok := range strings.Split(rest, ",") {
			tok = strings.TrimSpace(tok)
			v, err := operand.ParseSignedInt(tok)
			if err != nil {
				p.errf(lineNum, tok, "%v", err)
				continue
			}
			if v < DataWordMin || v > DataWordMax {
				p.errf(lineNum, tok, "data value %d out of range [%d,%d]", v, DataWordMin, DataWordMax)
				continue
			}
			values = append(values, v)
		}
	}
	if len(values) > cells {
		p.errf(lineNum, operandText, ".mat value count %d exceeds declared cells %d", len(values), cells)
		values = values[:cells]
	}
	for len(values) < cells {
		values = append(values, 0)
	}

	dataAddr := p.dc
	if hasLabel {
		if err := p.symbols.Add(label, dataAddr, symtab.DATA); err != nil {
			p.errf(lineNum, label, "%v", err)
		}
	}
	p.dirs = append(p.dirs, &Directive{
		Label:    label,
		Words:    values,
		DataAddr: dataAddr,
		Pos:      p.pos(lineNum),
	})
	p.dc += cells
}

// parseMatDims parses the leading "[rows][cols]" and returns the two
// dimensions plus the remaining (optional values) text.
func parseMatDims(text string) ([2]int, string, error) {
	text = strings.TrimSpace(text)
	if len(text) == 0 || text[0] != '[' {
		return [2]int{}, "", fmt.Errorf(".mat requires [rows][cols] dimensions")
	}
	end1 := strings.IndexByte(text, ']')
	if end1 < 0 {
		return [2]int{}, "", fmt.Errorf("missing ']' in .mat dimensions")
	}
	rowsStr := text[1:end1]
	remaining := text[end1+1:]
	if len(remaining) == 0 || remaining[0] != '[' {
		return [2]int{}, "", fmt.Errorf(".mat requires a second [cols] dimension")
	}
	end2 := strings.IndexByte(remaining, ']')
	if end2 < 0 {
		return [2]int{}, "", fmt.Errorf("missing ']' in .mat dimensions")
	}
	colsStr := remaining[1:end2]

	rows, err := operand.ParseSignedInt(rowsStr)
	if err != nil {
		return [2]int{}, "", fmt.Errorf("invalid row count %q", rowsStr)
	}
	cols, err := operand.ParseSignedInt(colsStr)
	if err != nil {
		return [2]int{}, "", fmt.Errorf("invalid column count %q", colsStr)
	}

	rest := strings.TrimSpace(remaining[end2+1:])
	rest = strings.TrimPrefix(rest, ",")
	return [2]int{rows, cols}, rest, nil
}

func (p *pass) externDirective(lineNum int, operandText, label string, hasLabel bool) {
	if hasLabel {
		p.diags.AddWarning(p.pos(lineNum), diag.FirstPass, label, "label preceding .extern is ignored")
	}
	name := strings.TrimSpace(operandText)
	if !symtab.ValidName(name) {
		p.errf(lineNum, name, "illegal .extern symbol name")
		return
	}
	if err := p.symbols.Add(name, 0, symtab.EXTERNAL); err != nil {
		p.errf(lineNum, name, "%v", err)
	}
	p.dirs = append(p.dirs, &Directive{
		ArgLabel: name,
		IsExtern: true,
		Pos:      p.pos(lineNum),
	})
}

func (p *pass) entryDirective(lineNum int, operandText, label string, hasLabel bool) {
	if hasLabel {
		p.diags.AddWarning(p.pos(lineNum), diag.FirstPass, label, "label preceding .entry is ignored")
	}
	name := strings.TrimSpace(operandText)
	if !symtab.ValidName(name) {
		p.errf(lineNum, name, "illegal .entry symbol name")
		return
	}
	p.dirs = append(p.dirs, &Directive{
		ArgLabel: name,
		IsEntry:  true,
		Pos:      p.pos(lineNum),
	})
}
