// Package symtab implements the assembler's append-only symbol table.
package symtab

import (
	"fmt"
	"unicode"
)

// Kind classifies a symbol.
type Kind int

const (
	CODE Kind = iota
	DATA
	EXTERNAL
)

func (k Kind) String() string {
	switch k {
	case CODE:
		return "code"
	case DATA:
		return "data"
	case EXTERNAL:
		return "external"
	default:
		return "unknown"
	}
}

// MaxNameLength is the maximum number of visible characters in a symbol
// name, per spec section 6. It defaults to the spec's bound but is
// overridable at startup from the user's [assembler] max_label_length
// config setting (see cmd/asm10's wiring).
var MaxNameLength = 30

// Symbol is a single entry: name, address, and kind.
type Symbol struct {
	Name    string
	Address int
	Kind    Kind
}

// defaultReserved holds the fixed part of the reserved-word set from spec
// section 6: the directive bases, the macro keywords, and the register
// names. The 16 opcode mnemonics are not listed here; BuildReserved (and
// New through it) merges them in from the caller so that internal/isa
// stays the single source of truth for opcode names.
var defaultReserved = func() map[string]bool {
	m := make(map[string]bool)
	for _, w := range []string{
		"data", "string", "mat", "extern", "entry",
		"mcro", "mcroend",
	} {
		m[w] = true
	}
	for i := 0; i < 8; i++ {
		m[fmt.Sprintf("r%d", i)] = true
	}
	return m
}()

// Table is the per-file symbol table. Insertion is append-only: once a
// symbol is added it is never moved, except by RelocateData.
type Table struct {
	byName   map[string]*Symbol
	order    []*Symbol
	reserved map[string]bool
}

// BuildReserved merges opcodeNames into the fixed directive/macro/register
// reserved-word set from spec section 6. Exported so callers outside this
// package (the preprocessor, which validates macro names against the same
// reserved-word set) can reuse it without constructing a Table.
func BuildReserved(opcodeNames []string) map[string]bool {
	reserved := make(map[string]bool, len(defaultReserved)+len(opcodeNames))
	for w := range defaultReserved {
		reserved[w] = true
	}
	for _, name := range opcodeNames {
		reserved[name] = true
	}
	return reserved
}

// New creates an empty symbol table. opcodeNames is merged into the
// reserved-word set alongside the fixed directive/macro/register names.
func New(opcodeNames []string) *Table {
	return &Table{
		byName:   make(map[string]*Symbol),
		reserved: BuildReserved(opcodeNames),
	}
}

// IsReserved reports whether name collides with a reserved word.
func (t *Table) IsReserved(name string) bool {
	return t.reserved[name]
}

// ValidName reports whether name is a legal symbol/label/macro name:
// non-empty, within the length bound, alphabetic first character,
// alphanumeric rest.
func ValidName(name string) bool {
	if name == "" || len(name) > MaxNameLength {
		return false
	}
	for i, r := range name {
		if i == 0 {
			if !unicode.IsLetter(r) {
				return false
			}
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Add inserts a new symbol. It fails if the name is empty, too long, a
// reserved word, or already defined (with a distinct error for the
// extern/non-extern conflict cases, per spec section 4.2).
func (t *Table) Add(name string, address int, kind Kind) error {
	if name == "" || len(name) > MaxNameLength {
		return fmt.Errorf("invalid symbol name %q: empty or exceeds %d characters", name, MaxNameLength)
	}
	if t.reserved[name] {
		return fmt.Errorf("symbol %q collides with a reserved word", name)
	}
	if existing, ok := t.byName[name]; ok {
		switch {
		case existing.Kind == EXTERNAL && kind != EXTERNAL:
			return fmt.Errorf("symbol %q already declared extern, cannot also be defined", name)
		case existing.Kind == EXTERNAL && kind == EXTERNAL:
			return fmt.Errorf("symbol %q already declared extern", name)
		default:
			return fmt.Errorf("symbol %q already defined", name)
		}
	}
	sym := &Symbol{Name: name, Address: address, Kind: kind}
	t.byName[name] = sym
	t.order = append(t.order, sym)
	return nil
}

// Find looks up a symbol by exact name.
func (t *Table) Find(name string) *Symbol {
	return t.byName[name]
}

// RelocateData adds icf to the address of every DATA symbol, once the
// first pass has finished and the final instruction counter is known.
func (t *Table) RelocateData(icf int) {
	for _, sym := range t.order {
		if sym.Kind == DATA {
			sym.Address += icf
		}
	}
}

// All returns every symbol in insertion order.
func (t *Table) All() []*Symbol {
	return t.order
}
