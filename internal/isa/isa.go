// Package isa holds the static ten-bit instruction set table: opcode
// numbers and the addressing modes each opcode's source and destination
// operands may legally use.
package isa

// Mode is one of the four addressing modes, numbered as in spec section 3.
type Mode int

const (
	Immediate Mode = 0
	Direct    Mode = 1
	Matrix    Mode = 2
	Register  Mode = 3
)

func (m Mode) String() string {
	switch m {
	case Immediate:
		return "immediate"
	case Direct:
		return "direct"
	case Matrix:
		return "matrix"
	case Register:
		return "register"
	default:
		return "unknown"
	}
}

// modeBit is the bitmask bit for a given mode, used to build the
// per-opcode allowed-mode masks below.
func modeBit(m Mode) int { return 1 << uint(m) }

// AllModes is a bitmask allowing all four addressing modes.
const AllModes = 1<<Immediate | 1<<Direct | 1<<Matrix | 1<<Register

// NoModes is a bitmask allowing no operand at all.
const NoModes = 0

// Instruction describes one opcode's encoding and addressing legality.
type Instruction struct {
	Name    string
	Opcode  int
	SrcMask int // bitmask of Mode values legal as the source operand
	DstMask int // bitmask of Mode values legal as the destination operand
}

// AllowsSrc reports whether mode is legal as this instruction's source.
func (in Instruction) AllowsSrc(m Mode) bool { return in.SrcMask&modeBit(m) != 0 }

// AllowsDst reports whether mode is legal as this instruction's destination.
func (in Instruction) AllowsDst(m Mode) bool { return in.DstMask&modeBit(m) != 0 }

// HasSrc reports whether this instruction takes a source operand.
func (in Instruction) HasSrc() bool { return in.SrcMask != 0 }

// HasDst reports whether this instruction takes a destination operand.
func (in Instruction) HasDst() bool { return in.DstMask != 0 }

// twoOperand is the source addressing mask shared by ordinary two-operand
// instructions: any mode may be used as source. Only cmp also uses it as
// its destination mask; mov, add and sub forbid an immediate destination.
const twoOperand = AllModes

// Table is the fixed, ordered list of the 16 opcodes, per spec section 4.4.
var Table = []Instruction{
	{Name: "mov", Opcode: 0, SrcMask: twoOperand, DstMask: AllModes &^ modeBit(Immediate)},
	{Name: "cmp", Opcode: 1, SrcMask: twoOperand, DstMask: twoOperand},
	{Name: "add", Opcode: 2, SrcMask: twoOperand, DstMask: AllModes &^ modeBit(Immediate)},
	{Name: "sub", Opcode: 3, SrcMask: twoOperand, DstMask: AllModes &^ modeBit(Immediate)},
	{Name: "lea", Opcode: 4, SrcMask: modeBit(Direct) | modeBit(Matrix), DstMask: AllModes &^ modeBit(Immediate)},
	{Name: "clr", Opcode: 5, SrcMask: NoModes, DstMask: AllModes &^ modeBit(Immediate)},
	{Name: "not", Opcode: 6, SrcMask: NoModes, DstMask: AllModes &^ modeBit(Immediate)},
	{Name: "inc", Opcode: 7, SrcMask: NoModes, DstMask: AllModes &^ modeBit(Immediate)},
	{Name: "dec", Opcode: 8, SrcMask: NoModes, DstMask: AllModes &^ modeBit(Immediate)},
	{Name: "jmp", Opcode: 9, SrcMask: NoModes, DstMask: modeBit(Direct) | modeBit(Register)},
	{Name: "bne", Opcode: 10, SrcMask: NoModes, DstMask: modeBit(Direct) | modeBit(Register)},
	{Name: "jsr", Opcode: 11, SrcMask: NoModes, DstMask: modeBit(Direct) | modeBit(Register)},
	{Name: "red", Opcode: 12, SrcMask: NoModes, DstMask: AllModes &^ modeBit(Immediate)},
	{Name: "prn", Opcode: 13, SrcMask: NoModes, DstMask: AllModes},
	{Name: "rts", Opcode: 14, SrcMask: NoModes, DstMask: NoModes},
	{Name: "stop", Opcode: 15, SrcMask: NoModes, DstMask: NoModes},
}

var byName map[string]Instruction

func init() {
	byName = make(map[string]Instruction, len(Table))
	for _, in := range Table {
		byName[in.Name] = in
	}
}

// Lookup returns the Instruction for a mnemonic, and whether it exists.
func Lookup(mnemonic string) (Instruction, bool) {
	in, ok := byName[mnemonic]
	return in, ok
}

// Names returns every opcode mnemonic, used to seed the symbol table's
// reserved-word set.
func Names() []string {
	names := make([]string, len(Table))
	for i, in := range Table {
		names[i] = in.Name
	}
	return names
}
