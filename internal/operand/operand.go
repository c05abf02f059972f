// Package operand classifies operand text into one of the four
// addressing modes and parses the matrix operand's register pair.
package operand

import (
	"fmt"
	"strings"

	"github.com/lookbusy1344/asm10/internal/isa"
)

// Register parses "rN" for N in 0..7 and returns N. ok is false for any
// other text.
func Register(text string) (int, bool) {
	if len(text) != 2 || text[0] != 'r' {
		return 0, false
	}
	d := text[1]
	if d < '0' || d > '7' {
		return 0, false
	}
	return int(d - '0'), true
}

// Classify determines the addressing mode of trimmed operand text, per
// spec section 4.5: '#' prefix is IMMEDIATE, "rN" is REGISTER, any '['
// makes it MATRIX, otherwise DIRECT.
func Classify(text string) isa.Mode {
	text = strings.TrimSpace(text)
	switch {
	case strings.HasPrefix(text, "#"):
		return isa.Immediate
	default:
		if _, ok := Register(text); ok {
			return isa.Register
		}
		if strings.Contains(text, "[") {
			return isa.Matrix
		}
		return isa.Direct
	}
}

// Matrix is a parsed "LABEL[rX][rY]" operand.
type Matrix struct {
	Label string
	Row   int
	Col   int
}

// ParseMatrix parses the exact shape identifier[reg][reg]: two bracket
// pairs, each containing a register. Any deviation is a syntax error.
func ParseMatrix(text string) (Matrix, error) {
	text = strings.TrimSpace(text)
	first := strings.IndexByte(text, '[')
	if first < 0 {
		return Matrix{}, fmt.Errorf("matrix operand %q missing '['", text)
	}
	label := text[:first]
	if label == "" {
		return Matrix{}, fmt.Errorf("matrix operand %q missing label", text)
	}
	rest := text[first:]

	row, rest, err := takeBracketedRegister(rest)
	if err != nil {
		return Matrix{}, fmt.Errorf("matrix operand %q: %w", text, err)
	}
	col, rest, err := takeBracketedRegister(rest)
	if err != nil {
		return Matrix{}, fmt.Errorf("matrix operand %q: %w", text, err)
	}
	if rest != "" {
		return Matrix{}, fmt.Errorf("matrix operand %q has trailing text %q", text, rest)
	}

	return Matrix{Label: label, Row: row, Col: col}, nil
}

// takeBracketedRegister parses a single leading "[rN]" from s and returns
// the register index and the remaining text.
func takeBracketedRegister(s string) (int, string, error) {
	if len(s) == 0 || s[0] != '[' {
		return 0, s, fmt.Errorf("expected '['")
	}
	end := strings.IndexByte(s, ']')
	if end < 0 {
		return 0, s, fmt.Errorf("missing ']'")
	}
	inner := s[1:end]
	reg, ok := Register(inner)
	if !ok {
		return 0, s, fmt.Errorf("expected register inside brackets, got %q", inner)
	}
	return reg, s[end+1:], nil
}

// Immediate parses "#n" and returns the signed value, validating the
// numeric form (optional '+'/'-', digits only).
func Immediate(text string) (int, error) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "#") {
		return 0, fmt.Errorf("immediate operand %q missing '#'", text)
	}
	return ParseSignedInt(text[1:])
}

// ParseSignedInt parses an optional sign followed by one or more digits.
// Used for immediate operands and .data/.mat literal lists.
func ParseSignedInt(text string) (int, error) {
	if text == "" {
		return 0, fmt.Errorf("empty numeric literal")
	}
	neg := false
	i := 0
	switch text[0] {
	case '+':
		i = 1
	case '-':
		neg = true
		i = 1
	}
	if i >= len(text) {
		return 0, fmt.Errorf("invalid numeric literal %q", text)
	}
	value := 0
	for ; i < len(text); i++ {
		c := text[i]
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("invalid numeric literal %q", text)
		}
		value = value*10 + int(c-'0')
	}
	if neg {
		value = -value
	}
	return value, nil
}
