package parser

import "strconv"

// ParseValue decodes an integer literal to a value bounded to the given bit
// width (8 or 16). Three shapes are recognised, each required to match the
// entire text: "0x" hex, "0b" binary, and plain decimal. Hex and decimal
// values wider than the width are masked to it without a diagnostic; binary
// literals may carry at most width digits. Returns false for anything else.
func ParseValue(text string, bits int) (uint16, bool) {
	mask := uint64(1)<<bits - 1

	switch {
	case len(text) > 2 && (text[:2] == "0x" || text[:2] == "0X"):
		v, err := strconv.ParseUint(text[2:], 16, 64)
		if err != nil {
			return 0, false
		}
		return uint16(v & mask), true

	case len(text) > 2 && (text[:2] == "0b" || text[:2] == "0B"):
		digits := text[2:]
		if len(digits) > bits {
			return 0, false
		}
		v, err := strconv.ParseUint(digits, 2, 64)
		if err != nil {
			return 0, false
		}
		return uint16(v & mask), true

	default:
		v, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			return 0, false
		}
		return uint16(v & mask), true
	}
}

// IsNumeric reports whether the operand text begins with a decimal digit,
// the rule that separates immediate values from label references.
func IsNumeric(text string) bool {
	return len(text) > 0 && text[0] >= '0' && text[0] <= '9'
}
