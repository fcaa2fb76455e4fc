// Package chip8 defines architecture constants shared between the encoder
// and the assembler: the target extension tiers, the program origin, and
// the classic 4KB address ceiling.
package chip8

// Extension selects the target instruction set. The ordering is meaningful:
// each tier admits every instruction of the tiers below it.
type Extension int

const (
	CHIP8 Extension = iota
	SuperCHIP10
	SuperCHIP11
	XOCHIP
	HyperCHIP64
)

// Memory layout constants. CHIP-8 programs load at 0x200; the interpreter
// and its font data occupy everything below.
const (
	ProgramStart       = 0x200
	MaxStandardAddress = 0xFFF
)

var extensionNames = map[Extension]string{
	CHIP8:       "CHIP8",
	SuperCHIP10: "SCHIP10",
	SuperCHIP11: "SCHIP11",
	XOCHIP:      "XOCHIP",
	HyperCHIP64: "HCHIP64",
}

func (e Extension) String() string {
	if name, ok := extensionNames[e]; ok {
		return name
	}
	return "UNKNOWN"
}

// Description returns the console notice text used when the extension is
// selected by an EXTENSION directive.
func (e Extension) Description() string {
	switch e {
	case CHIP8:
		return "the original CHIP-8 instruction set"
	case SuperCHIP10:
		return "the SuperCHIP V1.0 extension"
	case SuperCHIP11:
		return "the SuperCHIP V1.1 extension"
	case XOCHIP:
		return "the XO-CHIP extension"
	case HyperCHIP64:
		return "the HyperCHIP-64 extension"
	}
	return "an unknown extension"
}

// ParseExtension maps an upper-cased directive argument to its tier.
func ParseExtension(name string) (Extension, bool) {
	for ext, n := range extensionNames {
		if n == name {
			return ext, true
		}
	}
	return CHIP8, false
}

// AtLeast reports whether the tier admits instructions introduced at min.
func (e Extension) AtLeast(min Extension) bool {
	return e >= min
}

// ExtendedMemory reports whether the tier lifts the 4KB ceiling. XO-CHIP
// and HyperCHIP-64 share this capability; the 16-bit program counter wrap
// is the only bound they observe.
func (e Extension) ExtendedMemory() bool {
	return e == XOCHIP || e == HyperCHIP64
}
