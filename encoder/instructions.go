package encoder

import "github.com/Bandock/bandchip-assembler/chip8"

// InstructionKind identifies a recognised mnemonic.
type InstructionKind int

const (
	ClearScreen InstructionKind = iota
	Return
	Jump
	Call
	SkipEqual
	SkipNotEqual
	Load
	Add
	Or
	And
	Xor
	Subtract
	ShiftRight
	SubtractN
	ShiftLeft
	Random
	Draw
	SkipKeyPressed
	SkipKeyNotPressed
	ScrollDown
	ScrollRight
	ScrollLeft
	Exit
	Low
	High
	ScrollUp
	Plane
	Audio
	Pitch
	RotateRight
	RotateLeft
	Test
	Not
)

// Instruction carries the static properties of a mnemonic: its operand
// count bounds and the lowest extension tier that admits it. Shapes that
// tighten the tier further (the LD variants, pointer jumps) are checked
// during dispatch.
type Instruction struct {
	Kind        InstructionKind
	MinOperands int
	MaxOperands int
	MinTier     chip8.Extension
}

var mnemonics = map[string]Instruction{
	"CLS":   {ClearScreen, 0, 0, chip8.CHIP8},
	"RET":   {Return, 0, 0, chip8.CHIP8},
	"JP":    {Jump, 1, 2, chip8.CHIP8},
	"CALL":  {Call, 1, 2, chip8.CHIP8},
	"SE":    {SkipEqual, 2, 2, chip8.CHIP8},
	"SNE":   {SkipNotEqual, 2, 2, chip8.CHIP8},
	"LD":    {Load, 2, 3, chip8.CHIP8},
	"ADD":   {Add, 2, 2, chip8.CHIP8},
	"OR":    {Or, 2, 2, chip8.CHIP8},
	"AND":   {And, 2, 2, chip8.CHIP8},
	"XOR":   {Xor, 2, 2, chip8.CHIP8},
	"SUB":   {Subtract, 2, 2, chip8.CHIP8},
	"SHR":   {ShiftRight, 2, 2, chip8.CHIP8},
	"SUBN":  {SubtractN, 2, 2, chip8.CHIP8},
	"SHL":   {ShiftLeft, 2, 2, chip8.CHIP8},
	"RND":   {Random, 2, 2, chip8.CHIP8},
	"DRW":   {Draw, 3, 3, chip8.CHIP8},
	"SKP":   {SkipKeyPressed, 1, 1, chip8.CHIP8},
	"SKNP":  {SkipKeyNotPressed, 1, 1, chip8.CHIP8},
	"SCD":   {ScrollDown, 1, 1, chip8.SuperCHIP11},
	"SCR":   {ScrollRight, 0, 0, chip8.SuperCHIP11},
	"SCL":   {ScrollLeft, 0, 0, chip8.SuperCHIP11},
	"EXIT":  {Exit, 0, 0, chip8.SuperCHIP10},
	"LOW":   {Low, 0, 0, chip8.SuperCHIP10},
	"HIGH":  {High, 0, 0, chip8.SuperCHIP10},
	"SCU":   {ScrollUp, 1, 1, chip8.XOCHIP},
	"PLANE": {Plane, 1, 1, chip8.XOCHIP},
	"AUDIO": {Audio, 0, 0, chip8.XOCHIP},
	"PITCH": {Pitch, 1, 1, chip8.XOCHIP},
	"ROR":   {RotateRight, 2, 2, chip8.HyperCHIP64},
	"ROL":   {RotateLeft, 2, 2, chip8.HyperCHIP64},
	"TEST":  {Test, 2, 2, chip8.HyperCHIP64},
	"NOT":   {Not, 2, 2, chip8.HyperCHIP64},
}

// Lookup returns the static properties of an upper-cased mnemonic.
func Lookup(mnemonic string) (Instruction, bool) {
	inst, ok := mnemonics[mnemonic]
	return inst, ok
}

// aluSubcodes maps the register-register arithmetic group to the low
// nibble of its 8XYn encoding.
var aluSubcodes = map[InstructionKind]byte{
	Or:          0x1,
	And:         0x2,
	Xor:         0x3,
	Add:         0x4,
	Subtract:    0x5,
	ShiftRight:  0x6,
	SubtractN:   0x7,
	RotateRight: 0x8,
	RotateLeft:  0x9,
	Test:        0xA,
	Not:         0xB,
	ShiftLeft:   0xE,
}
