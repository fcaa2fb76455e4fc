// Package encoder serialises recognised instruction statements to their
// documented opcode bytes, gated by the current target extension.
package encoder

import (
	"fmt"
	"strings"

	"github.com/Bandock/bandchip-assembler/chip8"
	"github.com/Bandock/bandchip-assembler/parser"
)

// Encoding is the byte expansion of one instruction. Ref is non-nil when a
// label operand was not yet defined; its Offset is relative to Bytes and
// must be rebased onto the image by the caller.
type Encoding struct {
	Bytes []byte
	Ref   *parser.Reference
}

type encodeState struct {
	st   *parser.Statement
	ext  chip8.Extension
	syms *parser.SymbolTable
	enc  Encoding
}

// Encode serialises one instruction statement under the given extension.
// Unresolved label operands produce zeroed place-holder bytes and a
// deferred reference for the resolver to patch.
func Encode(st *parser.Statement, ext chip8.Extension, syms *parser.SymbolTable) (Encoding, *parser.Error) {
	s := &encodeState{st: st, ext: ext, syms: syms}

	inst, ok := Lookup(st.Mnemonic)
	if !ok {
		return Encoding{}, parser.NewError(s.pos(), parser.ErrorInvalidToken,
			fmt.Sprintf("Invalid Token '%s'", st.Mnemonic))
	}

	if !ext.AtLeast(inst.MinTier) {
		return Encoding{}, s.tierError(inst.MinTier, st.Mnemonic)
	}
	if err := s.checkOperandCount(inst); err != nil {
		return Encoding{}, err
	}

	var err *parser.Error
	switch inst.Kind {
	case ClearScreen:
		s.emit(0x00, 0xE0)
	case Return:
		s.emit(0x00, 0xEE)
	case ScrollRight:
		s.emit(0x00, 0xFB)
	case ScrollLeft:
		s.emit(0x00, 0xFC)
	case Exit:
		s.emit(0x00, 0xFD)
	case Low:
		s.emit(0x00, 0xFE)
	case High:
		s.emit(0x00, 0xFF)
	case Audio:
		s.emit(0xF0, 0x02)
	case ScrollDown:
		err = s.encodeScroll(0xC0)
	case ScrollUp:
		err = s.encodeScroll(0xD0)
	case Jump:
		err = s.encodeJump()
	case Call:
		err = s.encodeCall()
	case SkipEqual:
		err = s.encodeSkip(0x30, 0x50)
	case SkipNotEqual:
		err = s.encodeSkip(0x40, 0x90)
	case Load:
		err = s.encodeLoad()
	case Add:
		err = s.encodeAdd()
	case Or, And, Xor, Subtract, ShiftRight, SubtractN, ShiftLeft,
		RotateRight, RotateLeft, Test, Not:
		err = s.encodeALU(aluSubcodes[inst.Kind])
	case Random:
		err = s.encodeRandom()
	case Draw:
		err = s.encodeDraw()
	case SkipKeyPressed:
		err = s.encodeSkipKey(0x9E)
	case SkipKeyNotPressed:
		err = s.encodeSkipKey(0xA1)
	case Plane:
		err = s.encodePlane()
	case Pitch:
		err = s.encodePitch()
	}

	if err != nil {
		return Encoding{}, err
	}
	return s.enc, nil
}

func (s *encodeState) emit(bytes ...byte) {
	s.enc.Bytes = append(s.enc.Bytes, bytes...)
}

func (s *encodeState) pos() parser.Position {
	return parser.Position{Line: s.st.Line, Column: s.st.EndCol}
}

func (s *encodeState) invalidValue() *parser.Error {
	return parser.NewError(s.pos(), parser.ErrorInvalidValue, "Invalid Value")
}

func (s *encodeState) invalidRegister() *parser.Error {
	return parser.NewError(s.pos(), parser.ErrorInvalidRegister, "Invalid Register")
}

func (s *encodeState) tierError(min chip8.Extension, desc string) *parser.Error {
	var kind parser.ErrorKind
	var msg string
	switch min {
	case chip8.SuperCHIP10:
		kind = parser.ErrorSuperCHIP10Required
		msg = desc + " instruction requires using at least the SuperCHIP V1.0 extension to use."
	case chip8.SuperCHIP11:
		kind = parser.ErrorSuperCHIP11Required
		msg = desc + " instruction requires using at least the SuperCHIP V1.1 extension to use."
	case chip8.XOCHIP:
		kind = parser.ErrorXOCHIPRequired
		msg = desc + " requires using at least the XO-CHIP extension to use."
	default:
		kind = parser.ErrorHyperCHIP64Required
		msg = desc + " instruction requires using at least the HyperCHIP-64 extension to use."
	}
	return parser.NewError(s.pos(), kind, msg)
}

func (s *encodeState) checkOperandCount(inst Instruction) *parser.Error {
	n := len(s.st.Operands)
	if inst.MinOperands == 0 && inst.MaxOperands == 0 && n > 0 {
		return parser.NewError(s.pos(), parser.ErrorNoOperandsSupported,
			fmt.Sprintf("%s does not support operands.", s.st.Mnemonic))
	}
	if n < inst.MinOperands {
		return parser.NewError(s.pos(), parser.ErrorTooFewOperands,
			fmt.Sprintf("%s only has %d operands (needs at least %d).",
				s.st.Mnemonic, n, inst.MinOperands))
	}
	if n > inst.MaxOperands {
		return parser.NewError(s.pos(), parser.ErrorTooManyOperands,
			fmt.Sprintf("%s has too many operands (%d, supports up to %d).",
				s.st.Mnemonic, n, inst.MaxOperands))
	}
	return nil
}

// register returns the index of a V-register operand.
func (s *encodeState) register(op parser.Operand) (byte, *parser.Error) {
	if op.Kind != parser.OperandRegister {
		return 0, s.invalidRegister()
	}
	reg, ok := parser.RegisterIndex(op.Text)
	if !ok {
		return 0, s.invalidRegister()
	}
	return reg, nil
}

// immediate8 decodes an 8-bit immediate operand.
func (s *encodeState) immediate8(op parser.Operand) (byte, *parser.Error) {
	if op.Kind != parser.OperandImmediate {
		return 0, s.invalidValue()
	}
	v, ok := parser.ParseValue(op.Text, 8)
	if !ok {
		return 0, s.invalidValue()
	}
	return byte(v), nil
}

// pointerRegister decodes an [I+VX] pointer operand to the register index.
func (s *encodeState) pointerRegister(op parser.Operand) (byte, *parser.Error) {
	upper := strings.ToUpper(op.Text)
	for i, r := range []string{
		"I+V0", "I+V1", "I+V2", "I+V3", "I+V4", "I+V5", "I+V6", "I+V7",
		"I+V8", "I+V9", "I+VA", "I+VB", "I+VC", "I+VD", "I+VE", "I+VF",
	} {
		if upper == r {
			return byte(i), nil
		}
	}
	return 0, s.invalidRegister()
}

// isIndexPointer reports whether the pointer operand is plain [I].
func isIndexPointer(op parser.Operand) bool {
	return op.Kind == parser.OperandPointer && strings.ToUpper(op.Text) == "I"
}

// encodeAddress emits the 1NNN/2NNN/ANNN/BNNN family for a resolved target.
// Targets beyond 0xFFF need the extended-address forms: the XO-CHIP long
// load for LD I, or the HyperCHIP-64 F0 B0 prefix.
func (s *encodeState) encodeAddress(opNibble byte, addr uint16) *parser.Error {
	if addr > chip8.MaxStandardAddress {
		if s.ext == chip8.XOCHIP && opNibble == 0xA {
			s.emit(0xF0, 0x00, byte(addr>>8), byte(addr))
			return nil
		}
		if s.ext != chip8.HyperCHIP64 {
			return parser.NewError(s.pos(), parser.ErrorOnly4KBSupported,
				"Current extension only supports up to 4KB (maxed at 0xFFF).")
		}
		s.emit(0xF0|byte(addr>>12), 0xB0)
	}
	s.emit(opNibble<<4|byte((addr&0xF00)>>8), byte(addr))
	return nil
}

// deferAddress emits zeroed place-holder bytes for an undefined label and
// records the deferred reference. Under HyperCHIP-64 the extended-address
// prefix is emitted up front and the patch offset points at it; under
// XO-CHIP the LD I long load reserves all four bytes.
func (s *encodeState) deferAddress(opNibble byte, name string) {
	ref := &parser.Reference{Name: name, Line: s.st.Line, Offset: len(s.enc.Bytes)}
	switch {
	case s.ext == chip8.XOCHIP && opNibble == 0xA:
		ref.Kind = parser.PatchInstructionLongLoad
		s.emit(0xF0, 0x00, 0x00, 0x00)
		s.enc.Ref = ref
		return
	case s.ext == chip8.HyperCHIP64:
		ref.Kind = parser.PatchInstructionPrefixed
		s.emit(0xF0, 0xB0)
	default:
		ref.Kind = parser.PatchInstruction
	}
	s.emit(opNibble<<4, 0x00)
	s.enc.Ref = ref
}

// addressOperand handles a label or immediate address operand.
func (s *encodeState) addressOperand(opNibble byte, op parser.Operand) *parser.Error {
	switch op.Kind {
	case parser.OperandLabel:
		if loc, ok := s.syms.Lookup(op.Text); ok {
			return s.encodeAddress(opNibble, loc)
		}
		s.deferAddress(opNibble, op.Text)
		return nil
	case parser.OperandImmediate:
		addr, ok := parser.ParseValue(op.Text, 16)
		if !ok {
			return s.invalidValue()
		}
		return s.encodeAddress(opNibble, addr)
	default:
		return s.invalidValue()
	}
}

func (s *encodeState) encodeScroll(base byte) *parser.Error {
	value, err := s.immediate8(s.st.Operands[0])
	if err != nil {
		return err
	}
	s.emit(0x00, base|value&0xF)
	return nil
}

func (s *encodeState) encodeJump() *parser.Error {
	op := s.st.Operands[0]
	switch op.Kind {
	case parser.OperandLabel, parser.OperandImmediate:
		return s.addressOperand(0x1, op)
	case parser.OperandRegister:
		if len(s.st.Operands) < 2 {
			return s.invalidValue()
		}
		reg, err := s.register(op)
		if err != nil {
			return err
		}
		// jump indexed by a non-V0 base register needs the FX B1 prefix
		if reg != 0x0 && s.ext == chip8.HyperCHIP64 {
			s.emit(0xF0|reg, 0xB1)
		}
		return s.addressOperand(0xB, s.st.Operands[1])
	case parser.OperandPointer:
		if s.ext != chip8.HyperCHIP64 {
			return s.tierError(chip8.HyperCHIP64, "JP [I + VX]")
		}
		reg, err := s.pointerRegister(op)
		if err != nil {
			return err
		}
		s.emit(0xF0|reg, 0x20)
		return nil
	default:
		return s.invalidValue()
	}
}

func (s *encodeState) encodeCall() *parser.Error {
	op := s.st.Operands[0]
	switch op.Kind {
	case parser.OperandLabel, parser.OperandImmediate:
		return s.addressOperand(0x2, op)
	case parser.OperandPointer:
		if s.ext != chip8.HyperCHIP64 {
			return s.tierError(chip8.HyperCHIP64, "CALL [I + VX]")
		}
		reg, err := s.pointerRegister(op)
		if err != nil {
			return err
		}
		s.emit(0xF0|reg, 0x21)
		return nil
	default:
		return s.invalidValue()
	}
}

func (s *encodeState) encodeSkip(immBase, regBase byte) *parser.Error {
	x, err := s.register(s.st.Operands[0])
	if err != nil {
		return err
	}
	switch s.st.Operands[1].Kind {
	case parser.OperandRegister:
		y, err := s.register(s.st.Operands[1])
		if err != nil {
			return err
		}
		s.emit(regBase|x, y<<4)
		return nil
	case parser.OperandImmediate:
		value, err := s.immediate8(s.st.Operands[1])
		if err != nil {
			return err
		}
		s.emit(immBase|x, value)
		return nil
	default:
		return s.invalidValue()
	}
}

func (s *encodeState) encodeLoad() *parser.Error {
	if len(s.st.Operands) == 3 {
		return s.encodeRangeLoad()
	}

	dst, src := s.st.Operands[0], s.st.Operands[1]
	switch dst.Kind {
	case parser.OperandRegister:
		return s.encodeLoadIntoRegister(dst, src)
	case parser.OperandAddressRegister:
		switch src.Kind {
		case parser.OperandLabel, parser.OperandImmediate:
			return s.addressOperand(0xA, src)
		case parser.OperandPointer:
			if s.ext != chip8.HyperCHIP64 {
				return s.tierError(chip8.HyperCHIP64, "LD I, [I + VX]")
			}
			reg, err := s.pointerRegister(src)
			if err != nil {
				return err
			}
			s.emit(0xF0|reg, 0xA2)
			return nil
		default:
			return s.invalidValue()
		}
	case parser.OperandDelayTimer:
		return s.emitRegisterF(src, 0x15)
	case parser.OperandSoundTimer:
		return s.emitRegisterF(src, 0x18)
	case parser.OperandLoResFont:
		return s.emitRegisterF(src, 0x29)
	case parser.OperandHiResFont:
		if !s.ext.AtLeast(chip8.SuperCHIP11) {
			return s.tierError(chip8.SuperCHIP11, "LD HF, VX")
		}
		return s.emitRegisterF(src, 0x30)
	case parser.OperandBCD:
		return s.emitRegisterF(src, 0x33)
	case parser.OperandPointer:
		if !isIndexPointer(dst) {
			return s.invalidRegister()
		}
		return s.emitRegisterF(src, 0x55)
	case parser.OperandUserRPL:
		if !s.ext.AtLeast(chip8.SuperCHIP10) {
			return s.tierError(chip8.SuperCHIP10, "LD R, VX")
		}
		return s.emitRegisterF(src, 0x75)
	default:
		return s.invalidValue()
	}
}

// encodeLoadIntoRegister covers the LD VX, … shapes.
func (s *encodeState) encodeLoadIntoRegister(dst, src parser.Operand) *parser.Error {
	x, err := s.register(dst)
	if err != nil {
		return err
	}
	switch src.Kind {
	case parser.OperandImmediate:
		value, err := s.immediate8(src)
		if err != nil {
			return err
		}
		s.emit(0x60|x, value)
	case parser.OperandRegister:
		y, err := s.register(src)
		if err != nil {
			return err
		}
		s.emit(0x80|x, y<<4)
	case parser.OperandDelayTimer:
		s.emit(0xF0|x, 0x07)
	case parser.OperandKey:
		s.emit(0xF0|x, 0x0A)
	case parser.OperandPointer:
		if !isIndexPointer(src) {
			return s.invalidRegister()
		}
		s.emit(0xF0|x, 0x65)
	case parser.OperandUserRPL:
		if !s.ext.AtLeast(chip8.SuperCHIP10) {
			return s.tierError(chip8.SuperCHIP10, "LD VX, R")
		}
		s.emit(0xF0|x, 0x85)
	default:
		return s.invalidValue()
	}
	return nil
}

// emitRegisterF emits the FX-family encoding for a register source operand.
func (s *encodeState) emitRegisterF(src parser.Operand, low byte) *parser.Error {
	x, err := s.register(src)
	if err != nil {
		return err
	}
	s.emit(0xF0|x, low)
	return nil
}

// encodeRangeLoad covers the XO-CHIP register range loads 5XY2 and 5XY3.
func (s *encodeState) encodeRangeLoad() *parser.Error {
	ops := s.st.Operands
	switch {
	case ops[0].Kind == parser.OperandPointer &&
		ops[1].Kind == parser.OperandRegister && ops[2].Kind == parser.OperandRegister:
		if !isIndexPointer(ops[0]) {
			return s.invalidRegister()
		}
		if !s.ext.AtLeast(chip8.XOCHIP) {
			return s.tierError(chip8.XOCHIP, "LD [I], VX, VY")
		}
		return s.emitRangeLoad(ops[1], ops[2], 0x2)
	case ops[0].Kind == parser.OperandRegister &&
		ops[1].Kind == parser.OperandRegister && ops[2].Kind == parser.OperandPointer:
		if !isIndexPointer(ops[2]) {
			return s.invalidRegister()
		}
		if !s.ext.AtLeast(chip8.XOCHIP) {
			return s.tierError(chip8.XOCHIP, "LD VX, VY, [I]")
		}
		return s.emitRangeLoad(ops[0], ops[1], 0x3)
	default:
		return s.invalidValue()
	}
}

func (s *encodeState) emitRangeLoad(first, second parser.Operand, sub byte) *parser.Error {
	x, err := s.register(first)
	if err != nil {
		return err
	}
	y, err := s.register(second)
	if err != nil {
		return err
	}
	s.emit(0x50|x, y<<4|sub)
	return nil
}

func (s *encodeState) encodeAdd() *parser.Error {
	dst, src := s.st.Operands[0], s.st.Operands[1]
	switch dst.Kind {
	case parser.OperandRegister:
		x, err := s.register(dst)
		if err != nil {
			return err
		}
		switch src.Kind {
		case parser.OperandImmediate:
			value, err := s.immediate8(src)
			if err != nil {
				return err
			}
			s.emit(0x70|x, value)
			return nil
		case parser.OperandRegister:
			y, err := s.register(src)
			if err != nil {
				return err
			}
			s.emit(0x80|x, y<<4|0x4)
			return nil
		default:
			return s.invalidValue()
		}
	case parser.OperandAddressRegister:
		return s.emitRegisterF(src, 0x1E)
	default:
		return s.invalidValue()
	}
}

func (s *encodeState) encodeALU(sub byte) *parser.Error {
	x, err := s.register(s.st.Operands[0])
	if err != nil {
		return err
	}
	y, err := s.register(s.st.Operands[1])
	if err != nil {
		return err
	}
	s.emit(0x80|x, y<<4|sub)
	return nil
}

func (s *encodeState) encodeRandom() *parser.Error {
	x, err := s.register(s.st.Operands[0])
	if err != nil {
		return err
	}
	value, err := s.immediate8(s.st.Operands[1])
	if err != nil {
		return err
	}
	s.emit(0xC0|x, value)
	return nil
}

func (s *encodeState) encodeDraw() *parser.Error {
	x, err := s.register(s.st.Operands[0])
	if err != nil {
		return err
	}
	y, err := s.register(s.st.Operands[1])
	if err != nil {
		return err
	}
	n, err := s.immediate8(s.st.Operands[2])
	if err != nil {
		return err
	}
	s.emit(0xD0|x, y<<4|n&0xF)
	return nil
}

func (s *encodeState) encodeSkipKey(low byte) *parser.Error {
	x, err := s.register(s.st.Operands[0])
	if err != nil {
		return err
	}
	s.emit(0xE0|x, low)
	return nil
}

func (s *encodeState) encodePlane() *parser.Error {
	value, err := s.immediate8(s.st.Operands[0])
	if err != nil {
		return err
	}
	s.emit(0xF0|value&0xF, 0x01)
	return nil
}

func (s *encodeState) encodePitch() *parser.Error {
	x, err := s.register(s.st.Operands[0])
	if err != nil {
		return err
	}
	s.emit(0xF0|x, 0x3A)
	return nil
}
