package assembler

import (
	"fmt"
	"os"
	"strings"

	"github.com/Bandock/bandchip-assembler/chip8"
	"github.com/Bandock/bandchip-assembler/parser"
)

func (a *Assembler) directive(st *parser.Statement) {
	switch st.Kind {
	case parser.StatementOutput:
		a.outputDirective(st)
	case parser.StatementExtension:
		a.extensionDirective(st)
	case parser.StatementAlign:
		a.alignDirective(st)
	case parser.StatementOrigin:
		a.originDirective(st)
	case parser.StatementBinaryInclude:
		a.binaryInclude(st)
	case parser.StatementDataByte:
		a.dataBytes(st)
	case parser.StatementDataWord:
		a.dataWords(st)
	}
}

func (a *Assembler) directiveError(st *parser.Statement, col int, kind parser.ErrorKind, message string) {
	a.errors.AddError(parser.NewError(
		parser.Position{Line: st.Line, Column: col}, kind, message))
}

func (a *Assembler) invalidDirectiveArg(st *parser.Statement, op parser.Operand) {
	a.directiveError(st, op.Col, parser.ErrorInvalidToken,
		fmt.Sprintf("Invalid Token '%s'", op.Text))
}

// outputDirective selects between binary and hex ASCII output. The choice
// only matters at finalisation.
func (a *Assembler) outputDirective(st *parser.Statement) {
	if len(st.Operands) == 0 {
		return
	}
	op := st.Operands[0]
	switch strings.ToUpper(op.Text) {
	case "BINARY":
		a.output = Binary
		fmt.Fprintf(a.console, "Using binary output mode.\n")
	case "HEXASCIISTRING":
		a.output = HexASCIIString
		fmt.Fprintf(a.console, "Using Hex ASCII String output mode.\n")
	default:
		a.invalidDirectiveArg(st, op)
	}
}

// extensionDirective retargets the instruction set. It may appear multiple
// times; admissibility of each later instruction is judged against the
// then-current extension, and already-emitted bytes are not rewritten.
func (a *Assembler) extensionDirective(st *parser.Statement) {
	if len(st.Operands) == 0 {
		return
	}
	op := st.Operands[0]
	ext, ok := chip8.ParseExtension(strings.ToUpper(op.Text))
	if !ok {
		a.invalidDirectiveArg(st, op)
		return
	}
	a.ext = ext
	fmt.Fprintf(a.console, "Using %s.\n", ext.Description())
}

func (a *Assembler) alignDirective(st *parser.Statement) {
	if len(st.Operands) == 0 {
		return
	}
	op := st.Operands[0]
	switch strings.ToUpper(op.Text) {
	case "ON":
		a.align = true
	case "OFF":
		a.align = false
	default:
		a.invalidDirectiveArg(st, op)
	}
}

// originDirective relocates the current address forward, zero-filling the
// image so subsequent emissions land at the new address.
func (a *Assembler) originDirective(st *parser.Statement) {
	if len(st.Operands) == 0 {
		return
	}
	op := st.Operands[0]
	target, ok := parser.ParseValue(op.Text, 16)
	if !ok {
		a.directiveError(st, op.Col, parser.ErrorInvalidValue, "Invalid Value")
		return
	}
	if target < chip8.ProgramStart {
		a.directiveError(st, op.Col, parser.ErrorReservedAddress,
			"Addresses 0x000-0x1FF are reserved.")
		return
	}
	if target < a.addr {
		a.directiveError(st, op.Col, parser.ErrorBelowCurrentAddress,
			"Attempting to set the address below the current address.")
		return
	}
	a.addr = target
	for len(a.image) < int(target)-chip8.ProgramStart {
		a.image = append(a.image, 0x00)
	}
	if a.addr > chip8.MaxStandardAddress && !a.ext.ExtendedMemory() {
		a.directiveError(st, op.Col, parser.ErrorOnly4KBSupported,
			"Current extension only supports up to 4KB (maxed at 0xFFF).")
	}
}

// binaryInclude appends the raw contents of a file to the image.
func (a *Assembler) binaryInclude(st *parser.Statement) {
	path := ""
	if len(st.Operands) > 0 {
		path = st.Operands[0].Text
	}
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided include path
	if err != nil {
		a.directiveError(st, st.EndCol, parser.ErrorBinaryFileDoesNotExist,
			fmt.Sprintf("'%s' does not exist.", path))
		return
	}
	a.emit(st, data...)
}

// dataBytes emits DB data. A value datum is padded to an even image size
// only when another value datum follows it on the statement; string data is
// emitted contiguously, one byte per decoded character, and never padded.
func (a *Assembler) dataBytes(st *parser.Statement) {
	for i, op := range st.Operands {
		switch op.Kind {
		case parser.OperandString:
			if !a.emit(st, []byte(op.Text)...) {
				return
			}
		case parser.OperandImmediate:
			value, ok := parser.ParseValue(op.Text, 8)
			if !ok {
				a.directiveError(st, op.Col, parser.ErrorInvalidValue, "Invalid Value")
				return
			}
			pad := a.align && len(a.image)%2 == 0 && nextDatumIsValue(st.Operands[i+1:])
			if pad {
				if !a.emit(st, byte(value), 0x00) {
					return
				}
			} else if !a.emit(st, byte(value)) {
				return
			}
		default:
			a.directiveError(st, op.Col, parser.ErrorInvalidValue, "Invalid Value")
			return
		}
	}
}

// nextDatumIsValue reports whether the next datum of the statement is a
// plain value (the condition for alignment padding after a DB byte).
func nextDatumIsValue(rest []parser.Operand) bool {
	return len(rest) > 0 && rest[0].Kind == parser.OperandImmediate
}

// dataWords emits DW data big-endian. When aligned, the image is first
// padded to an even size. An identifier datum resolves against the symbol
// table or defers as a data-word reference.
func (a *Assembler) dataWords(st *parser.Statement) {
	for _, op := range st.Operands {
		if a.align && len(a.image)%2 != 0 {
			if !a.emit(st, 0x00) {
				return
			}
		}
		switch op.Kind {
		case parser.OperandImmediate:
			value, ok := parser.ParseValue(op.Text, 16)
			if !ok {
				a.directiveError(st, op.Col, parser.ErrorInvalidValue, "Invalid Value")
				return
			}
			if !a.emit(st, byte(value>>8), byte(value)) {
				return
			}
		case parser.OperandLabel:
			if loc, ok := a.symbols.Lookup(op.Text); ok {
				if loc > chip8.MaxStandardAddress && !a.ext.ExtendedMemory() {
					a.directiveError(st, op.Col, parser.ErrorOnly4KBSupported,
						"Current extension only supports up to 4KB (maxed at 0xFFF).")
					return
				}
				if !a.emit(st, byte(loc>>8), byte(loc)) {
					return
				}
				continue
			}
			a.refs = append(a.refs, parser.Reference{
				Name:   op.Text,
				Line:   st.Line,
				Offset: len(a.image),
				Kind:   parser.PatchDataWord,
			})
			if !a.emit(st, 0x00, 0x00) {
				return
			}
		default:
			a.directiveError(st, op.Col, parser.ErrorInvalidValue, "Invalid Value")
			return
		}
	}
}
