// Package assembler drives the two-pass assembly: the forward pass scans
// statements and grows the program image, the resolution pass patches
// deferred label references. All state lives inside one Assembler instance.
package assembler

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Bandock/bandchip-assembler/chip8"
	"github.com/Bandock/bandchip-assembler/encoder"
	"github.com/Bandock/bandchip-assembler/parser"
)

// OutputFormat selects how the finished image is written.
type OutputFormat int

const (
	Binary OutputFormat = iota
	HexASCIIString
)

// MaxLineLength is the classic input buffer size; longer lines are accepted
// but draw a warning.
const MaxLineLength = 4095

// Options configures a new Assembler. The zero value gives the documented
// defaults: CHIP-8 target, binary output, alignment on.
type Options struct {
	Extension chip8.Extension
	Output    OutputFormat
	AlignOff  bool
	// Console receives the directive notices (output mode, extension
	// selection). Defaults to os.Stdout; tests pass io.Discard.
	Console io.Writer
}

// Assembler holds the full state of one assembly run.
type Assembler struct {
	ext     chip8.Extension
	output  OutputFormat
	align   bool
	image   []byte
	addr    uint16
	symbols *parser.SymbolTable
	refs    []parser.Reference
	errors  *parser.ErrorList
	console io.Writer
}

// New creates an assembler with the initial state of §3: current address
// 0x200, empty image, alignment on, binary output.
func New(opts Options) *Assembler {
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}
	return &Assembler{
		ext:     opts.Extension,
		output:  opts.Output,
		align:   !opts.AlignOff,
		addr:    chip8.ProgramStart,
		symbols: parser.NewSymbolTable(),
		errors:  &parser.ErrorList{},
		console: console,
	}
}

// Assemble runs the forward pass over the source and then resolves
// deferred references. It never fails as a whole: diagnostics accumulate in
// Errors() and the caller checks ErrorCount before writing output.
func (a *Assembler) Assemble(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	number := 1
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if len(line) > MaxLineLength {
			a.errors.AddWarning(&parser.Warning{
				Pos:     parser.Position{Line: number},
				Message: fmt.Sprintf("line exceeds %d characters", MaxLineLength),
			})
		}
		a.processLine(line, number)
		number++
	}
	a.resolve()
}

// AssembleSource is a convenience wrapper over Assemble for in-memory
// sources.
func (a *Assembler) AssembleSource(source string) {
	a.Assemble(strings.NewReader(source))
}

// processLine scans and acts on one source line. Label definitions bind to
// the current address even when the rest of the line fails to scan.
func (a *Assembler) processLine(line string, number int) {
	st, err := parser.ScanLine(line, number)
	for _, label := range st.Labels {
		a.symbols.Define(label.Name, a.addr)
	}
	if err != nil {
		a.errors.AddError(err)
		return
	}

	switch st.Kind {
	case parser.StatementNone:
		// blank line, comment, or bare labels
	case parser.StatementInstruction:
		a.encodeInstruction(st)
	default:
		a.directive(st)
	}
}

func (a *Assembler) encodeInstruction(st *parser.Statement) {
	enc, err := encoder.Encode(st, a.ext, a.symbols)
	if err != nil {
		a.errors.AddError(err)
		return
	}
	if enc.Ref != nil {
		ref := *enc.Ref
		ref.Offset += len(a.image)
		a.refs = append(a.refs, ref)
	}
	a.emit(st, enc.Bytes...)
}

// emit appends bytes to the image, advances the current address, and
// performs the 4KB ceiling check once. Extensions with extended memory are
// bounded only by the 16-bit wrap.
func (a *Assembler) emit(st *parser.Statement, bytes ...byte) bool {
	a.image = append(a.image, bytes...)
	a.addr += uint16(len(bytes))
	if a.addr > chip8.MaxStandardAddress && !a.ext.ExtendedMemory() {
		a.errors.AddError(parser.NewError(
			parser.Position{Line: st.Line, Column: st.EndCol},
			parser.ErrorOnly4KBSupported,
			"Current extension only supports up to 4KB (maxed at 0xFFF)."))
		return false
	}
	return true
}

// Image returns the assembled byte image.
func (a *Assembler) Image() []byte {
	return a.image
}

// CurrentAddress returns the address the next emitted byte would occupy.
func (a *Assembler) CurrentAddress() uint16 {
	return a.addr
}

// Extension returns the extension currently in effect.
func (a *Assembler) Extension() chip8.Extension {
	return a.ext
}

// OutputFormat returns the format selected by the last OUTPUT directive.
func (a *Assembler) OutputFormat() OutputFormat {
	return a.output
}

// Symbols returns the symbol table.
func (a *Assembler) Symbols() *parser.SymbolTable {
	return a.symbols
}

// Errors returns the accumulated diagnostics.
func (a *Assembler) Errors() *parser.ErrorList {
	return a.errors
}

// ErrorCount returns the number of errors raised so far.
func (a *Assembler) ErrorCount() int {
	return a.errors.Count()
}
