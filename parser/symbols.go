package parser

// Symbol is a label definition bound to an emission address. Names are
// case-sensitive.
type Symbol struct {
	Name     string
	Location uint16
}

// SymbolTable manages label definitions during assembly. It is append-only
// through the forward pass and read-only during resolution. Duplicate names
// are permitted; lookup returns the first definition (first-write-wins).
type SymbolTable struct {
	symbols []Symbol
}

// NewSymbolTable creates a new symbol table
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{}
}

// Define appends a label definition at the given address.
func (st *SymbolTable) Define(name string, location uint16) {
	st.symbols = append(st.symbols, Symbol{Name: name, Location: location})
}

// Lookup finds the first definition of name. The expected symbol count is
// small, so a linear scan is fine.
func (st *SymbolTable) Lookup(name string) (uint16, bool) {
	for _, sym := range st.symbols {
		if sym.Name == name {
			return sym.Location, true
		}
	}
	return 0, false
}

// Len returns the number of definitions, duplicates included.
func (st *SymbolTable) Len() int {
	return len(st.symbols)
}

// PatchKind selects how a deferred reference is patched into the image once
// its label resolves.
type PatchKind int

const (
	// PatchDataWord overwrites two bytes with the address, big-endian.
	PatchDataWord PatchKind = iota
	// PatchInstruction ORs the address high nibble into the low nibble of
	// the opcode high byte and overwrites the low byte.
	PatchInstruction
	// PatchInstructionPrefixed fills a preceding F0 B0 extended-address
	// prefix with the top nibble, then patches the instruction two bytes in.
	PatchInstructionPrefixed
	// PatchInstructionLongLoad writes the full 16-bit address after an
	// F0 00 long-load prefix.
	PatchInstructionLongLoad
)

// Reference records a use of a label that was not yet defined when its
// statement was emitted. Offset is the image byte index where patching
// begins.
type Reference struct {
	Name   string
	Line   int
	Offset int
	Kind   PatchKind
}
