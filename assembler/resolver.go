package assembler

import (
	"fmt"

	"github.com/Bandock/bandchip-assembler/parser"
)

// resolve patches every deferred reference into the already-emitted image.
// The symbol table is read-only by now, so forward references are
// well-defined; duplicate labels resolve to their first definition.
func (a *Assembler) resolve() {
	for _, ref := range a.refs {
		loc, ok := a.symbols.Lookup(ref.Name)
		if !ok {
			a.errors.AddError(parser.NewError(
				parser.Position{Line: ref.Line},
				parser.ErrorUnresolvedReference,
				fmt.Sprintf("Unresolved reference '%s' at line %d.", ref.Name, ref.Line)))
			continue
		}
		off := ref.Offset
		switch ref.Kind {
		case parser.PatchDataWord:
			a.image[off] = byte(loc >> 8)
			a.image[off+1] = byte(loc)
		case parser.PatchInstruction:
			a.image[off] |= byte((loc & 0xF00) >> 8)
			a.image[off+1] = byte(loc)
		case parser.PatchInstructionPrefixed:
			a.image[off] |= byte(loc >> 12)
			a.image[off+2] |= byte((loc & 0xF00) >> 8)
			a.image[off+3] = byte(loc)
		case parser.PatchInstructionLongLoad:
			a.image[off+2] = byte(loc >> 8)
			a.image[off+3] = byte(loc)
		}
	}
}
