package assembler

import (
	"encoding/hex"
	"io"
)

// WriteTo writes the assembled image in the selected output format: the raw
// bytes in Binary mode, or two lowercase hex digits per byte with no
// separators and no trailing newline in HexASCIIString mode.
func (a *Assembler) WriteTo(w io.Writer) error {
	switch a.output {
	case HexASCIIString:
		_, err := io.WriteString(w, hex.EncodeToString(a.image))
		return err
	default:
		_, err := w.Write(a.image)
		return err
	}
}
