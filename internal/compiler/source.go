package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/keygrid/internal/keycode"
)

// tokenWidth is the minimum column width of a token in the keymap table.
const tokenWidth = 8

// Source renders the keymap as a QMK keymap.c translation unit.
//
// Each token is right-padded to eight columns and followed by ", " unless
// it ends its row. Every row but the last in a layer ends with a comma;
// every layer but the last is closed with "),".
func (k *Keymap) Source() string {
	var b strings.Builder
	b.WriteString("#include QMK_KEYBOARD_H\n")
	b.WriteString("\n")
	b.WriteString("const uint16_t PROGMEM keymaps[][MATRIX_ROWS][MATRIX_COLS] = {\n")

	for i, layer := range k.Layers {
		fmt.Fprintf(&b, "    [%d] = LAYOUT(\n", i)
		for r, row := range layer {
			b.WriteString("        ")
			writeRow(&b, row)
			if r < len(layer)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		b.WriteString("    )")
		if i < len(k.Layers)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}

	b.WriteString("};\n")
	return b.String()
}

func writeRow(b *strings.Builder, row []keycode.Token) {
	for c, tok := range row {
		b.WriteString(string(tok))
		if pad := tokenWidth - len(tok); pad > 0 {
			b.WriteString(strings.Repeat(" ", pad))
		}
		if c < len(row)-1 {
			b.WriteString(", ")
		}
	}
}
