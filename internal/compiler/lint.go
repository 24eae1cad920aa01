package compiler

import (
	"fmt"

	"github.com/roach88/keygrid/internal/keycode"
	"github.com/roach88/keygrid/internal/layout"
)

// Diagnostic kinds reported by Lint.
const (
	DiagUnknown = "unknown_label" // compiles to KC_NO
	DiagForeign = "foreign_label" // another platform's label; still compiles
)

// Diagnostic describes one questionable cell. Lint never changes what
// Compile emits.
type Diagnostic struct {
	Kind   string `json:"kind"`
	Layer  int    `json:"layer"`
	Row    int    `json:"row"`
	Column int    `json:"column"`
	Label  string `json:"label"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("layer %d row %d column %d: %s %q", d.Layer, d.Row, d.Column, d.Kind, d.Label)
}

// Lint reports labels that silently compile to KC_NO and labels that
// belong to a different platform's vocabulary than p, in traversal order.
func Lint(l *layout.Layout, p keycode.Platform) []Diagnostic {
	var diags []Diagnostic
	for i, layer := range l.Layers {
		for r, row := range layer {
			for c, cell := range row {
				if cell.IsBlank() {
					continue
				}
				label := *cell.Value
				kind := ""
				switch {
				case keycode.Foreign(label, p):
					kind = DiagForeign
				case keycode.MapLabel(label, p) == keycode.NoOp:
					kind = DiagUnknown
				}
				if kind == "" {
					continue
				}
				diags = append(diags, Diagnostic{Kind: kind, Layer: i, Row: r, Column: c, Label: label})
			}
		}
	}
	return diags
}
