package layout

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Blank is the placeholder the editor writes into a cleared cell: nine
// non-breaking spaces. It is treated exactly like a nil Value.
var Blank = strings.Repeat("\u00a0", 9)

// Shape limits and the editor defaults for a fresh layout.
const (
	MinLayers      = 1
	MaxLayers      = 10
	DefaultRows    = 4
	DefaultColumns = 12
)

// Dimensions is the row and column count shared by every layer.
type Dimensions struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

// KeyCell is one populated grid position.
type KeyCell struct {
	Value *string `json:"value"`
	Span  int     `json:"span"`
}

// Row is an ordered sequence of cells. A nil entry is a skipped position.
type Row []*KeyCell

// Layer is one complete grid of key assignments.
type Layer []Row

// Layout is a keyboard's full set of layers.
type Layout struct {
	Dimensions Dimensions `json:"dimensions"`
	Layers     []Layer    `json:"layers"`
}

// Key returns a single-span cell holding label.
func Key(label string) *KeyCell {
	return Wide(label, 1)
}

// Wide returns a cell holding label that occupies span columns.
func Wide(label string, span int) *KeyCell {
	v := label
	return &KeyCell{Value: &v, Span: span}
}

// Unassigned returns a cell with no value.
func Unassigned() *KeyCell {
	return &KeyCell{Span: 1}
}

// BlankKey returns a cell holding the Blank placeholder.
func BlankKey() *KeyCell {
	return Key(Blank)
}

// Label returns the cell's value, or nil for a skipped or unassigned cell.
// It is safe to call on a nil cell.
func (c *KeyCell) Label() *string {
	if c == nil {
		return nil
	}
	return c.Value
}

// IsBlank reports whether the cell carries no key: skipped, unassigned,
// or holding the Blank placeholder.
func (c *KeyCell) IsBlank() bool {
	if c == nil || c.Value == nil {
		return true
	}
	return *c.Value == Blank
}

// Clone returns a deep copy of the cell.
func (c *KeyCell) Clone() *KeyCell {
	if c == nil {
		return nil
	}
	out := &KeyCell{Span: c.Span}
	if c.Value != nil {
		v := *c.Value
		out.Value = &v
	}
	return out
}

// Equal reports whether two cells are structurally identical. Values are
// compared after NFC normalization, the same form Fingerprint hashes.
func (c *KeyCell) Equal(o *KeyCell) bool {
	if c == nil || o == nil {
		return c == nil && o == nil
	}
	if c.Span != o.Span {
		return false
	}
	if c.Value == nil || o.Value == nil {
		return c.Value == nil && o.Value == nil
	}
	return *c.Value == *o.Value || norm.NFC.String(*c.Value) == norm.NFC.String(*o.Value)
}

// New returns a layout with a single layer of Blank cells.
// Non-positive dimensions are raised to 1.
func New(dims Dimensions) *Layout {
	dims = clampDimensions(dims)
	return &Layout{
		Dimensions: dims,
		Layers:     []Layer{blankLayer(dims.Rows, dims.Columns)},
	}
}

// Default returns the editor's starting layout: 4 rows, 12 columns,
// one blank layer.
func Default() *Layout {
	return New(Dimensions{Rows: DefaultRows, Columns: DefaultColumns})
}

// FromLayers builds a layout from a bare layer array, deriving the
// dimensions from the first layer. Remote load responses carry layers
// without dimensions.
func FromLayers(layers []Layer) *Layout {
	l := &Layout{Layers: make([]Layer, len(layers))}
	for i, layer := range layers {
		l.Layers[i] = layer.Clone()
	}
	if len(layers) > 0 {
		l.Dimensions.Rows = len(layers[0])
		if len(layers[0]) > 0 {
			l.Dimensions.Columns = len(layers[0][0])
		}
	}
	return l
}

// Clone returns a deep copy of the layout.
func (l *Layout) Clone() *Layout {
	if l == nil {
		return nil
	}
	out := &Layout{
		Dimensions: l.Dimensions,
		Layers:     make([]Layer, len(l.Layers)),
	}
	for i, layer := range l.Layers {
		out.Layers[i] = layer.Clone()
	}
	return out
}

// Clone returns a deep copy of the layer.
func (layer Layer) Clone() Layer {
	if layer == nil {
		return nil
	}
	out := make(Layer, len(layer))
	for i, row := range layer {
		out[i] = row.Clone()
	}
	return out
}

// Clone returns a deep copy of the row.
func (row Row) Clone() Row {
	if row == nil {
		return nil
	}
	out := make(Row, len(row))
	for i, cell := range row {
		out[i] = cell.Clone()
	}
	return out
}

// Equal reports deep structural equality on dimensions and layers. Two
// layouts are Equal exactly when their fingerprints match.
func (l *Layout) Equal(o *Layout) bool {
	if l == nil || o == nil {
		return l == nil && o == nil
	}
	if l.Dimensions != o.Dimensions || len(l.Layers) != len(o.Layers) {
		return false
	}
	for i := range l.Layers {
		if len(l.Layers[i]) != len(o.Layers[i]) {
			return false
		}
		for r := range l.Layers[i] {
			a, b := l.Layers[i][r], o.Layers[i][r]
			if len(a) != len(b) {
				return false
			}
			for c := range a {
				if !a[c].Equal(b[c]) {
					return false
				}
			}
		}
	}
	return true
}

// Populated returns the number of cells across all layers that carry a
// key (not skipped, unassigned, or Blank).
func (l *Layout) Populated() int {
	n := 0
	for _, layer := range l.Layers {
		for _, row := range layer {
			for _, cell := range row {
				if !cell.IsBlank() {
					n++
				}
			}
		}
	}
	return n
}

func blankLayer(rows, cols int) Layer {
	layer := make(Layer, rows)
	for r := range layer {
		layer[r] = blankRow(cols)
	}
	return layer
}

func blankRow(cols int) Row {
	row := make(Row, cols)
	for c := range row {
		row[c] = BlankKey()
	}
	return row
}

func clampDimensions(d Dimensions) Dimensions {
	if d.Rows < 1 {
		d.Rows = 1
	}
	if d.Columns < 1 {
		d.Columns = 1
	}
	return d
}
