package compiler

import (
	"fmt"

	"github.com/roach88/keygrid/internal/keycode"
	"github.com/roach88/keygrid/internal/layout"
)

// DefaultKeymap and DefaultLayoutMacro are the fixed names used in the
// build payload.
const (
	DefaultKeymap      = "default"
	DefaultLayoutMacro = "LAYOUT_all"
)

// Keymap is a compiled layout: one token per grid position, nested by
// layer and row.
type Keymap struct {
	Keyboard string
	Platform keycode.Platform
	Layers   [][][]keycode.Token
}

// BuildPayload is the request body for the remote firmware build service.
type BuildPayload struct {
	Keyboard string            `json:"keyboard"`
	Keymap   string            `json:"keymap"`
	Layout   string            `json:"layout"`
	Layers   [][]keycode.Token `json:"layers"`
}

// Compile maps every cell of l to a keycode token.
//
// A skipped cell and an unassigned cell both compile to keycode.NoOp in
// place, so later positions never shift. Compile returns an error only
// when l violates the shape invariants; it never mutates l.
func Compile(l *layout.Layout, keyboard string, p keycode.Platform) (*Keymap, error) {
	if l == nil {
		return nil, fmt.Errorf("compile: nil layout")
	}
	if err := l.Rectangular(); err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	km := &Keymap{
		Keyboard: keyboard,
		Platform: p,
		Layers:   make([][][]keycode.Token, len(l.Layers)),
	}
	for i, layer := range l.Layers {
		rows := make([][]keycode.Token, len(layer))
		for r, row := range layer {
			tokens := make([]keycode.Token, len(row))
			for c, cell := range row {
				tokens[c] = keycode.Map(cell.Label(), p)
			}
			rows[r] = tokens
		}
		km.Layers[i] = rows
	}
	return km, nil
}

// Flat returns one row-major token array per layer.
func (k *Keymap) Flat() [][]keycode.Token {
	out := make([][]keycode.Token, len(k.Layers))
	for i, layer := range k.Layers {
		flat := make([]keycode.Token, 0, countTokens(layer))
		for _, row := range layer {
			flat = append(flat, row...)
		}
		out[i] = flat
	}
	return out
}

// Payload returns the remote build request for this keymap.
func (k *Keymap) Payload() BuildPayload {
	return BuildPayload{
		Keyboard: k.Keyboard,
		Keymap:   DefaultKeymap,
		Layout:   DefaultLayoutMacro,
		Layers:   k.Flat(),
	}
}

func countTokens(layer [][]keycode.Token) int {
	n := 0
	for _, row := range layer {
		n += len(row)
	}
	return n
}
