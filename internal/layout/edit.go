package layout

import "fmt"

// SetCell returns a copy of l with the cell at (layer, row, col) replaced.
// A nil cell marks the position as skipped.
func (l *Layout) SetCell(layer, row, col int, cell *KeyCell) (*Layout, error) {
	if err := l.checkPosition(layer, row, col); err != nil {
		return nil, err
	}
	out := l.Clone()
	out.Layers[layer][row][col] = cell.Clone()
	return out, nil
}

// SetLabel is SetCell with a single-span key holding label.
func (l *Layout) SetLabel(layer, row, col int, label string) (*Layout, error) {
	return l.SetCell(layer, row, col, Key(label))
}

// ClearCell returns a copy of l with the cell reset to the Blank placeholder.
func (l *Layout) ClearCell(layer, row, col int) (*Layout, error) {
	return l.SetCell(layer, row, col, BlankKey())
}

// SkipCell returns a copy of l with the position marked as skipped.
func (l *Layout) SkipCell(layer, row, col int) (*Layout, error) {
	return l.SetCell(layer, row, col, nil)
}

// Cell returns the cell at (layer, row, col).
func (l *Layout) Cell(layer, row, col int) (*KeyCell, error) {
	if err := l.checkPosition(layer, row, col); err != nil {
		return nil, err
	}
	return l.Layers[layer][row][col], nil
}

// AddLayer returns a copy of l with a blank layer appended.
// At MaxLayers the copy is returned unchanged.
func (l *Layout) AddLayer() *Layout {
	out := l.Clone()
	if len(out.Layers) >= MaxLayers {
		return out
	}
	out.Layers = append(out.Layers, blankLayer(out.Dimensions.Rows, out.Dimensions.Columns))
	return out
}

// RemoveLayer returns a copy of l without its last layer.
// A single remaining layer is never removed.
func (l *Layout) RemoveLayer() *Layout {
	out := l.Clone()
	if len(out.Layers) <= MinLayers {
		return out
	}
	out.Layers = out.Layers[:len(out.Layers)-1]
	return out
}

// AddRow returns a copy of l with a blank row appended to every layer.
func (l *Layout) AddRow() *Layout {
	out := l.Clone()
	for i := range out.Layers {
		out.Layers[i] = append(out.Layers[i], blankRow(out.Dimensions.Columns))
	}
	out.Dimensions.Rows++
	return out
}

// RemoveRow returns a copy of l with the last row dropped from every
// layer. The last remaining row is never removed.
func (l *Layout) RemoveRow() *Layout {
	out := l.Clone()
	if out.Dimensions.Rows <= 1 {
		return out
	}
	out.Dimensions.Rows--
	for i, layer := range out.Layers {
		if len(layer) > out.Dimensions.Rows {
			out.Layers[i] = layer[:out.Dimensions.Rows]
		}
	}
	return out
}

// AddColumn returns a copy of l with a blank cell appended to every row.
func (l *Layout) AddColumn() *Layout {
	out := l.Clone()
	for _, layer := range out.Layers {
		for r := range layer {
			layer[r] = append(layer[r], BlankKey())
		}
	}
	out.Dimensions.Columns++
	return out
}

// RemoveColumn returns a copy of l with the right-most cell dropped from
// every row. The last remaining column is never removed.
func (l *Layout) RemoveColumn() *Layout {
	out := l.Clone()
	if out.Dimensions.Columns <= 1 {
		return out
	}
	out.Dimensions.Columns--
	for _, layer := range out.Layers {
		for r, row := range layer {
			if len(row) > out.Dimensions.Columns {
				layer[r] = row[:out.Dimensions.Columns]
			}
		}
	}
	return out
}

func (l *Layout) checkPosition(layer, row, col int) error {
	if layer < 0 || layer >= len(l.Layers) {
		return ValidationError{
			Field:   "layer",
			Message: fmt.Sprintf("layer %d out of range [0,%d)", layer, len(l.Layers)),
			Code:    ErrOutOfRange,
		}
	}
	if row < 0 || row >= len(l.Layers[layer]) {
		return ValidationError{
			Field:   "row",
			Message: fmt.Sprintf("row %d out of range [0,%d)", row, len(l.Layers[layer])),
			Code:    ErrOutOfRange,
		}
	}
	if col < 0 || col >= len(l.Layers[layer][row]) {
		return ValidationError{
			Field:   "column",
			Message: fmt.Sprintf("column %d out of range [0,%d)", col, len(l.Layers[layer][row])),
			Code:    ErrOutOfRange,
		}
	}
	return nil
}
