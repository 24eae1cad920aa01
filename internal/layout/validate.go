package layout

import "fmt"

// Validation error codes (E200-E299)
const (
	ErrLayerCount  = "E201" // layer count outside 1..MaxLayers
	ErrRowCount    = "E202" // layer row count differs from dimensions.rows
	ErrColumnCount = "E203" // row length differs from dimensions.columns
	ErrSpan        = "E204" // span below 1
	ErrEmptyValue  = "E205" // value is the empty string
	ErrOutOfRange  = "E206" // edit position outside the grid
	ErrDimensions  = "E207" // non-positive dimensions
)

// ValidationError describes one violated layout invariant.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks every shape and cell invariant.
// Returns all errors found (does not fail-fast).
func (l *Layout) Validate() []ValidationError {
	var errs []ValidationError

	if l.Dimensions.Rows < 1 || l.Dimensions.Columns < 1 {
		errs = append(errs, ValidationError{
			Field:   "dimensions",
			Message: fmt.Sprintf("rows and columns must be positive, got %dx%d", l.Dimensions.Rows, l.Dimensions.Columns),
			Code:    ErrDimensions,
		})
	}

	if n := len(l.Layers); n < MinLayers || n > MaxLayers {
		errs = append(errs, ValidationError{
			Field:   "layers",
			Message: fmt.Sprintf("layer count must be between %d and %d, got %d", MinLayers, MaxLayers, n),
			Code:    ErrLayerCount,
		})
	}

	for i, layer := range l.Layers {
		if len(layer) != l.Dimensions.Rows {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("layers[%d]", i),
				Message: fmt.Sprintf("has %d rows, dimensions declare %d", len(layer), l.Dimensions.Rows),
				Code:    ErrRowCount,
			})
		}
		for r, row := range layer {
			if len(row) != l.Dimensions.Columns {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("layers[%d][%d]", i, r),
					Message: fmt.Sprintf("has %d columns, dimensions declare %d", len(row), l.Dimensions.Columns),
					Code:    ErrColumnCount,
				})
			}
			for c, cell := range row {
				if cell == nil {
					continue
				}
				field := fmt.Sprintf("layers[%d][%d][%d]", i, r, c)
				if cell.Span < 1 {
					errs = append(errs, ValidationError{
						Field:   field + ".span",
						Message: fmt.Sprintf("span must be at least 1, got %d", cell.Span),
						Code:    ErrSpan,
					})
				}
				if cell.Value != nil && *cell.Value == "" {
					errs = append(errs, ValidationError{
						Field:   field + ".value",
						Message: "value must be null or non-empty",
						Code:    ErrEmptyValue,
					})
				}
			}
		}
	}

	return errs
}

// Rectangular reports whether the layout satisfies the shape invariants
// the compiler relies on: 1..MaxLayers layers, each with exactly
// dimensions.rows rows of exactly dimensions.columns cells.
func (l *Layout) Rectangular() error {
	for _, e := range l.Validate() {
		switch e.Code {
		case ErrDimensions, ErrLayerCount, ErrRowCount, ErrColumnCount:
			return e
		}
	}
	return nil
}
