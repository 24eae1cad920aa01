package preset

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/keygrid/internal/layout"
)

//go:embed schema.cue
var schemaSource []byte

//go:embed presets.cue
var presetSource []byte

// Info summarises one preset.
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Rows        int    `json:"rows"`
	Columns     int    `json:"columns"`
}

// Catalog is a validated set of presets.
type Catalog struct {
	presets cue.Value
	names   []string
}

// CompileError represents a preset error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var (
	builtinOnce    sync.Once
	builtinCatalog *Catalog
	builtinErr     error
)

// Builtin returns the embedded catalog.
func Builtin() (*Catalog, error) {
	builtinOnce.Do(func() {
		builtinCatalog, builtinErr = Parse("presets.cue", presetSource)
	})
	return builtinCatalog, builtinErr
}

// Names lists the built-in presets in lexical order.
func Names() []string {
	c, err := Builtin()
	if err != nil {
		return nil
	}
	return c.Names()
}

// Load builds the named built-in preset.
func Load(name string) (*layout.Layout, error) {
	c, err := Builtin()
	if err != nil {
		return nil, err
	}
	return c.Load(name)
}

// Parse compiles a CUE catalog and checks every preset against the
// #Preset schema. filename is used in error positions.
func Parse(filename string, src []byte) (*Catalog, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	user := ctx.CompileBytes(src, cue.Filename(filename))
	if err := user.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	v := schema.Unify(user)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	presets := v.LookupPath(cue.ParsePath("presets"))
	iter, err := presets.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	c := &Catalog{presets: presets}
	for iter.Next() {
		c.names = append(c.names, iter.Label())
	}
	if len(c.names) == 0 {
		return nil, &CompileError{Field: "presets", Message: "no presets defined", Pos: user.Pos()}
	}
	sort.Strings(c.names)

	for _, name := range c.names {
		if _, err := c.Load(name); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Names lists the catalog's presets in lexical order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

// Info describes every preset in lexical order.
func (c *Catalog) Info() []Info {
	out := make([]Info, 0, len(c.names))
	for _, name := range c.names {
		v := c.presets.LookupPath(cue.MakePath(cue.Str(name)))
		info := Info{Name: name}
		info.Description, _ = v.LookupPath(cue.ParsePath("description")).String()
		info.Rows = intField(v, "rows")
		info.Columns = intField(v, "columns")
		out = append(out, info)
	}
	return out
}

// Load builds a single-layer layout from the named preset. Positions
// not covered by the base layer are Blank.
func (c *Catalog) Load(name string) (*layout.Layout, error) {
	if !c.has(name) {
		return nil, fmt.Errorf("unknown preset %q", name)
	}
	v := c.presets.LookupPath(cue.MakePath(cue.Str(name)))

	l := layout.New(layout.Dimensions{
		Rows:    intField(v, "rows"),
		Columns: intField(v, "columns"),
	})

	base := v.LookupPath(cue.ParsePath("base"))
	if !base.Exists() {
		return l, nil
	}

	rows, err := base.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	r := 0
	for rows.Next() {
		if r >= l.Dimensions.Rows {
			return nil, &CompileError{
				Field:   name + ".base",
				Message: fmt.Sprintf("has more than %d rows", l.Dimensions.Rows),
				Pos:     rows.Value().Pos(),
			}
		}
		if err := fillRow(l.Layers[0][r], rows.Value(), name, r); err != nil {
			return nil, err
		}
		r++
	}
	return l, nil
}

func (c *Catalog) has(name string) bool {
	i := sort.SearchStrings(c.names, name)
	return i < len(c.names) && c.names[i] == name
}

func fillRow(row layout.Row, v cue.Value, name string, r int) error {
	cells, err := v.List()
	if err != nil {
		return formatCUEError(err)
	}
	col := 0
	for cells.Next() {
		if col >= len(row) {
			return &CompileError{
				Field:   fmt.Sprintf("%s.base[%d]", name, r),
				Message: fmt.Sprintf("has more than %d columns", len(row)),
				Pos:     cells.Value().Pos(),
			}
		}
		cell, err := parseCell(cells.Value())
		if err != nil {
			return err
		}
		row[col] = cell
		col++
	}
	return nil
}

// parseCell converts one #Cell. null is a skipped position and the
// empty string is a blank key.
func parseCell(v cue.Value) (*layout.KeyCell, error) {
	if v.IsNull() {
		return nil, nil
	}

	if s, err := v.String(); err == nil {
		return labelCell(s, 1), nil
	}

	span := 1
	if sv := v.LookupPath(cue.ParsePath("span")); sv.Exists() {
		n, err := sv.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		span = int(n)
	}

	value := v.LookupPath(cue.ParsePath("value"))
	if value.IsNull() {
		return &layout.KeyCell{Span: span}, nil
	}
	s, err := value.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	return labelCell(s, span), nil
}

func labelCell(s string, span int) *layout.KeyCell {
	if s == "" {
		return layout.Wide(layout.Blank, span)
	}
	return layout.Wide(s, span)
}

func intField(v cue.Value, field string) int {
	n, _ := v.LookupPath(cue.ParsePath(field)).Int64()
	return int(n)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
