package preset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/keygrid/internal/compiler"
	"github.com/roach88/keygrid/internal/keycode"
	"github.com/roach88/keygrid/internal/layout"
)

func TestNames(t *testing.T) {
	assert.Equal(t, []string{
		"macropad_3x3",
		"numpad",
		"ortho_4x12",
		"ortho_5x12",
		"split_3x5",
	}, Names())
}

func TestBuiltinPresetsAreValid(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			l, err := Load(name)
			require.NoError(t, err)
			assert.Empty(t, l.Validate())
			assert.Len(t, l.Layers, 1)

			for _, p := range keycode.Platforms {
				for _, d := range compiler.Lint(l, p) {
					assert.NotEqual(t, compiler.DiagUnknown, d.Kind, d.String())
				}
			}
		})
	}
}

func TestLoad_Ortho4x12(t *testing.T) {
	l, err := Load("ortho_4x12")
	require.NoError(t, err)

	assert.Equal(t, layout.Dimensions{Rows: 4, Columns: 12}, l.Dimensions)

	layer := l.Layers[0]
	assert.Equal(t, "Tab", *layer[0][0].Value)
	assert.Equal(t, "Enter", *layer[2][11].Value)
	assert.True(t, layer[3][4].IsBlank())
	require.NotNil(t, layer[3][4])
	assert.Equal(t, layout.Blank, *layer[3][4].Value)

	assert.Equal(t, "Space", *layer[3][6].Value)
	assert.Equal(t, 2, layer[3][6].Span)
	assert.Nil(t, layer[3][7])
}

func TestLoad_BlankPreset(t *testing.T) {
	l, err := Load("ortho_5x12")
	require.NoError(t, err)

	assert.True(t, layout.New(layout.Dimensions{Rows: 5, Columns: 12}).Equal(l))
}

func TestLoad_Numpad(t *testing.T) {
	l, err := Load("numpad")
	require.NoError(t, err)

	km, err := compiler.Compile(l, "numpad", keycode.Generic)
	require.NoError(t, err)
	assert.Equal(t, []keycode.Token{"KC_0", keycode.NoOp, "KC_DOT", keycode.NoOp}, km.Layers[0][4])
	assert.Nil(t, l.Layers[0][2][3])
}

func TestLoad_Unknown(t *testing.T) {
	_, err := Load("ergodox")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ergodox")
}

func TestLoad_ReturnsIndependentCopies(t *testing.T) {
	a, err := Load("macropad_3x3")
	require.NoError(t, err)
	b, err := Load("macropad_3x3")
	require.NoError(t, err)

	edited, err := a.SetLabel(0, 0, 0, "Esc")
	require.NoError(t, err)
	assert.False(t, edited.Equal(b))
	assert.True(t, a.Equal(b))
}

func TestCatalogInfo(t *testing.T) {
	c, err := Builtin()
	require.NoError(t, err)

	info := c.Info()
	require.Len(t, info, 5)
	assert.Equal(t, Info{
		Name:        "macropad_3x3",
		Description: "Nine-key macro pad on the function row",
		Rows:        3,
		Columns:     3,
	}, info[0])
}

func TestParse_UserCatalog(t *testing.T) {
	src := `
presets: tiny: {
	description: "two keys"
	rows:        1
	columns:     2
	base: [[{value: null, span: 1}, ""]]
}
`
	c, err := Parse("user.cue", []byte(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"tiny"}, c.Names())

	l, err := c.Load("tiny")
	require.NoError(t, err)
	require.NotNil(t, l.Layers[0][0][0])
	assert.Nil(t, l.Layers[0][0][0].Value)
	assert.Equal(t, layout.Blank, *l.Layers[0][0][1].Value)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "syntax", src: `presets: {`},
		{name: "rows out of range", src: `presets: p: {description: "x", rows: 0, columns: 1}`},
		{name: "columns too large", src: `presets: p: {description: "x", rows: 1, columns: 33}`},
		{name: "missing description", src: `presets: p: {rows: 1, columns: 1}`},
		{name: "unknown field", src: `presets: p: {description: "x", rows: 1, columns: 1, layers: 2}`},
		{name: "bad span", src: `presets: p: {description: "x", rows: 1, columns: 1, base: [[{value: "A", span: 0}]]}`},
		{name: "too many rows", src: `presets: p: {description: "x", rows: 1, columns: 1, base: [["A"], ["B"]]}`},
		{name: "too many columns", src: `presets: p: {description: "x", rows: 1, columns: 1, base: [["A", "B"]]}`},
		{name: "empty", src: `other: 1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("user.cue", []byte(tt.src))
			require.Error(t, err)
		})
	}
}

func TestParse_ShapeErrorIsTyped(t *testing.T) {
	_, err := Parse("user.cue", []byte(`presets: p: {description: "x", rows: 1, columns: 1, base: [["A", "B"]]}`))
	require.Error(t, err)

	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "p.base[0]", ce.Field)
	assert.Contains(t, ce.Error(), "has more than 1 columns")
}
