package compiler

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/keygrid/internal/keycode"
	"github.com/roach88/keygrid/internal/layout"
)

func row(labels ...string) layout.Row {
	r := make(layout.Row, len(labels))
	for i, l := range labels {
		r[i] = layout.Key(l)
	}
	return r
}

func tokens(ss ...string) []keycode.Token {
	out := make([]keycode.Token, len(ss))
	for i, s := range ss {
		out[i] = keycode.Token(s)
	}
	return out
}

func TestCompile_ScenarioA(t *testing.T) {
	l := &layout.Layout{
		Dimensions: layout.Dimensions{Rows: 1, Columns: 4},
		Layers:     []layout.Layer{{row("Q", "W", "E", "R")}},
	}

	km, err := Compile(l, "kb", keycode.Generic)
	require.NoError(t, err)
	assert.Equal(t, [][]keycode.Token{tokens("KC_Q", "KC_W", "KC_E", "KC_R")}, km.Flat())
}

func TestCompile_ScenarioB(t *testing.T) {
	unassigned := &layout.Layout{
		Dimensions: layout.Dimensions{Rows: 1, Columns: 3},
		Layers:     []layout.Layer{{{layout.Unassigned(), layout.Key("W"), layout.Key("E")}}},
	}
	skipped := &layout.Layout{
		Dimensions: layout.Dimensions{Rows: 1, Columns: 3},
		Layers:     []layout.Layer{{{nil, layout.Key("W"), layout.Key("E")}}},
	}

	a, err := Compile(unassigned, "kb", keycode.Generic)
	require.NoError(t, err)
	b, err := Compile(skipped, "kb", keycode.Generic)
	require.NoError(t, err)

	want := [][]keycode.Token{tokens("KC_NO", "KC_W", "KC_E")}
	assert.Equal(t, want, a.Flat())
	assert.Equal(t, want, b.Flat())
}

func TestCompile_TraversalOrder(t *testing.T) {
	l := &layout.Layout{
		Dimensions: layout.Dimensions{Rows: 2, Columns: 2},
		Layers: []layout.Layer{
			{row("A", "B"), row("C", "D")},
			{row("1", "2"), row("3", "4")},
		},
	}

	km, err := Compile(l, "kb", keycode.Generic)
	require.NoError(t, err)

	assert.Equal(t, [][]keycode.Token{
		tokens("KC_A", "KC_B", "KC_C", "KC_D"),
		tokens("KC_1", "KC_2", "KC_3", "KC_4"),
	}, km.Flat())
	assert.Equal(t, [][]keycode.Token{tokens("KC_A", "KC_B"), tokens("KC_C", "KC_D")}, km.Layers[0])
}

func TestCompile_MixedRowsFromFirmwareService(t *testing.T) {
	l := &layout.Layout{
		Dimensions: layout.Dimensions{Rows: 3, Columns: 4},
		Layers: []layout.Layer{{
			row("Q", "W", "E", "R"),
			row("A", "Shift", "Meta", "F"),
			{nil, layout.Key("Z"), layout.Key("X"), layout.Key("C")},
		}},
	}

	km, err := Compile(l, "testkeyboard", keycode.Generic)
	require.NoError(t, err)

	assert.Equal(t, BuildPayload{
		Keyboard: "testkeyboard",
		Keymap:   "default",
		Layout:   "LAYOUT_all",
		Layers: [][]keycode.Token{tokens(
			"KC_Q", "KC_W", "KC_E", "KC_R",
			"KC_A", "KC_LSFT", "KC_LGUI", "KC_F",
			"KC_NO", "KC_Z", "KC_X", "KC_C",
		)},
	}, km.Payload())
}

func TestCompile_EmptyLayerIsAllNoOp(t *testing.T) {
	l := layout.New(layout.Dimensions{Rows: 2, Columns: 3}).AddLayer()

	km, err := Compile(l, "kb", keycode.Mac)
	require.NoError(t, err)
	for _, flat := range km.Flat() {
		require.Len(t, flat, 6)
		for _, tok := range flat {
			assert.Equal(t, keycode.NoOp, tok)
		}
	}
}

func TestCompile_SpanDoesNotChangeShape(t *testing.T) {
	l := &layout.Layout{
		Dimensions: layout.Dimensions{Rows: 1, Columns: 3},
		Layers:     []layout.Layer{{{layout.Key("Shift"), layout.Wide("Space", 6), layout.Key("Enter")}}},
	}

	km, err := Compile(l, "kb", keycode.Generic)
	require.NoError(t, err)
	assert.Equal(t, [][]keycode.Token{tokens("KC_LSFT", "KC_SPC", "KC_ENT")}, km.Flat())
}

func TestCompile_DoesNotMutateInput(t *testing.T) {
	l := layout.Default()
	l, err := l.SetLabel(0, 0, 0, "q")
	require.NoError(t, err)
	before := l.Clone()

	_, err = Compile(l, "kb", keycode.Generic)
	require.NoError(t, err)
	assert.True(t, l.Equal(before))
}

func TestCompile_Deterministic(t *testing.T) {
	l := layout.Default()
	l, err := l.SetLabel(0, 1, 2, "Caps Lock")
	require.NoError(t, err)

	first, err := Compile(l, "kb", keycode.Linux)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := Compile(l, "kb", keycode.Linux)
		require.NoError(t, err)
		assert.Equal(t, first, again)
		assert.Equal(t, first.Source(), again.Source())
	}
}

func TestCompile_PlatformDoesNotChangeTokens(t *testing.T) {
	l := &layout.Layout{
		Dimensions: layout.Dimensions{Rows: 1, Columns: 3},
		Layers:     []layout.Layer{{row("Shift", keycode.LabelMacCommand, "Meta")}},
	}
	var flats [][][]keycode.Token
	for _, p := range keycode.Platforms {
		km, err := Compile(l, "kb", p)
		require.NoError(t, err)
		flats = append(flats, km.Flat())
	}
	for _, f := range flats[1:] {
		assert.Equal(t, flats[0], f)
	}
	assert.Equal(t, tokens("KC_LSFT", "KC_LGUI", "KC_LGUI"), flats[0][0])
}

func TestCompile_RejectsRaggedLayout(t *testing.T) {
	l := layout.New(layout.Dimensions{Rows: 2, Columns: 2})
	l.Layers[0][1] = l.Layers[0][1][:1]

	_, err := Compile(l, "kb", keycode.Generic)
	require.Error(t, err)
	assert.Contains(t, err.Error(), layout.ErrColumnCount)

	_, err = Compile(nil, "kb", keycode.Generic)
	assert.Error(t, err)
}

func TestPayload_JSONShape(t *testing.T) {
	l := &layout.Layout{
		Dimensions: layout.Dimensions{Rows: 1, Columns: 2},
		Layers:     []layout.Layer{{row("A", "B")}},
	}
	km, err := Compile(l, "zsh/planck_ez", keycode.Generic)
	require.NoError(t, err)

	data, err := json.Marshal(km.Payload())
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"keyboard":"zsh/planck_ez","keymap":"default","layout":"LAYOUT_all","layers":[["KC_A","KC_B"]]}`,
		string(data))
}
