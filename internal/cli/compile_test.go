package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/keygrid/internal/compiler"
	"github.com/roach88/keygrid/internal/keycode"
	"github.com/roach88/keygrid/internal/layout"
)

func TestCompile_Stdout(t *testing.T) {
	path := writeTestLayout(t, t.TempDir(), "qwe.json", qwe())

	out, err := execute(t, NewCompileCommand(testOptions(t, "text")), path)
	require.NoError(t, err)

	km, err := compiler.Compile(qwe(), "test_keyboard", keycode.Generic)
	require.NoError(t, err)
	assert.Equal(t, km.Source(), out)
	assert.Contains(t, out, "KC_Q    , KC_W    , KC_E    ,\n")
	assert.Contains(t, out, "KC_A    , KC_SPC  , KC_NO   \n")
}

func TestCompile_JSON(t *testing.T) {
	path := writeTestLayout(t, t.TempDir(), "qwe.json", qwe())

	out, err := execute(t, NewCompileCommand(testOptions(t, "json")), path, "--keyboard", "olkb/planck")
	require.NoError(t, err)

	var resp struct {
		Status string            `json:"status"`
		Data   CompilationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "olkb/planck", resp.Data.Keyboard)
	assert.Equal(t, "generic", resp.Data.Platform)
	assert.Equal(t, [][]keycode.Token{{"KC_Q", "KC_W", "KC_E", "KC_A", "KC_SPC", "KC_NO"}}, resp.Data.Layers)
	assert.True(t, strings.HasPrefix(resp.Data.Source, "#include QMK_KEYBOARD_H\n"))
	assert.Empty(t, resp.Data.Diagnostics)
}

func TestCompile_OutputFile(t *testing.T) {
	dir := t.TempDir()
	path := writeTestLayout(t, dir, "qwe.json", qwe())
	outFile := filepath.Join(dir, "keymap.c")

	out, err := execute(t, NewCompileCommand(testOptions(t, "text")), path, "--output", outFile)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Compiled 1 layer(s) for test_keyboard (generic)")
	assert.Contains(t, out, "Wrote keymap.c to "+outFile)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[0] = LAYOUT(")
}

func TestCompile_ReportsDiagnostics(t *testing.T) {
	l := &layout.Layout{
		Dimensions: layout.Dimensions{Rows: 1, Columns: 2},
		Layers:     []layout.Layer{{{layout.Key("Frobnicate"), layout.Key("Quux")}}},
	}
	dir := t.TempDir()
	path := writeTestLayout(t, dir, "odd.json", l)

	opts := testOptions(t, "text")
	opts.Platform = "mac"
	out, err := execute(t, NewCompileCommand(opts), path, "-o", filepath.Join(dir, "keymap.c"))
	require.NoError(t, err)
	assert.Contains(t, out, "2 label(s) need attention")
}

func TestCompile_Stdin(t *testing.T) {
	data, err := os.ReadFile(writeTestLayout(t, t.TempDir(), "qwe.json", qwe()))
	require.NoError(t, err)

	cmd := NewCompileCommand(testOptions(t, "text"))
	cmd.SetIn(strings.NewReader(string(data)))
	out, err := execute(t, cmd, "-")
	require.NoError(t, err)
	assert.Contains(t, out, "KC_Q")
}

func TestCompile_MalformedDocumentFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	out, err := execute(t, NewCompileCommand(testOptions(t, "text")), path)
	require.NoError(t, err)

	km, err := compiler.Compile(layout.Default(), "test_keyboard", keycode.Generic)
	require.NoError(t, err)
	assert.Equal(t, km.Source(), out)
}

func TestCompile_Errors(t *testing.T) {
	path := writeTestLayout(t, t.TempDir(), "qwe.json", qwe())

	t.Run("missing file", func(t *testing.T) {
		out, err := execute(t, NewCompileCommand(testOptions(t, "text")), "/nonexistent/x.json")
		assert.Equal(t, ExitCommandError, exitCode(t, err))
		assert.Contains(t, out, "Error ["+ErrCodeNotFound+"]")
	})

	t.Run("bad platform", func(t *testing.T) {
		opts := testOptions(t, "text")
		opts.Platform = "amiga"
		out, err := execute(t, NewCompileCommand(opts), path)
		assert.Equal(t, ExitCommandError, exitCode(t, err))
		assert.Contains(t, out, "Error ["+ErrCodeInvalidArgs+"]")
	})

	t.Run("bad keyboard", func(t *testing.T) {
		out, err := execute(t, NewCompileCommand(testOptions(t, "json")), path, "--keyboard", "../up")
		assert.Equal(t, ExitCommandError, exitCode(t, err))

		var resp CLIResponse
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		assert.Equal(t, ErrCodeInvalidArgs, resp.Error.Code)
	})
}
