package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/keygrid/internal/compiler"
	"github.com/roach88/keygrid/internal/keycode"
)

func TestPayload_Text(t *testing.T) {
	path := writeTestLayout(t, t.TempDir(), "qwe.json", qwe())

	out, err := execute(t, NewPayloadCommand(testOptions(t, "text")), path)
	require.NoError(t, err)

	var payload compiler.BuildPayload
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, compiler.BuildPayload{
		Keyboard: "test_keyboard",
		Keymap:   compiler.DefaultKeymap,
		Layout:   compiler.DefaultLayoutMacro,
		Layers:   [][]keycode.Token{{"KC_Q", "KC_W", "KC_E", "KC_A", "KC_SPC", "KC_NO"}},
	}, payload)
}

func TestPayload_JSONEnvelope(t *testing.T) {
	path := writeTestLayout(t, t.TempDir(), "qwe.json", qwe())

	out, err := execute(t, NewPayloadCommand(testOptions(t, "json")), path, "--keyboard", "kb")
	require.NoError(t, err)

	var resp struct {
		Status string                `json:"status"`
		Data   compiler.BuildPayload `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "kb", resp.Data.Keyboard)
	assert.Equal(t, "LAYOUT_all", resp.Data.Layout)
}

func TestPayload_OutputFile(t *testing.T) {
	dir := t.TempDir()
	path := writeTestLayout(t, dir, "qwe.json", qwe())
	outFile := filepath.Join(dir, "payload.json")

	out, err := execute(t, NewPayloadCommand(testOptions(t, "text")), path, "-o", outFile)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Wrote build payload for test_keyboard")

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"keymap": "default"`)
}
