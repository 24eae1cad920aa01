package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/keygrid/internal/preset"
)

func TestPresets_Text(t *testing.T) {
	out, err := execute(t, NewPresetsCommand(testOptions(t, "text")))
	require.NoError(t, err)
	assert.Contains(t, out, "ortho_4x12")
	assert.Contains(t, out, " 4x12 ")
	assert.Contains(t, out, "numpad")
}

func TestPresets_JSON(t *testing.T) {
	out, err := execute(t, NewPresetsCommand(testOptions(t, "json")))
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   []preset.Info `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	names := make([]string, len(resp.Data))
	for i, info := range resp.Data {
		names[i] = info.Name
	}
	assert.Equal(t, preset.Names(), names)
}

func TestPresets_UserCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mine.cue")
	require.NoError(t, os.WriteFile(path, []byte(
		`presets: tiny: {description: "two keys", rows: 1, columns: 2, base: [["A", "B"]]}`), 0o644))

	out, err := execute(t, NewPresetsCommand(testOptions(t, "text")), "--file", path)
	require.NoError(t, err)
	assert.Equal(t, "tiny"+strings.Repeat(" ", 14)+"1x2   two keys\n", out)
}

func TestPresets_BadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.cue")
	require.NoError(t, os.WriteFile(path, []byte(
		`presets: p: {description: "x", rows: 1, columns: 1, base: [[{value: "A", span: 0}]]}`), 0o644))

	out, err := execute(t, NewPresetsCommand(testOptions(t, "json")), "--file", path)
	assert.Equal(t, ExitCommandError, exitCode(t, err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, ErrCodePreset, resp.Error.Code)
}
