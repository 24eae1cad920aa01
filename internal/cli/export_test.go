package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/keygrid/internal/firmware"
	"github.com/roach88/keygrid/internal/keycode"
)

func TestExport_ArchiveInDirectory(t *testing.T) {
	dir := t.TempDir()
	path := writeTestLayout(t, dir, "qwe.json", qwe())
	outDir := filepath.Join(dir, "dist")
	require.NoError(t, os.Mkdir(outDir, 0o755))

	out, err := execute(t, NewExportCommand(testOptions(t, "text")), path, "-o", outDir)
	require.NoError(t, err)

	archive := filepath.Join(outDir, "test_keyboard_qmk_firmware.zip")
	assert.Contains(t, out, "✓ Wrote 5 file(s) to "+archive)
	assert.Contains(t, out, "  test_keyboard/keymaps/default/keymap.c\n")

	data, err := os.ReadFile(archive)
	require.NoError(t, err)

	var want bytes.Buffer
	require.NoError(t, firmware.Build(&want, qwe(), "test_keyboard", keycode.Generic))
	assert.Equal(t, want.Bytes(), data)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{
		"test_keyboard/",
		"test_keyboard/keymaps/",
		"test_keyboard/keymaps/default/",
		"test_keyboard/keymaps/default/keymap.c",
		"test_keyboard/config.h",
		"test_keyboard/rules.mk",
		"test_keyboard/info.json",
		"test_keyboard/readme.md",
	}, names)
}

func TestExport_ExplicitArchivePath(t *testing.T) {
	dir := t.TempDir()
	path := writeTestLayout(t, dir, "qwe.json", qwe())
	archive := filepath.Join(dir, "mine.zip")

	out, err := execute(t, NewExportCommand(testOptions(t, "json")), path, "-o", archive, "--keyboard", "acme/pad")
	require.NoError(t, err)

	var resp struct {
		Data ExportResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, archive, resp.Data.Path)
	assert.Equal(t, "acme/pad/config.h", resp.Data.Files[1])
	assert.FileExists(t, archive)
}

func TestExport_Unpacked(t *testing.T) {
	dir := t.TempDir()
	path := writeTestLayout(t, dir, "qwe.json", qwe())
	outDir := filepath.Join(dir, "keyboards")

	_, err := execute(t, NewExportCommand(testOptions(t, "text")), path, "--unpacked", "-o", outDir, "--keyboard", "acme/pad")
	require.NoError(t, err)

	files, err := firmware.Artifacts(qwe(), "acme/pad", keycode.Generic)
	require.NoError(t, err)
	for _, f := range files {
		data, err := os.ReadFile(filepath.Join(outDir, filepath.FromSlash(f.Path)))
		require.NoError(t, err, f.Path)
		assert.Equal(t, f.Data, data, f.Path)
	}
}

func TestExport_InvalidKeyboard(t *testing.T) {
	path := writeTestLayout(t, t.TempDir(), "qwe.json", qwe())

	out, err := execute(t, NewExportCommand(testOptions(t, "text")), path, "--keyboard", "/abs")
	assert.Equal(t, ExitCommandError, exitCode(t, err))
	assert.Contains(t, out, "Error ["+ErrCodePackage+"]")
}

func TestArchivePath(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, "kb_qmk_firmware.zip", archivePath("", "kb"))
	assert.Equal(t, filepath.Join(dir, "a_b_qmk_firmware.zip"), archivePath(dir, "a/b"))
	assert.Equal(t, "out.zip", archivePath("out.zip", "kb"))
}
