package cli

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/keygrid/internal/codec"
	"github.com/roach88/keygrid/internal/compiler"
)

// backend is a fake save and firmware service.
type backend struct {
	mu       sync.Mutex
	saved    []codec.SaveRequest
	payloads []compiler.BuildPayload
	paths    []string
	status   int
	load     string
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.paths = append(b.paths, r.Method+" "+r.URL.RequestURI())
	if b.status != 0 {
		http.Error(w, "unavailable", b.status)
		return
	}

	switch {
	case r.Method == http.MethodPut && r.URL.Path == "/savedata":
		var req codec.SaveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		b.saved = append(b.saved, req)
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodGet && r.URL.Path == "/savedata":
		io.WriteString(w, b.load)
	case r.Method == http.MethodPut:
		var p compiler.BuildPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		b.payloads = append(b.payloads, p)
		w.Write([]byte("\x00firmware\xff"))
	default:
		http.NotFound(w, r)
	}
}

func remoteOptions(t *testing.T, format string, b *backend) *RootOptions {
	t.Helper()

	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	opts := testOptions(t, format)
	opts.Config.BackendURL = srv.URL
	opts.Config.UserID = "ada@example.com"
	return opts
}

func TestPush(t *testing.T) {
	b := &backend{}
	path := writeTestLayout(t, t.TempDir(), "planck.json", qwe())

	out, err := execute(t, NewPushCommand(remoteOptions(t, "text", b)), path)
	require.NoError(t, err)
	assert.Equal(t, "✓ Pushed planck for ada@example.com (2x3, 1 layer(s), 5 key(s) assigned)\n", out)

	require.Len(t, b.saved, 1)
	assert.Equal(t, "ada@example.com", b.saved[0].UserID)
	assert.Equal(t, "planck", b.saved[0].KeyboardName)
	assert.True(t, b.saved[0].KeyboardLayout.Equal(qwe()))
}

func TestPush_UserFlag(t *testing.T) {
	b := &backend{}
	path := writeTestLayout(t, t.TempDir(), "planck.json", qwe())

	_, err := execute(t, NewPushCommand(remoteOptions(t, "json", b)), path, "--user", "grace", "--name", "work")
	require.NoError(t, err)
	require.Len(t, b.saved, 1)
	assert.Equal(t, "grace", b.saved[0].UserID)
	assert.Equal(t, "work", b.saved[0].KeyboardName)
}

func TestPull(t *testing.T) {
	b := &backend{load: `{"keyboard_layout": [[["Q", "W"]]], "keyboard_name": "tiny"}`}
	outFile := filepath.Join(t.TempDir(), "pulled.json")

	out, err := execute(t, NewPullCommand(remoteOptions(t, "text", b)), "-o", outFile)
	require.NoError(t, err)
	assert.Contains(t, out, `✓ Pulled "tiny" for ada@example.com to `+outFile)
	assert.Equal(t, []string{"GET /savedata?email=ada%40example.com"}, b.paths)

	got, res := readTestLayout(t, outFile)
	assert.Equal(t, 1, got.Dimensions.Rows)
	assert.Equal(t, 2, got.Dimensions.Columns)
	require.NotNil(t, got.Layers[0][0][1].Value)
	assert.Equal(t, "W", *got.Layers[0][0][1].Value)
	assert.Equal(t, codec.CurrentVersion, res.Version)
}

func TestFirmware(t *testing.T) {
	b := &backend{}
	dir := t.TempDir()
	path := writeTestLayout(t, dir, "qwe.json", qwe())
	outFile := filepath.Join(dir, "planck.bin")

	out, err := execute(t, NewFirmwareCommand(remoteOptions(t, "text", b)), path, "-o", outFile, "--keyboard", "olkb/planck")
	require.NoError(t, err)
	assert.Equal(t, "✓ Wrote 10 byte(s) of firmware for olkb/planck to "+outFile+"\n", out)
	assert.Equal(t, []string{"PUT /firmware/olkb/planck"}, b.paths)

	require.Len(t, b.payloads, 1)
	assert.Equal(t, "default", b.payloads[0].Keymap)
	assert.Equal(t, "LAYOUT_all", b.payloads[0].Layout)

	image, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x00firmware\xff"), image)
}

func TestRemote_Errors(t *testing.T) {
	path := writeTestLayout(t, t.TempDir(), "qwe.json", qwe())

	t.Run("no backend", func(t *testing.T) {
		opts := testOptions(t, "json")
		opts.Config.UserID = "ada@example.com"
		opts.Config.BackendURL = ""

		out, err := execute(t, NewPushCommand(opts), path)
		assert.Equal(t, ExitCommandError, exitCode(t, err))

		var resp CLIResponse
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		assert.Equal(t, ErrCodeConfig, resp.Error.Code)
	})

	t.Run("no user", func(t *testing.T) {
		opts := remoteOptions(t, "json", &backend{})
		opts.Config.UserID = ""

		out, err := execute(t, NewPullCommand(opts))
		assert.Equal(t, ExitCommandError, exitCode(t, err))

		var resp CLIResponse
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		assert.Equal(t, ErrCodeInvalidArgs, resp.Error.Code)
	})

	t.Run("server error", func(t *testing.T) {
		b := &backend{status: http.StatusInternalServerError}
		outFile := filepath.Join(t.TempDir(), "fw.bin")

		out, err := execute(t, NewFirmwareCommand(remoteOptions(t, "text", b)), path, "-o", outFile)
		assert.Equal(t, ExitCommandError, exitCode(t, err))
		assert.Contains(t, out, "Error ["+ErrCodeRemote+"]: building firmware: backend returned 500")
		assert.NoFileExists(t, outFile)
	})
}
