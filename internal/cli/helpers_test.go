package cli

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/keygrid/internal/codec"
	"github.com/roach88/keygrid/internal/config"
	"github.com/roach88/keygrid/internal/layout"
	"github.com/roach88/keygrid/internal/testutil"
)

// testOptions returns root options with default settings, a temp
// database, a step clock and a discarding logger.
func testOptions(t *testing.T, format string) *RootOptions {
	t.Helper()

	cfg := config.Default()
	cfg.Keyboard = "test_keyboard"
	cfg.DBPath = filepath.Join(t.TempDir(), "keygrid.db")

	return &RootOptions{
		Format: format,
		Config: &cfg,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:    testutil.NewStepClock().Now,
	}
}

// execute runs cmd with args and returns stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

// writeTestLayout serializes l into dir/name and returns the path.
func writeTestLayout(t *testing.T, dir, name string, l *layout.Layout) string {
	t.Helper()

	data, err := codec.Serialize(l, codec.Metadata{LastModified: testutil.Epoch})
	require.NoError(t, err)

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// readTestLayout decodes the layout document at path, failing on fallback.
func readTestLayout(t *testing.T, path string) (*layout.Layout, codec.Result) {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	l, res := codec.Decode(data)
	require.False(t, res.Fallback, "decode fell back: %s", res.Reason)
	return l, res
}

// qwe is a 2x3 layout with letters on one layer.
func qwe() *layout.Layout {
	return &layout.Layout{
		Dimensions: layout.Dimensions{Rows: 2, Columns: 3},
		Layers: []layout.Layer{{
			{layout.Key("Q"), layout.Key("W"), layout.Key("E")},
			{layout.Key("A"), layout.Wide("Space", 2), nil},
		}},
	}
}

// clearEnv unsets every keygrid environment variable for the test.
func clearEnv(t *testing.T) {
	t.Helper()

	for _, name := range append(config.EnvNames(), config.EnvConfig) {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	require.Error(t, err)
	return GetExitCode(err)
}
