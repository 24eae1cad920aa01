package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/keygrid/internal/codec"
	"github.com/roach88/keygrid/internal/keycode"
	"github.com/roach88/keygrid/internal/layout"
)

// stdio is the path argument meaning stdin or stdout.
const stdio = "-"

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == stdio {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

// writeOutput writes data to path, or to stdout for "" and "-".
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == stdio {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// loadLayoutFile reads and leniently decodes a layout document. A
// document that falls back to the default layout is logged, not refused.
func loadLayoutFile(opts *RootOptions, f *OutputFormatter, cmd *cobra.Command, path string) (*layout.Layout, codec.Result, error) {
	data, err := readInput(cmd, path)
	if err != nil {
		code := ErrCodeReadFailed
		if errors.Is(err, os.ErrNotExist) {
			code = ErrCodeNotFound
		}
		return nil, codec.Result{}, fail(f, ExitCommandError, code, fmt.Sprintf("reading layout %s", path), err)
	}

	l, res := codec.Decode(data)
	if res.Fallback {
		opts.logger().Warn("layout document unusable, using default layout", "path", path, "reason", res.Reason)
	} else {
		opts.logger().Debug("layout decoded", "path", path, "version", res.Version,
			"rows", l.Dimensions.Rows, "columns", l.Dimensions.Columns, "layers", len(l.Layers))
	}
	return l, res, nil
}

// saveLayoutFile serializes l stamped with the current time and writes it
// to path.
func saveLayoutFile(opts *RootOptions, f *OutputFormatter, cmd *cobra.Command, path string, l *layout.Layout) error {
	return writeLayoutAt(f, cmd, path, l, opts.now())
}

// writeLayoutAt serializes l with lastModified set to ts.
func writeLayoutAt(f *OutputFormatter, cmd *cobra.Command, path string, l *layout.Layout, ts time.Time) error {
	data, err := codec.Serialize(l, codec.Metadata{LastModified: ts})
	if err != nil {
		return fail(f, ExitCommandError, ErrCodeGeneric, "serializing layout", err)
	}
	if err := writeOutput(cmd, path, data); err != nil {
		return fail(f, ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing layout %s", path), err)
	}
	return nil
}

// resolvePlatform reports a bad --platform or config platform.
func resolvePlatform(opts *RootOptions, f *OutputFormatter) (keycode.Platform, error) {
	p, err := opts.platform()
	if err != nil {
		return p, fail(f, ExitCommandError, ErrCodeInvalidArgs, "resolving platform", err)
	}
	return p, nil
}

// LayoutSummary describes a layout in command output.
type LayoutSummary struct {
	Path    string `json:"path,omitempty"`
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
	Layers  int    `json:"layers"`
	Keys    int    `json:"keys"`
}

func summarize(path string, l *layout.Layout) LayoutSummary {
	return LayoutSummary{
		Path:    path,
		Rows:    l.Dimensions.Rows,
		Columns: l.Dimensions.Columns,
		Layers:  len(l.Layers),
		Keys:    l.Populated(),
	}
}

func (s LayoutSummary) String() string {
	return fmt.Sprintf("%dx%d, %d layer(s), %d key(s) assigned", s.Rows, s.Columns, s.Layers, s.Keys)
}
