package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/keygrid/internal/firmware"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Output   string // archive path or directory
	Keyboard string
	Unpacked bool // write the keyboard directory instead of a zip
}

// ExportResult describes a written firmware package.
type ExportResult struct {
	Path  string   `json:"path"`
	Files []string `json:"files"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write a QMK keyboard package",
		Long: `Generate keymap.c, config.h, rules.mk, info.json and readme.md for a
layout and package them as <keyboard>_qmk_firmware.zip.

--output names the archive, or a directory to place it in. With
--unpacked the keyboard directory is written under --output instead.

Examples:
  keygrid export planck.json --keyboard olkb/planck
  keygrid export planck.json -o dist/
  keygrid export planck.json --unpacked -o ~/qmk_firmware/keyboards`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "archive path or output directory")
	cmd.Flags().StringVar(&opts.Keyboard, "keyboard", "", "keyboard identifier (default from config)")
	cmd.Flags().BoolVar(&opts.Unpacked, "unpacked", false, "write files instead of a zip archive")

	return cmd
}

func runExport(opts *ExportOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	p, err := resolvePlatform(opts.RootOptions, formatter)
	if err != nil {
		return err
	}

	l, _, err := loadLayoutFile(opts.RootOptions, formatter, cmd, path)
	if err != nil {
		return err
	}

	keyboard := opts.keyboard(opts.Keyboard)
	files, err := firmware.Artifacts(l, keyboard, p)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodePackage, "generating artifacts", err)
	}

	result := ExportResult{Files: make([]string, len(files))}
	for i, f := range files {
		result.Files[i] = f.Path
	}

	if opts.Unpacked {
		dir := opts.Output
		if dir == "" {
			dir = "."
		}
		for _, f := range files {
			target := filepath.Join(dir, filepath.FromSlash(f.Path))
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fail(formatter, ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("creating %s", filepath.Dir(target)), err)
			}
			if err := os.WriteFile(target, f.Data, 0o644); err != nil {
				return fail(formatter, ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing %s", target), err)
			}
			formatter.VerboseLog("Wrote %s", target)
		}
		result.Path = dir
	} else {
		var buf bytes.Buffer
		if err := firmware.WriteArchive(&buf, files); err != nil {
			return fail(formatter, ExitCommandError, ErrCodePackage, "writing archive", err)
		}

		result.Path = archivePath(opts.Output, keyboard)
		if err := os.WriteFile(result.Path, buf.Bytes(), 0o644); err != nil {
			return fail(formatter, ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing %s", result.Path), err)
		}
	}

	opts.logger().Info("firmware package written", "path", result.Path, "files", len(files), "platform", p.String())

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ Wrote %d file(s) to %s\n", len(result.Files), result.Path)
	for _, f := range result.Files {
		fmt.Fprintf(formatter.Writer, "  %s\n", f)
	}
	return nil
}

// archivePath places the default archive name in output when output is
// empty or an existing directory.
func archivePath(output, keyboard string) string {
	name := firmware.ArchiveName(keyboard)
	if output == "" {
		return name
	}
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return filepath.Join(output, name)
	}
	return output
}
