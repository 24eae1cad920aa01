package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/keygrid/internal/layout"
	"github.com/roach88/keygrid/internal/preset"
)

// NewOptions holds flags for the new command.
type NewOptions struct {
	*RootOptions
	Preset      string // built-in or catalog preset name
	PresetsFile string // optional CUE catalog replacing the built-ins
	Rows        int
	Columns     int
	Layers      int
	Force       bool // overwrite an existing file
}

// NewNewCommand creates the new command.
func NewNewCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NewOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "new [file]",
		Short: "Create a layout document",
		Long: `Create a layout document from a preset or from blank dimensions.

Without a file argument the document is written to stdout.

Examples:
  keygrid new planck.json --preset ortho_4x12
  keygrid new pad.json --rows 3 --columns 4 --layers 2
  keygrid new --preset numpad > numpad.json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runNew(opts, path, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Preset, "preset", "", "start from a named preset")
	cmd.Flags().StringVar(&opts.PresetsFile, "presets-file", "", "CUE preset catalog to use instead of the built-ins")
	cmd.Flags().IntVar(&opts.Rows, "rows", layout.DefaultRows, "rows of a blank layout")
	cmd.Flags().IntVar(&opts.Columns, "columns", layout.DefaultColumns, "columns of a blank layout")
	cmd.Flags().IntVar(&opts.Layers, "layers", 1, "number of layers")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite an existing file")

	return cmd
}

func runNew(opts *NewOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Layers < layout.MinLayers || opts.Layers > layout.MaxLayers {
		return fail(formatter, ExitCommandError, ErrCodeInvalidArgs,
			fmt.Sprintf("--layers must be between %d and %d", layout.MinLayers, layout.MaxLayers), nil)
	}

	var l *layout.Layout
	if opts.Preset != "" {
		catalog, err := loadCatalog(opts.PresetsFile)
		if err != nil {
			return fail(formatter, ExitCommandError, ErrCodePreset, "loading presets", err)
		}
		l, err = catalog.Load(opts.Preset)
		if err != nil {
			return fail(formatter, ExitCommandError, ErrCodePreset, fmt.Sprintf("loading preset %q", opts.Preset), err)
		}
		formatter.VerboseLog("Loaded preset %s", opts.Preset)
	} else {
		if opts.Rows < 1 || opts.Columns < 1 {
			return fail(formatter, ExitCommandError, ErrCodeInvalidArgs,
				fmt.Sprintf("--rows and --columns must be positive, got %dx%d", opts.Rows, opts.Columns), nil)
		}
		l = layout.New(layout.Dimensions{Rows: opts.Rows, Columns: opts.Columns})
	}

	for len(l.Layers) < opts.Layers {
		l = l.AddLayer()
	}

	if path == "" || path == stdio {
		return saveLayoutFile(opts.RootOptions, formatter, cmd, stdio, l)
	}

	if !opts.Force {
		if _, err := os.Stat(path); err == nil {
			return fail(formatter, ExitCommandError, ErrCodeWriteFailed,
				fmt.Sprintf("%s already exists (use --force to overwrite)", path), nil)
		}
	}

	if err := saveLayoutFile(opts.RootOptions, formatter, cmd, path, l); err != nil {
		return err
	}

	summary := summarize(path, l)
	if formatter.Format == "json" {
		return formatter.Success(summary)
	}
	fmt.Fprintf(formatter.Writer, "✓ Created %s (%s)\n", path, summary)
	return nil
}

// loadCatalog returns the built-in presets, or the catalog in path.
func loadCatalog(path string) (*preset.Catalog, error) {
	if path == "" {
		return preset.Builtin()
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return preset.Parse(path, src)
}
