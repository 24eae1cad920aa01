package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/keygrid/internal/preset"
)

// PresetsOptions holds flags for the presets command.
type PresetsOptions struct {
	*RootOptions
	File string // CUE catalog to list instead of the built-ins
}

// NewPresetsCommand creates the presets command.
func NewPresetsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PresetsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List keyboard presets",
		Long: `List the named keyboard presets accepted by "keygrid new --preset".

With --file, the CUE catalog in that file is checked against the preset
schema and listed instead of the built-in presets.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPresets(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.File, "file", "", "CUE preset catalog")

	return cmd
}

func runPresets(opts *PresetsOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	catalog, err := loadCatalog(opts.File)
	if err != nil {
		return outputPresetError(formatter, err)
	}

	infos := catalog.Info()
	if formatter.Format == "json" {
		return formatter.Success(infos)
	}

	for _, info := range infos {
		fmt.Fprintf(formatter.Writer, "%-16s %2dx%-3d %s\n", info.Name, info.Rows, info.Columns, info.Description)
	}
	return nil
}

// outputPresetError reports catalog errors with their CUE position.
func outputPresetError(formatter *OutputFormatter, err error) error {
	var details interface{}
	var cerr *preset.CompileError
	if errors.As(err, &cerr) && cerr.Pos.IsValid() {
		details = map[string]interface{}{
			"file":   cerr.Pos.Filename(),
			"line":   cerr.Pos.Line(),
			"column": cerr.Pos.Column(),
			"field":  cerr.Field,
		}
		if formatter.Format != "json" {
			fmt.Fprintf(formatter.Writer, "%s:%d:%d\n", cerr.Pos.Filename(), cerr.Pos.Line(), cerr.Pos.Column())
		}
	}
	_ = formatter.Error(ErrCodePreset, err.Error(), details)
	return WrapExitError(ExitCommandError, ErrCodePreset+": loading presets", err)
}
