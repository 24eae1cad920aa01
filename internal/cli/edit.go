package cli

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/keygrid/internal/layout"
)

// EditOptions holds flags shared by the edit subcommands.
type EditOptions struct {
	*RootOptions
	Output string // write here instead of editing in place
	Span   int    // span for set
}

// EditResult is the outcome of one edit.
type EditResult struct {
	Op     string        `json:"op"`
	Layout LayoutSummary `json:"layout"`
}

// NewEditCommand creates the edit command and its subcommands.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EditOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit a layout document in place",
		Long: `Apply one editing operation to a layout document.

Positions are zero-based: layer, row, column. Every edit rewrites the
document with a fresh lastModified timestamp.

Examples:
  keygrid edit set planck.json 0 0 0 Esc
  keygrid edit set planck.json 0 3 5 Space --span 2
  keygrid edit skip planck.json 0 3 6
  keygrid edit add-layer planck.json`,
	}

	cmd.PersistentFlags().StringVarP(&opts.Output, "output", "o", "", "write the edited layout here instead of in place")

	set := positionCommand(opts, "set <file> <layer> <row> <col> <label>", "Assign a label to a cell", 5,
		func(l *layout.Layout, pos [3]int, args []string) (*layout.Layout, error) {
			if opts.Span < 1 {
				return nil, fmt.Errorf("span must be at least 1, got %d", opts.Span)
			}
			if args[0] == "" {
				return nil, fmt.Errorf("label must not be empty; use clear for a blank key")
			}
			return l.SetCell(pos[0], pos[1], pos[2], layout.Wide(args[0], opts.Span))
		})
	set.Flags().IntVar(&opts.Span, "span", 1, "horizontal span of the key")
	cmd.AddCommand(set)

	cmd.AddCommand(positionCommand(opts, "clear <file> <layer> <row> <col>", "Reset a cell to a blank key", 4,
		func(l *layout.Layout, pos [3]int, _ []string) (*layout.Layout, error) {
			return l.ClearCell(pos[0], pos[1], pos[2])
		}))
	cmd.AddCommand(positionCommand(opts, "skip <file> <layer> <row> <col>", "Mark a cell as a hole in the grid", 4,
		func(l *layout.Layout, pos [3]int, _ []string) (*layout.Layout, error) {
			return l.SkipCell(pos[0], pos[1], pos[2])
		}))

	for _, g := range []struct {
		use   string
		short string
		op    func(*layout.Layout) *layout.Layout
	}{
		{"add-layer", "Append a blank layer", (*layout.Layout).AddLayer},
		{"remove-layer", "Remove the last layer", (*layout.Layout).RemoveLayer},
		{"add-row", "Append a blank row to every layer", (*layout.Layout).AddRow},
		{"remove-row", "Remove the last row of every layer", (*layout.Layout).RemoveRow},
		{"add-column", "Append a blank column to every row", (*layout.Layout).AddColumn},
		{"remove-column", "Remove the last column of every row", (*layout.Layout).RemoveColumn},
	} {
		cmd.AddCommand(gridCommand(opts, g.use, g.short, g.op))
	}

	return cmd
}

type positionEdit func(l *layout.Layout, pos [3]int, rest []string) (*layout.Layout, error)

func positionCommand(opts *EditOptions, use, short string, nargs int, edit positionEdit) *cobra.Command {
	return &cobra.Command{
		Use:           use,
		Short:         short,
		Args:          cobra.ExactArgs(nargs),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(opts.RootOptions, cmd)

			var pos [3]int
			for i, name := range []string{"layer", "row", "col"} {
				n, err := strconv.Atoi(args[i+1])
				if err != nil {
					return fail(formatter, ExitCommandError, ErrCodeInvalidArgs,
						fmt.Sprintf("%s must be an integer, got %q", name, args[i+1]), nil)
				}
				pos[i] = n
			}

			return runEdit(opts, cmd, formatter, args[0], func(l *layout.Layout) (*layout.Layout, error) {
				return edit(l, pos, args[4:])
			})
		},
	}
}

func gridCommand(opts *EditOptions, use, short string, op func(*layout.Layout) *layout.Layout) *cobra.Command {
	return &cobra.Command{
		Use:           use + " <file>",
		Short:         short,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(opts.RootOptions, cmd)
			return runEdit(opts, cmd, formatter, args[0], func(l *layout.Layout) (*layout.Layout, error) {
				return op(l), nil
			})
		},
	}
}

func runEdit(opts *EditOptions, cmd *cobra.Command, formatter *OutputFormatter, path string, edit func(*layout.Layout) (*layout.Layout, error)) error {
	l, res, err := loadLayoutFile(opts.RootOptions, formatter, cmd, path)
	if err != nil {
		return err
	}

	out := path
	if opts.Output != "" {
		out = opts.Output
	}
	// A fallback document is never overwritten with the default layout.
	if res.Fallback && out != stdio && filepath.Clean(out) == filepath.Clean(path) {
		return fail(formatter, ExitFailure, ErrCodeFallback,
			fmt.Sprintf("refusing to overwrite %s: %s (use -o to write the edited default elsewhere)", path, res.Reason), nil)
	}

	edited, err := edit(l)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeInvalidArgs, cmd.Name(), err)
	}

	if err := saveLayoutFile(opts.RootOptions, formatter, cmd, out, edited); err != nil {
		return err
	}

	opts.logger().Debug("layout edited", "op", cmd.Name(), "path", out)

	result := EditResult{Op: cmd.Name(), Layout: summarize(out, edited)}
	if out == stdio {
		return nil
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ %s %s (%s)\n", result.Op, out, result.Layout)
	return nil
}
