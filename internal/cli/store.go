package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/keygrid/internal/layout"
	"github.com/roach88/keygrid/internal/store"
)

// StoreOptions holds flags shared by the save and load commands.
type StoreOptions struct {
	*RootOptions
	DBPath string // overrides the configured database
}

// SaveOptions holds flags for the save command.
type SaveOptions struct {
	StoreOptions
	Name string
}

// SaveResult describes a save.
type SaveResult struct {
	Revision store.Revision `json:"revision"`
	Inserted bool           `json:"inserted"`
}

// LoadOptions holds flags for the load command.
type LoadOptions struct {
	StoreOptions
	Output   string
	Revision string
	History  bool
}

func (o *StoreOptions) open(formatter *OutputFormatter) (*store.Store, error) {
	path := o.DBPath
	if path == "" {
		path = o.settings().DBPath
	}

	opts := []store.Option{store.WithLogger(o.logger())}
	if o.Now != nil {
		opts = append(opts, store.WithClock(o.Now))
	}

	st, err := store.Open(path, opts...)
	if err != nil {
		return nil, fail(formatter, ExitCommandError, ErrCodeStore, fmt.Sprintf("opening database %s", path), err)
	}
	return st, nil
}

// NewSaveCommand creates the save command.
func NewSaveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SaveOptions{StoreOptions: StoreOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "save <file>",
		Short: "Save a layout revision to the local database",
		Long: `Record a layout document as the newest revision of a named layout.

The name defaults to the file name without extension. Saving content
identical to the latest revision records nothing.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSave(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "layout name (default: file name)")
	cmd.Flags().StringVar(&opts.DBPath, "db", "", "database path (default from config)")

	return cmd
}

func runSave(opts *SaveOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	name := opts.Name
	if name == "" && path != stdio {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if name == "" {
		return fail(formatter, ExitCommandError, ErrCodeInvalidArgs, "--name is required when reading stdin", nil)
	}

	l, res, err := loadLayoutFile(opts.RootOptions, formatter, cmd, path)
	if err != nil {
		return err
	}
	if res.Fallback {
		return fail(formatter, ExitFailure, ErrCodeFallback,
			fmt.Sprintf("refusing to save %s: %s", path, res.Reason), nil)
	}

	st, err := opts.open(formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	rev, inserted, err := st.SaveLayout(context.Background(), name, l)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeStore, fmt.Sprintf("saving %s", name), err)
	}

	result := SaveResult{Revision: rev, Inserted: inserted}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	if inserted {
		fmt.Fprintf(formatter.Writer, "✓ Saved %s revision %d (%s)\n", rev.Name, rev.Seq, rev.ID)
	} else {
		fmt.Fprintf(formatter.Writer, "✓ %s unchanged since revision %d (%s)\n", rev.Name, rev.Seq, rev.ID)
	}
	return nil
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoadOptions{StoreOptions: StoreOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "load [name]",
		Short: "Load a layout from the local database",
		Long: `Write the latest revision of a saved layout, or a specific revision
with --revision. Without a name, list the saved layouts.

Examples:
  keygrid load
  keygrid load planck -o planck.json
  keygrid load planck --history
  keygrid load --revision 0190c7d2-... -o old.json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return runLoad(opts, name, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path (default stdout)")
	cmd.Flags().StringVar(&opts.Revision, "revision", "", "load this revision ID")
	cmd.Flags().BoolVar(&opts.History, "history", false, "list the revisions of name")
	cmd.Flags().StringVar(&opts.DBPath, "db", "", "database path (default from config)")

	return cmd
}

func runLoad(opts *LoadOptions, name string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := context.Background()

	if opts.History && name == "" {
		return fail(formatter, ExitCommandError, ErrCodeInvalidArgs, "--history requires a layout name", nil)
	}

	st, err := opts.open(formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	switch {
	case opts.History:
		revs, err := st.History(ctx, name)
		if err != nil {
			return storeFailure(formatter, "layout "+name, err)
		}
		return outputHistory(formatter, name, revs)

	case opts.Revision == "" && name == "":
		summaries, err := st.ListLayouts(ctx)
		if err != nil {
			return storeFailure(formatter, "layouts", err)
		}
		return outputLayouts(formatter, summaries)
	}

	l, rev, err := loadFromStore(ctx, st, name, opts.Revision)
	if err != nil {
		what := "layout " + name
		if opts.Revision != "" {
			what = "revision " + opts.Revision
		}
		return storeFailure(formatter, what, err)
	}

	// Loaded documents keep the revision's timestamp.
	if err := writeLayoutAt(formatter, cmd, opts.Output, l, rev.CreatedAt); err != nil {
		return err
	}

	if opts.Output == "" || opts.Output == stdio {
		return nil
	}
	if formatter.Format == "json" {
		return formatter.Success(rev)
	}
	fmt.Fprintf(formatter.Writer, "✓ Loaded %s revision %d to %s\n", rev.Name, rev.Seq, opts.Output)
	return nil
}

func loadFromStore(ctx context.Context, st *store.Store, name, revision string) (*layout.Layout, store.Revision, error) {
	if revision != "" {
		l, rev, err := st.LoadRevision(ctx, revision)
		if err != nil {
			return nil, rev, err
		}
		if name != "" && rev.Name != name {
			return nil, rev, fmt.Errorf("revision %s belongs to %q, not %q: %w", revision, rev.Name, name, store.ErrNotFound)
		}
		return l, rev, nil
	}
	return st.LoadLayout(ctx, name)
}

func storeFailure(formatter *OutputFormatter, what string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fail(formatter, ExitCommandError, ErrCodeNotFound, fmt.Sprintf("%s not found", what), err)
	}
	return fail(formatter, ExitCommandError, ErrCodeStore, fmt.Sprintf("reading %s", what), err)
}

func outputHistory(formatter *OutputFormatter, name string, revs []store.Revision) error {
	if formatter.Format == "json" {
		return formatter.Success(revs)
	}

	fmt.Fprintf(formatter.Writer, "%s: %d revision(s)\n", name, len(revs))
	for _, rev := range revs {
		fmt.Fprintf(formatter.Writer, "  %3d  %s  %s  %.12s\n",
			rev.Seq, rev.CreatedAt.Format(time.RFC3339), rev.ID, rev.Fingerprint)
	}
	return nil
}

func outputLayouts(formatter *OutputFormatter, summaries []store.Summary) error {
	if formatter.Format == "json" {
		return formatter.Success(summaries)
	}

	if len(summaries) == 0 {
		fmt.Fprintln(formatter.Writer, "No saved layouts.")
		return nil
	}
	for _, sum := range summaries {
		fmt.Fprintf(formatter.Writer, "%-20s %3d revision(s)  latest %s\n",
			sum.Name, sum.Revisions, sum.Latest.CreatedAt.Format(time.RFC3339))
	}
	return nil
}
