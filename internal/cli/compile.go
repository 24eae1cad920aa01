package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/keygrid/internal/compiler"
	"github.com/roach88/keygrid/internal/firmware"
	"github.com/roach88/keygrid/internal/keycode"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output   string // output file path
	Keyboard string // keyboard identifier
}

// CompilationResult holds the compiled keymap.
type CompilationResult struct {
	Keyboard    string                `json:"keyboard"`
	Platform    string                `json:"platform"`
	Layers      [][]keycode.Token     `json:"layers"`
	Source      string                `json:"source"`
	Diagnostics []compiler.Diagnostic `json:"diagnostics,omitempty"`
	Output      string                `json:"output,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <file>",
		Short: "Compile a layout to keymap.c",
		Long: `Compile a layout document into a QMK keymap.c translation unit.

Every cell becomes one keycode; skipped, blank and unrecognized cells
compile to KC_NO in place. Unrecognized labels are listed with --verbose.

Use "-" to read the layout from stdin.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().StringVar(&opts.Keyboard, "keyboard", "", "keyboard identifier (default from config)")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	p, err := resolvePlatform(opts.RootOptions, formatter)
	if err != nil {
		return err
	}

	l, _, err := loadLayoutFile(opts.RootOptions, formatter, cmd, path)
	if err != nil {
		return err
	}

	keyboard, err := firmware.ResolveKeyboard(opts.keyboard(opts.Keyboard))
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeInvalidArgs, "resolving keyboard", err)
	}

	km, err := compiler.Compile(l, keyboard, p)
	if err != nil {
		return fail(formatter, ExitFailure, ErrCodeLayout, "compiling layout", err)
	}

	diags := compiler.Lint(l, p)
	for _, d := range diags {
		formatter.VerboseLog("warning: %s", d)
	}

	result := CompilationResult{
		Keyboard:    keyboard,
		Platform:    p.String(),
		Layers:      km.Flat(),
		Source:      km.Source(),
		Diagnostics: diags,
		Output:      opts.Output,
	}

	// Write to file if --output specified
	if opts.Output != "" && opts.Output != stdio {
		if err := writeOutput(cmd, opts.Output, []byte(result.Source)); err != nil {
			return fail(formatter, ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file %s", opts.Output), err)
		}
	}

	return outputCompileSuccess(formatter, result)
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result CompilationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	if result.Output == "" || result.Output == stdio {
		fmt.Fprint(formatter.Writer, result.Source)
		return nil
	}

	fmt.Fprintf(formatter.Writer, "✓ Compiled %d layer(s) for %s (%s)\n",
		len(result.Layers), result.Keyboard, result.Platform)
	if n := len(result.Diagnostics); n > 0 {
		fmt.Fprintf(formatter.Writer, "  %d label(s) need attention (run validate for details)\n", n)
	}
	fmt.Fprintf(formatter.Writer, "Wrote keymap.c to %s\n", result.Output)
	return nil
}
