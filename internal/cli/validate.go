package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tidwall/jsonc"

	"github.com/roach88/keygrid/internal/codec"
	"github.com/roach88/keygrid/internal/compiler"
	"github.com/roach88/keygrid/internal/layout"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Strict bool // lint diagnostics fail validation
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid       bool                     `json:"valid"`
	Version     string                   `json:"version,omitempty"`
	Fallback    string                   `json:"fallback,omitempty"`
	Layout      *LayoutSummary           `json:"layout,omitempty"`
	Errors      []layout.ValidationError `json:"errors,omitempty"`
	Diagnostics []compiler.Diagnostic    `json:"diagnostics,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a layout document",
		Long: `Check that a layout document would load as written.

Reports documents that other commands silently replace with the default
layout (malformed JSON, missing layers, unrecognized version, ragged grid),
cell invariant violations, and labels that compile to KC_NO or belong to
another platform's vocabulary.

Exit codes:
  0 - Document is valid (label warnings allowed unless --strict)
  1 - Document is invalid
  2 - Command error (unreadable file, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "treat label warnings as errors")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	p, err := resolvePlatform(opts.RootOptions, formatter)
	if err != nil {
		return err
	}

	data, err := readInput(cmd, path)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeReadFailed, fmt.Sprintf("reading layout %s", path), err)
	}

	l, res := codec.Decode(data)
	result := ValidationResult{Version: res.Version}

	if res.Fallback {
		result.Fallback = res.Reason
		result.Errors = shapeErrors(data)
		return outputValidationFailure(formatter, result, ErrCodeFallback,
			fmt.Sprintf("document would load as the default layout: %s", res.Reason))
	}

	summary := summarize(path, l)
	result.Layout = &summary
	result.Errors = l.Validate()
	result.Diagnostics = compiler.Lint(l, p)

	if len(result.Errors) > 0 {
		return outputValidationFailure(formatter, result, ErrCodeLayout,
			fmt.Sprintf("%d invariant violation(s)", len(result.Errors)))
	}
	if opts.Strict && len(result.Diagnostics) > 0 {
		return outputValidationFailure(formatter, result, ErrCodeLint,
			fmt.Sprintf("%d label warning(s)", len(result.Diagnostics)))
	}

	result.Valid = true
	return outputValidateSuccess(formatter, result)
}

// shapeErrors re-reads a rejected document without the version and
// shape gates so the individual violations can be listed.
func shapeErrors(data []byte) []layout.ValidationError {
	var doc codec.Document
	if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil || doc.Layers == nil {
		return nil
	}
	l := &layout.Layout{Dimensions: doc.Dimensions, Layers: doc.Layers}
	return l.Validate()
}

// outputValidateSuccess outputs validation success.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Layout valid (%s)\n", result.Layout)
	for _, d := range result.Diagnostics {
		fmt.Fprintf(formatter.Writer, "  warning: %s\n", d)
	}
	return nil
}

// outputValidationFailure outputs the failure and returns exit code 1.
func outputValidationFailure(formatter *OutputFormatter, result ValidationResult, code, message string) error {
	if formatter.Format == "json" {
		err := formatter.encode(CLIResponse{
			Status: "error",
			Data:   result,
			Error:  &CLIError{Code: code, Message: message},
		})
		if err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %s", code, message))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintf(formatter.Writer, "  %s: %s\n", code, message)
	for _, e := range result.Errors {
		fmt.Fprintf(formatter.Writer, "  %s\n", e)
	}
	for _, d := range result.Diagnostics {
		fmt.Fprintf(formatter.Writer, "  warning: %s\n", d)
	}

	// Validation failures are check failures (exit code 1)
	return NewExitError(ExitFailure, fmt.Sprintf("%s: %s", code, message))
}
