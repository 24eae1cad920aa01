package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/keygrid/internal/compiler"
	"github.com/roach88/keygrid/internal/firmware"
)

// PayloadOptions holds flags for the payload command.
type PayloadOptions struct {
	*RootOptions
	Output   string
	Keyboard string
}

// NewPayloadCommand creates the payload command.
func NewPayloadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PayloadOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "payload <file>",
		Short: "Print the firmware build request for a layout",
		Long: `Print the JSON body sent to the firmware build service: the keyboard,
the "default" keymap, the layout macro and one flat keycode array per layer.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPayload(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().StringVar(&opts.Keyboard, "keyboard", "", "keyboard identifier (default from config)")

	return cmd
}

func runPayload(opts *PayloadOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	km, err := compileFile(opts.RootOptions, formatter, cmd, path, opts.Keyboard)
	if err != nil {
		return err
	}
	payload := km.Payload()

	if formatter.Format == "json" && opts.Output == "" {
		return formatter.Success(payload)
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeGeneric, "encoding payload", err)
	}
	data = append(data, '\n')

	if err := writeOutput(cmd, opts.Output, data); err != nil {
		return fail(formatter, ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file %s", opts.Output), err)
	}
	if opts.Output != "" && opts.Output != stdio {
		if formatter.Format == "json" {
			return formatter.Success(map[string]string{"output": opts.Output})
		}
		fmt.Fprintf(formatter.Writer, "✓ Wrote build payload for %s to %s\n", payload.Keyboard, opts.Output)
	}
	return nil
}

// compileFile loads and compiles the layout at path for the resolved
// platform and keyboard.
func compileFile(opts *RootOptions, formatter *OutputFormatter, cmd *cobra.Command, path, keyboardFlag string) (*compiler.Keymap, error) {
	p, err := resolvePlatform(opts, formatter)
	if err != nil {
		return nil, err
	}

	l, _, err := loadLayoutFile(opts, formatter, cmd, path)
	if err != nil {
		return nil, err
	}

	keyboard, err := firmware.ResolveKeyboard(opts.keyboard(keyboardFlag))
	if err != nil {
		return nil, fail(formatter, ExitCommandError, ErrCodeInvalidArgs, "resolving keyboard", err)
	}

	km, err := compiler.Compile(l, keyboard, p)
	if err != nil {
		return nil, fail(formatter, ExitFailure, ErrCodeLayout, "compiling layout", err)
	}
	return km, nil
}
