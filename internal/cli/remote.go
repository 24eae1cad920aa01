package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/keygrid/internal/codec"
	"github.com/roach88/keygrid/internal/remote"
)

// DefaultFirmwareFile is the file the build service's image is saved to.
const DefaultFirmwareFile = "firmware.bin"

// RemoteOptions holds flags shared by the backend commands.
type RemoteOptions struct {
	*RootOptions
	User string // overrides the configured user ID
}

func (o *RemoteOptions) client() *remote.Client {
	cfg := o.settings()
	return remote.New(cfg.BackendURL, cfg.Timeout, o.logger())
}

func (o *RemoteOptions) user(formatter *OutputFormatter) (string, error) {
	user := o.User
	if user == "" {
		user = o.settings().UserID
	}
	if user == "" {
		return "", fail(formatter, ExitCommandError, ErrCodeInvalidArgs,
			"no user configured (set --user, KEYGRID_USER or user in the config file)", nil)
	}
	return user, nil
}

// remoteFailure maps backend errors to exit code 2.
func remoteFailure(formatter *OutputFormatter, op string, err error) error {
	if errors.Is(err, remote.ErrNoBackend) {
		return fail(formatter, ExitCommandError, ErrCodeConfig,
			"no backend configured (set KEYGRID_BACKEND_URL or backend_url in the config file)", err)
	}
	var se *remote.StatusError
	if errors.As(err, &se) {
		return fail(formatter, ExitCommandError, ErrCodeRemote, fmt.Sprintf("%s: backend returned %d", op, se.StatusCode), err)
	}
	return fail(formatter, ExitCommandError, ErrCodeRemote, op, err)
}

// PushOptions holds flags for the push command.
type PushOptions struct {
	RemoteOptions
	Name string // keyboard name stored with the layout
}

// NewPushCommand creates the push command.
func NewPushCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PushOptions{RemoteOptions: RemoteOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "push <file>",
		Short: "Save a layout to the backend",
		Long: `Send a layout to the backend's save endpoint for the configured user.
The keyboard name stored with it defaults to the file name.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPush(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.User, "user", "", "user ID (default from config)")
	cmd.Flags().StringVar(&opts.Name, "name", "", "keyboard name (default: file name)")

	return cmd
}

func runPush(opts *PushOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	user, err := opts.user(formatter)
	if err != nil {
		return err
	}

	l, _, err := loadLayoutFile(opts.RootOptions, formatter, cmd, path)
	if err != nil {
		return err
	}

	name := opts.Name
	if name == "" && path != stdio {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	req := codec.SaveRequest{KeyboardLayout: l, UserID: user, KeyboardName: name}
	if err := opts.client().Save(context.Background(), req); err != nil {
		return remoteFailure(formatter, "saving layout", err)
	}

	summary := summarize(path, l)
	if formatter.Format == "json" {
		return formatter.Success(map[string]interface{}{"user": user, "name": name, "layout": summary})
	}
	fmt.Fprintf(formatter.Writer, "✓ Pushed %s for %s (%s)\n", name, user, summary)
	return nil
}

// PullOptions holds flags for the pull command.
type PullOptions struct {
	RemoteOptions
	Output string
}

// NewPullCommand creates the pull command.
func NewPullCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PullOptions{RemoteOptions: RemoteOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Load the saved layout from the backend",
		Long: `Fetch the configured user's layout from the backend and write it as a
layout document. A user with nothing saved gets the default layout.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPull(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.User, "user", "", "user ID (default from config)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path (default stdout)")

	return cmd
}

func runPull(opts *PullOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	user, err := opts.user(formatter)
	if err != nil {
		return err
	}

	l, name, err := opts.client().Load(context.Background(), user)
	if err != nil {
		return remoteFailure(formatter, "loading layout", err)
	}

	if err := saveLayoutFile(opts.RootOptions, formatter, cmd, opts.Output, l); err != nil {
		return err
	}

	if opts.Output == "" || opts.Output == stdio {
		return nil
	}
	summary := summarize(opts.Output, l)
	if formatter.Format == "json" {
		return formatter.Success(map[string]interface{}{"user": user, "name": name, "layout": summary})
	}
	fmt.Fprintf(formatter.Writer, "✓ Pulled %q for %s to %s (%s)\n", name, user, opts.Output, summary)
	return nil
}

// FirmwareOptions holds flags for the firmware command.
type FirmwareOptions struct {
	RemoteOptions
	Output   string
	Keyboard string
}

// NewFirmwareCommand creates the firmware command.
func NewFirmwareCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FirmwareOptions{RemoteOptions: RemoteOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "firmware <file>",
		Short: "Build firmware with the backend",
		Long: `Compile a layout, send the build payload to the backend's firmware
service and save the returned image (default ` + DefaultFirmwareFile + `).`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFirmware(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", DefaultFirmwareFile, "firmware image path")
	cmd.Flags().StringVar(&opts.Keyboard, "keyboard", "", "keyboard identifier (default from config)")

	return cmd
}

func runFirmware(opts *FirmwareOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	km, err := compileFile(opts.RootOptions, formatter, cmd, path, opts.Keyboard)
	if err != nil {
		return err
	}

	payload := km.Payload()
	formatter.VerboseLog("Requesting firmware for %s (%d layer(s))", payload.Keyboard, len(payload.Layers))

	image, err := opts.client().Firmware(context.Background(), payload)
	if err != nil {
		return remoteFailure(formatter, "building firmware", err)
	}

	out := opts.Output
	if out == "" {
		out = DefaultFirmwareFile
	}
	if err := os.WriteFile(out, image, 0o644); err != nil {
		return fail(formatter, ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing %s", out), err)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]interface{}{"keyboard": payload.Keyboard, "output": out, "bytes": len(image)})
	}
	fmt.Fprintf(formatter.Writer, "✓ Wrote %d byte(s) of firmware for %s to %s\n", len(image), payload.Keyboard, out)
	return nil
}
