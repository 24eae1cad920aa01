package cli

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/keygrid/internal/config"
	"github.com/roach88/keygrid/internal/keycode"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Platform   string // overrides the configured platform when set

	// Populated before any subcommand runs. Tests set them directly.
	Config *config.Config
	Logger *slog.Logger
	Now    func() time.Time
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the keygrid CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "keygrid",
		Short: "keygrid - keyboard layout editor and QMK compiler",
		Long: `Edit keyboard layouts as layered key grids and compile them into
QMK firmware sources, build payloads and firmware packages.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}

			opts.Logger = newLogger(cmd.ErrOrStderr(), opts.Verbose)

			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return WrapExitError(ExitCommandError, ErrCodeConfig+": loading config", err)
			}
			opts.Config = &cfg
			opts.Logger.Debug("config loaded", "source", cfg.Source, "platform", cfg.Platform, "keyboard", cfg.Keyboard)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default $KEYGRID_CONFIG or "+config.DefaultPath()+")")
	cmd.PersistentFlags().StringVar(&opts.Platform, "platform", "", "label vocabulary (generic|windows|mac|linux)")

	// Add subcommands
	cmd.AddCommand(NewNewCommand(opts))
	cmd.AddCommand(NewEditCommand(opts))
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewPayloadCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewPresetsCommand(opts))
	cmd.AddCommand(NewSaveCommand(opts))
	cmd.AddCommand(NewLoadCommand(opts))
	cmd.AddCommand(NewPushCommand(opts))
	cmd.AddCommand(NewPullCommand(opts))
	cmd.AddCommand(NewFirmwareCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// newLogger returns a text handler on w at Info, or Debug when verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func (o *RootOptions) settings() config.Config {
	if o.Config == nil {
		cfg := config.Default()
		o.Config = &cfg
	}
	return *o.Config
}

func (o *RootOptions) logger() *slog.Logger {
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}

func (o *RootOptions) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now().UTC()
}

// platform resolves --platform, falling back to the configured platform.
func (o *RootOptions) platform() (keycode.Platform, error) {
	name := o.Platform
	if name == "" {
		name = o.settings().Platform
	}
	return keycode.ParsePlatform(name)
}

// keyboard returns flag when set, otherwise the configured keyboard.
func (o *RootOptions) keyboard(flag string) string {
	if flag != "" {
		return flag
	}
	return o.settings().Keyboard
}
