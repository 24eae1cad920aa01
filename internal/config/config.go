package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/roach88/keygrid/internal/firmware"
	"github.com/roach88/keygrid/internal/keycode"
)

// Defaults.
const (
	DefaultPlatform = "generic"
	DefaultDBPath   = "keygrid.db"
	DefaultTimeout  = 30 * time.Second
)

// EnvConfig names the environment variable holding the config file path.
const EnvConfig = "KEYGRID_CONFIG"

// Config holds the resolved settings.
type Config struct {
	BackendURL string        `json:"backend_url"`
	Keyboard   string        `json:"keyboard"`
	Platform   string        `json:"platform"`
	DBPath     string        `json:"db"`
	UserID     string        `json:"user"`
	Timeout    time.Duration `json:"timeout"`

	// Source is the file the settings were read from, if any.
	Source string `json:"source,omitempty"`
}

// file is the on-disk shape. Timeout is kept as text so both formats
// accept Go duration strings.
type file struct {
	BackendURL *string `yaml:"backend_url" toml:"backend_url"`
	Keyboard   *string `yaml:"keyboard" toml:"keyboard"`
	Platform   *string `yaml:"platform" toml:"platform"`
	DBPath     *string `yaml:"db" toml:"db"`
	UserID     *string `yaml:"user" toml:"user"`
	Timeout    *string `yaml:"timeout" toml:"timeout"`
}

// ParseError reports an unreadable config file.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Keyboard: firmware.DefaultKeyboard,
		Platform: DefaultPlatform,
		DBPath:   DefaultDBPath,
		Timeout:  DefaultTimeout,
	}
}

// DefaultPath returns the per-user config file location,
// ~/.config/keygrid/config.yaml on Linux.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "keygrid", "config.yaml")
}

// Load resolves settings from path, or from $KEYGRID_CONFIG, or from
// DefaultPath, then applies environment overrides. A missing file is an
// error only when path was given explicitly.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if env, ok := os.LookupEnv(EnvConfig); ok && env != "" {
			path, explicit = env, true
		} else {
			path = DefaultPath()
		}
	}

	if path != "" {
		err := cfg.readFile(path)
		switch {
		case err == nil:
			cfg.Source = path
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes a config document over the defaults. format is "yaml"
// or "toml".
func Parse(data []byte, format string) (Config, error) {
	cfg := Default()
	if err := cfg.decode(data, format, "<input>"); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the platform name, backend URL and timeout.
func (c Config) Validate() error {
	if _, err := keycode.ParsePlatform(c.Platform); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.BackendURL != "" {
		u, err := url.Parse(c.BackendURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("config: backend_url %q must be an http or https URL", c.BackendURL)
		}
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("config: timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		format = "toml"
	}
	return c.decode(data, format, path)
}

func (c *Config) decode(data []byte, format, source string) error {
	var f file
	switch format {
	case "yaml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// An empty document decodes as io.EOF.
		if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return &ParseError{Path: source, Err: err}
		}
	case "toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return &ParseError{Path: source, Err: err}
		}
	default:
		return fmt.Errorf("config: unknown format %q", format)
	}
	return c.merge(f, source)
}

func (c *Config) merge(f file, source string) error {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&c.BackendURL, f.BackendURL)
	set(&c.Keyboard, f.Keyboard)
	set(&c.Platform, f.Platform)
	set(&c.DBPath, f.DBPath)
	set(&c.UserID, f.UserID)

	if f.Timeout != nil {
		d, err := time.ParseDuration(*f.Timeout)
		if err != nil {
			return &ParseError{Path: source, Err: fmt.Errorf("timeout: %w", err)}
		}
		c.Timeout = d
	}
	return nil
}
