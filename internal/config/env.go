package config

import (
	"fmt"
	"os"
	"time"
)

// Environment variables and the setting each overrides. An empty value
// counts as set.
var envMapping = []struct {
	name string
	set  func(*Config, string) error
}{
	{"KEYGRID_BACKEND_URL", func(c *Config, v string) error { c.BackendURL = v; return nil }},
	{"KEYGRID_KEYBOARD", func(c *Config, v string) error { c.Keyboard = v; return nil }},
	{"KEYGRID_PLATFORM", func(c *Config, v string) error { c.Platform = v; return nil }},
	{"KEYGRID_DB", func(c *Config, v string) error { c.DBPath = v; return nil }},
	{"KEYGRID_USER", func(c *Config, v string) error { c.UserID = v; return nil }},
	{"KEYGRID_TIMEOUT", func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		c.Timeout = d
		return nil
	}},
}

// EnvNames lists the recognised override variables.
func EnvNames() []string {
	names := make([]string, len(envMapping))
	for i, m := range envMapping {
		names[i] = m.name
	}
	return names
}

func (c *Config) applyEnv() error {
	for _, m := range envMapping {
		v, ok := os.LookupEnv(m.name)
		if !ok {
			continue
		}
		if err := m.set(c, v); err != nil {
			return fmt.Errorf("config: %s: %w", m.name, err)
		}
	}
	return nil
}
