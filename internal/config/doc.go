// Package config loads CLI settings.
//
// Settings are layered, later layers winning: built-in defaults, a
// config file, then KEYGRID_* environment variables. Command-line flags
// are applied on top by package cli.
//
// The config file is YAML unless its name ends in .toml. Unknown keys
// are rejected in both formats.
package config
