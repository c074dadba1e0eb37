// Package config loads editor configuration from a TOML file with
// environment-variable overrides. Every option has a default; a missing
// config file is not an error.
package config
