// Package config loads, normalizes, and validates the AZUS TOML
// configuration. Path fields are tilde-expanded and made absolute during
// load so the rest of the program never deals with relative paths.
package config
