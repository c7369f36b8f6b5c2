// Package config loads, normalizes, and validates Soundminer's TOML
// configuration. Defaults come from Default(), user values from
// ~/.config/soundminer/config.toml or an explicit --config path, and every
// path field is expanded (~ resolution, absolutization) before validation.
package config
