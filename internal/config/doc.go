// Package config loads and validates hirepay configuration from TOML files.
//
// Configuration resolution order: an explicit --config path, then
// ~/.config/hirepay/config.toml, then ./hirepay.toml. Missing files fall back
// to built-in defaults so the daemon can start without any configuration.
package config
