// Package config loads the YAML application configuration. Missing files
// and missing fields fall back to defaults, so a bare binary runs without
// any configuration at all.
package config
