// Package config loads, normalizes, and validates subenc configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// SUBENC_ROOT. The Config type centralizes every knob the detect and
// transcode phases need so the CLI resolves settings in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, a canonical extension set, and clear validation errors.
package config
