// Package config loads, normalizes, and validates panograb configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// PANOPTO_USERNAME and PANOPTO_PASSWORD. The Config type centralizes every knob
// the CLI and the harvesting pipeline need: portal location, browser waits,
// retry budgets, manifest capture rules, and transcoding settings.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical formats, and clear validation errors.
package config
