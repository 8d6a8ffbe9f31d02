// Package config loads, validates, and normalizes guidepress configuration.
//
// Configuration lives in a TOML file (default ~/.config/guidepress/config.toml,
// with guidepress.toml in the working directory as a project-local fallback).
// Load applies defaults, expands ~ in paths, clamps out-of-range values, and
// validates the result so the rest of the program can trust every field.
package config
