// Package config loads and validates copycat configuration.
//
// It supplies defaults, expands user paths (tilde shortcuts and environment
// variables) and reads TOML files. The Config type holds every knob the
// daemon and CLI need, from where backups land to how much disk the backup
// store may consume.
//
// Always obtain settings through this package so downstream code receives
// normalized paths and lower-cased extensions.
package config
