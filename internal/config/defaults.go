// Package config provides centralized configuration constants for Fair
// Flow. All default values should be defined here to ensure a single
// source of truth.
package config

const (
	// DefaultRootDir is the per-project directory holding the data file
	// and archive.
	DefaultRootDir = ".fairflow"

	// DefaultDataFile is the key-value store filename.
	DefaultDataFile = "fairflow.json"

	// DefaultDataFormat is the store serialization format.
	DefaultDataFormat = "json"

	// DefaultArchiveDir holds the SQLite history archive, relative to the
	// root directory.
	DefaultArchiveDir = "archive"

	// DefaultAutoResetTime is the cutoff applied when a tab enables
	// auto-reset without choosing a time.
	DefaultAutoResetTime = "09:00"

	// DefaultTab is used when an operation needs a tab and none was
	// given anywhere.
	DefaultTab = "opening"
)
