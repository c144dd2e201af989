package config

import "time"

const (
	// DefaultDir is the default tidlog directory name.
	DefaultDir = ".tidlog"
	// DefaultStoreFile is the default snapshot file name.
	DefaultStoreFile = "state.json"
	// DefaultListName is the list name used when none is given.
	DefaultListName = "tidlog"
	// DefaultTickInterval is how often the TUI refreshes running durations.
	DefaultTickInterval = time.Second

	// ConfigFileName is the name of the config file within the tidlog directory.
	ConfigFileName = "config.yml"

	// CurrentVersion is the current config schema version.
	CurrentVersion = 1
)
