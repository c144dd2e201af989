// Package config handles tidlog list configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/tidlog/tidlog/internal/clierr"
)

const fileMode = 0o600

// Sentinel errors.
var (
	ErrNotFound = errors.New("no tidlog list found (run 'tidlog init' to create one)")
	ErrInvalid  = errors.New("invalid config")
)

// Config represents a tidlog list configuration.
type Config struct {
	Version   int        `yaml:"version"`
	List      ListConfig `yaml:"list"`
	StoreFile string     `yaml:"store_file"`
	TUI       TUIConfig  `yaml:"tui,omitempty"`

	// dir is the absolute path to the tidlog directory (not serialized).
	dir string `yaml:"-"`
}

// ListConfig holds list metadata.
type ListConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

// TUIConfig holds TUI-specific display settings.
type TUIConfig struct {
	// TickInterval controls how often the running-timer display refreshes,
	// as a duration string. The engine holds no clock; this is purely a
	// render cadence.
	TickInterval  string `yaml:"tick_interval,omitempty"`
	ShowCompleted *bool  `yaml:"show_completed,omitempty"`
}

// Dir returns the absolute path to the tidlog directory.
func (c *Config) Dir() string {
	return c.dir
}

// SetDir sets the tidlog directory path on the config.
func (c *Config) SetDir(dir string) {
	c.dir = dir
}

// ConfigPath returns the absolute path to the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.dir, ConfigFileName)
}

// SnapshotPath returns the absolute path to the state snapshot file.
func (c *Config) SnapshotPath() string {
	return filepath.Join(c.dir, c.StoreFile)
}

// TickIntervalDuration parses the TUI tick interval, falling back to the
// default on empty or unparseable values.
func (c *Config) TickIntervalDuration() time.Duration {
	if c.TUI.TickInterval == "" {
		return DefaultTickInterval
	}
	d, err := time.ParseDuration(c.TUI.TickInterval)
	if err != nil || d <= 0 {
		return DefaultTickInterval
	}
	return d
}

// ShowCompleted returns whether the TUI renders the completed section.
// Defaults to true when unset.
func (c *Config) ShowCompleted() bool {
	if c.TUI.ShowCompleted == nil {
		return true
	}
	return *c.TUI.ShowCompleted
}

// NewDefault creates a Config with default values.
func NewDefault(name string) *Config {
	return &Config{
		Version:   CurrentVersion,
		List:      ListConfig{Name: name},
		StoreFile: DefaultStoreFile,
		TUI:       TUIConfig{TickInterval: DefaultTickInterval.String()},
	}
}

// Validate checks the config for errors.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: unsupported version %d (expected %d)", ErrInvalid, c.Version, CurrentVersion)
	}
	if c.List.Name == "" {
		return fmt.Errorf("%w: list.name is required", ErrInvalid)
	}
	if c.StoreFile == "" {
		return fmt.Errorf("%w: store_file is required", ErrInvalid)
	}
	if filepath.Base(c.StoreFile) != c.StoreFile {
		return fmt.Errorf("%w: store_file must be a bare file name", ErrInvalid)
	}
	if c.TUI.TickInterval != "" {
		if _, err := time.ParseDuration(c.TUI.TickInterval); err != nil {
			return fmt.Errorf("%w: invalid tui.tick_interval %q: %w", ErrInvalid, c.TUI.TickInterval, err)
		}
	}
	return nil
}

// Save writes the config to its config file.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(c.ConfigPath(), data, fileMode)
}

// Load reads and validates a config from the given tidlog directory.
func Load(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	path := filepath.Join(absDir, ConfigFileName)
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted source
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.dir = absDir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Init creates a new tidlog list in the given directory with default
// settings: the directory itself and the config file. The snapshot file is
// created lazily on first save.
func Init(dir, name string) (*Config, error) {
	const dirMode = 0o750

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	if _, err := os.Stat(filepath.Join(absDir, ConfigFileName)); err == nil {
		return nil, clierr.Newf(clierr.ListExists, "list already initialized at %s", absDir)
	}

	cfg := NewDefault(name)
	cfg.SetDir(absDir)

	if err := os.MkdirAll(absDir, dirMode); err != nil {
		return nil, fmt.Errorf("creating tidlog directory: %w", err)
	}

	if err := cfg.Save(); err != nil {
		return nil, fmt.Errorf("writing config: %w", err)
	}

	return cfg, nil
}

// FindDir walks upward from startDir looking for a tidlog directory
// containing config.yml. Returns the absolute path to the tidlog directory.
func FindDir(startDir string) (string, error) {
	absStart, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	dir := absStart
	for {
		candidate := filepath.Join(dir, DefaultDir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return filepath.Join(dir, DefaultDir), nil
		}

		// Also check if we're inside the tidlog directory itself.
		candidate = filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", clierr.New(clierr.ListNotFound,
				"no tidlog list found (run 'tidlog init' to create one)")
		}
		dir = parent
	}
}
