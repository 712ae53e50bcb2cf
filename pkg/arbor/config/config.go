package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/jamesainslie/arbor/pkg/arbor/types"
	"github.com/jamesainslie/arbor/pkg/arbor/view"
)

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Components map[string]string `mapstructure:"components"`
}

// WalkConfig configures the filesystem walk.
type WalkConfig struct {
	// MaxDepth bounds directory expansion. 0 means unlimited.
	MaxDepth int `mapstructure:"max_depth"`

	// FollowSymlinks resolves symlinks to their targets.
	FollowSymlinks bool `mapstructure:"follow_symlinks"`

	// Workers is the walker pool size. 0 means one per CPU.
	Workers int `mapstructure:"workers"`
}

// IgnoreConfig configures entry exclusion during the walk.
type IgnoreConfig struct {
	// Hidden includes dotfile entries.
	Hidden bool `mapstructure:"hidden"`

	// Gitignore honors .gitignore files found during the walk.
	Gitignore bool `mapstructure:"gitignore"`

	// Exclude is a list of glob patterns to skip.
	Exclude []string `mapstructure:"exclude"`
}

// ViewConfig configures sorting and display pruning.
type ViewConfig struct {
	SortBy    string `mapstructure:"sort_by"`
	SortOrder string `mapstructure:"sort_order"`

	// MinSize hides entries below this aggregate size ("10MB", "1GiB").
	MinSize string `mapstructure:"min_size"`

	// Depth hides entries deeper than this below the root. 0 means
	// unlimited.
	Depth int `mapstructure:"depth"`

	// Pattern keeps only files matching this regular expression.
	Pattern string `mapstructure:"pattern"`

	// KeepDirs retains directories emptied by filtering.
	KeepDirs bool `mapstructure:"keep_dirs"`
}

// OutputConfig configures rendering.
type OutputConfig struct {
	Format string `mapstructure:"format"`

	// Unit is "bin" for IEC sizes or "si" for decimal sizes.
	Unit string `mapstructure:"unit"`

	// Physical reports disk usage instead of apparent size.
	Physical bool `mapstructure:"physical"`

	NoColor bool `mapstructure:"no_color"`
}

// Config represents the application configuration.
type Config struct {
	DefaultPath string        `mapstructure:"default_path"`
	Walk        WalkConfig    `mapstructure:"walk"`
	Ignore      IgnoreConfig  `mapstructure:"ignore"`
	View        ViewConfig    `mapstructure:"view"`
	Output      OutputConfig  `mapstructure:"output"`
	Logging     LoggingConfig `mapstructure:"logging"`
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/arbor/config.yaml
//   - $HOME/.config/arbor/config.yaml
//
// Environment variables are prefixed with ARBOR_ (e.g., ARBOR_VIEW_MIN_SIZE).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, "arbor"))
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	v.AddConfigPath(filepath.Join(homeDir, ".config", "arbor"))

	v.SetEnvPrefix("ARBOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults registers every configuration default on the viper
// instance. The CLI uses it to seed the global viper before flag
// binding.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("default_path", DefaultPath)

	v.SetDefault("walk.max_depth", 0)
	v.SetDefault("walk.follow_symlinks", false)
	v.SetDefault("walk.workers", 0)

	v.SetDefault("ignore.hidden", false)
	v.SetDefault("ignore.gitignore", false)
	v.SetDefault("ignore.exclude", DefaultExclude)

	v.SetDefault("view.sort_by", DefaultSortBy)
	v.SetDefault("view.sort_order", DefaultSortOrder)
	v.SetDefault("view.min_size", "")
	v.SetDefault("view.depth", DefaultDepth)
	v.SetDefault("view.pattern", "")
	v.SetDefault("view.keep_dirs", false)

	v.SetDefault("output.format", DefaultFormat)
	v.SetDefault("output.unit", DefaultUnit)
	v.SetDefault("output.physical", false)
	v.SetDefault("output.no_color", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.components", map[string]string{
		"walker": "info",
		"ignore": "warn",
		"output": "info",
		"tui":    "info",
	})
}

// Validate checks that every parseable field parses, so errors surface
// at load time instead of mid-run.
func (c *Config) Validate() error {
	if _, err := view.ParseSortKey(c.View.SortBy); err != nil {
		return fmt.Errorf("view.sort_by: %w", err)
	}
	if _, err := view.ParseOrder(c.View.SortOrder); err != nil {
		return fmt.Errorf("view.sort_order: %w", err)
	}
	if c.View.MinSize != "" {
		if _, err := types.ParseSize(c.View.MinSize); err != nil {
			return fmt.Errorf("view.min_size: %w", err)
		}
	}
	if c.View.Depth < 0 {
		return fmt.Errorf("view.depth must not be negative: %d", c.View.Depth)
	}
	if c.Walk.MaxDepth < 0 {
		return fmt.Errorf("walk.max_depth must not be negative: %d", c.Walk.MaxDepth)
	}

	switch c.Output.Unit {
	case "bin", "si":
	default:
		return fmt.Errorf("output.unit must be %q or %q: %q", "bin", "si", c.Output.Unit)
	}
	return nil
}

// MinSizeBytes returns the parsed display threshold, or 0 when unset.
func (c *Config) MinSizeBytes() (int64, error) {
	if c.View.MinSize == "" {
		return 0, nil
	}
	return types.ParseSize(c.View.MinSize)
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "arbor"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "arbor"), nil
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return nil
}

// WriteDefault writes a default config file if none exists.
// Returns nil if a config file already exists.
func WriteDefault() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	configDir, err := ConfigDir()
	if err != nil {
		return err
	}
	configPath := filepath.Join(configDir, "config.yaml")

	if _, err := os.Stat(configPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	defaultConfig := `# Arbor Disk Usage Configuration

# Default path to walk when none is specified
default_path: .

# Walk settings
walk:
  # Directory expansion depth limit (0 means unlimited)
  max_depth: 0
  # Resolve symlinks to their targets
  follow_symlinks: false
  # Walker pool size (0 means one per CPU)
  workers: 0

# Exclusion settings
ignore:
  # Include dotfile entries
  hidden: false
  # Honor .gitignore files found during the walk
  gitignore: false
  # Glob patterns to skip
  exclude: []

# Sorting and display pruning
view:
  # Child ordering: name, size, mtime, type
  sort_by: size
  sort_order: desc
  # Hide entries below this aggregate size (e.g. 10MB; empty disables)
  min_size: ""
  # Hide entries deeper than this below the root (0 means unlimited)
  depth: 0
  # Keep only files matching this regular expression (empty disables)
  pattern: ""
  # Retain directories emptied by filtering
  keep_dirs: false

# Output settings
output:
  # Formatter: tree, plain, json, jsonl, yaml
  format: tree
  # Size notation: bin (KiB) or si (kB)
  unit: bin
  # Report disk usage instead of apparent size
  physical: false
  no_color: false

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: info
  # Log file path (empty means use default: $XDG_STATE_HOME/arbor/arbor.log)
  path: ""
  # Per-component log levels
  components:
    walker: info
    ignore: warn
    output: info
    tui: info
`

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}
	return nil
}

// ExpandPath expands ~ in a path to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, path[1:]), nil
}
