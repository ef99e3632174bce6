package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/gerunddev/chordbridge/internal/convert"
)

// Sentinel errors for configuration handling
var (
	ErrConfigParse   = errors.New("failed to parse config")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config represents the chordbridge configuration
type Config struct {
	InputExt        string   `yaml:"input_ext"`
	OutputExt       string   `yaml:"output_ext"`
	LogFile         string   `yaml:"log_file"`
	Workers         int      `yaml:"workers"` // 0 picks a size from GOMAXPROCS
	FixChordNames   bool     `yaml:"fix_chord_names"`
	EscapeSharps    bool     `yaml:"escape_sharps"`
	ExcludePatterns []string `yaml:"exclude_patterns,omitempty"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		InputExt:        ".txt",
		OutputExt:       ".cho",
		LogFile:         "/tmp/chordbridge.log",
		Workers:         0,
		ExcludePatterns: []string{},
	}
}

// ConfigPath returns the path to the config file
// Uses ~/.config on all platforms for consistency
// Can be overridden for testing
var ConfigPath = func() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to XDG if home dir unavailable
		return filepath.Join(xdg.ConfigHome, "chordbridge", "config.yaml")
	}
	return filepath.Join(home, ".config", "chordbridge", "config.yaml")
}

// StateFilePath returns the path to the batch state file
// Uses platform-specific XDG data directory
// Can be overridden for testing
var StateFilePath = func() string {
	return filepath.Join(xdg.DataHome, "chordbridge", "state.json")
}

// Load reads configuration from the config file.
// Missing keys keep their default values.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		// Return default config if file doesn't exist
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if cfg.ExcludePatterns == nil {
		cfg.ExcludePatterns = []string{}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if err := cfg.ExpandPaths(); err != nil {
		return nil, fmt.Errorf("failed to expand paths: %w", err)
	}

	return cfg, nil
}

// Save writes configuration to the config file
func (c *Config) Save() error {
	configPath := ConfigPath()

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.InputExt, ".") || len(c.InputExt) < 2 {
		return fmt.Errorf("input_ext must start with '.', got '%s'", c.InputExt)
	}
	if !strings.HasPrefix(c.OutputExt, ".") || len(c.OutputExt) < 2 {
		return fmt.Errorf("output_ext must start with '.', got '%s'", c.OutputExt)
	}
	if c.InputExt == c.OutputExt {
		return fmt.Errorf("input_ext and output_ext must differ")
	}
	if c.LogFile == "" {
		return fmt.Errorf("log_file cannot be empty")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers cannot be negative")
	}

	for _, pattern := range c.ExcludePatterns {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("invalid exclude pattern '%s': %w", pattern, err)
		}
	}

	return nil
}

// ConvertOptions returns the converter options selected by the config
func (c *Config) ConvertOptions() convert.Options {
	return convert.Options{
		FixChordNames: c.FixChordNames,
		EscapeSharps:  c.EscapeSharps,
	}
}

// Excluded reports whether a file name matches one of the exclude patterns
func (c *Config) Excluded(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range c.ExcludePatterns {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

// ExpandPaths expands any ~ or relative paths to absolute paths
func (c *Config) ExpandPaths() error {
	var err error

	c.LogFile, err = expandPath(c.LogFile)
	if err != nil {
		return fmt.Errorf("failed to expand log_file: %w", err)
	}

	return nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) (string, error) {
	if path == "" {
		return path, nil
	}

	// Expand ~ to home directory
	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if len(path) == 1 {
			return homeDir, nil
		}
		path = filepath.Join(homeDir, path[1:])
	}

	return filepath.Abs(path)
}
