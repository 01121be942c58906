// Package config loads tome configuration.
//
// Configuration hierarchy, later sources override earlier ones:
//  1. Hardcoded defaults (NewConfig)
//  2. User config (~/.config/tome/config.yaml)
//  3. Environment variables (TOME_*)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config represents the complete tome configuration.
type Config struct {
	Version int          `yaml:"version"`
	DataDir string       `yaml:"data_dir"`
	Search  SearchConfig `yaml:"search"`
	Build   BuildConfig  `yaml:"build"`
	Viewer  ViewerConfig `yaml:"viewer"`
	Logging LogConfig    `yaml:"logging"`
}

// SearchConfig holds search and preview defaults.
type SearchConfig struct {
	// Limit is the default page size for search results.
	Limit int `yaml:"limit"`
	// Distance is the default maximum edit distance for fuzzy search.
	Distance int `yaml:"distance"`
	// SnippetRadius is the number of runes of context on each side of a match.
	SnippetRadius int `yaml:"snippet_radius"`
}

// BuildConfig holds index build tuning.
type BuildConfig struct {
	// Workers bounds parallel extraction; 0 means runtime.NumCPU().
	Workers int `yaml:"workers"`
	// MaxFileSize is the largest document to index, in bytes.
	MaxFileSize int64 `yaml:"max_file_size"`
}

// ViewerConfig configures the external document viewer.
type ViewerConfig struct {
	// Command is the viewer command template; {path} and {page} are
	// substituted. Empty selects the platform opener.
	Command string `yaml:"command"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// DefaultMaxFileSize is the default maximum document size (100MB).
const DefaultMaxFileSize int64 = 100 * 1024 * 1024

// NewConfig returns a config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		DataDir: defaultDataDir(),
		Search: SearchConfig{
			Limit:         10,
			Distance:      2,
			SnippetRadius: 50,
		},
		Build: BuildConfig{
			Workers:     0,
			MaxFileSize: DefaultMaxFileSize,
		},
		Logging: LogConfig{Level: "info"},
	}
}

// Load builds the effective configuration from defaults, the user config
// file, and environment variables.
func Load() (*Config, error) {
	cfg := NewConfig()

	if path := UserConfigPath(); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UserConfigPath returns the user config file location, or "" if the
// home directory cannot be determined.
func UserConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "tome", "config.yaml")
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".tome")
	}
	return filepath.Join(home, ".tome")
}

// mergeFile overlays values from a yaml file if it exists.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays TOME_* environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("TOME_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("TOME_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("TOME_VIEWER"); v != "" {
		c.Viewer.Command = v
	}
	if v, ok := envInt("TOME_SEARCH_LIMIT"); ok {
		c.Search.Limit = v
	}
	if v, ok := envInt("TOME_FUZZY_DISTANCE"); ok {
		c.Search.Distance = v
	}
	if v, ok := envInt("TOME_BUILD_WORKERS"); ok {
		c.Build.Workers = v
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Validate checks invariants the rest of the system relies on.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if c.Search.Limit <= 0 {
		return fmt.Errorf("search.limit must be positive, got %d", c.Search.Limit)
	}
	if c.Search.Distance < 0 {
		return fmt.Errorf("search.distance must not be negative, got %d", c.Search.Distance)
	}
	if c.Search.SnippetRadius <= 0 {
		return fmt.Errorf("search.snippet_radius must be positive, got %d", c.Search.SnippetRadius)
	}
	if c.Build.Workers < 0 {
		return fmt.Errorf("build.workers must not be negative, got %d", c.Build.Workers)
	}
	if c.Build.MaxFileSize <= 0 {
		return fmt.Errorf("build.max_file_size must be positive, got %d", c.Build.MaxFileSize)
	}
	return nil
}

// EffectiveWorkers resolves the configured worker count.
func (c *Config) EffectiveWorkers() int {
	if c.Build.Workers > 0 {
		return c.Build.Workers
	}
	return runtime.NumCPU()
}

// IndicesDir returns the directory holding per-corpus storage.
func (c *Config) IndicesDir() string {
	return filepath.Join(c.DataDir, "indices")
}

// RegistryPath returns the registry file location.
func (c *Config) RegistryPath() string {
	return filepath.Join(c.DataDir, "indices.yaml")
}
