// Package config loads searchd configuration from per-environment YAML files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the searchd server configuration.
type Config struct {
	RESP       RESPConfig       `yaml:"resp"`
	HTTP       HTTPConfig       `yaml:"http"`
	Auth       AuthConfig       `yaml:"auth"`
	ErrorStats ErrorStatsConfig `yaml:"errorstats"`
	Search     SearchConfig     `yaml:"search"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// RESPConfig holds the Redis-protocol listener settings.
type RESPConfig struct {
	Addr string `yaml:"addr"`
}

// HTTPConfig holds admin API settings. Port 0 disables the admin API.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// AuthConfig holds admin API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// ErrorStatsConfig bounds the error statistics table.
type ErrorStatsConfig struct {
	MaxEntries int `yaml:"max_entries"`
}

// SearchConfig holds command limits.
type SearchConfig struct {
	MaxPrefixExpansions int `yaml:"max_prefix_expansions"`
	MaxSearchResults    int `yaml:"max_search_results"`
	MaxAggregateResults int `yaml:"max_aggregate_results"`
	DefaultDialect      int `yaml:"default_dialect"`
	MaxFields           int `yaml:"max_fields"`  // per index, 0 = unlimited
	MaxIndexes          int `yaml:"max_indexes"` // 0 = unlimited
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
	// HideUserData logs classified errors with their generic message only,
	// so index names and query text stay out of the logs.
	HideUserData bool `yaml:"hide_user_data"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// A .env file in the working directory, if present, is loaded first.
func Load(env string) (Config, error) {
	if err := LoadDotEnv(); err != nil {
		return Config{}, err
	}
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads variables from the given files (default ".env") without
// overriding ones already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.RESP.Addr == "" {
		c.RESP.Addr = ":6380"
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.ErrorStats.MaxEntries <= 0 {
		c.ErrorStats.MaxEntries = 128
	}
	if c.Search.MaxPrefixExpansions <= 0 {
		c.Search.MaxPrefixExpansions = 200
	}
	if c.Search.MaxSearchResults <= 0 {
		c.Search.MaxSearchResults = 10000
	}
	if c.Search.MaxAggregateResults <= 0 {
		c.Search.MaxAggregateResults = 10000
	}
	if c.Search.DefaultDialect <= 0 {
		c.Search.DefaultDialect = 1
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 0 and 65535, got %d", c.HTTP.Port)
	}
	if _, _, ok := strings.Cut(c.RESP.Addr, ":"); !ok {
		return fmt.Errorf("resp.addr must be host:port, got %q", c.RESP.Addr)
	}
	if c.Search.DefaultDialect > 4 {
		return fmt.Errorf("search.default_dialect must be between 1 and 4, got %d", c.Search.DefaultDialect)
	}
	if c.Search.MaxFields < 0 || c.Search.MaxIndexes < 0 {
		return errors.New("search.max_fields and search.max_indexes must not be negative")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
