package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the docketdex service configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Search   SearchConfig   `yaml:"search"`
	Sync     SyncConfig     `yaml:"sync"`
	Source   SourceConfig   `yaml:"source"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds Redis connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// SearchConfig holds result shaping settings.
type SearchConfig struct {
	// ChildHitsPerResult caps the filings shown under each docket row.
	ChildHitsPerResult int `yaml:"child_hits_per_result"`
	// ViewMoreChildHits caps the "view additional results" expansion; dockets
	// with more total filings than this get the see-full-docket flag.
	ViewMoreChildHits int `yaml:"view_more_child_hits"`
	// MaxJoinChildren bounds how many child hits a single query joins.
	MaxJoinChildren int `yaml:"max_join_children"`
	// NoMatchHLSize is the max length of the fallback text snippet.
	NoMatchHLSize   int `yaml:"no_match_hl_size"`
	DefaultPageSize int `yaml:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size"`
}

// SyncConfig holds index synchronizer settings.
type SyncConfig struct {
	Workers      int `yaml:"workers"`
	QueueSize    int `yaml:"queue_size"`
	MaxRetries   int `yaml:"max_retries"`
	RetryDelayMS int `yaml:"retry_delay_ms"`
	// ReindexBatchSize is the number of dockets per checkpointed batch.
	ReindexBatchSize int `yaml:"reindex_batch_size"`
}

// SourceConfig holds the system-of-record API settings.
type SourceConfig struct {
	BaseURL    string `yaml:"base_url"`
	APIKey     string `yaml:"api_key"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
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
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Search.ChildHitsPerResult <= 0 {
		c.Search.ChildHitsPerResult = 5
	}
	if c.Search.ViewMoreChildHits <= 0 {
		c.Search.ViewMoreChildHits = 100
	}
	if c.Search.MaxJoinChildren <= 0 {
		c.Search.MaxJoinChildren = 10000
	}
	if c.Search.NoMatchHLSize <= 0 {
		c.Search.NoMatchHLSize = 50
	}
	if c.Search.DefaultPageSize <= 0 {
		c.Search.DefaultPageSize = 20
	}
	if c.Search.MaxPageSize <= 0 {
		c.Search.MaxPageSize = 100
	}
	if c.Sync.Workers <= 0 {
		c.Sync.Workers = 4
	}
	if c.Sync.QueueSize <= 0 {
		c.Sync.QueueSize = 1000
	}
	if c.Sync.MaxRetries <= 0 {
		c.Sync.MaxRetries = 5
	}
	if c.Sync.RetryDelayMS <= 0 {
		c.Sync.RetryDelayMS = 500
	}
	if c.Sync.ReindexBatchSize <= 0 {
		c.Sync.ReindexBatchSize = 100
	}
	if c.Source.TimeoutSec <= 0 {
		c.Source.TimeoutSec = 30
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "dxd:"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Search.ChildHitsPerResult > c.Search.ViewMoreChildHits {
		return fmt.Errorf(
			"search.child_hits_per_result (%d) must not exceed search.view_more_child_hits (%d)",
			c.Search.ChildHitsPerResult, c.Search.ViewMoreChildHits,
		)
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
