package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the inventory tool.
type Config struct {
	Store     StoreConfig     `yaml:"store"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
	Insights  InsightsConfig  `yaml:"insights"`
	Import    ImportConfig    `yaml:"import"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// StoreConfig holds storage configuration.
type StoreConfig struct {
	Path string `yaml:"path"` // relative paths resolve against the data directory root
}

// EmbeddingConfig holds embedding provider configuration.
type EmbeddingConfig struct {
	Provider  string        `yaml:"provider"`    // "hash", "openai", "ollama"
	Model     string        `yaml:"model"`       // e.g., "text-embedding-3-small"
	APIKeyEnv string        `yaml:"api_key_env"` // Environment variable for API key
	BaseURL   string        `yaml:"base_url"`
	Dimension int           `yaml:"dimension"` // only used by the hash provider
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit float64       `yaml:"rate_limit"` // calls per second, 0 = unlimited
	Burst     int           `yaml:"burst"`
}

// SearchConfig holds semantic search configuration.
type SearchConfig struct {
	TopN           int           `yaml:"top_n"`
	QueryCacheSize int           `yaml:"query_cache_size"`
	QueryCacheTTL  time.Duration `yaml:"query_cache_ttl"`
	MinScore       float64       `yaml:"min_score"` // drop results scoring below this (0 = disabled)
}

// InsightsConfig holds low-stock and trending configuration.
type InsightsConfig struct {
	LowStockThreshold int64         `yaml:"low_stock_threshold"`
	TrendingWindow    time.Duration `yaml:"trending_window"`
	TrendingTopN      int           `yaml:"trending_top_n"`
}

// ImportConfig holds CSV import file discovery patterns.
type ImportConfig struct {
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Path: filepath.Join(".inventory", "inventory.db"),
		},
		Embedding: EmbeddingConfig{
			Provider:  "hash",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 256,
			Timeout:   30 * time.Second,
			Burst:     1,
		},
		Search: SearchConfig{
			TopN:           10,
			QueryCacheSize: 256,
			QueryCacheTTL:  10 * time.Minute,
		},
		Insights: InsightsConfig{
			LowStockThreshold: 10,
			TrendingWindow:    7 * 24 * time.Hour,
			TrendingTopN:      5,
		},
		Import: ImportConfig{
			Includes: []string{"**/*.csv"},
			Excludes: []string{"**/.inventory/**", "**/.git/**"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Embedding.Provider {
	case "hash", "openai", "ollama":
	default:
		return fmt.Errorf("unsupported embedding provider: %q", c.Embedding.Provider)
	}
	if c.Embedding.Provider == "hash" && c.Embedding.Dimension <= 0 {
		return fmt.Errorf("embedding.dimension must be positive")
	}
	if c.Search.TopN <= 0 {
		return fmt.Errorf("search.top_n must be positive")
	}
	if c.Insights.LowStockThreshold <= 0 {
		return fmt.Errorf("insights.low_stock_threshold must be positive")
	}
	if c.Insights.TrendingWindow <= 0 {
		return fmt.Errorf("insights.trending_window must be positive")
	}
	if c.Insights.TrendingTopN <= 0 {
		return fmt.Errorf("insights.trending_top_n must be positive")
	}
	return nil
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, cfg.Validate()
}

// LoadFromDir loads configuration from a directory (looks for inventory.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "inventory.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".inventory", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// DBPath returns the database path for a data directory root.
func (c *Config) DBPath(dir string) string {
	if filepath.IsAbs(c.Store.Path) {
		return c.Store.Path
	}
	return filepath.Join(dir, c.Store.Path)
}

// EnsureDataDir ensures the directory holding the database exists.
func (c *Config) EnsureDataDir(dir string) error {
	return os.MkdirAll(filepath.Dir(c.DBPath(dir)), 0755)
}
