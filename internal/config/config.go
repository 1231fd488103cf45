package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Mining   MiningConfig   `yaml:"mining"`
	Dedup    DedupConfig    `yaml:"dedup"`
	Notifier NotifierConfig `yaml:"notifier"`
	Log      LogConfig      `yaml:"log"`
	Feeds    []FeedConfig   `yaml:"feeds"`
}

// ServerConfig represents the HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// StorageConfig selects the persistence backend
type StorageConfig struct {
	Backend string `yaml:"backend"` // json or pebble
	Dir     string `yaml:"dir"`
}

// MiningConfig controls block building and the auto-miner
type MiningConfig struct {
	MaxNews       int           `yaml:"max_news"`
	FeedLimit     int           `yaml:"feed_limit"`      // items per feed for a manual mine
	AutoFeedLimit int           `yaml:"auto_feed_limit"` // items per feed for a scheduled mine
	AutoMine      bool          `yaml:"auto_mine"`
	Schedule      string        `yaml:"schedule"`
	FirstRunDelay time.Duration `yaml:"first_run_delay"`
}

// DedupConfig controls the broadcast history
type DedupConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// NotifierConfig controls block announcements
type NotifierConfig struct {
	WebhookURL string        `yaml:"webhook_url"`
	Timeout    time.Duration `yaml:"timeout"`
}

// LogConfig controls the process logger
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
	Dir    string `yaml:"dir"`
}

// FeedConfig is one RSS or Atom feed
type FeedConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Default returns the compiled-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8080,
			Host: "0.0.0.0",
		},
		Storage: StorageConfig{
			Backend: "json",
			Dir:     "./data",
		},
		Mining: MiningConfig{
			MaxNews:       5,
			FeedLimit:     3,
			AutoFeedLimit: 2,
			Schedule:      "@every 5m",
			FirstRunDelay: 60 * time.Second,
		},
		Dedup: DedupConfig{
			TTL: 30 * 24 * time.Hour,
		},
		Notifier: NotifierConfig{
			Timeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Feeds: DefaultFeeds(),
	}
}

// Load loads configuration from a YAML file and environment variables.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	// Load from YAML file if it exists
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Override with environment variables
	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadEnv() error {
	// Server config
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		c.Server.Host = host
	}

	// Storage config
	if backend := os.Getenv("STORAGE_BACKEND"); backend != "" {
		c.Storage.Backend = backend
	}
	if dir := os.Getenv("STORAGE_DIR"); dir != "" {
		c.Storage.Dir = dir
	}

	// Mining config
	if v := os.Getenv("MINING_MAX_NEWS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Mining.MaxNews = n
		}
	}
	if v := os.Getenv("MINING_FEED_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Mining.FeedLimit = n
		}
	}
	if v := os.Getenv("MINING_AUTO_FEED_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Mining.AutoFeedLimit = n
		}
	}
	if v := os.Getenv("AUTO_MINE"); v != "" {
		c.Mining.AutoMine = v == "true" || v == "1"
	}
	if v := os.Getenv("MINING_SCHEDULE"); v != "" {
		c.Mining.Schedule = v
	}
	if v := os.Getenv("MINING_FIRST_RUN_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid MINING_FIRST_RUN_DELAY: %w", err)
		}
		c.Mining.FirstRunDelay = d
	}

	// Dedup config
	if v := os.Getenv("DEDUP_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid DEDUP_TTL: %w", err)
		}
		c.Dedup.TTL = d
	}

	// Notifier config
	if v := os.Getenv("NOTIFIER_WEBHOOK_URL"); v != "" {
		c.Notifier.WebhookURL = v
	}

	// Log config
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("LOG_DIR"); v != "" {
		c.Log.Dir = v
	}

	return nil
}

// Validate checks the configuration for values the node cannot run with
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch c.Storage.Backend {
	case "json", "pebble":
	default:
		return fmt.Errorf("unknown storage.backend: %q", c.Storage.Backend)
	}
	if c.Storage.Dir == "" {
		return fmt.Errorf("storage.dir is required")
	}
	if c.Mining.MaxNews < 1 {
		return fmt.Errorf("mining.max_news must be at least 1, got %d", c.Mining.MaxNews)
	}
	if c.Mining.FeedLimit < 1 || c.Mining.AutoFeedLimit < 1 {
		return fmt.Errorf("mining feed limits must be at least 1")
	}
	if _, err := cron.ParseStandard(c.Mining.Schedule); err != nil {
		return fmt.Errorf("invalid mining.schedule %q: %w", c.Mining.Schedule, err)
	}
	if c.Dedup.TTL <= 0 {
		return fmt.Errorf("dedup.ttl must be positive")
	}
	if c.Notifier.WebhookURL != "" {
		if err := checkURL(c.Notifier.WebhookURL); err != nil {
			return fmt.Errorf("invalid notifier.webhook_url: %w", err)
		}
	}
	for i, f := range c.Feeds {
		if f.Name == "" {
			return fmt.Errorf("feeds[%d]: name is required", i)
		}
		if err := checkURL(f.URL); err != nil {
			return fmt.Errorf("feeds[%d] (%s): %w", i, f.Name, err)
		}
	}
	return nil
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

// Address returns the HTTP listen address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
