package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "json", cfg.Storage.Backend)
	require.Equal(t, 5, cfg.Mining.MaxNews)
	require.Equal(t, 30*24*time.Hour, cfg.Dedup.TTL)
	require.Len(t, cfg.Feeds, 25)
	require.NoError(t, cfg.Validate())
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
storage:
  backend: pebble
  dir: /var/lib/bicle
mining:
  max_news: 3
  auto_mine: true
  schedule: "*/10 * * * *"
  first_run_delay: 5s
dedup:
  ttl: 48h
feeds:
  - name: Only
    url: https://only.test/rss
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, "pebble", cfg.Storage.Backend)
	require.Equal(t, 3, cfg.Mining.MaxNews)
	require.Equal(t, 3, cfg.Mining.FeedLimit)
	require.True(t, cfg.Mining.AutoMine)
	require.Equal(t, 5*time.Second, cfg.Mining.FirstRunDelay)
	require.Equal(t, 48*time.Hour, cfg.Dedup.TTL)
	require.Equal(t, []FeedConfig{{Name: "Only", URL: "https://only.test/rss"}}, cfg.Feeds)
	require.NoError(t, cfg.Validate())
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [oops"), 0644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("STORAGE_DIR", "/tmp/bicle")
	t.Setenv("MINING_MAX_NEWS", "2")
	t.Setenv("AUTO_MINE", "1")
	t.Setenv("DEDUP_TTL", "24h")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("NOTIFIER_WEBHOOK_URL", "https://hooks.test/x")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 7070, cfg.Server.Port)
	require.Equal(t, "/tmp/bicle", cfg.Storage.Dir)
	require.Equal(t, 2, cfg.Mining.MaxNews)
	require.True(t, cfg.Mining.AutoMine)
	require.Equal(t, 24*time.Hour, cfg.Dedup.TTL)
	require.Equal(t, "json", cfg.Log.Format)
	require.Equal(t, "https://hooks.test/x", cfg.Notifier.WebhookURL)
	require.Equal(t, "0.0.0.0:7070", cfg.Address())
}

func TestEnvBadDuration(t *testing.T) {
	t.Setenv("DEDUP_TTL", "a month")
	_, err := Load("")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"max news", func(c *Config) { c.Mining.MaxNews = 0 }},
		{"backend", func(c *Config) { c.Storage.Backend = "sqlite" }},
		{"schedule", func(c *Config) { c.Mining.Schedule = "sometimes" }},
		{"ttl", func(c *Config) { c.Dedup.TTL = 0 }},
		{"port", func(c *Config) { c.Server.Port = 0 }},
		{"feed url", func(c *Config) { c.Feeds = []FeedConfig{{Name: "x", URL: "ftp://x.test"}} }},
		{"feed name", func(c *Config) { c.Feeds = []FeedConfig{{URL: "https://x.test"}} }},
		{"webhook", func(c *Config) { c.Notifier.WebhookURL = "not a url" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
