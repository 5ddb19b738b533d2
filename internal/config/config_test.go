package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("WIKI_API_URL", "https://test.wikipedia.org/w/api.php")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "wikibot-1", cfg.BotID)
	assert.Equal(t, 10, cfg.Workers)
	assert.Equal(t, QueueMemory, cfg.QueueBackend)
	assert.Equal(t, 30*time.Second, cfg.EditTimeout)
	assert.Equal(t, "enwiki", cfg.WikidataSite)
	assert.True(t, cfg.ReportEnabled)
	assert.False(t, cfg.DryRun)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("WIKI_API_URL", "https://test.wikipedia.org/w/api.php")
	t.Setenv("WIKI_USER", "Bot")
	t.Setenv("WIKI_PASSWORD", "secret")
	t.Setenv("WORKERS", "3")
	t.Setenv("QUEUE_BACKEND", "redis")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("DRY_RUN", "true")
	t.Setenv("EDIT_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, QueueRedis, cfg.QueueBackend)
	assert.True(t, cfg.DryRun)
	assert.Equal(t, 5*time.Second, cfg.EditTimeout)
	assert.True(t, cfg.UsesRedis())

	opts := cfg.RedisOptions()
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)
}

func TestLoadRequiresWikiURL(t *testing.T) {
	t.Setenv("WIKI_API_URL", "")

	_, err := Load()
	assert.ErrorContains(t, err, "WIKI_API_URL is required")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			BotID:            "bot",
			Workers:          10,
			WikiAPIURL:       "https://test.wikipedia.org/w/api.php",
			WikiUserAgent:    "ua",
			EditTimeout:      time.Second,
			QueueBackend:     QueueMemory,
			ReportEnabled:    true,
			ReportPagePrefix: "User:Bot/",
			HealthPort:       8082,
			LogLevel:         "info",
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"no bot id", func(c *Config) { c.BotID = "" }, "BOT_ID"},
		{"relative url", func(c *Config) { c.WikiAPIURL = "w/api.php" }, "absolute URL"},
		{"user without password", func(c *Config) { c.WikiUser = "Bot" }, "set together"},
		{"no user agent", func(c *Config) { c.WikiUserAgent = "" }, "WIKI_USER_AGENT"},
		{"zero workers", func(c *Config) { c.Workers = 0 }, "WORKERS"},
		{"too many workers", func(c *Config) { c.Workers = 51 }, "WORKERS"},
		{"zero timeout", func(c *Config) { c.EditTimeout = 0 }, "EDIT_TIMEOUT"},
		{"unknown backend", func(c *Config) { c.QueueBackend = "kafka" }, "QUEUE_BACKEND"},
		{"redis without addr", func(c *Config) { c.QueueBackend = QueueRedis; c.RedisAddr = "" }, "REDIS_ADDR"},
		{"report without prefix", func(c *Config) { c.ReportPagePrefix = "" }, "REPORT_PAGE_PREFIX"},
		{"bad port", func(c *Config) { c.HealthPort = 70000 }, "HEALTH_PORT"},
		{"bad level", func(c *Config) { c.LogLevel = "trace" }, "LOG_LEVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.errMsg)
		})
	}
}

func TestStringHidesSecrets(t *testing.T) {
	cfg := &Config{WikiUser: "Bot", WikiPassword: "hunter2", RedisPassword: "redispw"}

	s := cfg.String()
	assert.Contains(t, s, "WikiUser=Bot")
	assert.NotContains(t, s, "hunter2")
	assert.NotContains(t, s, "redispw")
}
