package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/redis/go-redis/v9"
)

// Queue backends.
const (
	QueueMemory = "memory"
	QueueRedis  = "redis"
)

// Config holds all configuration for the bot
type Config struct {
	// Bot configuration
	BotID   string `env:"BOT_ID" envDefault:"wikibot-1"`
	Workers int    `env:"WORKERS" envDefault:"10"`
	DryRun  bool   `env:"DRY_RUN" envDefault:"false"`

	// Wiki configuration
	WikiAPIURL    string        `env:"WIKI_API_URL"`
	WikiUser      string        `env:"WIKI_USER"`
	WikiPassword  string        `env:"WIKI_PASSWORD"`
	WikiUserAgent string        `env:"WIKI_USER_AGENT" envDefault:"dago-wikibot/1.0"`
	EditTimeout   time.Duration `env:"EDIT_TIMEOUT" envDefault:"30s"`

	// Wikidata configuration
	WikidataAPIURL string `env:"WIKIDATA_API_URL" envDefault:"https://www.wikidata.org/w/api.php"`
	WikidataSite   string `env:"WIKIDATA_SITE" envDefault:"enwiki"`

	// Task configuration
	TaskFile string `env:"TASK_FILE"`

	// Queue configuration
	QueueBackend  string `env:"QUEUE_BACKEND" envDefault:"memory"`
	QueueKey      string `env:"QUEUE_KEY" envDefault:"wikibot.pages"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASS" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Result stream; empty disables publishing
	ResultStream string `env:"RESULT_STREAM" envDefault:"wikibot.results"`

	// Report configuration
	ReportEnabled    bool   `env:"REPORT_ENABLED" envDefault:"true"`
	ReportPagePrefix string `env:"REPORT_PAGE_PREFIX" envDefault:"User:Wikibot/Reports/"`

	// Health check configuration
	HealthPort int `env:"HEALTH_PORT" envDefault:"8082"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.BotID == "" {
		return fmt.Errorf("BOT_ID is required")
	}

	if c.WikiAPIURL == "" {
		return fmt.Errorf("WIKI_API_URL is required")
	}
	if u, err := url.Parse(c.WikiAPIURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("WIKI_API_URL must be an absolute URL")
	}

	if (c.WikiUser == "") != (c.WikiPassword == "") {
		return fmt.Errorf("WIKI_USER and WIKI_PASSWORD must be set together")
	}

	if c.WikiUserAgent == "" {
		return fmt.Errorf("WIKI_USER_AGENT is required")
	}

	if c.Workers < 1 || c.Workers > 50 {
		return fmt.Errorf("WORKERS must be between 1 and 50")
	}

	if c.EditTimeout <= 0 {
		return fmt.Errorf("EDIT_TIMEOUT must be positive")
	}

	switch c.QueueBackend {
	case QueueMemory:
	case QueueRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis queue")
		}
		if c.QueueKey == "" {
			return fmt.Errorf("QUEUE_KEY is required for the redis queue")
		}
	default:
		return fmt.Errorf("QUEUE_BACKEND must be one of: memory, redis")
	}

	if c.ReportEnabled && c.ReportPagePrefix == "" {
		return fmt.Errorf("REPORT_PAGE_PREFIX is required when REPORT_ENABLED is set")
	}

	if c.HealthPort <= 0 || c.HealthPort > 65535 {
		return fmt.Errorf("HEALTH_PORT must be between 1 and 65535")
	}

	if !isValidLogLevel(c.LogLevel) {
		return fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error")
	}

	return nil
}

// isValidLogLevel checks if the log level is valid
func isValidLogLevel(level string) bool {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	return validLevels[level]
}

// UsesRedis reports whether any component needs a Redis connection.
func (c *Config) UsesRedis() bool {
	return c.QueueBackend == QueueRedis || c.ResultStream != ""
}

// RedisOptions returns Redis client options
func (c *Config) RedisOptions() *redis.Options {
	return &redis.Options{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// String returns a string representation of the config (without sensitive data)
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{BotID=%s, WikiAPIURL=%s, WikiUser=%s, Workers=%d, DryRun=%v, TaskFile=%s, "+
			"QueueBackend=%s, QueueKey=%s, RedisAddr=%s, RedisDB=%d, ResultStream=%s, "+
			"ReportEnabled=%v, HealthPort=%d, LogLevel=%s}",
		c.BotID,
		c.WikiAPIURL,
		c.WikiUser,
		c.Workers,
		c.DryRun,
		c.TaskFile,
		c.QueueBackend,
		c.QueueKey,
		c.RedisAddr,
		c.RedisDB,
		c.ResultStream,
		c.ReportEnabled,
		c.HealthPort,
		c.LogLevel,
	)
}
