package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aescanero/dago-wikibot/internal/config"
	"github.com/aescanero/dago-wikibot/internal/wiki"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Version is set at build time
	Version = "dev"
	// BuildTime is set at build time
	BuildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "wikibot",
	Short: "Template maintenance bots for MediaWiki",
	Long: `wikibot finds templates in wiki pages and rewrites them according to a
task file, with a pool of workers sharing one page queue.

Configuration is read from the environment (WIKI_API_URL, WIKI_USER,
WIKI_PASSWORD, WORKERS, QUEUE_BACKEND, REDIS_ADDR, ...).

Examples:
  wikibot scan page.wiki --name "Infobox person" --nested
  wikibot enqueue --embedded-in "Infobox person"
  wikibot run --task tasks/infobox.yaml --category "Living people"`,
	Version:      Version,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initLogger initializes the logger
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}

// setup loads the configuration and builds the logger shared by the
// commands that talk to a wiki.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logger, nil
}

// connectWiki creates the API client and logs in when credentials are set.
func connectWiki(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*wiki.Client, error) {
	client, err := wiki.NewClient(cfg.WikiAPIURL, cfg.WikiUserAgent, logger)
	if err != nil {
		return nil, err
	}
	if cfg.WikiUser == "" {
		logger.Warn("no wiki credentials, editing anonymously")
		return client, nil
	}
	if err := client.Login(ctx, cfg.WikiUser, cfg.WikiPassword); err != nil {
		return nil, err
	}
	return client, nil
}

// connectRedis opens a Redis client and checks the connection.
func connectRedis(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(cfg.RedisOptions())

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
	return client, nil
}

// generatorFlags are the page source flags of run and enqueue.
type generatorFlags struct {
	category   string
	categoryID int64
	embeddedIn string
	titles     []string
	namespaces string
}

func (g *generatorFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&g.category, "category", "", "Pages in this category")
	cmd.Flags().Int64Var(&g.categoryID, "category-id", 0, "Pages in the category with this page id")
	cmd.Flags().StringVar(&g.embeddedIn, "embedded-in", "", "Pages that use this template")
	cmd.Flags().StringArrayVar(&g.titles, "title", nil, "Page title (repeatable)")
	cmd.Flags().StringVar(&g.namespaces, "namespace", "", "Namespace ids for category and embedded-in, e.g. 0|10")
	cmd.MarkFlagsMutuallyExclusive("category", "category-id", "embedded-in", "title")
}

func (g *generatorFlags) isSet() bool {
	return g.category != "" || g.categoryID > 0 || g.embeddedIn != "" || len(g.titles) > 0
}

func (g *generatorFlags) generator() wiki.Generator {
	return wiki.Generator{
		Category:   g.category,
		CategoryID: g.categoryID,
		EmbeddedIn: g.embeddedIn,
		Titles:     g.titles,
		Namespaces: g.namespaces,
	}
}
