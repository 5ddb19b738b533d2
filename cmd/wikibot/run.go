package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aescanero/dago-wikibot/internal/config"
	"github.com/aescanero/dago-wikibot/internal/eval/cel"
	"github.com/aescanero/dago-wikibot/internal/eval/template"
	"github.com/aescanero/dago-wikibot/internal/queue"
	"github.com/aescanero/dago-wikibot/internal/report"
	"github.com/aescanero/dago-wikibot/internal/tasks"
	"github.com/aescanero/dago-wikibot/internal/wiki"
	"github.com/aescanero/dago-wikibot/internal/wikidata"
	"github.com/aescanero/dago-wikibot/internal/worker"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Apply a task to every page in the queue",
	Long: `Run a pool of WORKERS workers that apply a task file to pages and save
the results. With QUEUE_BACKEND=memory the pages come from the generator
flags; with QUEUE_BACKEND=redis they come from the shared queue, and the
generator flags, if given, add to it first.

On SIGINT or SIGTERM workers stop taking pages, edits in flight finish and
the run report is still published.

Examples:
  wikibot run --task tasks/infobox.yaml --embedded-in "Infobox person"
  DRY_RUN=true wikibot run --task tasks/stamp.yaml --title "Main Page"
  QUEUE_BACKEND=redis wikibot run --task tasks/infobox.yaml`,
	RunE: runRun,
}

var (
	runTaskFile string
	runGen      generatorFlags
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runTaskFile, "task", "", "Task file (overrides TASK_FILE)")
	runGen.register(runCmd)
}

func runRun(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if runTaskFile != "" {
		cfg.TaskFile = runTaskFile
	}
	if cfg.TaskFile == "" {
		return errors.New("a task file is required, set --task or TASK_FILE")
	}

	runID := uuid.NewString()
	logger.Info("starting wikibot",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("bot_id", cfg.BotID),
		zap.String("run_id", runID),
	)
	logger.Info("configuration loaded", zap.String("config", cfg.String()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			logger.Info("shutdown signal received, finishing pages in flight")
			cancel()
		case <-ctx.Done():
		}
	}()

	file, err := tasks.Load(cfg.TaskFile)
	if err != nil {
		return err
	}
	engine := template.NewEngine()
	claims, err := wikidata.NewClient(cfg.WikidataAPIURL, cfg.WikidataSite, cfg.WikiUserAgent, logger)
	if err != nil {
		return err
	}
	task, err := tasks.New(file, cel.NewEvaluator(), engine, logger, tasks.WithClaims(claims))
	if err != nil {
		return err
	}

	wikiClient, err := connectWiki(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if cfg.WikiUser != "" {
		defer wikiClient.Logout()
	}

	var redisClient *redis.Client
	if cfg.UsesRedis() {
		redisClient, err = connectRedis(ctx, cfg, logger)
		switch {
		case err != nil && cfg.QueueBackend == config.QueueRedis:
			return err
		case err != nil:
			logger.Warn("redis unavailable, page results will not be published", zap.Error(err))
			redisClient = nil
		default:
			defer func() { _ = redisClient.Close() }()
		}
	}

	q, err := buildQueue(ctx, cfg, redisClient, wikiClient, logger)
	if err != nil {
		return err
	}

	var publisher worker.Publisher
	if redisClient != nil && cfg.ResultStream != "" {
		publisher = worker.NewStreamPublisher(redisClient, cfg.ResultStream, logger)
	}

	runLog, err := report.New(runID, engine, logger)
	if err != nil {
		return err
	}

	pool := worker.NewPool(cfg, runID, q, task, wikiClient, runLog, publisher, logger)

	healthServer := worker.NewHealthServer(cfg.HealthPort, redisClient, pool.Stats(), logger)
	if err := healthServer.Start(); err != nil {
		return fmt.Errorf("failed to start health server: %w", err)
	}
	defer func() {
		if err := healthServer.Stop(); err != nil {
			logger.Error("failed to stop health server", zap.Error(err))
		}
	}()

	runErr := pool.Run(ctx)
	if errors.Is(runErr, context.Canceled) {
		logger.Warn("run interrupted", zap.String("run_id", runID))
		runErr = nil
	}

	if cfg.ReportEnabled && !cfg.DryRun {
		reportCtx, reportCancel := context.WithTimeout(context.Background(), cfg.EditTimeout)
		defer reportCancel()
		if _, err := runLog.Publish(reportCtx, wikiClient, cfg.ReportPagePrefix); err != nil {
			logger.Error("failed to publish report", zap.Error(err))
		}
	}

	counts := runLog.Counts()
	fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d edited, %d warnings, %d errors\n",
		runID, counts.Successes, counts.Warnings, counts.Errors)
	return runErr
}

// buildQueue returns the page queue for the configured backend, filled from
// the generator flags when they are set.
func buildQueue(ctx context.Context, cfg *config.Config, redisClient *redis.Client, wikiClient *wiki.Client, logger *zap.Logger) (queue.Queue, error) {
	var pages []wiki.Page
	if runGen.isSet() {
		var err error
		pages, err = wikiClient.Pages(ctx, runGen.generator())
		if err != nil {
			return nil, fmt.Errorf("failed to fetch pages: %w", err)
		}
		logger.Info("pages fetched", zap.Int("count", len(pages)))
	}

	if cfg.QueueBackend != config.QueueRedis {
		if !runGen.isSet() {
			return nil, errors.New("the memory queue needs --category, --category-id, --embedded-in or --title")
		}
		return queue.NewMemory(pages...), nil
	}

	q := queue.NewRedis(redisClient, cfg.QueueKey, logger)
	if len(pages) > 0 {
		if err := q.Push(ctx, pages...); err != nil {
			return nil, err
		}
	}
	return q, nil
}
