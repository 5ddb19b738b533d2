package main

import (
	"context"
	"fmt"

	"github.com/aescanero/dago-wikibot/internal/queue"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var enqueueCmd = &cobra.Command{
	Use:   "enqueue",
	Short: "Add pages to the shared Redis queue",
	Long: `Fetch pages from the wiki and push them to the Redis list QUEUE_KEY, where
any number of "wikibot run" processes with QUEUE_BACKEND=redis pick them up.

Examples:
  wikibot enqueue --category "Living people"
  wikibot enqueue --embedded-in "Infobox person" --namespace 0
  wikibot enqueue --title "Ada Lovelace" --title "Alan Turing" --clear`,
	RunE: runEnqueue,
}

var (
	enqueueGen   generatorFlags
	enqueueClear bool
)

func init() {
	rootCmd.AddCommand(enqueueCmd)

	enqueueGen.register(enqueueCmd)
	enqueueCmd.Flags().BoolVar(&enqueueClear, "clear", false, "Empty the queue first")
}

func runEnqueue(cmd *cobra.Command, _ []string) error {
	gen := enqueueGen.generator()
	if err := gen.Validate(); err != nil {
		return err
	}

	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	redisClient, err := connectRedis(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = redisClient.Close() }()

	wikiClient, err := connectWiki(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if cfg.WikiUser != "" {
		defer wikiClient.Logout()
	}

	pages, err := wikiClient.Pages(ctx, gen)
	if err != nil {
		return fmt.Errorf("failed to fetch pages: %w", err)
	}

	q := queue.NewRedis(redisClient, cfg.QueueKey, logger)
	if enqueueClear {
		if err := q.Clear(ctx); err != nil {
			return err
		}
	}
	if err := q.Push(ctx, pages...); err != nil {
		return err
	}

	n, err := q.Len(ctx)
	if err != nil {
		return err
	}
	logger.Info("pages enqueued",
		zap.String("queue_key", cfg.QueueKey),
		zap.Int("count", len(pages)),
		zap.Int64("queue_len", n),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "enqueued %d pages, %d waiting\n", len(pages), n)
	return nil
}
