package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aescanero/dago-wikibot/internal/config"
	"github.com/aescanero/dago-wikibot/internal/queue"
	"github.com/aescanero/dago-wikibot/internal/tasks"
	"github.com/aescanero/dago-wikibot/internal/wiki"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Applier turns a page into a change. *tasks.Task is the production
// implementation.
type Applier interface {
	Name() string
	Apply(ctx context.Context, page wiki.Page) (tasks.Change, error)
}

// Reporter records per-page outcomes. *report.Log is the production
// implementation.
type Reporter interface {
	Error(title, message string)
	Warning(title, message string)
	Success(title, message string)
}

// Pool runs a fixed number of workers over a shared queue.
type Pool struct {
	id          string
	runID       string
	size        int
	dryRun      bool
	editTimeout time.Duration

	queue     queue.Queue
	task      Applier
	sink      wiki.Sink
	report    Reporter
	publisher Publisher
	stats     *Stats
	logger    *zap.Logger
}

// NewPool creates a pool. publisher may be nil.
func NewPool(
	cfg *config.Config,
	runID string,
	q queue.Queue,
	task Applier,
	sink wiki.Sink,
	report Reporter,
	publisher Publisher,
	logger *zap.Logger,
) *Pool {
	return &Pool{
		id:          cfg.BotID,
		runID:       runID,
		size:        cfg.Workers,
		dryRun:      cfg.DryRun,
		editTimeout: cfg.EditTimeout,
		queue:       q,
		task:        task,
		sink:        sink,
		report:      report,
		publisher:   publisher,
		stats:       &Stats{},
		logger:      logger,
	}
}

// Stats returns the live counters of the pool.
func (p *Pool) Stats() *Stats {
	return p.stats
}

// Run starts the workers and waits until the queue is drained or ctx ends.
// Cancellation stops workers from taking new pages; edits already sent are
// allowed to finish. Run returns ctx.Err() when it was cancelled and the
// first queue error otherwise.
func (p *Pool) Run(ctx context.Context) error {
	p.logger.Info("starting worker pool",
		zap.String("bot_id", p.id),
		zap.String("run_id", p.runID),
		zap.String("task", p.task.Name()),
		zap.Int("workers", p.size),
		zap.Bool("dry_run", p.dryRun),
	)
	started := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < p.size; i++ {
		workerID := fmt.Sprintf("%s-%d", p.id, i)
		g.Go(func() error {
			return p.work(gctx, workerID)
		})
	}
	err := g.Wait()

	stats := p.stats.Snapshot()
	p.logger.Info("worker pool stopped",
		zap.String("run_id", p.runID),
		zap.Duration("duration", time.Since(started)),
		zap.Int64("claimed", stats.Claimed),
		zap.Int64("edited", stats.Edited),
		zap.Int64("unchanged", stats.Unchanged),
		zap.Int64("skipped", stats.Skipped),
		zap.Int64("failed", stats.Failed),
	)

	if err != nil {
		return err
	}
	return ctx.Err()
}

// work takes pages until the queue is empty or ctx ends.
func (p *Pool) work(ctx context.Context, workerID string) error {
	logger := p.logger.With(zap.String("worker_id", workerID))
	logger.Debug("worker started")

	for {
		if ctx.Err() != nil {
			logger.Debug("worker cancelled")
			return nil
		}

		page, ok, err := p.queue.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to take page from queue: %w", err)
		}
		if !ok {
			logger.Debug("queue empty, worker finished")
			return nil
		}

		p.stats.claimed.Add(1)
		p.process(ctx, logger, page)
	}
}

// process runs one page through the task and writes the result.
func (p *Pool) process(ctx context.Context, logger *zap.Logger, page wiki.Page) {
	logger = logger.With(zap.String("page_title", page.Title), zap.Int64("rev_id", page.RevID))
	event := Event{
		RunID: p.runID,
		BotID: p.id,
		Task:  p.task.Name(),
		Title: page.Title,
		RevID: page.RevID,
	}

	if !page.Complete() {
		logger.Warn("skipping incomplete page")
		p.stats.skipped.Add(1)
		p.report.Warning(page.Title, "page has no title, revision or text")
		event.Result = ResultSkipped
		p.publish(ctx, logger, event)
		return
	}

	change, err := p.task.Apply(ctx, page)
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			logger.Info("page abandoned on shutdown")
			return
		}
		logger.Error("failed to apply task", zap.Error(err))
		p.stats.failed.Add(1)
		p.report.Error(page.Title, err.Error())
		event.Result = ResultFailed
		p.publishError(ctx, logger, event, err)
		return
	}

	for _, w := range change.Warnings {
		p.report.Warning(page.Title, w)
	}
	event.Templates = change.Templates
	event.Changes = change.Changes
	event.Warnings = change.Warnings

	if !change.Changed() {
		logger.Debug("page unchanged")
		p.stats.unchanged.Add(1)
		event.Result = ResultUnchanged
		p.publish(ctx, logger, event)
		return
	}
	event.Summary = change.Summary

	if p.dryRun {
		logger.Info("dry run, not saving", zap.String("summary", change.Summary))
		p.stats.skipped.Add(1)
		event.Result = ResultDryRun
		p.publish(ctx, logger, event)
		return
	}

	// The edit outlives cancellation so a page is never left half handled.
	editCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.editTimeout)
	defer cancel()

	result, err := p.sink.Edit(editCtx, wiki.EditRequest{
		Title:     page.Title,
		Text:      change.NewText,
		Summary:   change.Summary,
		BaseRevID: page.RevID,
		NoCreate:  true,
		Minor:     change.Minor,
		Bot:       true,
	})
	event.Code = result.Code

	switch {
	case err == nil && result.Result == wiki.ResultSuccess:
		logger.Info("page edited", zap.String("summary", change.Summary))
		p.stats.edited.Add(1)
		p.report.Success(page.Title, change.Summary)
		event.Result = ResultEdited
		p.publish(ctx, logger, event)
	case err == nil && result.Result == wiki.ResultNoChange:
		logger.Info("edit made no change")
		p.stats.unchanged.Add(1)
		event.Result = ResultUnchanged
		p.publish(ctx, logger, event)
	case result.Result == wiki.ResultConflict || errors.Is(err, wiki.ErrEditConflict):
		logger.Warn("edit conflict", zap.Error(err))
		p.stats.failed.Add(1)
		p.report.Error(page.Title, fmt.Sprintf("edit conflict: the page changed after revision %d", page.RevID))
		event.Result = ResultConflict
		p.publishError(ctx, logger, event, err)
	default:
		if err == nil {
			err = fmt.Errorf("edit failed with code %q", result.Code)
		}
		logger.Error("failed to edit page", zap.String("code", result.Code), zap.Error(err))
		p.stats.failed.Add(1)
		p.report.Error(page.Title, err.Error())
		event.Result = ResultFailed
		p.publishError(ctx, logger, event, err)
	}
}

func (p *Pool) publish(ctx context.Context, logger *zap.Logger, event Event) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		logger.Warn("failed to publish result", zap.Error(err))
	}
}

func (p *Pool) publishError(ctx context.Context, logger *zap.Logger, event Event, cause error) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.PublishError(context.WithoutCancel(ctx), event, cause); err != nil {
		logger.Warn("failed to publish error", zap.Error(err))
	}
}
