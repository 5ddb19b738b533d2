// Package worker runs a bot task over a queue of pages with a fixed pool of
// workers.
//
// Each worker takes a page, applies the task, saves the new text against the
// revision it was read from and records the outcome in the run report.
// Workers stop when the queue is empty or the run context is cancelled; an
// edit already sent is allowed to finish.
//
//	pool := worker.NewPool(cfg, runID, q, task, wikiClient, log, publisher, logger)
//	if err := pool.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
//	    return err
//	}
//
// Page results can be published to a Redis stream with StreamPublisher, and
// HealthServer serves /health, /ready and /stats.
package worker
