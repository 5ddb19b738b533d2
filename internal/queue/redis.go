package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aescanero/dago-wikibot/internal/wiki"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis is a queue shared by every bot process pointed at the same list key.
// Pages are stored as JSON and taken in push order.
type Redis struct {
	client *redis.Client
	key    string
	logger *zap.Logger
}

// NewRedis creates a queue on the list key.
func NewRedis(client *redis.Client, key string, logger *zap.Logger) *Redis {
	return &Redis{
		client: client,
		key:    key,
		logger: logger,
	}
}

// Push appends pages as JSON to the tail of the list in one RPUSH.
func (r *Redis) Push(ctx context.Context, pages ...wiki.Page) error {
	if len(pages) == 0 {
		return nil
	}

	values := make([]interface{}, len(pages))
	for i, p := range pages {
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("failed to marshal page %s: %w", p.Title, err)
		}
		values[i] = string(data)
	}

	if err := r.client.RPush(ctx, r.key, values...).Err(); err != nil {
		return fmt.Errorf("failed to push pages: %w", err)
	}

	r.logger.Debug("pages queued",
		zap.String("queue_key", r.key),
		zap.Int("count", len(pages)),
	)
	return nil
}

// Pop takes the oldest page. An entry that does not decode is logged and
// skipped.
func (r *Redis) Pop(ctx context.Context) (wiki.Page, bool, error) {
	for {
		data, err := r.client.LPop(ctx, r.key).Result()
		if errors.Is(err, redis.Nil) {
			return wiki.Page{}, false, nil
		}
		if err != nil {
			return wiki.Page{}, false, fmt.Errorf("failed to pop page: %w", err)
		}

		var p wiki.Page
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			r.logger.Error("dropping undecodable queue entry",
				zap.String("queue_key", r.key),
				zap.Error(err),
			)
			continue
		}
		return p, true, nil
	}
}

// Len returns the length of the list.
func (r *Redis) Len(ctx context.Context) (int64, error) {
	n, err := r.client.LLen(ctx, r.key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read queue length: %w", err)
	}
	return n, nil
}

// Clear removes every queued page.
func (r *Redis) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("failed to clear queue: %w", err)
	}
	return nil
}
