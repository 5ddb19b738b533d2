package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Page results carried by Event.Result.
const (
	ResultEdited    = "edited"
	ResultUnchanged = "unchanged"
	ResultSkipped   = "skipped"
	ResultDryRun    = "dry_run"
	ResultConflict  = "conflict"
	ResultFailed    = "failed"
)

// Event describes what happened to one page.
type Event struct {
	RunID     string    `json:"run_id"`
	BotID     string    `json:"bot_id"`
	Task      string    `json:"task"`
	Title     string    `json:"page_title"`
	RevID     int64     `json:"rev_id"`
	Result    string    `json:"result"`
	Code      string    `json:"code,omitempty"`
	Summary   string    `json:"summary,omitempty"`
	Templates []string  `json:"templates,omitempty"`
	Changes   []string  `json:"changes,omitempty"`
	Warnings  []string  `json:"warnings,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher sends page events to other services.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	PublishError(ctx context.Context, event Event, cause error) error
}

// StreamPublisher appends events to a Redis stream, and failures to the same
// stream name with an ".errors" suffix. Each entry has one "data" field
// holding the event JSON.
type StreamPublisher struct {
	client *redis.Client
	stream string
	logger *zap.Logger
}

// NewStreamPublisher creates a publisher for stream.
func NewStreamPublisher(client *redis.Client, stream string, logger *zap.Logger) *StreamPublisher {
	return &StreamPublisher{
		client: client,
		stream: stream,
		logger: logger,
	}
}

// ErrorStream returns the name of the stream failures go to.
func (s *StreamPublisher) ErrorStream() string {
	return s.stream + ".errors"
}

// Publish appends a page event to the result stream.
func (s *StreamPublisher) Publish(ctx context.Context, event Event) error {
	if err := s.add(ctx, s.stream, event); err != nil {
		return err
	}

	s.logger.Debug("published page result",
		zap.String("page_title", event.Title),
		zap.String("result", event.Result),
	)
	return nil
}

// PublishError appends a failed page event to the error stream.
func (s *StreamPublisher) PublishError(ctx context.Context, event Event, cause error) error {
	if cause != nil {
		event.Error = cause.Error()
	}
	return s.add(ctx, s.ErrorStream(), event)
}

func (s *StreamPublisher) add(ctx context.Context, stream string, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to publish to stream %s: %w", stream, err)
	}
	return nil
}
