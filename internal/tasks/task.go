package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/aescanero/dago-wikibot/internal/eval/cel"
	"github.com/aescanero/dago-wikibot/internal/eval/template"
	"github.com/aescanero/dago-wikibot/internal/wiki"
	"github.com/aescanero/dago-wikibot/internal/wikidata"
	"go.uber.org/zap"
)

// DefaultSummary is used when a task file sets none.
const DefaultSummary = `bot: {{join changes ", "}}`

// ClaimsSource loads Wikidata claims for a page.
type ClaimsSource interface {
	ClaimsForPage(ctx context.Context, title, text, param string) (string, wikidata.Claims, error)
	SiteLink(ctx context.Context, entity string) (string, error)
}

// Change is the outcome of applying a task to one page.
type Change struct {
	Title   string
	OldText string
	NewText string
	Summary string
	Minor   bool

	// Templates are the names of the templates the rules matched.
	Templates []string
	Changes   []string
	Warnings  []string
}

// Changed reports whether the page text differs from what was read.
func (c Change) Changed() bool {
	return c.NewText != c.OldText
}

// Task applies the rules of a task file to pages. It is safe for concurrent
// use.
type Task struct {
	file      *File
	evaluator *cel.Evaluator
	engine    *template.Engine
	claims    ClaimsSource
	now       func() time.Time
	logger    *zap.Logger
}

// Option configures a Task.
type Option func(*Task)

// WithClaims sets the Wikidata source used by fill actions.
func WithClaims(src ClaimsSource) Option {
	return func(t *Task) { t.claims = src }
}

// WithClock replaces time.Now for stamp actions.
func WithClock(now func() time.Time) Option {
	return func(t *Task) { t.now = now }
}

// New checks that the task's expressions compile and builds it.
func New(file *File, evaluator *cel.Evaluator, engine *template.Engine, logger *zap.Logger, opts ...Option) (*Task, error) {
	t := &Task{
		file:      file,
		evaluator: evaluator,
		engine:    engine,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(t)
	}

	if file.Summary == "" {
		file.Summary = DefaultSummary
	}
	if err := engine.ValidateTemplate(file.Summary); err != nil {
		return nil, invalid("summary: %v", err)
	}
	for i, r := range file.Rules {
		if r.When == "" {
			continue
		}
		if err := evaluator.ValidateExpression(r.When); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, invalid("when: %v", err))
		}
	}
	if file.needsClaims() && t.claims == nil {
		return nil, invalid("fill actions need a Wikidata client")
	}

	return t, nil
}

// Name returns the task name.
func (t *Task) Name() string {
	return t.file.Name
}

// Apply runs every rule against the page text and returns the result. Scanner
// errors are returned; rule and action problems become warnings.
func (t *Task) Apply(ctx context.Context, page wiki.Page) (Change, error) {
	change := Change{
		Title:   page.Title,
		OldText: page.Wikitext,
		NewText: page.Wikitext,
		Minor:   t.file.Minor,
	}
	run := &pageRun{task: t, page: page, change: &change}

	for i := range t.file.Rules {
		if err := ctx.Err(); err != nil {
			return change, err
		}
		if err := run.rule(ctx, &t.file.Rules[i]); err != nil {
			return change, fmt.Errorf("failed to apply rule %d to %s: %w", i, page.Title, err)
		}
	}

	if !change.Changed() {
		return change, nil
	}

	summary, err := t.engine.Render(t.file.Summary, map[string]interface{}{
		"task":      t.file.Name,
		"title":     page.Title,
		"templates": change.Templates,
		"changes":   change.Changes,
	})
	if err != nil {
		return change, fmt.Errorf("failed to render summary: %w", err)
	}
	change.Summary = summary
	return change, nil
}
