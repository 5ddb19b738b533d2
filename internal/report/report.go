package report

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aescanero/dago-wikibot/internal/eval/template"
	"github.com/aescanero/dago-wikibot/internal/wiki"
	"go.uber.org/zap"
)

// DefaultPage is the report page layout. It sees run_id, started, errors,
// warnings and successes; each entry has title and message.
const DefaultPage = `{{#if errors}}
== Errors ==
{{#each errors}}
* {{wikilink title}}: {{{message}}}
{{/each}}
{{/if}}
{{#if warnings}}
== Warnings ==
{{#each warnings}}
* {{wikilink title}}: {{{message}}}
{{/each}}
{{/if}}
{{#if successes}}
== Successful edits ==
{{#each successes}}
* {{wikilink title}}: {{{message}}}
{{/each}}
{{/if}}
Run {{run_id}}, started {{started}}.
`

// DefaultSummary is the edit summary of the report page.
const DefaultSummary = "bot: run report"

// Entry is one line of the report.
type Entry struct {
	Title   string    `json:"title"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// Counts is the size of each report section.
type Counts struct {
	Errors    int `json:"errors"`
	Warnings  int `json:"warnings"`
	Successes int `json:"successes"`
}

// Empty reports whether nothing was logged.
func (c Counts) Empty() bool {
	return c.Errors == 0 && c.Warnings == 0 && c.Successes == 0
}

// Log collects what happened to each page during a run. It is safe for
// concurrent use.
type Log struct {
	runID   string
	started time.Time
	engine  *template.Engine
	page    string
	summary string
	logger  *zap.Logger

	mu        sync.Mutex
	errors    []Entry
	warnings  []Entry
	successes []Entry
	published bool
}

// Option configures a Log.
type Option func(*Log)

// WithPage replaces DefaultPage.
func WithPage(page string) Option {
	return func(l *Log) { l.page = page }
}

// WithSummary replaces DefaultSummary.
func WithSummary(summary string) Option {
	return func(l *Log) { l.summary = summary }
}

// WithStart sets the run start time, which otherwise is time.Now.
func WithStart(t time.Time) Option {
	return func(l *Log) { l.started = t }
}

// New creates an empty log for one run.
func New(runID string, engine *template.Engine, logger *zap.Logger, opts ...Option) (*Log, error) {
	l := &Log{
		runID:   runID,
		started: time.Now(),
		engine:  engine,
		page:    DefaultPage,
		summary: DefaultSummary,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(l)
	}

	if err := engine.ValidateTemplate(l.page); err != nil {
		return nil, fmt.Errorf("invalid report page template: %w", err)
	}
	return l, nil
}

// RunID returns the identifier of the run.
func (l *Log) RunID() string {
	return l.runID
}

func (l *Log) Error(title, message string) {
	l.add(&l.errors, title, message)
}

func (l *Log) Warning(title, message string) {
	l.add(&l.warnings, title, message)
}

func (l *Log) Success(title, message string) {
	l.add(&l.successes, title, message)
}

func (l *Log) add(section *[]Entry, title, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*section = append(*section, Entry{Title: title, Message: message, Time: time.Now()})
}

// Counts returns the number of entries in each section.
func (l *Log) Counts() Counts {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Counts{
		Errors:    len(l.errors),
		Warnings:  len(l.warnings),
		Successes: len(l.successes),
	}
}

// Entries returns copies of the three sections.
func (l *Log) Entries() (errors, warnings, successes []Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.errors...),
		append([]Entry(nil), l.warnings...),
		append([]Entry(nil), l.successes...)
}

// Render builds the report page text.
func (l *Log) Render() (string, error) {
	errs, warnings, successes := l.Entries()
	return l.engine.Render(l.page, map[string]interface{}{
		"run_id":    l.runID,
		"started":   l.started.UTC().Format(time.RFC3339),
		"errors":    entryData(errs),
		"warnings":  entryData(warnings),
		"successes": entryData(successes),
	})
}

// entryData gives entries the lowercase keys the page template uses.
func entryData(entries []Entry) []map[string]string {
	if len(entries) == 0 {
		return nil
	}
	out := make([]map[string]string, len(entries))
	for i, e := range entries {
		out[i] = map[string]string{"title": e.Title, "message": e.Message}
	}
	return out
}

// PageTitle is the report page for this run under prefix.
func (l *Log) PageTitle(prefix string) string {
	return prefix + l.started.UTC().Format("2006-01-02T15:04:05Z") + " " + l.runID
}

// Publish writes the report page under prefix. It does nothing when the log
// is empty or was already published, and reports whether a page was written.
func (l *Log) Publish(ctx context.Context, sink wiki.Sink, prefix string) (bool, error) {
	l.mu.Lock()
	if l.published {
		l.mu.Unlock()
		return false, nil
	}
	l.published = true
	l.mu.Unlock()

	counts := l.Counts()
	if counts.Empty() {
		l.logger.Info("report is empty, not publishing", zap.String("run_id", l.runID))
		return false, nil
	}

	text, err := l.Render()
	if err != nil {
		return false, fmt.Errorf("failed to render report: %w", err)
	}

	title := l.PageTitle(prefix)
	if _, err := sink.Edit(ctx, wiki.EditRequest{
		Title:   title,
		Text:    text,
		Summary: l.summary,
		Bot:     true,
	}); err != nil {
		return false, fmt.Errorf("failed to publish report: %w", err)
	}

	l.logger.Info("report published",
		zap.String("run_id", l.runID),
		zap.String("page_title", title),
		zap.Int("errors", counts.Errors),
		zap.Int("warnings", counts.Warnings),
		zap.Int("successes", counts.Successes),
	)
	return true, nil
}
