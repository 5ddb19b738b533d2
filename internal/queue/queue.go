package queue

import (
	"context"
	"sync"

	"github.com/aescanero/dago-wikibot/internal/wiki"
)

// Queue holds pages waiting to be processed. Pop never blocks: it reports
// false once the queue is empty, which tells a worker it is finished.
type Queue interface {
	Push(ctx context.Context, pages ...wiki.Page) error
	Pop(ctx context.Context) (wiki.Page, bool, error)
	Len(ctx context.Context) (int64, error)
}

// Memory is an in-process queue. Pages are taken from the end, last pushed
// first.
type Memory struct {
	mu    sync.Mutex
	pages []wiki.Page
}

// NewMemory returns a queue holding pages.
func NewMemory(pages ...wiki.Page) *Memory {
	return &Memory{pages: append([]wiki.Page(nil), pages...)}
}

// Push appends pages to the stack.
func (m *Memory) Push(_ context.Context, pages ...wiki.Page) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages = append(m.pages, pages...)
	return nil
}

// Pop takes the most recently pushed page. ok is false when the queue is empty.
func (m *Memory) Pop(ctx context.Context) (wiki.Page, bool, error) {
	if err := ctx.Err(); err != nil {
		return wiki.Page{}, false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.pages)
	if n == 0 {
		return wiki.Page{}, false, nil
	}
	p := m.pages[n-1]
	m.pages[n-1] = wiki.Page{}
	m.pages = m.pages[:n-1]
	return p, true, nil
}

// Len returns the number of queued pages.
func (m *Memory) Len(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.pages)), nil
}
