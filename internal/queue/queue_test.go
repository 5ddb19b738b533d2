package queue

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/aescanero/dago-wikibot/internal/wiki"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func pages(titles ...string) []wiki.Page {
	out := make([]wiki.Page, len(titles))
	for i, t := range titles {
		out[i] = wiki.Page{Title: t, PageID: int64(i + 1), RevID: int64(100 + i), Wikitext: "{{" + t + "}}"}
	}
	return out
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	q := NewMemory(pages("A", "B")...)
	require.NoError(t, q.Push(ctx, pages("C")...))

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	var got []string
	for {
		p, ok, err := q.Pop(ctx)
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, p.Title)
	}
	assert.Equal(t, []string{"C", "B", "A"}, got)

	_, ok, err := q.Pop(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryPopCanceled(t *testing.T) {
	q := NewMemory(pages("A")...)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok, err := q.Pop(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ok)

	n, _ := q.Len(context.Background())
	assert.Equal(t, int64(1), n)
}

func TestMemoryConcurrentPopTakesEachPageOnce(t *testing.T) {
	ctx := context.Background()
	titles := make([]string, 500)
	for i := range titles {
		titles[i] = uuid.NewString()
	}
	q := NewMemory(pages(titles...)...)

	var (
		mu   sync.Mutex
		seen = make(map[string]int)
		wg   sync.WaitGroup
	)
	for w := 0; w < 10; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				p, ok, err := q.Pop(ctx)
				if err != nil || !ok {
					return
				}
				mu.Lock()
				seen[p.Title]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, len(titles))
	for title, n := range seen {
		assert.Equal(t, 1, n, title)
	}
}

func newTestRedis(t *testing.T) *Redis {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())

	q := NewRedis(client, "wikibot.test."+uuid.NewString(), zap.NewNop())
	t.Cleanup(func() { _ = q.Clear(context.Background()) })
	return q
}

func TestRedis(t *testing.T) {
	q := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, q.Push(ctx, pages("A", "B")...))
	require.NoError(t, q.Push(ctx))

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	p, ok, err := q.Pop(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, pages("A")[0], p)

	p, ok, err = q.Pop(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "B", p.Title)

	_, ok, err = q.Pop(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisSkipsUndecodableEntries(t *testing.T) {
	q := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, q.client.RPush(ctx, q.key, "not json").Err())
	require.NoError(t, q.Push(ctx, pages("A")...))

	p, ok, err := q.Pop(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "A", p.Title)
}
