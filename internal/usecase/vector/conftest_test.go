package vector

import (
	"context"
	"sync"

	"github.com/kailas-cloud/lexroute/internal/domain"
	"github.com/kailas-cloud/lexroute/internal/domain/corpus"
	"github.com/kailas-cloud/lexroute/internal/domain/search/result"
)

type mockEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec}, nil
}

type mockSearcher struct {
	hits  []result.Result
	err   error
	calls int
	lastK int
	lastV corpus.Version
}

func (m *mockSearcher) SearchKNN(_ context.Context, v corpus.Version, _ []float32, k int) ([]result.Result, error) {
	m.calls++
	m.lastK, m.lastV = k, v
	return m.hits, m.err
}

// memCache stores entries synchronously so tests need no waiting.
type memCache struct {
	mu      sync.Mutex
	entries map[string][]result.Result
	puts    int
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]result.Result{}}
}

func (c *memCache) Key(vec []float32, limit int, v corpus.Version) string {
	return fmtKey(vec, limit, v)
}

func (c *memCache) Get(_ context.Context, key string) ([]result.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.entries[key]
	return r, ok
}

func (c *memCache) PutAsync(key string, results []result.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.puts++
	c.entries[key] = results
}
