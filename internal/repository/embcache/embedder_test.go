package embcache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lexroute/internal/domain"
)

func TestEmbed_CacheMiss(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:    []float32{0.1, 0.2, 0.3},
		PromptTokens: 10,
		TotalTokens:  10,
	}}
	ce, ms := newTestCachedEmbedder(t, inner)

	var setKey string
	var setTTL time.Duration
	ms.setFn = func(_ context.Context, key string, _ []byte, ttl time.Duration) error {
		setKey, setTTL = key, ttl
		return nil
	}

	result, err := ce.Embed(context.Background(), "taux de la tva")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 || result.Embedding[0] != 0.1 {
		t.Fatalf("unexpected vector: %v", result.Embedding)
	}
	if result.TotalTokens != 10 {
		t.Errorf("expected TotalTokens=10, got %d", result.TotalTokens)
	}
	if !strings.HasPrefix(setKey, "lexroute:emb_cache:test-model:") {
		t.Errorf("unexpected cache key %q", setKey)
	}
	if setTTL != time.Hour {
		t.Errorf("expected ttl 1h, got %s", setTTL)
	}
}

func TestEmbed_CacheHit(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{9}}}
	ce, ms := newTestCachedEmbedder(t, inner)

	cached := vectorToBytes([]float32{0.5, 0.25})
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) { return cached, nil }
	ms.setFn = func(_ context.Context, _ string, _ []byte, _ time.Duration) error {
		t.Fatal("SET must not be called on hit")
		return nil
	}

	result, err := ce.Embed(context.Background(), "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 0 {
		t.Errorf("inner embedder called %d times on hit", inner.calls)
	}
	if len(result.Embedding) != 2 || result.Embedding[1] != 0.25 {
		t.Errorf("unexpected vector: %v", result.Embedding)
	}
	if result.TotalTokens != 0 {
		t.Errorf("expected 0 tokens on hit, got %d", result.TotalTokens)
	}
}

func TestEmbed_StoreErrorFallsThrough(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	ce, ms := newTestCachedEmbedder(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) { return nil, errors.New("conn reset") }
	ms.setFn = func(_ context.Context, _ string, _ []byte, _ time.Duration) error { return errors.New("conn reset") }

	result, err := ce.Embed(context.Background(), "q")
	if err != nil {
		t.Fatalf("cache failures must not fail the embed: %v", err)
	}
	if inner.calls != 1 || len(result.Embedding) != 1 {
		t.Errorf("expected inner call, got calls=%d result=%v", inner.calls, result.Embedding)
	}
}

func TestEmbed_CorruptCacheEntry(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	ce, ms := newTestCachedEmbedder(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) { return []byte{1, 2, 3}, nil }

	if _, err := ce.Embed(context.Background(), "q"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("expected inner call on corrupt entry, got %d", inner.calls)
	}
}

func TestEmbed_InnerError(t *testing.T) {
	inner := &mockEmbedder{err: domain.ErrEmbeddingProviderError}
	ce, _ := newTestCachedEmbedder(t, inner)

	_, err := ce.Embed(context.Background(), "q")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestEmbed_CountsHitsAndMisses(t *testing.T) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_emb_cache_total"}, []string{"result"})
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}

	stored := map[string][]byte{}
	ms := &mockKVStore{
		getFn: func(_ context.Context, key string) ([]byte, error) {
			if v, ok := stored[key]; ok {
				return v, nil
			}
			return nil, nil
		},
		setFn: func(_ context.Context, key string, value []byte, _ time.Duration) error {
			stored[key] = value
			return nil
		},
	}
	ce := New(inner, ms, "p:", "m", 0, counter, zap.NewNop())

	for range 3 {
		if _, err := ce.Embed(context.Background(), "same"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("miss")); got != 1 {
		t.Errorf("expected 1 miss, got %f", got)
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("hit")); got != 2 {
		t.Errorf("expected 2 hits, got %f", got)
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 provider call, got %d", inner.calls)
	}
}

func TestCacheKey_DependsOnModel(t *testing.T) {
	a := New(nil, nil, "p:", "model-a", 0, nil, zap.NewNop())
	b := New(nil, nil, "p:", "model-b", 0, nil, zap.NewNop())
	if a.cacheKey("x") == b.cacheKey("x") {
		t.Error("cache keys must differ across models")
	}
	if a.cacheKey("x") != a.cacheKey("x") {
		t.Error("cache key must be stable")
	}
}
