package vector

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/lexroute/internal/domain"
	"github.com/kailas-cloud/lexroute/internal/domain/article"
	"github.com/kailas-cloud/lexroute/internal/domain/corpus"
	"github.com/kailas-cloud/lexroute/internal/domain/search/result"
	"github.com/kailas-cloud/lexroute/internal/metrics"
)

func fmtKey(vec []float32, limit int, v corpus.Version) string {
	return fmt.Sprintf("%v|%d|%s", vec, limit, v)
}

func hits() []result.Result {
	return []result.Result{
		result.New("412", 0.95, result.Vector, 1, article.TypeCalculation),
		result.New("65", 0.71, result.Vector, 15, article.TypeProcedure),
		result.New("9", 0.42, result.Vector, 100, article.TypeApplication),
	}
}

func TestSearch_FiltersBelowThreshold(t *testing.T) {
	emb := &mockEmbedder{vec: []float32{0.1, 0.2}}
	srch := &mockSearcher{hits: hits()}
	svc := New(emb, srch, nil, Config{Threshold: 0.7})

	got := svc.Search(context.Background(), "taux", 10, "2025")
	if len(got) != 2 {
		t.Fatalf("expected 2 results above threshold, got %d", len(got))
	}
	if got[0].ArticleID() != "412" || got[1].ArticleID() != "65" {
		t.Errorf("unexpected order")
	}
	if srch.lastK != 10 || srch.lastV != "2025" {
		t.Errorf("unexpected knn args k=%d v=%s", srch.lastK, srch.lastV)
	}
}

func TestSearch_CacheIdempotence(t *testing.T) {
	emb := &mockEmbedder{vec: []float32{0.1, 0.2}}
	srch := &mockSearcher{hits: hits()}
	cache := newMemCache()
	svc := New(emb, srch, cache, Config{Threshold: 0.7})

	first := svc.Search(context.Background(), "taux", 10, "2025")
	second := svc.Search(context.Background(), "taux", 10, "2025")

	if srch.calls != 1 {
		t.Errorf("expected 1 KNN call, got %d", srch.calls)
	}
	if cache.puts != 1 {
		t.Errorf("expected 1 cache write, got %d", cache.puts)
	}
	if len(first) != len(second) {
		t.Fatalf("cached result differs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("result %d differs", i)
		}
	}
}

func TestSearch_CacheKeyIncludesVersionAndLimit(t *testing.T) {
	emb := &mockEmbedder{vec: []float32{0.1}}
	srch := &mockSearcher{hits: hits()}
	svc := New(emb, srch, newMemCache(), Config{Threshold: 0.7})

	svc.Search(context.Background(), "q", 10, "2025")
	svc.Search(context.Background(), "q", 10, "2013")
	svc.Search(context.Background(), "q", 5, "2025")

	if srch.calls != 3 {
		t.Errorf("expected 3 KNN calls, got %d", srch.calls)
	}
}

func TestSearch_EmbeddingFailureDegrades(t *testing.T) {
	before := testutil.ToFloat64(metrics.SignalDegradedTotal.WithLabelValues(SignalEmbedding))
	emb := &mockEmbedder{err: domain.ErrEmbeddingProviderError}
	srch := &mockSearcher{hits: hits()}
	svc := New(emb, srch, newMemCache(), Config{Threshold: 0.7})

	got := svc.Search(context.Background(), "q", 10, "2025")
	if len(got) != 0 {
		t.Errorf("expected empty result, got %d", len(got))
	}
	if srch.calls != 0 {
		t.Error("KNN must not run without an embedding")
	}
	if after := testutil.ToFloat64(metrics.SignalDegradedTotal.WithLabelValues(SignalEmbedding)); after != before+1 {
		t.Errorf("expected degradation to be counted")
	}
}

func TestSearch_StoreFailureDegrades(t *testing.T) {
	emb := &mockEmbedder{vec: []float32{1}}
	srch := &mockSearcher{err: errors.New("connection refused")}
	cache := newMemCache()
	svc := New(emb, srch, cache, Config{Threshold: 0.7})

	if got := svc.Search(context.Background(), "q", 10, "2025"); len(got) != 0 {
		t.Errorf("expected empty result, got %d", len(got))
	}
	if cache.puts != 0 {
		t.Error("failed searches must not be cached")
	}
}

func TestSearch_EmptyInputs(t *testing.T) {
	emb := &mockEmbedder{vec: []float32{1}}
	svc := New(emb, &mockSearcher{}, nil, Config{})
	if svc.Search(context.Background(), "", 10, "2025") != nil {
		t.Error("expected nil for empty query")
	}
	if svc.Search(context.Background(), "q", 0, "2025") != nil {
		t.Error("expected nil for zero limit")
	}
	if emb.calls != 0 {
		t.Error("provider must not be called")
	}
}

func TestSearch_SlowWarning(t *testing.T) {
	emb := &mockEmbedder{vec: []float32{1}}
	svc := New(emb, &mockSearcher{}, nil, Config{SlowThreshold: 500 * time.Millisecond})

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	svc.now = func() time.Time {
		calls++
		if calls == 1 {
			return base
		}
		return base.Add(800 * time.Millisecond)
	}

	before := testutil.ToFloat64(metrics.VectorSearchSlowTotal.WithLabelValues("2025"))
	svc.Search(context.Background(), "q", 10, "2025")
	if after := testutil.ToFloat64(metrics.VectorSearchSlowTotal.WithLabelValues("2025")); after != before+1 {
		t.Errorf("expected slow search to be counted")
	}
}
