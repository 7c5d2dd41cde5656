// Package vector runs similarity search for one corpus version. It never
// fails: provider or store outages degrade the vector signal to an empty list.
package vector

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexroute/internal/domain/corpus"
	"github.com/kailas-cloud/lexroute/internal/domain/search/result"
	"github.com/kailas-cloud/lexroute/internal/logger"
	"github.com/kailas-cloud/lexroute/internal/metrics"
)

// Signal names reported by degradation metrics and logs.
const (
	SignalEmbedding = "embedding"
	SignalVector    = "vector"
)

// Config tunes the search.
type Config struct {
	// Threshold drops hits with a lower cosine similarity.
	Threshold float64
	// SlowThreshold triggers a latency warning when exceeded.
	SlowThreshold time.Duration
}

// Service is the cached vector search.
type Service struct {
	embed    Embedder
	searcher Searcher
	cache    ResultCache
	cfg      Config
	now      func() time.Time
}

// New creates a vector search service. cache may be nil.
func New(embed Embedder, searcher Searcher, cache ResultCache, cfg Config) *Service {
	return &Service{embed: embed, searcher: searcher, cache: cache, cfg: cfg, now: time.Now}
}

// Search returns up to limit articles of version at or above the similarity
// threshold, most similar first. A repeated query is answered from the cache
// without contacting the vector store.
func (s *Service) Search(ctx context.Context, query string, limit int, version corpus.Version) []result.Result {
	if limit <= 0 || query == "" {
		return nil
	}

	start := s.now()
	cacheState := "miss"
	defer func() {
		s.observe(ctx, version, cacheState, s.now().Sub(start))
	}()

	emb, err := s.embed.Embed(ctx, query)
	if err != nil || len(emb.Embedding) == 0 {
		s.degrade(ctx, SignalEmbedding, version, err)
		return nil
	}

	var key string
	if s.cache != nil {
		key = s.cache.Key(emb.Embedding, limit, version)
		if cached, ok := s.cache.Get(ctx, key); ok {
			cacheState = "hit"
			return cached
		}
	}

	hits, err := s.searcher.SearchKNN(ctx, version, emb.Embedding, limit)
	if err != nil {
		s.degrade(ctx, SignalVector, version, err)
		return nil
	}

	out := make([]result.Result, 0, len(hits))
	for _, h := range hits {
		if h.Score() >= s.cfg.Threshold {
			out = append(out, h)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}

	if s.cache != nil {
		s.cache.PutAsync(key, out)
	}
	return out
}

func (s *Service) degrade(ctx context.Context, signal string, version corpus.Version, err error) {
	metrics.SignalDegradedTotal.WithLabelValues(signal).Inc()
	fields := []zap.Field{zap.String("signal", signal), zap.String("version", string(version))}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	logger.FromContext(ctx).Warn("Retrieval signal degraded to empty", fields...)
}

func (s *Service) observe(ctx context.Context, version corpus.Version, cacheState string, d time.Duration) {
	metrics.VectorSearchDuration.WithLabelValues(string(version), cacheState).Observe(d.Seconds())
	if s.cfg.SlowThreshold > 0 && d > s.cfg.SlowThreshold {
		metrics.VectorSearchSlowTotal.WithLabelValues(string(version)).Inc()
		logger.FromContext(ctx).Warn("Slow vector search",
			zap.String("version", string(version)),
			zap.String("cache", cacheState),
			zap.Duration("duration", d),
			zap.Duration("threshold", s.cfg.SlowThreshold),
		)
	}
}
