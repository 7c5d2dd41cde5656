package vector

import (
	"context"

	"github.com/kailas-cloud/lexroute/internal/domain"
	"github.com/kailas-cloud/lexroute/internal/domain/corpus"
	"github.com/kailas-cloud/lexroute/internal/domain/search/result"
)

// Embedder vectorizes the query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Searcher runs KNN over one version partition.
type Searcher interface {
	SearchKNN(ctx context.Context, version corpus.Version, vector []float32, k int) ([]result.Result, error)
}

// ResultCache memoizes search results.
type ResultCache interface {
	Key(vector []float32, limit int, version corpus.Version) string
	Get(ctx context.Context, key string) ([]result.Result, bool)
	PutAsync(key string, results []result.Result)
}
