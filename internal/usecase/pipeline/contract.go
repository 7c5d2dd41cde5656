package pipeline

import (
	"context"

	"github.com/kailas-cloud/lexroute/internal/domain/article"
	"github.com/kailas-cloud/lexroute/internal/domain/corpus"
	"github.com/kailas-cloud/lexroute/internal/domain/ruleset"
	"github.com/kailas-cloud/lexroute/internal/domain/search/result"
)

// Rulesets exposes the loaded rule tables of each version.
type Rulesets interface {
	Rulesets(v corpus.Version) []ruleset.Ruleset
	Metadata(v corpus.Version) article.MetadataIndex
}

// VectorSearcher runs the cached similarity search. It never fails.
type VectorSearcher interface {
	Search(ctx context.Context, query string, limit int, version corpus.Version) []result.Result
}

// ArticleReader fetches full article records by canonical id.
type ArticleReader interface {
	GetMany(ctx context.Context, version corpus.Version, ids []string) (map[string]article.Article, error)
}
