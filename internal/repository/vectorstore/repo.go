// Package vectorstore runs KNN queries against the article index, restricted
// to one corpus version partition.
package vectorstore

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/lexroute/internal/db"
	"github.com/kailas-cloud/lexroute/internal/domain/article"
	"github.com/kailas-cloud/lexroute/internal/domain/corpus"
	"github.com/kailas-cloud/lexroute/internal/domain/search/result"
)

// Stored hash fields read back with every hit.
const (
	fieldVersion  = "version"
	fieldPriority = "priority"
	fieldType     = "type"
)

// store is the consumer interface for vector search (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements usecase/vector.Searcher.
type Repo struct {
	store     store
	indexName string
	keyPrefix string
}

// New creates a vector store repository. Article hashes live under
// "<keyPrefix>article:<version>:<id>".
func New(s store, indexName, keyPrefix string) *Repo {
	return &Repo{store: s, indexName: indexName, keyPrefix: keyPrefix}
}

// SearchKNN returns up to k nearest articles of version, tagged as vector
// matches with their stored priority and type.
func (r *Repo) SearchKNN(
	ctx context.Context, version corpus.Version, vector []float32, k int,
) ([]result.Result, error) {
	q := &db.KNNQuery{
		IndexName:    r.indexName,
		Tags:         []db.TagFilter{{Field: fieldVersion, Value: string(version)}},
		Vector:       vector,
		K:            k,
		ReturnFields: []string{fieldPriority, fieldType},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", version, err)
	}
	return r.parseResults(sr, version), nil
}

func (r *Repo) parseResults(sr *db.SearchResult, version corpus.Version) []result.Result {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}

	prefix := ArticleKeyPrefix(r.keyPrefix, version)
	out := make([]result.Result, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		id, ok := strings.CutPrefix(e.Key, prefix)
		if !ok || id == "" {
			continue // another partition or a foreign key
		}
		out = append(out, result.New(id, e.Score, result.Vector, parsePriority(e.Fields), parseType(e.Fields)))
	}
	return out
}

// ArticleKeyPrefix is the hash key prefix of every article of version.
func ArticleKeyPrefix(keyPrefix string, version corpus.Version) string {
	return keyPrefix + "article:" + string(version) + ":"
}

func parsePriority(fields map[string]string) int {
	if p, err := strconv.Atoi(fields[fieldPriority]); err == nil && p >= 0 {
		return p
	}
	return article.DefaultPriority
}

func parseType(fields map[string]string) article.Type {
	if t := article.Type(fields[fieldType]); t.IsValid() {
		return t
	}
	return article.TypeApplication
}
