// Package articles resolves article ids to full corpus records.
package articles

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/lexroute/internal/domain/article"
	"github.com/kailas-cloud/lexroute/internal/domain/corpus"
	"github.com/kailas-cloud/lexroute/internal/repository/vectorstore"
)

// store is the consumer interface for article hashes (ISP).
type store interface {
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
}

// Repo implements usecase/pipeline.ArticleReader.
type Repo struct {
	store     store
	keyPrefix string
}

// New creates an article repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix}
}

// GetMany fetches the articles of version with the given ids in one pipelined
// round-trip. Ids without a stored hash are absent from the returned map.
func (r *Repo) GetMany(ctx context.Context, version corpus.Version, ids []string) (map[string]article.Article, error) {
	if len(ids) == 0 {
		return map[string]article.Article{}, nil
	}

	prefix := vectorstore.ArticleKeyPrefix(r.keyPrefix, version)
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = prefix + id
	}

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("get articles %s: %w", version, err)
	}

	out := make(map[string]article.Article, len(ids))
	for i, fields := range hashes {
		if len(fields) == 0 {
			continue
		}
		out[ids[i]] = fromHash(ids[i], version, fields)
	}
	return out, nil
}

func fromHash(id string, version corpus.Version, f map[string]string) article.Article {
	a := article.Article{
		ID:       id,
		Ref:      article.Ref{Numero: f["numero"], Version: version, Tome: f["tome"]},
		Title:    f["title"],
		Body:     f["body"],
		Section:  f["section"],
		Keywords: splitKeywords(f["keywords"]),
		Priority: article.DefaultPriority,
		Type:     article.TypeApplication,
	}
	if a.Ref.Numero == "" {
		a.Ref.Numero = id
	}
	if p, err := strconv.Atoi(f["priority"]); err == nil && p >= 0 {
		a.Priority = p
	}
	if t := article.Type(f["type"]); t.IsValid() {
		a.Type = t
	}
	return a
}

func splitKeywords(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
