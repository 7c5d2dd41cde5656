// Package pipeline runs hybrid retrieval for one corpus version: lexical
// matching, routing rules and vector search, fused into one ranked list.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexroute/internal/domain"
	"github.com/kailas-cloud/lexroute/internal/domain/article"
	"github.com/kailas-cloud/lexroute/internal/domain/corpus"
	"github.com/kailas-cloud/lexroute/internal/domain/search/result"
	"github.com/kailas-cloud/lexroute/internal/logger"
	"github.com/kailas-cloud/lexroute/internal/metrics"
	"github.com/kailas-cloud/lexroute/internal/usecase/fusion"
	"github.com/kailas-cloud/lexroute/internal/usecase/keyword"
	"github.com/kailas-cloud/lexroute/internal/usecase/routing"
)

// SignalArticles names the evidence lookup in degradation metrics.
const SignalArticles = "articles"

// Retrieval is the ranked evidence of one version.
type Retrieval struct {
	Version  corpus.Version
	Results  []result.Result
	Override *routing.Override
}

// Evidence is a ranked result together with its article text.
type Evidence struct {
	Result  result.Result
	Article article.Article
	// Resolved is false when the article record was unavailable and only
	// rule-table metadata could be attached.
	Resolved bool
}

// Service is the per-version retrieval pipeline.
type Service struct {
	editions corpus.Editions
	rules    Rulesets
	matcher  *keyword.Matcher
	vector   VectorSearcher
	articles ArticleReader
}

// New creates a retrieval pipeline. articles may be nil.
func New(
	editions corpus.Editions, rules Rulesets, matcher *keyword.Matcher,
	vector VectorSearcher, articles ArticleReader,
) *Service {
	return &Service{editions: editions, rules: rules, matcher: matcher, vector: vector, articles: articles}
}

// Retrieve ranks the provisions of version relevant to query. Only an
// unknown version is an error; failing providers shrink the result instead.
func (s *Service) Retrieve(ctx context.Context, query string, version corpus.Version, limit int) (Retrieval, error) {
	if !s.editions.Has(version) {
		return Retrieval{}, fmt.Errorf("%w: %q", domain.ErrUnknownVersion, version)
	}

	sets := s.rules.Rulesets(version)
	matches := s.matcher.Match(query, sets)

	var override *routing.Override
	if o, ok := routing.Evaluate(query, sets); ok {
		override = &o
		metrics.RoutingOverridesTotal.WithLabelValues(string(version), string(o.Kind)).Inc()
		logger.FromContext(ctx).Debug("Routing override",
			zap.String("version", string(version)),
			zap.String("rule_id", o.RuleID),
			zap.String("article_id", o.ArticleID),
		)
	}

	var vec []result.Result
	if s.vector != nil {
		vec = s.vector.Search(ctx, query, limit, version)
	}

	return Retrieval{
		Version:  version,
		Results:  fusion.Fuse(matches, vec, override, s.rules.Metadata(version), limit),
		Override: override,
	}, nil
}

// Evidence attaches article records to ranked results, preserving order.
// Missing records fall back to rule-table metadata.
func (s *Service) Evidence(ctx context.Context, r Retrieval) []Evidence {
	if len(r.Results) == 0 {
		return nil
	}

	ids := make([]string, len(r.Results))
	for i := range r.Results {
		ids[i] = r.Results[i].ArticleID()
	}

	var records map[string]article.Article
	if s.articles != nil {
		var err error
		records, err = s.articles.GetMany(ctx, r.Version, ids)
		if err != nil {
			metrics.SignalDegradedTotal.WithLabelValues(SignalArticles).Inc()
			logger.FromContext(ctx).Warn("Retrieval signal degraded to empty",
				zap.String("signal", SignalArticles),
				zap.String("version", string(r.Version)),
				zap.Error(err),
			)
		}
	}

	meta := s.rules.Metadata(r.Version)
	out := make([]Evidence, 0, len(r.Results))
	for _, res := range r.Results {
		if a, ok := records[res.ArticleID()]; ok {
			out = append(out, Evidence{Result: res, Article: a, Resolved: true})
			continue
		}
		out = append(out, Evidence{Result: res, Article: fromMetadata(meta.Lookup(res.ArticleID()), r.Version)})
	}
	return out
}

func fromMetadata(m article.Metadata, v corpus.Version) article.Article {
	numero := m.Numero
	if numero == "" {
		numero = m.ID
	}
	return article.Article{
		ID:       m.ID,
		Ref:      article.Ref{Numero: numero, Version: v, Tome: m.Tome},
		Title:    m.Title,
		Section:  m.Section,
		Priority: m.EffectivePriority(),
		Type:     m.EffectiveType(),
	}
}
