// Package answer orchestrates a full question: version routing, per-edition
// retrieval, answer generation and, for comparisons, synthesis across both
// editions.
package answer

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/lexroute/internal/domain"
	"github.com/kailas-cloud/lexroute/internal/domain/corpus"
	domintent "github.com/kailas-cloud/lexroute/internal/domain/intent"
	"github.com/kailas-cloud/lexroute/internal/logger"
	"github.com/kailas-cloud/lexroute/internal/metrics"
	"github.com/kailas-cloud/lexroute/internal/usecase/intent"
	"github.com/kailas-cloud/lexroute/internal/usecase/pipeline"
)

// SignalCompletion names the completion provider in degradation metrics.
const SignalCompletion = "completion"

// DefaultLimit is the evidence count per edition when none is configured.
const DefaultLimit = 10

// Config holds prompts and limits.
type Config struct {
	SystemPrompt     string
	ComparisonPrompt string
	Limit            int
	// MaxQueryLength is counted in runes. Zero disables the check.
	MaxQueryLength int
}

// Branch is the answer of one edition.
type Branch struct {
	Version  corpus.Version
	Text     string
	Evidence []pipeline.Evidence
}

// Answer is the outcome of Ask.
type Answer struct {
	Text     string
	Intent   domintent.Intent
	Reason   string
	Versions []corpus.Version
	// Citations lists evidence in edition order: older branch first for comparisons.
	Citations []Citation
	// Branches holds the per-edition answers of a comparison.
	Branches []Branch
	// Degraded is set when the completion provider failed and only evidence is returned.
	Degraded bool
}

// Citation is one cited provision.
type Citation struct {
	Version  corpus.Version
	Evidence pipeline.Evidence
}

// SearchResult is the ranked evidence of one edition without generated prose.
type SearchResult struct {
	Retrieval pipeline.Retrieval
	// Decision is set when the edition was chosen by the router.
	Decision *intent.Decision
}

// Service answers questions.
type Service struct {
	router    Router
	retriever Retriever
	completer domain.Completer
	cfg       Config
}

// New creates an answer service.
func New(router Router, retriever Retriever, completer domain.Completer, cfg Config) *Service {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	return &Service{router: router, retriever: retriever, completer: completer, cfg: cfg}
}

// Validate rejects empty and over-long queries.
func (s *Service) Validate(query string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("%w: query is empty", domain.ErrInvalidQuery)
	}
	if s.cfg.MaxQueryLength > 0 && utf8.RuneCountInString(query) > s.cfg.MaxQueryLength {
		return fmt.Errorf("%w: query exceeds %d characters", domain.ErrInvalidQuery, s.cfg.MaxQueryLength)
	}
	return nil
}

// Route exposes the routing decision for a validated query.
func (s *Service) Route(ctx context.Context, query string) (intent.Decision, error) {
	if err := s.Validate(query); err != nil {
		return intent.Decision{}, err
	}
	return s.router.Route(ctx, query), nil
}

// Search ranks evidence in version, or in the routed edition when version is
// empty. A comparison intent falls back to the newer edition.
func (s *Service) Search(ctx context.Context, query string, version corpus.Version, limit int) (SearchResult, error) {
	if err := s.Validate(query); err != nil {
		return SearchResult{}, err
	}
	if limit <= 0 {
		limit = s.cfg.Limit
	}

	var out SearchResult
	if version.IsZero() {
		d := s.router.Route(ctx, query)
		out.Decision = &d
		version = d.Versions[len(d.Versions)-1]
	}

	r, err := s.retriever.Retrieve(ctx, query, version, limit)
	if err != nil {
		return SearchResult{}, fmt.Errorf("retrieve: %w", err)
	}
	out.Retrieval = r
	return out, nil
}

// Ask routes query and answers it from the targeted edition, or from both
// editions when it asks for a comparison.
func (s *Service) Ask(ctx context.Context, query string, history []domain.Message) (Answer, error) {
	if err := s.Validate(query); err != nil {
		return Answer{}, err
	}

	d := s.router.Route(ctx, query)
	ans := Answer{Intent: d.Intent, Reason: d.Reason, Versions: d.Versions}

	if d.Intent.IsComparison && len(d.Versions) == 2 {
		return s.compare(ctx, query, history, ans)
	}
	return s.single(ctx, query, history, ans)
}

func (s *Service) single(ctx context.Context, query string, history []domain.Message, ans Answer) (Answer, error) {
	version := ans.Versions[0]
	evidence, err := s.evidence(ctx, query, version)
	if err != nil {
		return Answer{}, err
	}
	ans.Citations = cite(version, evidence)

	text, err := s.completer.Complete(ctx, sourcesPrompt(s.cfg.SystemPrompt, version, evidence), history, query)
	if err != nil {
		metrics.SignalDegradedTotal.WithLabelValues(SignalCompletion).Inc()
		logger.FromContext(ctx).Warn("Retrieval signal degraded to empty",
			zap.String("signal", SignalCompletion),
			zap.String("version", string(version)),
			zap.Error(err),
		)
		ans.Degraded = true
		return ans, nil
	}
	ans.Text = text
	return ans, nil
}

// compare runs both editions concurrently and synthesizes their answers.
// Any failure fails the whole comparison.
func (s *Service) compare(ctx context.Context, query string, history []domain.Message, ans Answer) (Answer, error) {
	branches := make([]Branch, len(ans.Versions))

	g, gctx := errgroup.WithContext(ctx)
	for i, v := range ans.Versions {
		bctx := logger.With(gctx, zap.String("branch", string(v)))
		g.Go(func() error {
			evidence, err := s.evidence(bctx, query, v)
			if err != nil {
				return err
			}
			text, err := s.completer.Complete(bctx, sourcesPrompt(s.cfg.SystemPrompt, v, evidence), history, query)
			if err != nil {
				return fmt.Errorf("complete %s: %w", v, err)
			}
			branches[i] = Branch{Version: v, Text: text, Evidence: evidence}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Answer{}, s.partial(ctx, err)
	}

	text, err := s.completer.Complete(ctx, s.cfg.ComparisonPrompt, history, synthesisQuery(query, branches[0], branches[1]))
	if err != nil {
		return Answer{}, s.partial(ctx, fmt.Errorf("synthesize: %w", err))
	}

	ans.Text = text
	ans.Branches = branches
	for _, b := range branches {
		ans.Citations = append(ans.Citations, cite(b.Version, b.Evidence)...)
	}
	return ans, nil
}

func (s *Service) partial(ctx context.Context, err error) error {
	logger.FromContext(ctx).Warn("Comparison failed", zap.Error(err))
	return fmt.Errorf("%w: %w", domain.ErrComparisonPartialFailure, err)
}

func (s *Service) evidence(ctx context.Context, query string, version corpus.Version) ([]pipeline.Evidence, error) {
	r, err := s.retriever.Retrieve(ctx, query, version, s.cfg.Limit)
	if err != nil {
		return nil, fmt.Errorf("retrieve %s: %w", version, err)
	}
	return s.retriever.Evidence(ctx, r), nil
}

func cite(v corpus.Version, evidence []pipeline.Evidence) []Citation {
	out := make([]Citation, len(evidence))
	for i, e := range evidence {
		out[i] = Citation{Version: v, Evidence: e}
	}
	return out
}
