package budget

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexroute/internal/domain"
)

// Checker is the local interface for budget enforcement.
type Checker interface {
	Check(ctx context.Context) error
	Record(tokens int64)
}

// GuardedEmbedder wraps an Embedder with budget enforcement.
// Transport metrics (requests, duration, tokens) are recorded in transport/openai.
type GuardedEmbedder struct {
	inner  domain.Embedder
	model  string
	budget Checker
	logger *zap.Logger
}

// NewGuardedEmbedder wraps an embedder with a token budget. budget may be nil.
func NewGuardedEmbedder(inner domain.Embedder, model string, budget Checker, logger *zap.Logger) *GuardedEmbedder {
	return &GuardedEmbedder{inner: inner, model: model, budget: budget, logger: logger}
}

// Embed checks the budget, delegates to the inner embedder and records usage.
func (g *GuardedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if g.budget != nil {
		if err := g.budget.Check(ctx); err != nil {
			g.logger.Error("Budget exceeded", zap.String("kind", KindEmbedding), zap.String("model", g.model), zap.Error(err))
			return domain.EmbeddingResult{}, fmt.Errorf("budget check: %w", err)
		}
	}

	start := time.Now()
	result, err := g.inner.Embed(ctx, text)
	duration := time.Since(start)
	if err != nil {
		g.logger.Error("Embedding request failed",
			zap.String("model", g.model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}

	if g.budget != nil && result.TotalTokens > 0 {
		g.budget.Record(int64(result.TotalTokens))
	}

	g.logger.Debug("Embedding request completed",
		zap.String("model", g.model),
		zap.Duration("duration", duration),
		zap.Int("dimensions", len(result.Embedding)),
		zap.Int("total_tokens", result.TotalTokens),
	)
	return result, nil
}

// GuardedCompleter wraps a usage-reporting completer with budget enforcement.
type GuardedCompleter struct {
	inner  domain.UsageCompleter
	model  string
	budget Checker
	logger *zap.Logger
}

// NewGuardedCompleter wraps a completer with a token budget. budget may be nil.
func NewGuardedCompleter(inner domain.UsageCompleter, model string, budget Checker, logger *zap.Logger) *GuardedCompleter {
	return &GuardedCompleter{inner: inner, model: model, budget: budget, logger: logger}
}

// Complete implements domain.Completer.
func (g *GuardedCompleter) Complete(
	ctx context.Context, systemPrompt string, history []domain.Message, query string,
) (string, error) {
	if g.budget != nil {
		if err := g.budget.Check(ctx); err != nil {
			g.logger.Error("Budget exceeded", zap.String("kind", KindCompletion), zap.String("model", g.model), zap.Error(err))
			return "", fmt.Errorf("budget check: %w", err)
		}
	}

	res, err := g.inner.CompleteWithUsage(ctx, systemPrompt, history, query)
	if err != nil {
		return "", fmt.Errorf("complete: %w", err)
	}
	if g.budget != nil && res.TotalTokens > 0 {
		g.budget.Record(int64(res.TotalTokens))
	}
	return res.Text, nil
}
