package chi

import (
	"context"

	"github.com/kailas-cloud/lexroute/internal/domain"
	"github.com/kailas-cloud/lexroute/internal/domain/corpus"
	"github.com/kailas-cloud/lexroute/internal/domain/usage"
	answeruc "github.com/kailas-cloud/lexroute/internal/usecase/answer"
	healthuc "github.com/kailas-cloud/lexroute/internal/usecase/health"
	intentuc "github.com/kailas-cloud/lexroute/internal/usecase/intent"
)

// Answerer is the question-answering use case.
type Answerer interface {
	Ask(ctx context.Context, query string, history []domain.Message) (answeruc.Answer, error)
	Search(ctx context.Context, query string, version corpus.Version, limit int) (answeruc.SearchResult, error)
	Route(ctx context.Context, query string) (intentuc.Decision, error)
}

// HealthChecker aggregates dependency checks.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// UsageReporter reports provider token budgets.
type UsageReporter interface {
	Report(ctx context.Context, period usage.Period) []usage.Report
}
