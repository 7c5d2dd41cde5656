package lexroute

import (
	"context"

	"github.com/kailas-cloud/lexroute/internal/domain"
	"github.com/kailas-cloud/lexroute/internal/domain/corpus"
	domusage "github.com/kailas-cloud/lexroute/internal/domain/usage"
	answeruc "github.com/kailas-cloud/lexroute/internal/usecase/answer"
	healthuc "github.com/kailas-cloud/lexroute/internal/usecase/health"
	intentuc "github.com/kailas-cloud/lexroute/internal/usecase/intent"
)

// --- answerUseCase mock ---

type mockAnswerUC struct {
	routeFn  func(ctx context.Context, query string) (intentuc.Decision, error)
	searchFn func(ctx context.Context, query string, version corpus.Version, limit int) (answeruc.SearchResult, error)
	askFn    func(ctx context.Context, query string, history []domain.Message) (answeruc.Answer, error)
}

func (m *mockAnswerUC) Route(ctx context.Context, query string) (intentuc.Decision, error) {
	return m.routeFn(ctx, query)
}

func (m *mockAnswerUC) Search(
	ctx context.Context, query string, version corpus.Version, limit int,
) (answeruc.SearchResult, error) {
	return m.searchFn(ctx, query, version, limit)
}

func (m *mockAnswerUC) Ask(ctx context.Context, query string, history []domain.Message) (answeruc.Answer, error) {
	return m.askFn(ctx, query, history)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report {
	return m.report
}

// --- usageUseCase mock ---

type mockUsageUC struct {
	reports []domusage.Report
	got     domusage.Period
}

func (m *mockUsageUC) Report(_ context.Context, period domusage.Period) []domusage.Report {
	m.got = period
	return m.reports
}

func newTestClient(answers answerUseCase) *Client {
	obs, _ := newObserver(nil, nil)
	return &Client{
		answers: answers,
		health:  &mockHealthUC{},
		usage:   &mockUsageUC{},
		obs:     obs,
	}
}
