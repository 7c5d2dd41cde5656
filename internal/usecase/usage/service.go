package usage

import (
	"context"
	"time"

	domusage "github.com/kailas-cloud/lexroute/internal/domain/usage"
)

// Service handles usage reporting.
type Service struct {
	readers []BudgetReader
}

// New creates a Service over the given budgets, reported in order.
func New(readers ...BudgetReader) *Service {
	return &Service{readers: readers}
}

// Report builds one usage report per tracked provider kind for the period.
func (s *Service) Report(_ context.Context, period domusage.Period) []domusage.Report {
	reports := make([]domusage.Report, 0, len(s.readers))
	for _, br := range s.readers {
		reports = append(reports, report(br, period))
	}
	return reports
}

func report(br BudgetReader, period domusage.Period) domusage.Report {
	now := br.Now().UTC()
	if period == domusage.PeriodMonth {
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, 0)
		return domusage.NewReport(br.Kind(), period, start.UnixMilli(), end.UnixMilli(),
			br.MonthlyUsed(), br.MonthlyLimit(), br.RemainingMonthly())
	}
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)
	return domusage.NewReport(br.Kind(), domusage.PeriodDay, start.UnixMilli(), end.UnixMilli(),
		br.DailyUsed(), br.DailyLimit(), br.RemainingDaily())
}
