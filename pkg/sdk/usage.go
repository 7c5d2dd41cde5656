package lexroute

import (
	"context"
	"fmt"
	"time"

	domusage "github.com/kailas-cloud/lexroute/internal/domain/usage"
)

// UsagePeriod is the aggregation granularity for usage reports.
type UsagePeriod string

// UsagePeriod constants.
const (
	PeriodDay   UsagePeriod = "day"
	PeriodMonth UsagePeriod = "month"
)

// UsageReport is the token consumption of one provider over a period.
type UsageReport struct {
	Kind        string // "embedding" or "completion"
	Period      UsagePeriod
	PeriodStart time.Time
	ResetsAt    time.Time
	TokensUsed  int64
	// TokensLimit is 0 and TokensRemaining -1 when no budget is set.
	TokensLimit     int64
	TokensRemaining int64
	IsExhausted     bool
}

// Usage returns one report per provider kind. An empty period means day.
func (c *Client) Usage(ctx context.Context, period UsagePeriod) (_ []UsageReport, err error) {
	start := time.Now()
	defer func() { c.obs.observe("usage", start, err) }()

	p, ok := domusage.ParsePeriod(string(period))
	if !ok {
		return nil, fmt.Errorf("usage: unknown period %q", period)
	}

	reports := c.usage.Report(ctx, p)
	out := make([]UsageReport, len(reports))
	for i, r := range reports {
		out[i] = UsageReport{
			Kind:            r.Kind(),
			Period:          UsagePeriod(r.Period()),
			PeriodStart:     time.UnixMilli(r.PeriodStart()).UTC(),
			ResetsAt:        time.UnixMilli(r.PeriodEnd()).UTC(),
			TokensUsed:      r.TokensUsed(),
			TokensLimit:     r.TokensLimit(),
			TokensRemaining: r.TokensRemaining(),
			IsExhausted:     r.IsExhausted(),
		}
	}
	return out, nil
}

type usageUseCase interface {
	Report(ctx context.Context, period domusage.Period) []domusage.Report
}
