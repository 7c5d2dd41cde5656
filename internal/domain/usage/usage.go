package usage

// Period is the aggregation granularity.
type Period string

// Aggregation period constants.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// ParsePeriod maps a query value to a Period. Empty means day.
func ParsePeriod(s string) (Period, bool) {
	switch Period(s) {
	case "", PeriodDay:
		return PeriodDay, true
	case PeriodMonth:
		return PeriodMonth, true
	}
	return "", false
}

// Report is the token usage of one provider kind over a period.
type Report struct {
	kind        string
	period      Period
	periodStart int64 // unix millis
	periodEnd   int64 // unix millis, also the reset time
	used        int64
	limit       int64
	remaining   int64
}

// NewReport creates a usage report. limit 0 means unlimited; remaining is then -1.
func NewReport(kind string, period Period, start, end, used, limit, remaining int64) Report {
	return Report{
		kind:        kind,
		period:      period,
		periodStart: start,
		periodEnd:   end,
		used:        used,
		limit:       limit,
		remaining:   remaining,
	}
}

// Kind returns the provider kind (embedding, completion).
func (r Report) Kind() string { return r.kind }

// Period returns the aggregation granularity.
func (r Report) Period() Period { return r.period }

// PeriodStart returns the period start timestamp (unix millis).
func (r Report) PeriodStart() int64 { return r.periodStart }

// PeriodEnd returns the period end timestamp (unix millis).
func (r Report) PeriodEnd() int64 { return r.periodEnd }

// TokensUsed returns tokens consumed in the period.
func (r Report) TokensUsed() int64 { return r.used }

// TokensLimit returns the token cap (0 = unlimited).
func (r Report) TokensLimit() int64 { return r.limit }

// TokensRemaining returns tokens left (-1 = unlimited).
func (r Report) TokensRemaining() int64 { return r.remaining }

// IsExhausted reports whether a finite budget is spent.
func (r Report) IsExhausted() bool { return r.limit > 0 && r.remaining <= 0 }
