package usage

import "time"

// BudgetReader provides read-only access to one provider's token budget.
type BudgetReader interface {
	Kind() string
	Now() time.Time
	DailyLimit() int64
	MonthlyLimit() int64
	DailyUsed() int64
	MonthlyUsed() int64
	RemainingDaily() int64
	RemainingMonthly() int64
}
