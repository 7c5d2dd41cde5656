// Package budget enforces daily and monthly provider token budgets.
package budget

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexroute/internal/domain"
	"github.com/kailas-cloud/lexroute/internal/metrics"
)

// Action defines behavior when a token budget is exceeded.
type Action string

const (
	// ActionWarn logs a warning but allows the request.
	ActionWarn Action = "warn"
	// ActionReject blocks the request.
	ActionReject Action = "reject"
)

// Provider call kinds that carry their own budget.
const (
	KindEmbedding  = "embedding"
	KindCompletion = "completion"
)

// Store is the persistence interface for budget counters.
type Store interface {
	IncrBy(ctx context.Context, key string, val int64) error
	Get(ctx context.Context, key string) (int64, error)
}

// Limits configures one tracker.
type Limits struct {
	Daily   int64
	Monthly int64
	Action  Action
}

// Tracker is an in-memory token budget tracker with optional persistence.
// Check is in-memory only; Record updates memory first, then writes behind to the store.
type Tracker struct {
	mu             sync.Mutex
	kind           string
	keyPrefix      string
	limits         Limits
	dailyUsed      int64
	monthlyUsed    int64
	lastDayReset   time.Time
	lastMonthReset time.Time
	store          Store
	now            func() time.Time
	logger         *zap.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the wall clock used for period rollover.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithLogger sets the tracker logger.
func WithLogger(l *zap.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

// NewTracker creates a tracker for one provider kind.
func NewTracker(kind, keyPrefix string, limits Limits, opts ...Option) *Tracker {
	t := &Tracker{
		kind:      kind,
		keyPrefix: keyPrefix,
		limits:    limits,
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, o := range opts {
		o(t)
	}
	now := t.utcNow()
	t.lastDayReset = truncateToDay(now)
	t.lastMonthReset = truncateToMonth(now)
	return t
}

// WithStore attaches a persistence store and loads the current counters.
func (t *Tracker) WithStore(ctx context.Context, store Store) *Tracker {
	t.store = store
	t.loadFromStore(ctx)
	return t
}

func (t *Tracker) loadFromStore(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.utcNow()
	if val, err := t.store.Get(ctx, t.dailyKey(now)); err == nil {
		t.dailyUsed = val
	} else {
		t.logger.Warn("Failed to load daily budget from store", zap.String("kind", t.kind), zap.Error(err))
	}
	if val, err := t.store.Get(ctx, t.monthlyKey(now)); err == nil {
		t.monthlyUsed = val
	} else {
		t.logger.Warn("Failed to load monthly budget from store", zap.String("kind", t.kind), zap.Error(err))
	}

	t.logger.Info("Budget loaded from store",
		zap.String("kind", t.kind),
		zap.Int64("daily_used", t.dailyUsed),
		zap.Int64("monthly_used", t.monthlyUsed),
	)
}

// Kind returns the provider kind this tracker meters.
func (t *Tracker) Kind() string { return t.kind }

func (t *Tracker) dailyKey(now time.Time) string {
	return fmt.Sprintf("%sbudget:%s:daily:%s", t.keyPrefix, t.kind, now.Format("2006-01-02"))
}

func (t *Tracker) monthlyKey(now time.Time) string {
	return fmt.Sprintf("%sbudget:%s:monthly:%s", t.keyPrefix, t.kind, now.Format("2006-01"))
}

// Check verifies the budget allows a new request.
func (t *Tracker) Check(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.resetIfNeeded()

	dailyExceeded := t.limits.Daily > 0 && t.dailyUsed >= t.limits.Daily
	monthlyExceeded := t.limits.Monthly > 0 && t.monthlyUsed >= t.limits.Monthly
	if !dailyExceeded && !monthlyExceeded {
		return nil
	}

	if t.limits.Action == ActionReject {
		return fmt.Errorf("%s budget: %w", t.kind, domain.ErrTokenBudgetExceeded)
	}

	t.logger.Warn("Token budget exceeded",
		zap.String("kind", t.kind),
		zap.Int64("daily_used", t.dailyUsed),
		zap.Int64("daily_limit", t.limits.Daily),
		zap.Int64("monthly_used", t.monthlyUsed),
		zap.Int64("monthly_limit", t.limits.Monthly),
	)
	return nil
}

// Record registers consumed tokens after a request and refreshes the remaining-tokens gauge.
func (t *Tracker) Record(tokens int64) {
	t.mu.Lock()
	t.resetIfNeeded()
	t.dailyUsed += tokens
	t.monthlyUsed += tokens
	store := t.store
	now := t.utcNow()
	dailyKey := t.dailyKey(now)
	monthlyKey := t.monthlyKey(now)
	t.mu.Unlock()

	metrics.BudgetTokensRemaining.WithLabelValues(t.kind, "daily").Set(float64(t.RemainingDaily()))
	metrics.BudgetTokensRemaining.WithLabelValues(t.kind, "monthly").Set(float64(t.RemainingMonthly()))

	if store == nil {
		return
	}

	// Detached from the request so a cancelled caller still gets its usage persisted.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := store.IncrBy(ctx, dailyKey, tokens); err != nil {
		t.logger.Warn("Failed to persist daily budget", zap.String("key", dailyKey), zap.Error(err))
	}
	if err := store.IncrBy(ctx, monthlyKey, tokens); err != nil {
		t.logger.Warn("Failed to persist monthly budget", zap.String("key", monthlyKey), zap.Error(err))
	}
}

// RemainingDaily returns tokens left in the daily budget (-1 if unlimited).
func (t *Tracker) RemainingDaily() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetIfNeeded()
	return remaining(t.limits.Daily, t.dailyUsed)
}

// RemainingMonthly returns tokens left in the monthly budget (-1 if unlimited).
func (t *Tracker) RemainingMonthly() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetIfNeeded()
	return remaining(t.limits.Monthly, t.monthlyUsed)
}

// DailyLimit returns the daily token cap.
func (t *Tracker) DailyLimit() int64 { return t.limits.Daily }

// MonthlyLimit returns the monthly token cap.
func (t *Tracker) MonthlyLimit() int64 { return t.limits.Monthly }

// DailyUsed returns tokens consumed today.
func (t *Tracker) DailyUsed() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetIfNeeded()
	return t.dailyUsed
}

// MonthlyUsed returns tokens consumed this month.
func (t *Tracker) MonthlyUsed() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetIfNeeded()
	return t.monthlyUsed
}

// Now returns the tracker clock in UTC.
func (t *Tracker) Now() time.Time { return t.utcNow() }

func (t *Tracker) utcNow() time.Time { return t.now().UTC() }

func remaining(limit, used int64) int64 {
	if limit == 0 {
		return -1
	}
	if used >= limit {
		return 0
	}
	return limit - used
}

// resetIfNeeded zeroes counters when the day or month rolls over.
func (t *Tracker) resetIfNeeded() {
	now := t.utcNow()
	today := truncateToDay(now)
	thisMonth := truncateToMonth(now)

	if today.After(t.lastDayReset) {
		t.dailyUsed = 0
		t.lastDayReset = today
	}
	if thisMonth.After(t.lastMonthReset) {
		t.monthlyUsed = 0
		t.lastMonthReset = thisMonth
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func truncateToMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
