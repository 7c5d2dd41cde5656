package budget

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/lexroute/internal/domain"
	"github.com/kailas-cloud/lexroute/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.Register()
	os.Exit(m.Run())
}

type mockStore struct {
	mu     sync.Mutex
	data   map[string]int64
	getErr error
	setErr error
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]int64)}
}

func (m *mockStore) IncrBy(_ context.Context, key string, val int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] += val
	return nil
}

func (m *mockStore) Get(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return 0, m.getErr
	}
	return m.data[key], nil
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTracker(daily, monthly int64, action Action, clock *fakeClock) *Tracker {
	return NewTracker(KindEmbedding, "lexroute:", Limits{Daily: daily, Monthly: monthly, Action: action}, WithClock(clock.Now))
}

func testClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 31, 22, 0, 0, 0, time.UTC)}
}

func TestTracker_RejectWhenExceeded(t *testing.T) {
	tr := newTracker(100, 0, ActionReject, testClock())
	tr.Record(100)

	if err := tr.Check(context.Background()); !errors.Is(err, domain.ErrTokenBudgetExceeded) {
		t.Fatalf("expected ErrTokenBudgetExceeded, got %v", err)
	}
}

func TestTracker_WarnWhenExceeded(t *testing.T) {
	tr := newTracker(100, 0, ActionWarn, testClock())
	tr.Record(200)

	if err := tr.Check(context.Background()); err != nil {
		t.Fatalf("expected nil error for warn action, got %v", err)
	}
}

func TestTracker_MonthlyReject(t *testing.T) {
	tr := newTracker(0, 500, ActionReject, testClock())
	tr.Record(500)

	if err := tr.Check(context.Background()); !errors.Is(err, domain.ErrTokenBudgetExceeded) {
		t.Fatalf("expected ErrTokenBudgetExceeded for monthly limit, got %v", err)
	}
}

func TestTracker_UnlimitedWhenZero(t *testing.T) {
	tr := newTracker(0, 0, ActionReject, testClock())
	tr.Record(999999999)

	if err := tr.Check(context.Background()); err != nil {
		t.Fatalf("expected nil error for unlimited budget, got %v", err)
	}
	if tr.RemainingDaily() != -1 || tr.RemainingMonthly() != -1 {
		t.Errorf("expected -1 remaining, got %d/%d", tr.RemainingDaily(), tr.RemainingMonthly())
	}
}

func TestTracker_Remaining(t *testing.T) {
	tr := newTracker(1000, 10000, ActionWarn, testClock())
	tr.Record(300)

	if got := tr.RemainingDaily(); got != 700 {
		t.Errorf("expected daily remaining 700, got %d", got)
	}
	if got := tr.RemainingMonthly(); got != 9700 {
		t.Errorf("expected monthly remaining 9700, got %d", got)
	}

	tr.Record(5000)
	if got := tr.RemainingDaily(); got != 0 {
		t.Errorf("overspent daily budget must floor at 0, got %d", got)
	}
}

func TestTracker_Rollover(t *testing.T) {
	clock := testClock()
	tr := newTracker(1000, 10000, ActionReject, clock)
	tr.Record(1000)

	if err := tr.Check(context.Background()); err == nil {
		t.Fatal("expected rejection before midnight")
	}

	// 2026-04-01: new day and new month.
	clock.t = clock.t.Add(3 * time.Hour)
	if err := tr.Check(context.Background()); err != nil {
		t.Fatalf("expected daily reset after midnight, got %v", err)
	}
	if tr.DailyUsed() != 0 || tr.MonthlyUsed() != 0 {
		t.Errorf("expected counters reset, got %d/%d", tr.DailyUsed(), tr.MonthlyUsed())
	}
}

func TestTracker_DayRolloverKeepsMonth(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)}
	tr := newTracker(1000, 10000, ActionWarn, clock)
	tr.Record(400)

	clock.t = clock.t.Add(2 * time.Hour)
	if tr.DailyUsed() != 0 {
		t.Errorf("expected daily reset, got %d", tr.DailyUsed())
	}
	if tr.MonthlyUsed() != 400 {
		t.Errorf("expected monthly usage kept, got %d", tr.MonthlyUsed())
	}
}

func TestTracker_WithStore_LoadsValues(t *testing.T) {
	store := newMockStore()
	store.data["lexroute:budget:embedding:daily:2026-03-31"] = 300
	store.data["lexroute:budget:embedding:monthly:2026-03"] = 5000

	tr := newTracker(1000, 10000, ActionReject, testClock()).WithStore(context.Background(), store)

	if tr.DailyUsed() != 300 {
		t.Errorf("expected daily_used=300, got %d", tr.DailyUsed())
	}
	if tr.MonthlyUsed() != 5000 {
		t.Errorf("expected monthly_used=5000, got %d", tr.MonthlyUsed())
	}
}

func TestTracker_Record_PersistsToStore(t *testing.T) {
	store := newMockStore()
	tr := newTracker(10000, 100000, ActionWarn, testClock()).WithStore(context.Background(), store)

	tr.Record(100)
	tr.Record(200)

	store.mu.Lock()
	defer store.mu.Unlock()
	if got := store.data["lexroute:budget:embedding:daily:2026-03-31"]; got != 300 {
		t.Errorf("expected store daily=300, got %d", got)
	}
	if got := store.data["lexroute:budget:embedding:monthly:2026-03"]; got != 300 {
		t.Errorf("expected store monthly=300, got %d", got)
	}
}

func TestTracker_WithStore_LoadError(t *testing.T) {
	store := newMockStore()
	store.getErr = errors.New("connection refused")

	tr := newTracker(1000, 10000, ActionReject, testClock()).WithStore(context.Background(), store)

	if tr.DailyUsed() != 0 || tr.MonthlyUsed() != 0 {
		t.Errorf("expected zero usage on load error, got %d/%d", tr.DailyUsed(), tr.MonthlyUsed())
	}
}

func TestTracker_Record_StoreWriteError(t *testing.T) {
	store := newMockStore()
	tr := newTracker(1000, 10000, ActionWarn, testClock()).WithStore(context.Background(), store)

	store.mu.Lock()
	store.setErr = errors.New("write timeout")
	store.mu.Unlock()

	tr.Record(50)

	if tr.DailyUsed() != 50 {
		t.Errorf("expected daily_used=50 even with store error, got %d", tr.DailyUsed())
	}
}

func TestTracker_KeysCarryKind(t *testing.T) {
	tr := NewTracker(KindCompletion, "lr:", Limits{}, WithClock(testClock().Now))
	now := tr.Now()

	if got := tr.dailyKey(now); got != "lr:budget:completion:daily:2026-03-31" {
		t.Errorf("unexpected daily key %q", got)
	}
	if got := tr.monthlyKey(now); got != "lr:budget:completion:monthly:2026-03" {
		t.Errorf("unexpected monthly key %q", got)
	}
}
