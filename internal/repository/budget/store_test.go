package budget

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/kailas-cloud/lexroute/internal/db"
)

type expireCall struct {
	key string
	ttl time.Duration
	nx  bool
}

type memStore struct {
	values  map[string]int64
	raw     map[string][]byte
	expires []expireCall
	getErr  error
	incrErr error
}

func newMemStore() *memStore {
	return &memStore{values: map[string]int64{}, raw: map[string][]byte{}}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if b, ok := m.raw[key]; ok {
		return b, nil
	}
	v, ok := m.values[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return []byte(strconv.FormatInt(v, 10)), nil
}

func (m *memStore) IncrBy(_ context.Context, key string, val int64) error {
	if m.incrErr != nil {
		return m.incrErr
	}
	m.values[key] += val
	return nil
}

func (m *memStore) Expire(_ context.Context, key string, ttl time.Duration, nx bool) error {
	m.expires = append(m.expires, expireCall{key: key, ttl: ttl, nx: nx})
	return nil
}

func TestStore_IncrBySetsPeriodTTL(t *testing.T) {
	ms := newMemStore()
	s := New(ms, 48*time.Hour, 62*24*time.Hour)

	daily := "lexroute:budget:embedding:daily:2026-10-16"
	monthly := "lexroute:budget:embedding:monthly:2026-10"
	if err := s.IncrBy(context.Background(), daily, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.IncrBy(context.Background(), monthly, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ms.expires) != 2 {
		t.Fatalf("expected 2 EXPIRE calls, got %d", len(ms.expires))
	}
	if ms.expires[0].ttl != 48*time.Hour || !ms.expires[0].nx {
		t.Errorf("unexpected daily expire %+v", ms.expires[0])
	}
	if ms.expires[1].ttl != 62*24*time.Hour {
		t.Errorf("unexpected monthly expire %+v", ms.expires[1])
	}
}

func TestStore_IncrByError(t *testing.T) {
	ms := newMemStore()
	ms.incrErr = errors.New("conn refused")
	s := New(ms, time.Hour, time.Hour)

	if err := s.IncrBy(context.Background(), "k:daily:x", 1); err == nil {
		t.Fatal("expected error")
	}
	if len(ms.expires) != 0 {
		t.Error("EXPIRE must not run after a failed INCRBY")
	}
}

func TestStore_Get(t *testing.T) {
	ms := newMemStore()
	ms.values["present"] = 42
	ms.raw["garbage"] = []byte("not-a-number")
	s := New(ms, time.Hour, time.Hour)

	if v, err := s.Get(context.Background(), "present"); err != nil || v != 42 {
		t.Errorf("expected 42, got %d (%v)", v, err)
	}
	if v, err := s.Get(context.Background(), "missing"); err != nil || v != 0 {
		t.Errorf("missing key must read as 0, got %d (%v)", v, err)
	}
	if _, err := s.Get(context.Background(), "garbage"); err == nil {
		t.Error("expected parse error")
	}

	ms.getErr = errors.New("timeout")
	if _, err := s.Get(context.Background(), "present"); err == nil {
		t.Error("expected store error")
	}
}
