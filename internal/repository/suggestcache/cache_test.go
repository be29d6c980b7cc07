package suggestcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/adequity/brandflow-search/internal/db"
)

type mockStore struct {
	data    map[string][]byte
	getErr  error
	setErr  error
	lastTTL time.Duration
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string][]byte)}
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.lastTTL = ttl
	return nil
}

type mockInner struct {
	values []string
	err    error
	calls  int
}

func (m *mockInner) Distinct(_ context.Context, _, _, _ string, _ int) ([]string, error) {
	m.calls++
	return m.values, m.err
}

func TestDistinct_MissThenHit(t *testing.T) {
	inner := &mockInner{values: []string{"Acme Corp", "Acme Industries"}}
	store := newMockStore()
	repo := New(inner, store, 5*time.Minute, nil, zap.NewNop())
	ctx := context.Background()

	got, err := repo.Distinct(ctx, "campaigns", "client_company", "acme", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("values = %v, want 2", got)
	}
	if inner.calls != 1 {
		t.Fatalf("inner calls = %d, want 1", inner.calls)
	}
	if store.lastTTL != 5*time.Minute {
		t.Errorf("ttl = %v, want 5m", store.lastTTL)
	}

	got, err = repo.Distinct(ctx, "campaigns", "client_company", "acme", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("values = %v, want 2", got)
	}
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1 (second lookup served from cache)", inner.calls)
	}
}

func TestDistinct_KeyVariesByArguments(t *testing.T) {
	inner := &mockInner{values: []string{"x"}}
	store := newMockStore()
	repo := New(inner, store, time.Minute, nil, zap.NewNop())
	ctx := context.Background()

	if _, err := repo.Distinct(ctx, "campaigns", "name", "a", 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := repo.Distinct(ctx, "campaigns", "name", "b", 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2 (different match text)", inner.calls)
	}
	if _, err := repo.Distinct(ctx, "campaigns", "name", "a", 20); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 3 {
		t.Errorf("inner calls = %d, want 3 (different limit)", inner.calls)
	}
}

func TestDistinct_StoreFailureFallsThrough(t *testing.T) {
	inner := &mockInner{values: []string{"x"}}
	store := newMockStore()
	store.getErr = errors.New("connection refused")
	store.setErr = errors.New("connection refused")
	repo := New(inner, store, time.Minute, nil, zap.NewNop())

	got, err := repo.Distinct(context.Background(), "campaigns", "name", "a", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("values = %v, want 1", got)
	}
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}
}

func TestDistinct_InnerErrorPropagates(t *testing.T) {
	boom := errors.New("query failed")
	inner := &mockInner{err: boom}
	repo := New(inner, newMockStore(), time.Minute, nil, zap.NewNop())

	if _, err := repo.Distinct(context.Background(), "campaigns", "name", "a", 10); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped inner error", err)
	}
}

func TestDistinct_CachesEmptyResult(t *testing.T) {
	inner := &mockInner{values: nil}
	repo := New(inner, newMockStore(), time.Minute, nil, zap.NewNop())
	ctx := context.Background()

	if _, err := repo.Distinct(ctx, "campaigns", "name", "zzz", 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := repo.Distinct(ctx, "campaigns", "name", "zzz", 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1 (empty result cached too)", inner.calls)
	}
}
