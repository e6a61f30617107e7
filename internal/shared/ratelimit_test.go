package shared

import (
	"context"
	"errors"
	"testing"
	"time"
)

type memRateLimitStore struct {
	records  map[string][]time.Time
	pruneErr error
	countErr error
}

func newMemRateLimitStore() *memRateLimitStore {
	return &memRateLimitStore{records: make(map[string][]time.Time)}
}

func (m *memRateLimitStore) key(addr, action string) string {
	return addr + "|" + action
}

func (m *memRateLimitStore) Prune(ctx context.Context, action string, olderThan time.Time) error {
	if m.pruneErr != nil {
		return m.pruneErr
	}
	for key, stamps := range m.records {
		kept := stamps[:0]
		for _, at := range stamps {
			if !at.Before(olderThan) {
				kept = append(kept, at)
			}
		}
		m.records[key] = kept
	}
	return nil
}

func (m *memRateLimitStore) Count(ctx context.Context, addr, action string, since time.Time) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	count := 0
	for _, at := range m.records[m.key(addr, action)] {
		if at.After(since) {
			count++
		}
	}
	return count, nil
}

func (m *memRateLimitStore) Insert(ctx context.Context, addr, action string, at time.Time) error {
	key := m.key(addr, action)
	m.records[key] = append(m.records[key], at)
	return nil
}

func TestRateLimiterAllowsUpToMax(t *testing.T) {
	store := newMemRateLimitStore()
	rl := NewRateLimiter(store, nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if !rl.Allow(ctx, "10.0.0.1:1234", "login", 5, time.Minute) {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if rl.Allow(ctx, "10.0.0.1:1234", "login", 5, time.Minute) {
		t.Fatalf("attempt past the limit should be denied")
	}
}

func TestRateLimiterIsolatesClientsAndActions(t *testing.T) {
	store := newMemRateLimitStore()
	rl := NewRateLimiter(store, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		rl.Allow(ctx, "10.0.0.1:1234", "login", 3, time.Minute)
	}
	if rl.Allow(ctx, "10.0.0.1:1234", "login", 3, time.Minute) {
		t.Fatalf("exhausted client should be denied")
	}
	if !rl.Allow(ctx, "10.0.0.2:1234", "login", 3, time.Minute) {
		t.Fatalf("other client should be unaffected")
	}
	if !rl.Allow(ctx, "10.0.0.1:1234", "registration", 3, time.Minute) {
		t.Fatalf("other action should be unaffected")
	}
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	store := newMemRateLimitStore()
	rl := NewRateLimiter(store, nil)
	ctx := context.Background()

	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return current }

	for i := 0; i < 3; i++ {
		rl.Allow(ctx, "10.0.0.1:1234", "login", 3, time.Minute)
	}
	if rl.Allow(ctx, "10.0.0.1:1234", "login", 3, time.Minute) {
		t.Fatalf("expected denial inside the window")
	}

	current = current.Add(2 * time.Minute)
	if !rl.Allow(ctx, "10.0.0.1:1234", "login", 3, time.Minute) {
		t.Fatalf("expected old attempts to age out of the window")
	}
}

func TestRateLimiterFailsOpen(t *testing.T) {
	store := newMemRateLimitStore()
	store.countErr = errors.New("connection refused")
	rl := NewRateLimiter(store, nil)

	if !rl.Allow(context.Background(), "10.0.0.1:1234", "login", 1, time.Minute) {
		t.Fatalf("store failure must not lock out clients")
	}

	store = newMemRateLimitStore()
	store.pruneErr = errors.New("connection refused")
	rl = NewRateLimiter(store, nil)
	if !rl.Allow(context.Background(), "10.0.0.1:1234", "login", 1, time.Minute) {
		t.Fatalf("prune failure must not lock out clients")
	}
}
