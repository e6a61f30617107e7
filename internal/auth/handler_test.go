package auth

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/academydb/academydb/internal/rbac"
	"github.com/academydb/academydb/internal/shared"
	"github.com/academydb/academydb/internal/view"
	_ "github.com/academydb/academydb/testing"
)

// trackingRepo counts lookups so tests can prove when credential checks ran.
type trackingRepo struct {
	calls int
}

func (r *trackingRepo) FindByUsername(ctx context.Context, username string) (*Account, error) {
	r.calls++
	return nil, shared.ErrNotFound
}

func (r *trackingRepo) ResolveRole(ctx context.Context, accountID int64) (rbac.Role, error) {
	return rbac.RoleUnknown, shared.ErrNotFound
}

func (r *trackingRepo) TouchLastLogin(ctx context.Context, accountID int64, at time.Time) error {
	return nil
}

type memAttemptStore struct {
	mu      sync.Mutex
	records map[string][]time.Time
}

func (s *memAttemptStore) Prune(ctx context.Context, action string, olderThan time.Time) error {
	return nil
}

func (s *memAttemptStore) Count(ctx context.Context, addr, action string, since time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, at := range s.records[addr+"|"+action] {
		if at.After(since) {
			count++
		}
	}
	return count, nil
}

func (s *memAttemptStore) Insert(ctx context.Context, addr, action string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.records == nil {
		s.records = make(map[string][]time.Time)
	}
	key := addr + "|" + action
	s.records[key] = append(s.records[key], at)
	return nil
}

type fixedPolicy int

func (p fixedPolicy) MaxLoginAttempts(ctx context.Context) int { return int(p) }

func newLoginHandler(t *testing.T, repo Repository, maxAttempts int) *Handler {
	t.Helper()
	engine, err := view.NewEngine()
	if err != nil {
		t.Fatalf("view engine: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	limiter := shared.NewRateLimiter(&memAttemptStore{}, logger)
	return NewHandler(logger, NewService(repo, logger), engine, nil, shared.NewCSRFManager(), limiter, fixedPolicy(maxAttempts), nil, nil)
}

func postLogin(h *Handler, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = "203.0.113.9:4455"
	h.handleLogin(rec, req)
	return rec
}

func TestLoginRateLimitedBeforeCredentialCheck(t *testing.T) {
	repo := &trackingRepo{}
	h := newLoginHandler(t, repo, 10)

	for i := 0; i < 10; i++ {
		rec := postLogin(h, "username=ghost&password=nope")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("attempt %d: status %d, want %d", i+1, rec.Code, http.StatusBadRequest)
		}
	}
	if repo.calls != 10 {
		t.Fatalf("expected 10 credential checks, got %d", repo.calls)
	}

	rec := postLogin(h, "username=ghost&password=nope")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("11th attempt: status %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/error?code=429" {
		t.Fatalf("11th attempt redirected to %q", loc)
	}
	if repo.calls != 10 {
		t.Fatalf("credential check ran after rate limit: %d calls", repo.calls)
	}
}

func TestLoginRejectsMissingFields(t *testing.T) {
	repo := &trackingRepo{}
	h := newLoginHandler(t, repo, 10)

	rec := postLogin(h, "username=&password=")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if !strings.Contains(rec.Body.String(), "This field is required") {
		t.Fatalf("validation errors not rendered")
	}
	if repo.calls != 0 {
		t.Fatalf("credential check ran on empty form")
	}
}
