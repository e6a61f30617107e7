package rbac_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/academydb/academydb/internal/rbac"
	"github.com/academydb/academydb/internal/shared"
	_ "github.com/academydb/academydb/testing"
)

type fixedTimeout time.Duration

func (f fixedTimeout) SessionTimeout(ctx context.Context) time.Duration {
	return time.Duration(f)
}

func newGuard(t *testing.T) (rbac.Middleware, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sm := shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)
	guard := rbac.Middleware{
		Sessions: sm,
		Timeouts: fixedTimeout(30 * time.Minute),
	}
	return guard, sm
}

func requestWithSession(sess *shared.Session) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/admin/students", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	return req.WithContext(shared.ContextWithSession(req.Context(), sess))
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireRoleAdmitsMatchingRole(t *testing.T) {
	guard, _ := newGuard(t)
	sess := &shared.Session{}
	sess.SetPrincipal("1", "admin")

	var called bool
	res := httptest.NewRecorder()
	guard.RequireRole(rbac.RoleAdmin)(okHandler(&called)).ServeHTTP(res, requestWithSession(sess))

	if !called {
		t.Fatalf("handler should run for a matching role")
	}
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}
}

func TestRequireRoleRedirectsAnonymous(t *testing.T) {
	guard, _ := newGuard(t)

	var called bool
	res := httptest.NewRecorder()
	guard.RequireRole(rbac.RoleAdmin)(okHandler(&called)).ServeHTTP(res, requestWithSession(nil))

	if called {
		t.Fatalf("handler must not run without a session")
	}
	if res.Code != http.StatusSeeOther || res.Header().Get("Location") != "/auth/login" {
		t.Fatalf("expected login redirect, got %d %q", res.Code, res.Header().Get("Location"))
	}
}

func TestRequireRoleRejectsWrongRole(t *testing.T) {
	guard, _ := newGuard(t)
	sess := &shared.Session{}
	sess.SetPrincipal("9", "student")

	var called bool
	res := httptest.NewRecorder()
	guard.RequireRole(rbac.RoleAdmin)(okHandler(&called)).ServeHTTP(res, requestWithSession(sess))

	if called {
		t.Fatalf("handler must not run for a mismatched role")
	}
	if res.Code != http.StatusSeeOther || res.Header().Get("Location") != "/auth/login" {
		t.Fatalf("expected login redirect, got %d %q", res.Code, res.Header().Get("Location"))
	}
}

func TestRequireRoleExpiresIdleSession(t *testing.T) {
	guard, _ := newGuard(t)
	sess := &shared.Session{}
	sess.SetPrincipal("2", "faculty")
	sess.Touch(time.Now().Add(-time.Hour))

	var called bool
	res := httptest.NewRecorder()
	guard.RequireRole(rbac.RoleFaculty)(okHandler(&called)).ServeHTTP(res, requestWithSession(sess))

	if called {
		t.Fatalf("handler must not run for an idle-expired session")
	}
	if res.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect got %d", res.Code)
	}
}

type denyAllStore struct{}

func (denyAllStore) Prune(ctx context.Context, action string, olderThan time.Time) error { return nil }
func (denyAllStore) Count(ctx context.Context, addr, action string, since time.Time) (int, error) {
	return 1000, nil
}
func (denyAllStore) Insert(ctx context.Context, addr, action string, at time.Time) error { return nil }

func TestLimitRedirectsOverBudget(t *testing.T) {
	guard, _ := newGuard(t)
	guard.Limiter = shared.NewRateLimiter(denyAllStore{}, nil)

	var called bool
	res := httptest.NewRecorder()
	guard.Limit("admin_students", 10, 5*time.Minute)(okHandler(&called)).ServeHTTP(res, requestWithSession(nil))

	if called {
		t.Fatalf("handler must not run past the budget")
	}
	if res.Code != http.StatusSeeOther || res.Header().Get("Location") != "/error?code=429" {
		t.Fatalf("expected 429 page redirect, got %d %q", res.Code, res.Header().Get("Location"))
	}
}

func TestLimitPassesUnderBudget(t *testing.T) {
	guard, _ := newGuard(t)
	guard.Limiter = shared.NewRateLimiter(noopStore{}, nil)

	var called bool
	res := httptest.NewRecorder()
	guard.Limit("admin_students", 10, 5*time.Minute)(okHandler(&called)).ServeHTTP(res, requestWithSession(nil))

	if !called {
		t.Fatalf("handler should run under the budget")
	}
}

type noopStore struct{}

func (noopStore) Prune(ctx context.Context, action string, olderThan time.Time) error { return nil }
func (noopStore) Count(ctx context.Context, addr, action string, since time.Time) (int, error) {
	return 0, nil
}
func (noopStore) Insert(ctx context.Context, addr, action string, at time.Time) error { return nil }
