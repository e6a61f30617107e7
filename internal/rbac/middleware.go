package rbac

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/academydb/academydb/internal/shared"
)

// TimeoutSource supplies the configured idle timeout for sessions.
type TimeoutSource interface {
	SessionTimeout(ctx context.Context) time.Duration
}

// Middleware wires session, role and rate-limit guards for HTTP handlers.
type Middleware struct {
	Sessions *shared.SessionManager
	Timeouts TimeoutSource
	Limiter  *shared.RateLimiter
	Activity *shared.ActivityLogger
	Logger   *slog.Logger
}

// RequireRole admits only authenticated sessions holding the given role.
// A missing session, an idle-expired session, or a role mismatch all end in
// a redirect to the login page; the guarded handler never runs. Admitted
// requests refresh the sliding-expiration clock.
func (m Middleware) RequireRole(role Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := shared.SessionFromContext(r.Context())
			if sess == nil || !sess.Authenticated() {
				http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
				return
			}

			now := time.Now()
			if m.Timeouts != nil && sess.ExpiredSince(m.Timeouts.SessionTimeout(r.Context()), now) {
				m.Sessions.Destroy(sess)
				http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
				return
			}

			current, err := ParseRole(sess.Role())
			if err != nil || current != role {
				m.record(r, sess.Principal(), "unauthorized_access",
					"attempted to access a "+role.String()+" page", shared.StatusFailure)
				m.Sessions.Destroy(sess)
				http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
				return
			}

			sess.Touch(now)
			next.ServeHTTP(w, r)
		})
	}
}

// Limit applies the per-page fixed-window budget before the handler runs.
// Denied requests are logged and redirected to the too-many-requests page.
func (m Middleware) Limit(action string, maxAttempts int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.Limiter != nil && !m.Limiter.Allow(r.Context(), clientAddr(r), action, maxAttempts, window) {
				actor := shared.UnknownActor
				if sess := shared.SessionFromContext(r.Context()); sess != nil && sess.Authenticated() {
					actor = sess.Principal()
				}
				m.record(r, actor, "rate_limit_exceeded", "too many attempts for "+action, shared.StatusFailure)
				http.Redirect(w, r, "/error?code=429", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) record(r *http.Request, actor, action, description, status string) {
	if m.Activity == nil {
		return
	}
	m.Activity.Record(r.Context(), shared.ActivityEntry{
		Actor:       actor,
		Action:      action,
		Description: description,
		Status:      status,
		IPAddress:   clientAddr(r),
		UserAgent:   r.UserAgent(),
	})
}

func clientAddr(r *http.Request) string {
	return r.RemoteAddr
}
