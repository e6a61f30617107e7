package app

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/academydb/academydb/internal/shared"
	_ "github.com/academydb/academydb/testing"
)

func newMiddlewareRouter(t *testing.T) (chi.Router, *bool) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessions := shared.NewSessionManager(client, "academydb_session", "test-secret", time.Hour, false)
	csrf := shared.NewCSRFManager()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         logger,
		Config:         &Config{AppRequestTimeout: time.Second},
		SessionManager: sessions,
		CSRFManager:    csrf,
	}) {
		r.Use(mw)
	}

	updated := false
	r.Get("/form", func(w http.ResponseWriter, req *http.Request) {
		sess := shared.SessionFromContext(req.Context())
		token, err := csrf.EnsureToken(req.Context(), sess)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(token))
	})
	r.Post("/update", func(w http.ResponseWriter, req *http.Request) {
		updated = true
		w.WriteHeader(http.StatusNoContent)
	})
	return r, &updated
}

func fetchSessionToken(t *testing.T, r chi.Router) (*http.Cookie, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/form", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("form request: status %d", rec.Code)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("no session cookie issued")
	}
	return cookies[0], rec.Body.String()
}

func postUpdate(r chi.Router, cookie *http.Cookie, token string) *httptest.ResponseRecorder {
	form := url.Values{}
	if token != "" {
		form.Set(shared.CSRFFormField, token)
	}
	req := httptest.NewRequest(http.MethodPost, "/update", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestMutationBlockedWithoutValidToken(t *testing.T) {
	r, updated := newMiddlewareRouter(t)
	cookie, _ := fetchSessionToken(t, r)

	if rec := postUpdate(r, cookie, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("missing token: status %d, want %d", rec.Code, http.StatusForbidden)
	}
	if rec := postUpdate(r, cookie, "not-the-token"); rec.Code != http.StatusForbidden {
		t.Fatalf("wrong token: status %d, want %d", rec.Code, http.StatusForbidden)
	}
	if *updated {
		t.Fatalf("handler ran despite rejected tokens")
	}
}

func TestMutationAllowedWithSessionToken(t *testing.T) {
	r, updated := newMiddlewareRouter(t)
	cookie, token := fetchSessionToken(t, r)
	if token == "" {
		t.Fatalf("no token issued")
	}

	rec := postUpdate(r, cookie, token)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("valid token: status %d, want %d", rec.Code, http.StatusNoContent)
	}
	if !*updated {
		t.Fatalf("handler did not run with a valid token")
	}
}

func TestReadRequestsSkipTokenCheck(t *testing.T) {
	r, _ := newMiddlewareRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/form", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatalf("security headers not applied")
	}
}
