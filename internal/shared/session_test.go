package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestSessionManager(t *testing.T) *SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewSessionManager(client, "test_session", "secret", time.Hour, false)
}

func TestSessionPersistsAcrossRequests(t *testing.T) {
	sm := newTestSessionManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if sess.Authenticated() {
		t.Fatalf("fresh session must be anonymous")
	}

	sess.SetPrincipal("42", "student")
	sess.Set("theme", "dark")

	res := httptest.NewRecorder()
	if err := sm.Commit(ctx, res, req, sess); err != nil {
		t.Fatalf("commit: %v", err)
	}

	second := httptest.NewRequest(http.MethodGet, "/", nil)
	second.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: sess.ID})
	loaded, err := sm.Load(ctx, second)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Principal() != "42" || loaded.Role() != "student" {
		t.Fatalf("principal not restored: %q/%q", loaded.Principal(), loaded.Role())
	}
	if loaded.Get("theme") != "dark" {
		t.Fatalf("values not restored")
	}
}

func TestSessionDestroy(t *testing.T) {
	sm := newTestSessionManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, _ := sm.Load(ctx, req)
	sess.SetPrincipal("7", "admin")
	res := httptest.NewRecorder()
	if err := sm.Commit(ctx, res, req, sess); err != nil {
		t.Fatalf("commit: %v", err)
	}

	sm.Destroy(sess)
	res = httptest.NewRecorder()
	if err := sm.Commit(ctx, res, req, sess); err != nil {
		t.Fatalf("commit destroy: %v", err)
	}

	second := httptest.NewRequest(http.MethodGet, "/", nil)
	second.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: sess.ID})
	loaded, err := sm.Load(ctx, second)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Authenticated() {
		t.Fatalf("destroyed session must not restore the principal")
	}
}

func TestSessionIdleExpiry(t *testing.T) {
	sess := &Session{}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Anonymous sessions never expire.
	if sess.ExpiredSince(30*time.Minute, now) {
		t.Fatalf("anonymous session reported expired")
	}

	sess.SetPrincipal("1", "faculty")
	sess.Touch(now.Add(-31 * time.Minute))
	if !sess.ExpiredSince(30*time.Minute, now) {
		t.Fatalf("idle session should expire past the timeout")
	}

	sess.Touch(now.Add(-5 * time.Minute))
	if sess.ExpiredSince(30*time.Minute, now) {
		t.Fatalf("recently touched session should not expire")
	}
}

func TestSessionFlashDrainsOnce(t *testing.T) {
	sess := &Session{}
	sess.AddFlash(FlashMessage{Kind: "success", Message: "saved"})

	msg := sess.PopFlash()
	if msg == nil || msg.Message != "saved" {
		t.Fatalf("expected queued flash, got %+v", msg)
	}
	if sess.PopFlash() != nil {
		t.Fatalf("flash should only pop once")
	}
}
