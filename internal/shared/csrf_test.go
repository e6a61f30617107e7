package shared

import (
	"context"
	"errors"
	"testing"
)

func TestCSRFTokenRoundTrip(t *testing.T) {
	m := NewCSRFManager()
	sess := &Session{}
	ctx := context.Background()

	token, err := m.EnsureToken(ctx, sess)
	if err != nil {
		t.Fatalf("ensure token: %v", err)
	}
	if token == "" {
		t.Fatalf("expected non-empty token")
	}

	// A second call must return the same session-bound token.
	again, err := m.EnsureToken(ctx, sess)
	if err != nil {
		t.Fatalf("ensure token again: %v", err)
	}
	if again != token {
		t.Fatalf("token rotated within session: %q vs %q", token, again)
	}

	if err := m.VerifyToken(ctx, sess, token); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestCSRFTokenMismatch(t *testing.T) {
	m := NewCSRFManager()
	sess := &Session{}
	ctx := context.Background()

	if _, err := m.EnsureToken(ctx, sess); err != nil {
		t.Fatalf("ensure token: %v", err)
	}
	if err := m.VerifyToken(ctx, sess, "forged"); !errors.Is(err, ErrCSRFTokenMismatch) {
		t.Fatalf("expected mismatch error, got %v", err)
	}
	if err := m.VerifyToken(ctx, sess, ""); !errors.Is(err, ErrCSRFTokenMissing) {
		t.Fatalf("expected missing error for empty token, got %v", err)
	}
}

func TestCSRFTokenWithoutSession(t *testing.T) {
	m := NewCSRFManager()
	ctx := context.Background()

	if _, err := m.EnsureToken(ctx, nil); err == nil {
		t.Fatalf("expected error for nil session")
	}
	if err := m.VerifyToken(ctx, nil, "anything"); !errors.Is(err, ErrCSRFTokenMissing) {
		t.Fatalf("expected missing error for nil session, got %v", err)
	}

	// A session that never issued a token rejects all submissions.
	if err := m.VerifyToken(ctx, &Session{}, "anything"); !errors.Is(err, ErrCSRFTokenMissing) {
		t.Fatalf("expected missing error for tokenless session, got %v", err)
	}
}
