package security

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academydb/academydb/internal/shared"
)

type stubRepo struct {
	settings Settings
	getErr   error
	updated  *Settings
}

func (s *stubRepo) Get(ctx context.Context) (Settings, error) {
	if s.getErr != nil {
		return Settings{}, s.getErr
	}
	return s.settings, nil
}

func (s *stubRepo) Update(ctx context.Context, settings Settings) error {
	s.updated = &settings
	return nil
}

func TestCurrentFallsBackToDefaults(t *testing.T) {
	svc := NewService(&stubRepo{getErr: errors.New("connection refused")}, nil)
	got := svc.Current(context.Background())
	assert.Equal(t, DefaultSettings(), got)
}

func TestCurrentCachesReads(t *testing.T) {
	repo := &stubRepo{settings: Settings{MinPasswordLength: 12, MaxLoginAttempts: 3, SessionTimeoutMinutes: 15}}
	svc := NewService(repo, nil)

	first := svc.Current(context.Background())
	require.Equal(t, 12, first.MinPasswordLength)

	// A store failure after warm-up must not surface within the TTL.
	repo.getErr = errors.New("connection refused")
	second := svc.Current(context.Background())
	assert.Equal(t, first, second)
}

func TestUpdateRejectsOutOfRangeSettings(t *testing.T) {
	svc := NewService(&stubRepo{}, nil)
	ctx := context.Background()

	base := Settings{MinPasswordLength: 8, MaxLoginAttempts: 5, SessionTimeoutMinutes: 30}

	cases := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"password length too short", func(s *Settings) { s.MinPasswordLength = 5 }},
		{"password length too long", func(s *Settings) { s.MinPasswordLength = 200 }},
		{"attempts too low", func(s *Settings) { s.MaxLoginAttempts = 0 }},
		{"attempts too high", func(s *Settings) { s.MaxLoginAttempts = 500 }},
		{"timeout too low", func(s *Settings) { s.SessionTimeoutMinutes = 0 }},
		{"timeout too high", func(s *Settings) { s.SessionTimeoutMinutes = 2000 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := base
			tc.mutate(&s)
			err := svc.Update(ctx, s)
			assert.ErrorIs(t, err, shared.ErrValidation)
		})
	}
}

func TestUpdatePersistsAndRefreshesCache(t *testing.T) {
	repo := &stubRepo{settings: DefaultSettings()}
	svc := NewService(repo, nil)
	ctx := context.Background()

	next := Settings{MinPasswordLength: 10, RequireUppercase: true, MaxLoginAttempts: 3, SessionTimeoutMinutes: 20}
	require.NoError(t, svc.Update(ctx, next))
	require.NotNil(t, repo.updated)
	assert.Equal(t, 10, repo.updated.MinPasswordLength)

	// Reads after an update reflect the new policy immediately.
	assert.Equal(t, 10, svc.Current(ctx).MinPasswordLength)
}

func TestValidatePassword(t *testing.T) {
	repo := &stubRepo{settings: Settings{
		MinPasswordLength:     8,
		RequireSpecialChars:   true,
		RequireNumbers:        true,
		RequireUppercase:      true,
		MaxLoginAttempts:      5,
		SessionTimeoutMinutes: 30,
	}}
	svc := NewService(repo, nil)
	ctx := context.Background()

	cases := []struct {
		name     string
		password string
		ok       bool
	}{
		{"meets all rules", "Str0ng!pass", true},
		{"too short", "S0rt!", false},
		{"no special char", "Str0ngpass", false},
		{"no number", "Strong!pass", false},
		{"no uppercase", "str0ng!pass", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.ValidatePassword(ctx, tc.password)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, shared.ErrValidation)
			}
		})
	}
}
