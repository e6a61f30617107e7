package security

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode"

	"golang.org/x/sync/singleflight"

	"github.com/academydb/academydb/internal/shared"
)

// cacheTTL bounds how stale a cached settings read may be. Settings sit on
// the hot path of every guarded request, so they are not re-read per hit.
const cacheTTL = 30 * time.Second

// Service reads and mutates the security policy singleton.
type Service struct {
	repo   Repository
	logger *slog.Logger

	group    singleflight.Group
	mu       sync.RWMutex
	cached   Settings
	cachedAt time.Time
}

// NewService constructs a Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Current returns the active settings. Store failures fall back to the
// defaults so a database outage cannot disable the session guard entirely.
func (s *Service) Current(ctx context.Context) Settings {
	s.mu.RLock()
	if time.Since(s.cachedAt) < cacheTTL {
		cached := s.cached
		s.mu.RUnlock()
		return cached
	}
	s.mu.RUnlock()

	v, err, _ := s.group.Do("settings", func() (any, error) {
		settings, err := s.repo.Get(ctx)
		if err != nil {
			return Settings{}, err
		}
		s.mu.Lock()
		s.cached = settings
		s.cachedAt = time.Now()
		s.mu.Unlock()
		return settings, nil
	})
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("load security settings", slog.Any("error", err))
		}
		return DefaultSettings()
	}
	return v.(Settings)
}

// Update validates and persists new settings, then drops the cache.
func (s *Service) Update(ctx context.Context, settings Settings) error {
	if settings.MinPasswordLength < 6 || settings.MinPasswordLength > 128 {
		return fmt.Errorf("%w: minimum password length must be between 6 and 128", shared.ErrValidation)
	}
	if settings.MaxLoginAttempts < 1 || settings.MaxLoginAttempts > 100 {
		return fmt.Errorf("%w: maximum login attempts must be between 1 and 100", shared.ErrValidation)
	}
	if settings.SessionTimeoutMinutes < 1 || settings.SessionTimeoutMinutes > 24*60 {
		return fmt.Errorf("%w: session timeout must be between 1 and 1440 minutes", shared.ErrValidation)
	}
	if err := s.repo.Update(ctx, settings); err != nil {
		return err
	}
	s.mu.Lock()
	s.cached = settings
	s.cachedAt = time.Now()
	s.mu.Unlock()
	return nil
}

// SessionTimeout implements the session guard's timeout source.
func (s *Service) SessionTimeout(ctx context.Context) time.Duration {
	return s.Current(ctx).SessionTimeout()
}

// MaxLoginAttempts implements the login rate-limit policy source.
func (s *Service) MaxLoginAttempts(ctx context.Context) int {
	return s.Current(ctx).MaxLoginAttempts
}

// ValidatePassword checks a candidate password against the active policy.
func (s *Service) ValidatePassword(ctx context.Context, password string) error {
	settings := s.Current(ctx)
	if len(password) < settings.MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters long", shared.ErrValidation, settings.MinPasswordLength)
	}
	if settings.RequireSpecialChars && !strings.ContainsAny(password, `!@#$%^&*(),.?":{}|<>`) {
		return fmt.Errorf("%w: password must contain at least one special character", shared.ErrValidation)
	}
	if settings.RequireNumbers && !containsClass(password, unicode.IsDigit) {
		return fmt.Errorf("%w: password must contain at least one number", shared.ErrValidation)
	}
	if settings.RequireUppercase && !containsClass(password, unicode.IsUpper) {
		return fmt.Errorf("%w: password must contain at least one uppercase letter", shared.ErrValidation)
	}
	return nil
}

func containsClass(s string, class func(rune) bool) bool {
	for _, r := range s {
		if class(r) {
			return true
		}
	}
	return false
}
