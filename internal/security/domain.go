package security

import "time"

// Settings is the singleton security configuration row. Admins mutate it;
// the credential verifier and session guard read it on every decision.
type Settings struct {
	MinPasswordLength     int
	RequireSpecialChars   bool
	RequireNumbers        bool
	RequireUppercase      bool
	MaxLoginAttempts      int
	SessionTimeoutMinutes int
	UpdatedAt             time.Time
}

// DefaultSettings returns the policy applied before an admin ever saves one.
func DefaultSettings() Settings {
	return Settings{
		MinPasswordLength:     8,
		RequireSpecialChars:   false,
		RequireNumbers:        true,
		RequireUppercase:      false,
		MaxLoginAttempts:      10,
		SessionTimeoutMinutes: 30,
	}
}

// SessionTimeout converts the configured minutes to a duration.
func (s Settings) SessionTimeout() time.Duration {
	return time.Duration(s.SessionTimeoutMinutes) * time.Minute
}
