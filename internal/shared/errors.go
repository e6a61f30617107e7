package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrForbidden indicates a role mismatch on a guarded page.
	ErrForbidden = errors.New("forbidden")
	// ErrRateLimited indicates too many attempts for an action.
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
	// ErrValidation indicates malformed form input.
	ErrValidation = errors.New("validation failed")
)
