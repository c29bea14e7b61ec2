package domain

import "errors"

// Sentinel errors for provider error classification. The Vultr client wraps
// these so callers can branch on error categories without parsing provider
// messages themselves.
//
//	return fmt.Errorf("failed to update record: %w", domain.ErrNotFound)
var (
	// ErrNotFound indicates the requested record or domain does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized indicates the request was rejected due to an
	// invalid, expired, or missing API key.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates the provider throttled the request.
	ErrRateLimited = errors.New("rate limited")

	// ErrConflict indicates a state or uniqueness conflict, such as a
	// duplicate record.
	ErrConflict = errors.New("conflict")
)
