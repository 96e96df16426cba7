package token

import (
	"errors"
	"fmt"
	"time"
)

// Common errors
var (
	// ErrNotAuthenticated indicates no valid token is held
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrRateLimited indicates the service refused authentication for a cooldown window
	ErrRateLimited = errors.New("authentication rate limited")
	// ErrEmptyToken indicates a successful response without a token value
	ErrEmptyToken = errors.New("authentication response contained no token")
)

// RateLimitedError is returned once the service answers an authentication
// attempt with CodeRateLimited. The manager stays in RateLimited for the
// rest of the process and returns the same error without contacting the
// service again.
type RateLimitedError struct {
	Code     int
	Message  string
	ServerID string
	At       time.Time
}

// Error implements the error interface
func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("authentication rate limited (code %d): %s", e.Code, e.Message)
}

// Is reports ErrRateLimited as a match.
func (e *RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}

// AuthError is a rejected authentication attempt with any other non-zero code.
type AuthError struct {
	Code    int
	Message string
}

// Error implements the error interface
func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed (code %d): %s", e.Code, e.Message)
}
