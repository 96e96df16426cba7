package credentials

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrMissingSetting indicates a required external setting was not supplied
	ErrMissingSetting = errors.New("required setting is missing")
	// ErrNoCache indicates no persistent cache was configured
	ErrNoCache = errors.New("credential cache is not configured")
	// ErrIncomplete indicates credentials without a username or password hash
	ErrIncomplete = errors.New("credentials are incomplete")
)

// StoreError reports a credential failure. It is fatal to the client: no
// authenticated call can be made without credentials.
type StoreError struct {
	Op      string
	Setting string
	Err     error
}

// Error implements the error interface
func (e *StoreError) Error() string {
	if e.Setting != "" {
		return fmt.Sprintf("credential store %s: %s: %v", e.Op, e.Setting, e.Err)
	}
	return fmt.Sprintf("credential store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
