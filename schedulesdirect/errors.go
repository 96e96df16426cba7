package schedulesdirect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/s0up4200/sdgrab/retrier"
	"github.com/s0up4200/sdgrab/token"
)

// CodeTokenExpired is the envelope code for a rejected or expired token.
const CodeTokenExpired = 4006

// Common errors
var (
	// ErrUnauthenticated indicates a call was attempted without a valid token
	ErrUnauthenticated = errors.New("schedules direct: not authenticated")
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid schedules direct configuration")
)

// envelope is the {code, message} wrapper the service puts on most replies.
type envelope struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Response string `json:"response"`
	ServerID string `json:"serverID"`
}

// HTTPError is a non-2xx response. Code and Message come from the body's
// envelope when it has one.
type HTTPError struct {
	StatusCode int
	Body       string
	Code       int
	Message    string
	Response   string
	ServerID   string
}

func newHTTPError(status int, body []byte) *HTTPError {
	e := &HTTPError{
		StatusCode: status,
		Body:       string(body),
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err == nil {
		e.Code = env.Code
		e.Message = env.Message
		e.Response = env.Response
		e.ServerID = env.ServerID
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

// Error implements the error interface
func (e *HTTPError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("schedules direct API error: status %d: code %d: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("schedules direct API error: status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound checks if the error indicates a not found response
func (e *HTTPError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized checks if the error indicates the token was rejected
func (e *HTTPError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized ||
		e.StatusCode == http.StatusForbidden ||
		e.Code == CodeTokenExpired
}

// IsRetryable reports whether another attempt could succeed. Gateway and
// server errors are retried; a rate-limit code never is.
func (e *HTTPError) IsRetryable() bool {
	return e.StatusCode >= http.StatusInternalServerError && e.Code != token.CodeRateLimited
}

// IsBadGateway checks for a 502 response
func (e *HTTPError) IsBadGateway() bool {
	return e.StatusCode == http.StatusBadGateway
}

// MalformedResponseError is a 2xx response whose body could not be decoded.
type MalformedResponseError struct {
	RawBody string
	Err     error
}

// Error implements the error interface
func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// TransportError is a failure to get any response from the service.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

// Error implements the error interface
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Classify maps a failed attempt to a retry decision: transport failures
// and 5xx responses are retried, everything else is returned as is.
func Classify(err error) retrier.Class {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.IsRetryable() {
			return retrier.Retryable
		}
		return retrier.Fatal
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		if errors.Is(err, context.Canceled) {
			return retrier.Fatal
		}
		return retrier.Retryable
	}

	return retrier.Fatal
}

// IsUnauthorized reports whether err is a token rejection from the service.
func IsUnauthorized(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.IsUnauthorized()
}
