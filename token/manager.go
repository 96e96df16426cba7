package token

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/s0up4200/sdgrab/credentials"
)

// Response codes returned by the identity endpoint.
const (
	CodeOK          = 0
	CodeRateLimited = 3000
)

// State is the lifecycle position of the session token.
type State int

const (
	// Unauthenticated means no token is held; the next caller must authenticate.
	Unauthenticated State = iota
	// Authenticating means an identity call is in flight.
	Authenticating
	// Valid means a token is held and may be attached to requests.
	Valid
	// RateLimited is terminal for the process.
	RateLimited
)

// String returns the string representation of a State
func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticating:
		return "authenticating"
	case Valid:
		return "valid"
	case RateLimited:
		return "rate_limited"
	default:
		return "unknown"
	}
}

// Token is the live session token. It is replaced wholesale, never edited.
type Token struct {
	Value    string
	IssuedAt time.Time
	Valid    bool
	Code     int
	Message  string
	ServerID string
}

// Response is the identity endpoint's reply.
type Response struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	ServerID string `json:"serverID"`
	Datetime string `json:"datetime"`
	Token    string `json:"token"`
}

// Authenticator performs the identity call.
type Authenticator interface {
	RequestToken(ctx context.Context, creds credentials.Credentials) (*Response, error)
}

// CredentialLoader supplies the account to authenticate with.
type CredentialLoader interface {
	Load(ctx context.Context) (credentials.Credentials, error)
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source used for IssuedAt.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithObserver registers a callback invoked after every state change.
// It runs outside the manager's lock.
func WithObserver(fn func(from, to State)) Option {
	return func(m *Manager) {
		m.observer = fn
	}
}

// Manager owns the session token and is its only writer.
type Manager struct {
	auth   Authenticator
	creds  CredentialLoader
	logger zerolog.Logger

	now      func() time.Time
	observer func(from, to State)

	mu          sync.RWMutex
	state       State
	token       Token
	rateLimited *RateLimitedError
	established bool

	flight singleflight.Group
}

// New creates a Manager in the Unauthenticated state.
func New(auth Authenticator, creds CredentialLoader, logger zerolog.Logger, opts ...Option) *Manager {
	m := &Manager{
		auth:   auth,
		creds:  creds,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Snapshot returns a copy of the live token.
func (m *Manager) Snapshot() Token {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// HasAuthenticated reports whether a token was ever acquired.
func (m *Manager) HasAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.established
}

// CurrentToken returns the token value, or ErrNotAuthenticated when none is
// valid. In the RateLimited state the error also matches ErrRateLimited.
func (m *Manager) CurrentToken() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	switch m.state {
	case Valid:
		return m.token.Value, nil
	case RateLimited:
		return "", fmt.Errorf("%w: %w", ErrNotAuthenticated, m.rateLimited)
	default:
		return "", ErrNotAuthenticated
	}
}

// Token returns the current token, authenticating first when none is held.
func (m *Manager) Token(ctx context.Context) (string, error) {
	if value, err := m.CurrentToken(); err == nil {
		return value, nil
	}
	return m.Authenticate(ctx)
}

// Authenticate acquires a fresh token. Concurrent callers share a single
// identity call; a caller whose ctx ends stops waiting but does not cancel
// the shared call.
func (m *Manager) Authenticate(ctx context.Context) (string, error) {
	if err := m.rateLimitErr(); err != nil {
		return "", err
	}

	ch := m.flight.DoChan("authenticate", func() (any, error) {
		return m.authenticate(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// Invalidate drops the token if it still equals stale and reports whether
// it did. A burst of rejections for the same token causes one transition.
func (m *Manager) Invalidate(stale string) bool {
	m.mu.Lock()
	if m.state != Valid || m.token.Value != stale {
		m.mu.Unlock()
		return false
	}
	from := m.state
	m.state = Unauthenticated
	m.token = Token{}
	m.mu.Unlock()

	m.logger.Debug().Msg("Session token rejected by service, invalidated")
	m.notify(from, Unauthenticated)
	return true
}

func (m *Manager) authenticate(ctx context.Context) (string, error) {
	if err := m.rateLimitErr(); err != nil {
		return "", err
	}

	m.mu.Lock()
	from := m.state
	m.state = Authenticating
	m.token = Token{}
	m.mu.Unlock()
	m.notify(from, Authenticating)

	creds, err := m.creds.Load(ctx)
	if err != nil {
		m.fail()
		return "", fmt.Errorf("load credentials: %w", err)
	}

	resp, err := m.auth.RequestToken(ctx, creds)
	if err != nil {
		m.fail()
		return "", fmt.Errorf("request token: %w", err)
	}

	switch resp.Code {
	case CodeOK:
		value := strings.TrimSpace(strings.ReplaceAll(resp.Token, `"`, ""))
		if value == "" {
			m.fail()
			return "", ErrEmptyToken
		}

		m.mu.Lock()
		m.state = Valid
		m.established = true
		m.token = Token{
			Value:    value,
			IssuedAt: m.now(),
			Valid:    true,
			Code:     resp.Code,
			Message:  resp.Message,
			ServerID: resp.ServerID,
		}
		m.mu.Unlock()

		m.logger.Debug().
			Str("username", creds.Username).
			Str("server_id", resp.ServerID).
			Msg("Authenticated")
		m.notify(Authenticating, Valid)
		return value, nil

	case CodeRateLimited:
		rl := &RateLimitedError{
			Code:     resp.Code,
			Message:  resp.Message,
			ServerID: resp.ServerID,
			At:       m.now(),
		}

		m.mu.Lock()
		m.state = RateLimited
		m.rateLimited = rl
		m.mu.Unlock()

		m.logger.Error().
			Int("code", resp.Code).
			Str("message", resp.Message).
			Msg("Authentication rate limited, no further attempts will be made")
		m.notify(Authenticating, RateLimited)
		return "", rl

	default:
		m.fail()
		return "", &AuthError{Code: resp.Code, Message: resp.Message}
	}
}

// fail returns an in-flight authentication to Unauthenticated.
func (m *Manager) fail() {
	m.mu.Lock()
	m.state = Unauthenticated
	m.token = Token{}
	m.mu.Unlock()
	m.notify(Authenticating, Unauthenticated)
}

func (m *Manager) rateLimitErr() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.rateLimited != nil {
		return m.rateLimited
	}
	return nil
}

func (m *Manager) notify(from, to State) {
	if from == to {
		return
	}
	m.logger.Trace().
		Str("from", from.String()).
		Str("to", to.String()).
		Msg("Token state changed")
	if m.observer != nil {
		m.observer(from, to)
	}
}
