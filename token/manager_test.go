package token

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/sdgrab/credentials"
)

type fakeAuth struct {
	mu        sync.Mutex
	responses []*Response
	err       error
	calls     atomic.Int32
	gate      chan struct{}
	seen      []credentials.Credentials
}

func (f *fakeAuth) RequestToken(ctx context.Context, creds credentials.Credentials) (*Response, error) {
	f.calls.Add(1)
	if f.gate != nil {
		<-f.gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, creds)
	if f.err != nil {
		return nil, f.err
	}
	resp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return resp, nil
}

type staticCreds struct {
	creds credentials.Credentials
	err   error
}

func (s staticCreds) Load(context.Context) (credentials.Credentials, error) {
	return s.creds, s.err
}

var testCreds = staticCreds{creds: credentials.Credentials{Username: "viewer", PasswordHash: "abc123"}}

func okResponse(value string) *Response {
	return &Response{Code: CodeOK, Message: "OK", ServerID: "20141201.web.1", Token: value}
}

func TestCurrentToken_BeforeAuthenticate(t *testing.T) {
	m := New(&fakeAuth{}, testCreds, zerolog.Nop())

	_, err := m.CurrentToken()
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Equal(t, Unauthenticated, m.State())
}

func TestAuthenticate_Success(t *testing.T) {
	issued := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	auth := &fakeAuth{responses: []*Response{okResponse("f3c8a1b2")}}
	m := New(auth, testCreds, zerolog.Nop(), WithClock(func() time.Time { return issued }))

	value, err := m.Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "f3c8a1b2", value)

	current, err := m.CurrentToken()
	require.NoError(t, err)
	assert.Equal(t, "f3c8a1b2", current)
	assert.Equal(t, Valid, m.State())

	snap := m.Snapshot()
	assert.True(t, snap.Valid)
	assert.Equal(t, issued, snap.IssuedAt)
	assert.Equal(t, "20141201.web.1", snap.ServerID)
	assert.Equal(t, []credentials.Credentials{testCreds.creds}, auth.seen)
}

func TestAuthenticate_StripsQuotesAndWhitespace(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "plain", raw: "abcdef"},
		{name: "quoted", raw: `"abcdef"`},
		{name: "padded", raw: "  abcdef\n"},
		{name: "quoted and padded", raw: ` "abcdef" `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(&fakeAuth{responses: []*Response{okResponse(tt.raw)}}, testCreds, zerolog.Nop())

			value, err := m.Authenticate(context.Background())
			require.NoError(t, err)
			assert.Equal(t, "abcdef", value)
		})
	}
}

func TestAuthenticate_EmptyToken(t *testing.T) {
	m := New(&fakeAuth{responses: []*Response{okResponse(`""`)}}, testCreds, zerolog.Nop())

	_, err := m.Authenticate(context.Background())
	assert.ErrorIs(t, err, ErrEmptyToken)
	assert.Equal(t, Unauthenticated, m.State())
}

func TestAuthenticate_RateLimitedIsTerminal(t *testing.T) {
	auth := &fakeAuth{responses: []*Response{
		{Code: CodeRateLimited, Message: "Maximum number of logins exceeded. Try again in an hour."},
		okResponse("never"),
	}}
	m := New(auth, testCreds, zerolog.Nop())

	_, err := m.Authenticate(context.Background())
	var rl *RateLimitedError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, CodeRateLimited, rl.Code)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, RateLimited, m.State())

	for i := 0; i < 3; i++ {
		_, err = m.Authenticate(context.Background())
		assert.ErrorIs(t, err, ErrRateLimited)

		_, err = m.Token(context.Background())
		assert.ErrorIs(t, err, ErrRateLimited)
	}
	assert.Equal(t, int32(1), auth.calls.Load())

	_, err = m.CurrentToken()
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestAuthenticate_OtherCodeIsAuthError(t *testing.T) {
	auth := &fakeAuth{responses: []*Response{
		{Code: 4003, Message: "Invalid username or password."},
		okResponse("second"),
	}}
	m := New(auth, testCreds, zerolog.Nop())

	_, err := m.Authenticate(context.Background())
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, 4003, authErr.Code)
	assert.Equal(t, Unauthenticated, m.State())

	value, err := m.Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "second", value)
}

func TestAuthenticate_TransportFailure(t *testing.T) {
	boom := errors.New("connection refused")
	m := New(&fakeAuth{err: boom}, testCreds, zerolog.Nop())

	_, err := m.Authenticate(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, Unauthenticated, m.State())
}

func TestAuthenticate_CredentialFailure(t *testing.T) {
	storeErr := &credentials.StoreError{Op: "load", Setting: "SD_USER", Err: credentials.ErrMissingSetting}
	auth := &fakeAuth{responses: []*Response{okResponse("x")}}
	m := New(auth, staticCreds{err: storeErr}, zerolog.Nop())

	_, err := m.Authenticate(context.Background())
	assert.ErrorIs(t, err, credentials.ErrMissingSetting)
	assert.Zero(t, auth.calls.Load())
}

func TestAuthenticate_ReplacesTokenWholesale(t *testing.T) {
	auth := &fakeAuth{responses: []*Response{
		okResponse("first"),
		{Code: 4003, Message: "nope"},
	}}
	m := New(auth, testCreds, zerolog.Nop())

	_, err := m.Authenticate(context.Background())
	require.NoError(t, err)

	_, err = m.Authenticate(context.Background())
	require.Error(t, err)

	assert.Equal(t, Token{}, m.Snapshot())
	_, err = m.CurrentToken()
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestAuthenticate_SingleFlight(t *testing.T) {
	auth := &fakeAuth{
		responses: []*Response{okResponse("shared")},
		gate:      make(chan struct{}),
	}
	m := New(auth, testCreds, zerolog.Nop())

	const callers = 8
	var wg sync.WaitGroup
	results := make([]string, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = m.Authenticate(context.Background())
		}(i)
	}

	require.Eventually(t, func() bool { return auth.calls.Load() == 1 }, time.Second, time.Millisecond)
	// Give the remaining callers time to join the in-flight call.
	time.Sleep(20 * time.Millisecond)
	close(auth.gate)
	wg.Wait()

	assert.Equal(t, int32(1), auth.calls.Load())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "shared", results[i])
	}
}

func TestAuthenticate_CallerCancelDoesNotAbortFlight(t *testing.T) {
	auth := &fakeAuth{
		responses: []*Response{okResponse("late")},
		gate:      make(chan struct{}),
	}
	m := New(auth, testCreds, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := m.Authenticate(ctx)
		done <- err
	}()

	require.Eventually(t, func() bool { return auth.calls.Load() == 1 }, time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	close(auth.gate)
	require.Eventually(t, func() bool { return m.State() == Valid }, time.Second, time.Millisecond)

	value, err := m.CurrentToken()
	require.NoError(t, err)
	assert.Equal(t, "late", value)
}

func TestInvalidate(t *testing.T) {
	var transitions []string
	var mu sync.Mutex
	observer := func(from, to State) {
		mu.Lock()
		defer mu.Unlock()
		transitions = append(transitions, from.String()+"->"+to.String())
	}

	auth := &fakeAuth{responses: []*Response{okResponse("gen1"), okResponse("gen2")}}
	m := New(auth, testCreds, zerolog.Nop(), WithObserver(observer))

	_, err := m.Authenticate(context.Background())
	require.NoError(t, err)

	assert.False(t, m.Invalidate("someone-else"))
	assert.Equal(t, Valid, m.State())

	assert.True(t, m.Invalidate("gen1"))
	assert.False(t, m.Invalidate("gen1"))
	assert.Equal(t, Unauthenticated, m.State())

	_, err = m.CurrentToken()
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	value, err := m.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "gen2", value)

	// A late rejection of the previous generation leaves the new token alone.
	assert.False(t, m.Invalidate("gen1"))
	assert.Equal(t, Valid, m.State())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"unauthenticated->authenticating",
		"authenticating->valid",
		"valid->unauthenticated",
		"unauthenticated->authenticating",
		"authenticating->valid",
	}, transitions)
}

func TestInvalidate_ConcurrentBurstTransitionsOnce(t *testing.T) {
	var toUnauth atomic.Int32
	observer := func(from, to State) {
		if from == Valid && to == Unauthenticated {
			toUnauth.Add(1)
		}
	}

	m := New(&fakeAuth{responses: []*Response{okResponse("gen1")}}, testCreds, zerolog.Nop(), WithObserver(observer))
	_, err := m.Authenticate(context.Background())
	require.NoError(t, err)

	var wg sync.WaitGroup
	var wins atomic.Int32
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if m.Invalidate("gen1") {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(1), toUnauth.Load())
}

func TestToken_ReturnsCurrentWithoutNetwork(t *testing.T) {
	auth := &fakeAuth{responses: []*Response{okResponse("abc")}}
	m := New(auth, testCreds, zerolog.Nop())

	for i := 0; i < 3; i++ {
		value, err := m.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "abc", value)
	}
	assert.Equal(t, int32(1), auth.calls.Load())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "unauthenticated", Unauthenticated.String())
	assert.Equal(t, "authenticating", Authenticating.String())
	assert.Equal(t, "valid", Valid.String())
	assert.Equal(t, "rate_limited", RateLimited.String())
	assert.Equal(t, "unknown", State(42).String())
}
