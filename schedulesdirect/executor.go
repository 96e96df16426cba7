package schedulesdirect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/s0up4200/sdgrab/token"
)

// Request describes one logical API call. Path is resolved against the
// client's base URL. Body is JSON encoded unless it is a string or []byte,
// which are sent as is.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Headers map[string]string
	Body    any
}

// Execute sends req with the current session token and decodes a 2xx body
// into T. A string or []byte T receives the raw body.
//
// Execute fails with ErrUnauthenticated, without touching the network, when
// no token is held. When the service rejects the token the manager is told
// exactly once; with auto re-authentication enabled a fresh token is
// acquired and the request replayed a single time.
func Execute[T any](ctx context.Context, c *Client, req Request) (T, error) {
	var zero T

	body, err := c.execute(ctx, req)
	if err != nil {
		return zero, err
	}
	return decode[T](body)
}

// ExecuteRaw is Execute for endpoints that answer with plain text.
func ExecuteRaw(ctx context.Context, c *Client, req Request) (string, error) {
	return Execute[string](ctx, c, req)
}

func (c *Client) execute(ctx context.Context, req Request) ([]byte, error) {
	tok, err := c.currentToken(ctx)
	if err != nil {
		return nil, err
	}

	body, err := c.do(ctx, req, tok)
	if err == nil || !IsUnauthorized(err) {
		return body, err
	}

	if c.tokens.Invalidate(tok) {
		c.logger.Info().
			Str("method", req.Method).
			Str("path", req.Path).
			Msg("Session token rejected, re-authentication required")
	}
	if !c.autoReauth {
		return nil, err
	}

	fresh, authErr := c.tokens.Token(ctx)
	if authErr != nil {
		return nil, fmt.Errorf("%w: re-authenticate: %w", ErrUnauthenticated, errors.Join(authErr, err))
	}
	return c.do(ctx, req, fresh)
}

// currentToken returns the live token. A caller arriving while a rejected
// token is being replaced waits for the replacement instead of failing.
func (c *Client) currentToken(ctx context.Context) (string, error) {
	tok, err := c.tokens.CurrentToken()
	if err == nil {
		return tok, nil
	}
	if !c.autoReauth || !c.tokens.HasAuthenticated() || errors.Is(err, token.ErrRateLimited) {
		return "", fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	tok, err = c.tokens.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	return tok, nil
}

func decode[T any](body []byte) (T, error) {
	var out T
	switch p := any(&out).(type) {
	case *string:
		*p = string(body)
		return out, nil
	case *[]byte:
		*p = append([]byte(nil), body...)
		return out, nil
	}

	if err := json.Unmarshal(body, &out); err != nil {
		var zero T
		return zero, &MalformedResponseError{RawBody: string(body), Err: err}
	}
	return out, nil
}
