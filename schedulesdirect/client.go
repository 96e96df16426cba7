package schedulesdirect

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/s0up4200/sdgrab/credentials"
	"github.com/s0up4200/sdgrab/retrier"
	"github.com/s0up4200/sdgrab/token"
)

// Client represents a Schedules Direct API client
type Client struct {
	baseURL    string
	apiVersion string
	http       *resty.Client
	tokens     *token.Manager
	policy     retrier.Policy
	notify     func(err error, wait time.Duration)
	autoReauth bool
	logger     zerolog.Logger
}

// NewClient creates a new Schedules Direct client. creds is consulted only
// when a token has to be acquired.
func NewClient(baseURL string, creds token.CredentialLoader, logger zerolog.Logger, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("%w: base URL is required", ErrInvalidConfig)
	}
	if creds == nil {
		return nil, fmt.Errorf("%w: credential loader is required", ErrInvalidConfig)
	}

	options := newClientOptions()
	for _, opt := range opts {
		opt(options)
	}
	if err := options.retryPolicy.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	httpClient := resty.New()
	if options.httpClient != nil {
		httpClient = resty.NewWithClient(options.httpClient)
	}
	httpClient.
		SetBaseURL(baseURL).
		SetTimeout(options.timeout).
		SetRetryCount(0).
		SetLogger(newRestyLogger(logger)).
		SetHeader("User-Agent", options.userAgent).
		SetHeader("Content-Type", ContentType).
		SetHeader("Accept", "application/json")

	c := &Client{
		baseURL:    baseURL,
		apiVersion: options.apiVersion,
		http:       httpClient,
		policy:     options.retryPolicy,
		notify:     options.retryNotify,
		autoReauth: options.autoReauth,
		logger:     logger,
	}
	c.tokens = token.New(c, creds, logger, options.tokenOpts...)

	return c, nil
}

// Tokens returns the client's token manager.
func (c *Client) Tokens() *token.Manager {
	return c.tokens
}

// Authenticate acquires a session token. It must succeed before any other
// call is made.
func (c *Client) Authenticate(ctx context.Context) error {
	_, err := c.tokens.Authenticate(ctx)
	return err
}

// BaseURL returns the service root every request path is resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RequestToken performs the identity call. It implements token.Authenticator.
// Refusals the service reports in a JSON envelope come back as a Response
// with a non-zero code rather than an error.
func (c *Client) RequestToken(ctx context.Context, creds credentials.Credentials) (*token.Response, error) {
	req := Request{
		Method: http.MethodPost,
		Path:   c.apiPath("token"),
		Body: tokenRequest{
			Username: creds.Username,
			Password: creds.PasswordHash,
		},
	}

	body, err := c.do(ctx, req, "")
	if err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.Code != 0 {
			return &token.Response{
				Code:     httpErr.Code,
				Message:  httpErr.Message,
				ServerID: httpErr.ServerID,
			}, nil
		}
		return nil, err
	}

	resp, err := decode[token.Response](body)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// apiPath joins segments under the versioned API root.
func (c *Client) apiPath(segments ...string) string {
	return "/" + c.apiVersion + "/" + strings.Join(segments, "/")
}

// do runs one logical call through the retrier and returns the body of the
// first 2xx response.
func (c *Client) do(ctx context.Context, req Request, tok string) ([]byte, error) {
	attempt := 0
	op := func(ctx context.Context) ([]byte, error) {
		attempt++
		return c.send(ctx, req, tok)
	}

	notify := func(err error, wait time.Duration) {
		c.logger.Debug().
			Err(err).
			Str("method", req.Method).
			Str("path", req.Path).
			Int("attempt", attempt).
			Dur("wait", wait).
			Msg("Retrying request")
		if c.notify != nil {
			c.notify(err, wait)
		}
	}

	return retrier.Run(ctx, c.policy, op, Classify, retrier.WithNotify(notify))
}

// send performs a single HTTP attempt.
func (c *Client) send(ctx context.Context, req Request, tok string) ([]byte, error) {
	r := c.http.R().SetContext(ctx)
	if tok != "" {
		r.SetHeader(HeaderToken, tok)
	}
	for k, v := range req.Headers {
		r.SetHeader(k, v)
	}
	if len(req.Query) > 0 {
		r.SetQueryParamsFromValues(req.Query)
	}
	if req.Body != nil {
		r.SetBody(req.Body)
	}

	resp, err := r.Execute(req.Method, req.Path)
	if err != nil {
		return nil, &TransportError{Method: req.Method, Path: req.Path, Err: err}
	}

	body := resp.Body()
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, newHTTPError(resp.StatusCode(), body)
	}

	c.logger.Trace().
		Str("method", req.Method).
		Str("path", req.Path).
		Int("status", resp.StatusCode()).
		Dur("took", resp.Time()).
		Msg("Schedules Direct request completed")

	return body, nil
}
