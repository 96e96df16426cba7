package schedulesdirect

import (
	"net/http"
	"strings"
	"time"

	"github.com/s0up4200/sdgrab/retrier"
	"github.com/s0up4200/sdgrab/token"
)

const (
	DefaultBaseURL    = "https://json.schedulesdirect.org"
	DefaultAPIVersion = "20141201"
	DefaultTimeout    = 10 * time.Second
	DefaultUserAgent  = "sdgrab"

	// ContentType is sent on every request.
	ContentType = "application/json;charset=UTF-8"
	// HeaderToken carries the session token.
	HeaderToken = "token"
)

// Option configures a Client.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	apiVersion  string
	timeout     time.Duration
	userAgent   string
	retryPolicy retrier.Policy
	retryNotify func(err error, wait time.Duration)
	httpClient  *http.Client
	autoReauth  bool
	tokenOpts   []token.Option
}

func newClientOptions() *clientOptions {
	return &clientOptions{
		apiVersion:  DefaultAPIVersion,
		timeout:     DefaultTimeout,
		userAgent:   DefaultUserAgent,
		retryPolicy: retrier.DefaultPolicy(),
		autoReauth:  true,
	}
}

// WithAPIVersion sets the API version path segment.
func WithAPIVersion(version string) Option {
	return func(o *clientOptions) {
		version = strings.Trim(strings.TrimSpace(version), "/")
		if version != "" {
			o.apiVersion = version
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithUserAgent sets a custom user agent string.
func WithUserAgent(userAgent string) Option {
	return func(o *clientOptions) {
		if userAgent != "" {
			o.userAgent = userAgent
		}
	}
}

// WithRetryPolicy replaces the backoff schedule used for every request.
func WithRetryPolicy(policy retrier.Policy) Option {
	return func(o *clientOptions) {
		o.retryPolicy = policy
	}
}

// WithRetryNotify registers a callback invoked before each retry wait.
func WithRetryNotify(fn func(err error, wait time.Duration)) Option {
	return func(o *clientOptions) {
		o.retryNotify = fn
	}
}

// WithHTTPClient sets the underlying HTTP client. Its timeout is replaced
// by the configured request timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}

// WithAutoReauth controls whether a rejected token triggers one
// re-authentication and a replay of the rejected request. Enabled by default.
func WithAutoReauth(enabled bool) Option {
	return func(o *clientOptions) {
		o.autoReauth = enabled
	}
}

// WithTokenOptions passes options through to the token manager.
func WithTokenOptions(opts ...token.Option) Option {
	return func(o *clientOptions) {
		o.tokenOpts = append(o.tokenOpts, opts...)
	}
}
