package retrier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Class is the retry decision for a failed attempt.
type Class int

const (
	// Retryable errors are attempted again after a backoff wait.
	Retryable Class = iota
	// Fatal errors are returned immediately.
	Fatal
)

// String returns the string representation of a Class
func (c Class) String() string {
	switch c {
	case Retryable:
		return "retryable"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Classifier decides whether a failed attempt should be retried.
type Classifier func(err error) Class

// AlwaysRetry treats every error as retryable.
func AlwaysRetry(error) Class { return Retryable }

// ErrInvalidPolicy is returned when a Policy cannot produce a bounded schedule.
var ErrInvalidPolicy = errors.New("invalid retry policy")

// Policy describes an exponential backoff schedule. It is configuration only
// and is never mutated by Run.
type Policy struct {
	InitialInterval time.Duration
	Multiplier      float64
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// DefaultPolicy returns the schedule used when none is configured.
func DefaultPolicy() Policy {
	return Policy{
		InitialInterval: backoff.DefaultInitialInterval,
		Multiplier:      backoff.DefaultMultiplier,
		MaxInterval:     backoff.DefaultMaxInterval,
		MaxElapsedTime:  backoff.DefaultMaxElapsedTime,
	}
}

// Validate checks that the policy terminates and respects its own cap.
func (p Policy) Validate() error {
	switch {
	case p.InitialInterval <= 0:
		return fmt.Errorf("%w: initial interval must be positive", ErrInvalidPolicy)
	case p.Multiplier < 1:
		return fmt.Errorf("%w: multiplier must be at least 1, got %v", ErrInvalidPolicy, p.Multiplier)
	case p.MaxInterval < p.InitialInterval:
		return fmt.Errorf("%w: max interval (%s) must be greater than or equal to initial interval (%s)",
			ErrInvalidPolicy, p.MaxInterval, p.InitialInterval)
	case p.MaxElapsedTime <= 0:
		return fmt.Errorf("%w: max elapsed time must be positive", ErrInvalidPolicy)
	}
	return nil
}

// backOff builds a fresh schedule for one call. Randomization is disabled so
// MaxInterval is a hard cap on every wait.
func (p Policy) backOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.Multiplier = p.Multiplier
	b.MaxInterval = p.MaxInterval
	b.RandomizationFactor = 0
	b.Reset()
	return b
}

// Option configures a single Run.
type Option func(*runOptions)

type runOptions struct {
	notify      func(err error, wait time.Duration)
	maxAttempts uint
}

// WithNotify registers a callback invoked before every retry wait.
func WithNotify(fn func(err error, wait time.Duration)) Option {
	return func(o *runOptions) {
		o.notify = fn
	}
}

// WithMaxAttempts caps the total number of attempts, including the first.
func WithMaxAttempts(n uint) Option {
	return func(o *runOptions) {
		o.maxAttempts = n
	}
}

// Run executes op until it succeeds, classify reports a Fatal error, or the
// policy's elapsed-time budget is spent. The last error is returned unwrapped.
// Cancelling ctx aborts any in-progress wait.
func Run[T any](ctx context.Context, policy Policy, op func(context.Context) (T, error), classify Classifier, opts ...Option) (T, error) {
	var zero T
	if err := policy.Validate(); err != nil {
		return zero, err
	}
	if classify == nil {
		classify = AlwaysRetry
	}

	var o runOptions
	for _, opt := range opts {
		opt(&o)
	}

	operation := func() (T, error) {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		// The caller gave up; waiting again cannot help.
		if ctx.Err() != nil || classify(err) == Fatal {
			return v, backoff.Permanent(err)
		}
		return v, err
	}

	retryOpts := []backoff.RetryOption{
		backoff.WithBackOff(policy.backOff()),
		backoff.WithMaxElapsedTime(policy.MaxElapsedTime),
	}
	if o.notify != nil {
		retryOpts = append(retryOpts, backoff.WithNotify(o.notify))
	}
	if o.maxAttempts > 0 {
		retryOpts = append(retryOpts, backoff.WithMaxTries(o.maxAttempts))
	}

	v, err := backoff.Retry(ctx, operation, retryOpts...)
	if err != nil {
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			return v, permanent.Unwrap()
		}
		return v, err
	}
	return v, nil
}
