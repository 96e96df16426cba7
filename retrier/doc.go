// Package retrier re-executes fallible operations under a bounded
// exponential backoff schedule.
//
// A Classifier decides for every failure whether another attempt is worth
// making. Fatal errors end the run after a single attempt; retryable errors
// are attempted again after a wait that starts at Policy.InitialInterval,
// grows by Policy.Multiplier and never exceeds Policy.MaxInterval. The run
// gives up and returns the last error once the next wait would push the
// total elapsed time past Policy.MaxElapsedTime, so every Run terminates.
//
// # Usage
//
//	policy := retrier.DefaultPolicy()
//	body, err := retrier.Run(ctx, policy, func(ctx context.Context) ([]byte, error) {
//		return fetch(ctx)
//	}, classify)
//
// Waits honour ctx, so callers may impose an outer timeout on the whole run.
package retrier
