package schedulesdirect

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Batch defaults. The service accepts at most 5000 stations or program IDs
// per request.
const (
	DefaultChunkSize   = 500
	DefaultConcurrency = 4
	MaxChunkSize       = 5000
)

// BatchOptions controls how a bulk fetch is split and run.
type BatchOptions struct {
	// ChunkSize is the number of items per request.
	ChunkSize int
	// Concurrency bounds the number of requests in flight.
	Concurrency int
	// EmptyOnBadGateway treats a chunk that still fails with 502 after
	// retries as an empty result instead of a failure.
	EmptyOnBadGateway bool
}

func (o BatchOptions) normalize() BatchOptions {
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.ChunkSize > MaxChunkSize {
		o.ChunkSize = MaxChunkSize
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	return o
}

// BatchResult contains the results of a bulk fetch. Items keep the order of
// the chunks that produced them.
type BatchResult[R any] struct {
	Requested int
	Chunks    int
	Items     []R
	Failed    []ChunkError
}

// Err joins every chunk failure, or returns nil when all chunks succeeded.
func (r BatchResult[R]) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failed))
	for _, f := range r.Failed {
		errs = append(errs, f)
	}
	return errors.Join(errs...)
}

// ChunkError contains information about a failed chunk
type ChunkError struct {
	Index int
	Size  int
	Err   error
}

// Error implements the error interface
func (e ChunkError) Error() string {
	return fmt.Sprintf("chunk %d (%d items): %v", e.Index, e.Size, e.Err)
}

func (e ChunkError) Unwrap() error {
	return e.Err
}

// Chunk splits items into consecutive slices of at most size elements. The
// final chunk holds the remainder.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 || len(items) == 0 {
		return nil
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end])
	}
	return chunks
}

// FetchBatch runs fetch over items in chunks with bounded concurrency. A
// failed chunk does not stop the others.
func FetchBatch[T, R any](ctx context.Context, items []T, opts BatchOptions, fetch func(context.Context, []T) ([]R, error)) BatchResult[R] {
	opts = opts.normalize()
	chunks := Chunk(items, opts.ChunkSize)

	result := BatchResult[R]{
		Requested: len(items),
		Chunks:    len(chunks),
	}
	if len(chunks) == 0 {
		return result
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	var mu sync.Mutex
	perChunk := make([][]R, len(chunks))

	for i, chunk := range chunks {
		g.Go(func() error {
			got, err := fetch(ctx, chunk)
			if err != nil {
				var httpErr *HTTPError
				if opts.EmptyOnBadGateway && errors.As(err, &httpErr) && httpErr.IsBadGateway() {
					return nil
				}
				mu.Lock()
				result.Failed = append(result.Failed, ChunkError{Index: i, Size: len(chunk), Err: err})
				mu.Unlock()
				return nil
			}
			perChunk[i] = got
			return nil
		})
	}
	_ = g.Wait()

	slices.SortFunc(result.Failed, func(a, b ChunkError) int { return a.Index - b.Index })

	for _, items := range perChunk {
		result.Items = append(result.Items, items...)
	}
	return result
}

// FetchSchedules retrieves schedules for any number of stations.
func (c *Client) FetchSchedules(ctx context.Context, stations []StationRequest, opts BatchOptions) BatchResult[StationSchedule] {
	result := FetchBatch(ctx, stations, opts, c.Schedules)
	c.logBatch("schedules", result.Requested, result.Chunks, len(result.Items), result.Failed)
	return result
}

// FetchPrograms retrieves program metadata for any number of program IDs.
func (c *Client) FetchPrograms(ctx context.Context, programIDs []string, opts BatchOptions) BatchResult[Program] {
	result := FetchBatch(ctx, programIDs, opts, c.Programs)
	c.logBatch("programs", result.Requested, result.Chunks, len(result.Items), result.Failed)
	return result
}

func (c *Client) logBatch(kind string, requested, chunks, items int, failed []ChunkError) {
	level := zerolog.DebugLevel
	for _, f := range failed {
		level = zerolog.WarnLevel
		c.logger.Warn().Err(f.Err).Int("chunk", f.Index).Int("size", f.Size).Msgf("Failed to fetch %s chunk", kind)
	}
	c.logger.WithLevel(level).
		Int("requested", requested).
		Int("chunks", chunks).
		Int("items", items).
		Int("failed_chunks", len(failed)).
		Msgf("Fetched %s", kind)
}
