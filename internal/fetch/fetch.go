// Package fetch wraps catalog calls in keyed queries: each query carries its
// own parameters, retries failed calls, and never caches results. Identical
// queries issued concurrently share one in-flight call.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/mmcdole/movzen/internal/domain"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultRetries is how many times a failed call is retried
	DefaultRetries = 3

	// DefaultRetryDelay is the base of the exponential backoff
	DefaultRetryDelay = time.Second

	maxRetryDelay = 30 * time.Second
)

// ErrKeyCollision is returned when queries of different result types share
// a key
var ErrKeyCollision = errors.New("query key already in use by another result type")

// Params are the query parameters handed to the fetch function
type Params map[string]any

// Int returns the integer parameter name, or def when absent
func (p Params) Int(name string, def int) int {
	switch v := p[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}

// String returns the string parameter name, or "" when absent
func (p Params) String(name string) string {
	if v, ok := p[name].(string); ok {
		return v
	}
	return ""
}

// initialParams are merged under the caller's options on creation
func initialParams() Params {
	return Params{"page": 1, "limit": 10}
}

// replacedParams seed SetParams when replacing
func replacedParams() Params {
	return Params{"page": 1, "pageSize": 10}
}

// Func performs the actual call
type Func[T any] func(ctx context.Context, params Params) (T, error)

// Result is the outcome of one Run
type Result[T any] struct {
	Key      string
	Data     T
	Err      error
	Attempts int
}

// IsError reports whether the run failed
func (r Result[T]) IsError() bool {
	return r.Err != nil
}

// Cache holds the retry policy and the in-flight call registry shared by
// every query. It stores no results.
type Cache struct {
	retries uint
	delay   time.Duration
	logger  *slog.Logger
	group   singleflight.Group
}

// NewCache creates a cache. retries < 0 selects DefaultRetries.
func NewCache(retries int, delay time.Duration, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	if retries < 0 {
		retries = DefaultRetries
	}
	if delay <= 0 {
		delay = DefaultRetryDelay
	}
	return &Cache{retries: uint(retries), delay: delay, logger: logger}
}

// Query is a keyed, parameterized call
type Query[T any] struct {
	cache *Cache
	key   []any
	fn    Func[T]

	mu     sync.Mutex
	params Params
}

// New creates a query. opts are merged over the default {page: 1, limit: 10}.
func New[T any](cache *Cache, key []any, fn Func[T], opts Params) *Query[T] {
	params := initialParams()
	maps.Copy(params, opts)
	return &Query[T]{
		cache:  cache,
		key:    append([]any(nil), key...),
		fn:     fn,
		params: params,
	}
}

// Params returns a copy of the current parameters
func (q *Query[T]) Params() Params {
	q.mu.Lock()
	defer q.mu.Unlock()
	return maps.Clone(q.params)
}

// SetParams merges p into the current parameters. With replace, the
// parameters are reset to {page: 1, pageSize: 10} before p is applied.
func (q *Query[T]) SetParams(p Params, replace bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if replace {
		next := replacedParams()
		maps.Copy(next, p)
		q.params = next
		return
	}
	maps.Copy(q.params, p)
}

// Key renders the base key followed by the parameters
func (q *Query[T]) Key() string {
	return renderKey(q.key, q.Params())
}

// Run performs the call, retrying failures with exponential backoff.
func (q *Query[T]) Run(ctx context.Context) Result[T] {
	params := q.Params()
	key := renderKey(q.key, params)

	v, err, shared := q.cache.group.Do(key, func() (any, error) {
		return q.attempt(ctx, key, params)
	})
	if shared {
		q.cache.logger.Debug("joined in-flight query", "key", key)
	}

	return collect[T](key, v, err)
}

// collect unpacks a shared call. A query of another type running under the
// same key yields ErrKeyCollision instead of a zero result.
func collect[T any](key string, v any, err error) Result[T] {
	out, ok := v.(attemptResult[T])
	if !ok {
		return Result[T]{Key: key, Err: fmt.Errorf("%w: %s", ErrKeyCollision, key)}
	}
	return Result[T]{Key: key, Data: out.data, Err: err, Attempts: out.attempts}
}

type attemptResult[T any] struct {
	data     T
	attempts int
}

func (q *Query[T]) attempt(ctx context.Context, key string, params Params) (attemptResult[T], error) {
	attempts := 0
	data, err := retry.DoWithData(
		func() (T, error) {
			attempts++
			return q.fn(ctx, params)
		},
		retry.Context(ctx),
		retry.Attempts(q.cache.retries+1),
		retry.Delay(q.cache.delay),
		retry.MaxDelay(maxRetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			q.cache.logger.Debug("retrying query", "key", key, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		q.cache.logger.Warn("query failed", "key", key, "attempts", attempts, "error", err)
	}
	return attemptResult[T]{data: data, attempts: attempts}, err
}

// retryable skips errors another attempt cannot fix
func retryable(err error) bool {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, domain.ErrAuthFailed), errors.Is(err, domain.ErrNotFound):
		return false
	case errors.Is(err, domain.ErrMissingToken), errors.Is(err, domain.ErrEmptyQuery):
		return false
	default:
		return true
	}
}

func renderKey(key []any, params Params) string {
	parts := append(append([]any(nil), key...), params)
	data, err := json.Marshal(parts)
	if err != nil {
		return fmt.Sprint(parts...)
	}
	return string(data)
}
