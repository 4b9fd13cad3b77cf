package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mmcdole/movzen/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCache() *Cache {
	return NewCache(DefaultRetries, time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestNewMergesDefaultParams(t *testing.T) {
	q := New(testCache(), []any{"discover-movies"}, func(context.Context, Params) (int, error) {
		return 0, nil
	}, Params{"page": 3, "sort_by": "title.asc"})

	assert.Equal(t, Params{"page": 3, "limit": 10, "sort_by": "title.asc"}, q.Params())
}

func TestSetParamsMergeAndReplace(t *testing.T) {
	q := New(testCache(), []any{"k"}, func(context.Context, Params) (int, error) { return 0, nil }, nil)

	q.SetParams(Params{"page": 2, "query": "alien"}, false)
	assert.Equal(t, Params{"page": 2, "limit": 10, "query": "alien"}, q.Params())

	q.SetParams(Params{"query": "heat"}, true)
	assert.Equal(t, Params{"page": 1, "pageSize": 10, "query": "heat"}, q.Params())
}

func TestKeyIncludesParams(t *testing.T) {
	q := New(testCache(), []any{"movies-by-genre", "28", 2}, func(context.Context, Params) (int, error) {
		return 0, nil
	}, Params{"page": 2})

	assert.Equal(t, `["movies-by-genre","28",2,{"limit":10,"page":2}]`, q.Key())

	before := q.Key()
	q.SetParams(Params{"page": 3}, false)
	assert.NotEqual(t, before, q.Key())
}

func TestRunPassesParams(t *testing.T) {
	var got Params
	q := New(testCache(), []any{"search-movies"}, func(_ context.Context, p Params) (string, error) {
		got = p
		return "ok", nil
	}, Params{"query": "dune"})

	res := q.Run(context.Background())
	require.NoError(t, res.Err)
	assert.False(t, res.IsError())
	assert.Equal(t, "ok", res.Data)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, "dune", got.String("query"))
	assert.Equal(t, 1, got.Int("page", 0))
}

func TestRunRetriesThreeTimes(t *testing.T) {
	var calls atomic.Int32
	boom := errors.New("boom")
	q := New(testCache(), []any{"popular"}, func(context.Context, Params) (int, error) {
		calls.Add(1)
		return 0, boom
	}, nil)

	res := q.Run(context.Background())
	assert.True(t, res.IsError())
	assert.ErrorIs(t, res.Err, boom)
	assert.Equal(t, int32(DefaultRetries+1), calls.Load())
	assert.Equal(t, DefaultRetries+1, res.Attempts)
}

func TestRunRecoversAfterTransientFailure(t *testing.T) {
	var calls int
	q := New(testCache(), []any{"top-rated"}, func(context.Context, Params) (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("temporary")
		}
		return 42, nil
	}, nil)

	res := q.Run(context.Background())
	require.NoError(t, res.Err)
	assert.Equal(t, 42, res.Data)
	assert.Equal(t, 3, res.Attempts)
}

func TestRunDoesNotRetryPermanentErrors(t *testing.T) {
	for _, permanent := range []error{domain.ErrAuthFailed, domain.ErrNotFound, domain.ErrEmptyQuery} {
		t.Run(permanent.Error(), func(t *testing.T) {
			var calls int
			q := New(testCache(), []any{"details"}, func(context.Context, Params) (int, error) {
				calls++
				return 0, fmt.Errorf("wrapped: %w", permanent)
			}, nil)

			res := q.Run(context.Background())
			assert.ErrorIs(t, res.Err, permanent)
			assert.Equal(t, 1, calls)
		})
	}
}

func TestRunNeverCaches(t *testing.T) {
	var calls int
	q := New(testCache(), []any{"genre-list"}, func(context.Context, Params) (int, error) {
		calls++
		return calls, nil
	}, nil)

	first := q.Run(context.Background())
	second := q.Run(context.Background())
	assert.Equal(t, 1, first.Data)
	assert.Equal(t, 2, second.Data)
}

func TestConcurrentIdenticalQueriesShareOneCall(t *testing.T) {
	cache := testCache()
	var calls atomic.Int32
	release := make(chan struct{})
	fn := func(context.Context, Params) (int, error) {
		calls.Add(1)
		<-release
		return 7, nil
	}

	const n = 5
	var wg sync.WaitGroup
	results := make([]Result[int], n)
	started := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q := New(cache, []any{"same"}, fn, nil)
			started <- struct{}{}
			results[i] = q.Run(context.Background())
		}(i)
	}
	for i := 0; i < n; i++ {
		<-started
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(n))
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
	for _, r := range results {
		assert.Equal(t, 7, r.Data)
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int
	q := New(NewCache(3, time.Hour, nil), []any{"slow"}, func(ctx context.Context, _ Params) (int, error) {
		calls++
		return 0, ctx.Err()
	}, nil)

	res := q.Run(ctx)
	assert.True(t, res.IsError())
	assert.LessOrEqual(t, calls, 1)
}

func TestCollectRejectsMismatchedType(t *testing.T) {
	shared := attemptResult[int]{data: 7, attempts: 1}

	res := collect[*string]("k", shared, nil)
	assert.ErrorIs(t, res.Err, ErrKeyCollision)
	assert.Nil(t, res.Data)
	assert.Equal(t, "k", res.Key)

	ok := collect[int]("k", shared, nil)
	require.NoError(t, ok.Err)
	assert.Equal(t, 7, ok.Data)
	assert.Equal(t, 1, ok.Attempts)
}

func TestRunWithCollidingKeyFails(t *testing.T) {
	cache := testCache()
	release := make(chan struct{})
	started := make(chan struct{})

	go func() {
		_ = New(cache, []any{"shared"}, func(context.Context, Params) (int, error) {
			close(started)
			<-release
			return 1, nil
		}, nil).Run(context.Background())
	}()
	<-started

	done := make(chan Result[string])
	go func() {
		done <- New(cache, []any{"shared"}, func(context.Context, Params) (string, error) {
			return "own call", nil
		}, nil).Run(context.Background())
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)

	res := <-done
	if res.Err == nil {
		// ran its own call after the first one finished
		assert.Equal(t, "own call", res.Data)
		return
	}
	assert.ErrorIs(t, res.Err, ErrKeyCollision)
	assert.Empty(t, res.Data)
}

func TestParamsAccessors(t *testing.T) {
	p := Params{"page": 2.0, "q": "x", "n": int64(4)}
	assert.Equal(t, 2, p.Int("page", 1))
	assert.Equal(t, 4, p.Int("n", 1))
	assert.Equal(t, 9, p.Int("missing", 9))
	assert.Equal(t, "x", p.String("q"))
	assert.Equal(t, "", p.String("page"))
}
