package async_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/phoneauth/pkg/async"
)

func TestAsync(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	futureString := async.Async(ctx, 42, func(_ context.Context, n int) (string, error) {
		time.Sleep(20 * time.Millisecond)
		return fmt.Sprintf("Number: %d", n), nil
	})
	futureErr := async.Async(ctx, "x", func(context.Context, string) (bool, error) {
		return false, errors.New("boom")
	})

	s, err := futureString.Await()
	require.NoError(t, err)
	assert.Equal(t, "Number: 42", s)

	_, err = futureErr.Await()
	assert.EqualError(t, err, "boom")
}

func TestAsyncCanceledContext(t *testing.T) {
	t.Parallel()
	cause := errors.New("dismissed")
	ctx, cancel := context.WithCancelCause(context.Background())
	cancel(cause)

	called := false
	f := async.Async(ctx, 1, func(context.Context, int) (int, error) {
		called = true
		return 1, nil
	})

	_, err := f.Await()
	assert.ErrorIs(t, err, cause)
	assert.False(t, called)
}

func TestAsyncContextCancellation(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	f := async.Async(ctx, 42, func(ctx context.Context, n int) (int, error) {
		select {
		case <-time.After(time.Second):
			return n, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	})

	_, err := f.Await()
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAwaitWithTimeout(t *testing.T) {
	t.Parallel()
	f, resolve := async.NewPromise[int]()

	_, err := f.AwaitWithTimeout(10 * time.Millisecond)
	assert.ErrorIs(t, err, async.ErrTimeout)

	resolve(7, nil)
	v, err := f.AwaitWithTimeout(10 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestAwaitContext(t *testing.T) {
	t.Parallel()
	f, _ := async.NewPromise[string]()
	cause := errors.New("gone")
	ctx, cancel := context.WithCancelCause(context.Background())
	cancel(cause)

	_, err := f.AwaitContext(ctx)
	assert.ErrorIs(t, err, cause)
	assert.False(t, f.IsComplete())
}

func TestPromiseResolvesOnce(t *testing.T) {
	t.Parallel()
	f, resolve := async.NewPromise[bool]()
	assert.False(t, f.IsComplete())

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if resolve(i%2 == 0, nil) {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.True(t, f.IsComplete())
	select {
	case <-f.Done():
	default:
		t.Fatal("Done should be closed")
	}
}

func TestResolved(t *testing.T) {
	t.Parallel()
	f := async.Resolved("ok", nil)
	require.True(t, f.IsComplete())
	v, err := f.Await()
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}
