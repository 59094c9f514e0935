package broadcast_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/phoneauth/pkg/broadcast"
)

func receive[T any](t *testing.T, sub broadcast.Subscriber[T]) T {
	t.Helper()
	select {
	case msg, ok := <-sub.Receive(context.Background()):
		require.True(t, ok, "subscriber channel closed")
		return msg.Data
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for value")
	}
	var zero T
	return zero
}

func TestLatest(t *testing.T) {
	t.Parallel()

	t.Run("replays current value on subscribe", func(t *testing.T) {
		t.Parallel()
		l := broadcast.NewLatest("initial")
		defer l.Close()

		l.Publish("second")
		sub := l.Subscribe(context.Background())
		assert.Equal(t, "second", receive(t, sub))
		assert.Equal(t, "second", l.Load())
	})

	t.Run("slow subscriber only sees newest value", func(t *testing.T) {
		t.Parallel()
		l := broadcast.NewLatest(0)
		defer l.Close()

		sub := l.Subscribe(context.Background())
		for i := 1; i <= 5; i++ {
			l.Publish(i)
		}
		assert.Equal(t, 5, receive(t, sub))

		select {
		case msg := <-sub.Receive(context.Background()):
			t.Fatalf("unexpected backlog value %v", msg.Data)
		default:
		}
	})

	t.Run("each subscriber follows updates", func(t *testing.T) {
		t.Parallel()
		l := broadcast.NewLatest(0)
		defer l.Close()

		a := l.Subscribe(context.Background())
		b := l.Subscribe(context.Background())
		assert.Equal(t, 0, receive(t, a))

		l.Publish(1)
		assert.Equal(t, 1, receive(t, a))
		assert.Equal(t, 1, receive(t, b))
	})

	t.Run("context cancel closes subscriber", func(t *testing.T) {
		t.Parallel()
		l := broadcast.NewLatest(0)
		defer l.Close()

		ctx, cancel := context.WithCancel(context.Background())
		sub := l.Subscribe(ctx)
		assert.Equal(t, 0, receive(t, sub))
		cancel()

		require.Eventually(t, func() bool {
			select {
			case _, ok := <-sub.Receive(context.Background()):
				return !ok
			default:
				return false
			}
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("close ends subscriptions and keeps value", func(t *testing.T) {
		t.Parallel()
		l := broadcast.NewLatest("v")
		sub := l.Subscribe(context.Background())
		require.NoError(t, l.Close())

		assert.Equal(t, "v", receive(t, sub))
		_, ok := <-sub.Receive(context.Background())
		assert.False(t, ok)

		l.Publish("ignored")
		assert.Equal(t, "v", l.Load())

		late := l.Subscribe(context.Background())
		_, ok = <-late.Receive(context.Background())
		assert.False(t, ok)
	})
}
