package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisQueue(t *testing.T) (*RedisQueue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	q := NewRedisQueue(client, "notifications", Options{VisibilityTimeout: time.Minute, PollInterval: 5 * time.Millisecond})
	return q, mr
}

func TestRedisQueue(t *testing.T) {
	ctx := context.Background()

	t.Run("immediate message is dequeued with its body", func(t *testing.T) {
		q, _ := newTestRedisQueue(t)
		id, err := q.Enqueue(ctx, []byte(`{"a":1}`), 0)
		require.NoError(t, err)

		msg, err := q.Dequeue(ctx)
		require.NoError(t, err)
		assert.Equal(t, id, msg.ID)
		assert.Equal(t, `{"a":1}`, string(msg.Body))
	})

	t.Run("delayed message is not visible before it is due", func(t *testing.T) {
		q, _ := newTestRedisQueue(t)
		base := time.Now()
		q.now = func() time.Time { return base }
		_, err := q.Enqueue(ctx, []byte("later"), time.Second)
		require.NoError(t, err)

		waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		_, err = q.Dequeue(waitCtx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)

		q.now = func() time.Time { return base.Add(2 * time.Second) }
		msg, err := q.Dequeue(ctx)
		require.NoError(t, err)
		assert.Equal(t, "later", string(msg.Body))
	})

	t.Run("earliest due message comes first", func(t *testing.T) {
		q, _ := newTestRedisQueue(t)
		base := time.Now()
		q.now = func() time.Time { return base }
		_, _ = q.Enqueue(ctx, []byte("second"), 2*time.Second)
		_, _ = q.Enqueue(ctx, []byte("first"), time.Second)

		q.now = func() time.Time { return base.Add(3 * time.Second) }
		msg, err := q.Dequeue(ctx)
		require.NoError(t, err)
		assert.Equal(t, "first", string(msg.Body))

		msg, err = q.Dequeue(ctx)
		require.NoError(t, err)
		assert.Equal(t, "second", string(msg.Body))
	})

	t.Run("unacknowledged message is redelivered after the visibility timeout", func(t *testing.T) {
		q, mr := newTestRedisQueue(t)
		base := time.Now()
		q.now = func() time.Time { return base }
		id, _ := q.Enqueue(ctx, []byte("job"), 0)

		msg, err := q.Dequeue(ctx)
		require.NoError(t, err)
		assert.Equal(t, id, msg.ID)

		members, err := mr.ZMembers("notifications:processing")
		require.NoError(t, err)
		assert.Equal(t, []string{id}, members)

		waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		_, err = q.Dequeue(waitCtx)
		assert.ErrorIs(t, err, context.DeadlineExceeded, "in-flight message must stay hidden")

		q.now = func() time.Time { return base.Add(2 * time.Minute) }
		again, err := q.Dequeue(ctx)
		require.NoError(t, err)
		assert.Equal(t, id, again.ID)
		assert.Equal(t, "job", string(again.Body))
	})

	t.Run("acknowledged message is gone", func(t *testing.T) {
		q, mr := newTestRedisQueue(t)
		_, _ = q.Enqueue(ctx, []byte("job"), 0)
		msg, err := q.Dequeue(ctx)
		require.NoError(t, err)

		require.NoError(t, q.Ack(ctx, msg))
		n, err := q.Len(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.False(t, mr.Exists("notifications:processing"))
		assert.False(t, mr.Exists("notifications:delayed"))
	})
}
