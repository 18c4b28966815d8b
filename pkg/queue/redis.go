package queue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Keys:
//
//	<name>:delayed     ZSET id -> due time (unix ms)
//	<name>:processing  ZSET id -> visibility deadline (unix ms)
//	<name>:payloads    HASH id -> body
//
// popScript requeues expired in-flight ids, then moves the earliest due id
// to processing and returns {id, body}.
var popScript = redis.NewScript(`
local expired = redis.call('ZRANGEBYSCORE', KEYS[2], '-inf', ARGV[1], 'LIMIT', 0, 100)
for _, id in ipairs(expired) do
	redis.call('ZREM', KEYS[2], id)
	redis.call('ZADD', KEYS[1], ARGV[1], id)
end

local ids = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, 1)
if #ids == 0 then
	return false
end

local id = ids[1]
redis.call('ZREM', KEYS[1], id)
local body = redis.call('HGET', KEYS[3], id)
if not body then
	return false
end
redis.call('ZADD', KEYS[2], ARGV[2], id)
return {id, body}
`)

type RedisQueue struct {
	client     redis.UniversalClient
	delayed    string
	processing string
	payloads   string
	opts       Options
	now        func() time.Time
}

func NewRedisQueue(client redis.UniversalClient, name string, opts Options) *RedisQueue {
	return &RedisQueue{
		client:     client,
		delayed:    name + ":delayed",
		processing: name + ":processing",
		payloads:   name + ":payloads",
		opts:       opts.withDefaults(),
		now:        time.Now,
	}
}

func (q *RedisQueue) Enqueue(ctx context.Context, body []byte, delay time.Duration) (string, error) {
	id := uuid.NewString()
	due := q.now().Add(delay).UnixMilli()

	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, q.payloads, id, body)
		pipe.ZAdd(ctx, q.delayed, redis.Z{Score: float64(due), Member: id})
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("queue: enqueue: %w", err)
	}
	return id, nil
}

func (q *RedisQueue) Dequeue(ctx context.Context) (*Message, error) {
	for {
		msg, err := q.pop(ctx)
		if err != nil || msg != nil {
			return msg, err
		}

		timer := time.NewTimer(q.opts.PollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (q *RedisQueue) pop(ctx context.Context) (*Message, error) {
	now := q.now()
	deadline := now.Add(q.opts.VisibilityTimeout).UnixMilli()

	res, err := popScript.Run(ctx, q.client,
		[]string{q.delayed, q.processing, q.payloads},
		strconv.FormatInt(now.UnixMilli(), 10),
		strconv.FormatInt(deadline, 10),
	).Slice()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("queue: dequeue: %w", err)
	}
	if len(res) != 2 {
		return nil, fmt.Errorf("queue: dequeue: unexpected reply of %d elements", len(res))
	}

	id, _ := res[0].(string)
	body, _ := res[1].(string)
	return &Message{ID: id, Body: []byte(body)}, nil
}

func (q *RedisQueue) Ack(ctx context.Context, msg *Message) error {
	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, q.processing, msg.ID)
		pipe.HDel(ctx, q.payloads, msg.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("queue: ack %s: %w", msg.ID, err)
	}
	return nil
}

// Len returns the number of waiting and in-flight messages.
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.client.HLen(ctx, q.payloads).Result()
}
