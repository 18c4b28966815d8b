// Package queue is a delayed, at-least-once message queue.
//
// A dequeued message stays in flight until it is acknowledged. Messages that
// are not acknowledged within the visibility timeout become available again.
package queue

import (
	"context"
	"errors"
	"time"
)

var ErrClosed = errors.New("queue: closed")

type Message struct {
	ID   string
	Body []byte
}

type Queue interface {
	// Enqueue makes body available after delay and returns its message id.
	Enqueue(ctx context.Context, body []byte, delay time.Duration) (string, error)
	// Dequeue blocks until a message is due or ctx is done.
	Dequeue(ctx context.Context) (*Message, error)
	// Ack removes an in-flight message for good.
	Ack(ctx context.Context, msg *Message) error
}

type Options struct {
	// VisibilityTimeout is how long a dequeued message may stay unacknowledged.
	VisibilityTimeout time.Duration
	// PollInterval bounds how long Dequeue sleeps between checks.
	PollInterval time.Duration
}

func (o Options) withDefaults() Options {
	if o.VisibilityTimeout <= 0 {
		o.VisibilityTimeout = 5 * time.Minute
	}
	if o.PollInterval <= 0 {
		o.PollInterval = time.Second
	}
	return o
}
