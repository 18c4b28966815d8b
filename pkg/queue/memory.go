package queue

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memItem struct {
	msg Message
	due time.Time
}

// MemoryQueue is a process-local Queue used when Redis is not configured.
type MemoryQueue struct {
	opts Options
	now  func() time.Time

	mu       sync.Mutex
	ready    []memItem
	inflight map[string]memItem
	closed   bool
	wake     chan struct{}
}

func NewMemoryQueue(opts Options) *MemoryQueue {
	return &MemoryQueue{
		opts:     opts.withDefaults(),
		now:      time.Now,
		inflight: make(map[string]memItem),
		wake:     make(chan struct{}, 1),
	}
}

func (q *MemoryQueue) Enqueue(_ context.Context, body []byte, delay time.Duration) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return "", ErrClosed
	}

	item := memItem{
		msg: Message{ID: uuid.NewString(), Body: append([]byte(nil), body...)},
		due: q.now().Add(delay),
	}
	q.ready = append(q.ready, item)
	q.signal()
	return item.msg.ID, nil
}

func (q *MemoryQueue) Dequeue(ctx context.Context) (*Message, error) {
	for {
		msg, wait, err := q.tryPop()
		if err != nil || msg != nil {
			return msg, err
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-q.wake:
			timer.Stop()
		case <-timer.C:
		}
	}
}

// tryPop returns the earliest due message, or how long to wait for one.
func (q *MemoryQueue) tryPop() (*Message, time.Duration, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil, 0, ErrClosed
	}

	now := q.now()
	for id, item := range q.inflight {
		if !item.due.After(now) {
			delete(q.inflight, id)
			item.due = now
			q.ready = append(q.ready, item)
		}
	}

	best := -1
	for i, item := range q.ready {
		if best < 0 || item.due.Before(q.ready[best].due) {
			best = i
		}
	}
	if best < 0 {
		return nil, q.opts.PollInterval, nil
	}

	item := q.ready[best]
	if wait := item.due.Sub(now); wait > 0 {
		return nil, min(wait, q.opts.PollInterval), nil
	}

	q.ready = append(q.ready[:best], q.ready[best+1:]...)
	item.due = now.Add(q.opts.VisibilityTimeout)
	q.inflight[item.msg.ID] = item
	msg := item.msg
	return &msg, 0, nil
}

func (q *MemoryQueue) Ack(_ context.Context, msg *Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.inflight, msg.ID)
	return nil
}

// Len returns the number of waiting and in-flight messages.
func (q *MemoryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ready) + len(q.inflight)
}

func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.signal()
	return nil
}

func (q *MemoryQueue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}
