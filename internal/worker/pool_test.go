package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go-recruiter-backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type completion struct {
	name    string
	outcome string
	err     error
}

type recordingHook struct {
	mu    sync.Mutex
	calls []completion
}

func (h *recordingHook) OnComplete(name, outcome string, err error, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, completion{name, outcome, err})
}

func (h *recordingHook) snapshot() []completion {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]completion(nil), h.calls...)
}

func TestPoolRunsTasksAndReportsToHook(t *testing.T) {
	hook := &recordingHook{}
	p := NewPool(2, 10, hook, logger.Discard())

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		require.NoError(t, p.Submit("task", func(ctx context.Context) (string, error) {
			ran.Add(1)
			return "done", nil
		}))
	}
	failure := errors.New("boom")
	require.NoError(t, p.Submit("failing", func(ctx context.Context) (string, error) {
		return "failed", failure
	}))

	require.NoError(t, p.Shutdown(context.Background()))
	assert.Equal(t, int32(5), ran.Load())

	calls := hook.snapshot()
	require.Len(t, calls, 6)
	var failed []completion
	for _, c := range calls {
		if c.err != nil {
			failed = append(failed, c)
		}
	}
	require.Len(t, failed, 1)
	assert.Equal(t, "failing", failed[0].name)
	assert.ErrorIs(t, failed[0].err, failure)
}

func TestSubmitIsNonBlockingWhenFull(t *testing.T) {
	p := NewPool(1, 1, nil, logger.Discard())
	release := make(chan struct{})
	started := make(chan struct{})

	require.NoError(t, p.Submit("blocker", func(ctx context.Context) (string, error) {
		close(started)
		<-release
		return "", nil
	}))
	<-started

	require.NoError(t, p.Submit("buffered", func(ctx context.Context) (string, error) { return "", nil }))
	err := p.Submit("overflow", func(ctx context.Context) (string, error) { return "", nil })
	assert.ErrorIs(t, err, ErrPoolFull)

	close(release)
	require.NoError(t, p.Shutdown(context.Background()))
}

func TestSubmitAfterShutdown(t *testing.T) {
	p := NewPool(1, 1, nil, logger.Discard())
	require.NoError(t, p.Shutdown(context.Background()))

	err := p.Submit("late", func(ctx context.Context) (string, error) { return "", nil })
	assert.ErrorIs(t, err, ErrPoolClosed)
	assert.NoError(t, p.Shutdown(context.Background()), "second shutdown is harmless")
}

func TestShutdownTimeoutCancelsRunningTasks(t *testing.T) {
	p := NewPool(1, 1, nil, logger.Discard())
	started := make(chan struct{})
	var sawCancel atomic.Bool

	require.NoError(t, p.Submit("slow", func(ctx context.Context) (string, error) {
		close(started)
		<-ctx.Done()
		sawCancel.Store(true)
		return "", ctx.Err()
	}))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := p.Shutdown(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, sawCancel.Load())
}

func TestPanickingTaskIsReported(t *testing.T) {
	hook := &recordingHook{}
	p := NewPool(1, 1, hook, logger.Discard())

	require.NoError(t, p.Submit("bad", func(ctx context.Context) (string, error) {
		panic("nil map")
	}))
	require.NoError(t, p.Shutdown(context.Background()))

	calls := hook.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, "panic", calls[0].outcome)
	assert.Error(t, calls[0].err)
}
