// Package worker runs background tasks on a fixed set of goroutines.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var (
	ErrPoolFull   = errors.New("worker: pool queue is full")
	ErrPoolClosed = errors.New("worker: pool is shut down")
)

// Task is one unit of background work. The outcome string is reported to
// the hook and is free-form.
type Task func(ctx context.Context) (outcome string, err error)

// Hook observes finished tasks.
type Hook interface {
	OnComplete(name, outcome string, err error, d time.Duration)
}

type job struct {
	name string
	run  Task
}

type Pool struct {
	jobs   chan job
	ctx    context.Context
	cancel context.CancelFunc
	hook   Hook
	log    *slog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewPool starts workers goroutines reading from a buffer of queueSize tasks.
// Tasks receive a context that outlives any request and is cancelled only
// when Shutdown gives up waiting.
func NewPool(workers, queueSize int, hook Hook, log *slog.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		jobs:   make(chan job, queueSize),
		ctx:    ctx,
		cancel: cancel,
		hook:   hook,
		log:    log,
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.work()
	}
	return p
}

// Submit queues a task without blocking.
func (p *Pool) Submit(name string, task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.jobs <- job{name: name, run: task}:
		return nil
	default:
		return ErrPoolFull
	}
}

func (p *Pool) work() {
	defer p.wg.Done()
	for j := range p.jobs {
		p.execute(j)
	}
}

func (p *Pool) execute(j job) {
	start := time.Now()
	var (
		outcome string
		err     error
	)

	defer func() {
		if r := recover(); r != nil {
			outcome = "panic"
			err = fmt.Errorf("worker: task %s panicked: %v", j.name, r)
			p.log.Error("background task panicked", "task", j.name, "panic", r)
		}
		if p.hook != nil {
			p.hook.OnComplete(j.name, outcome, err, time.Since(start))
		}
	}()

	outcome, err = j.run(p.ctx)
}

// Shutdown stops accepting tasks and waits for queued and running ones.
// If ctx ends first, running tasks see their context cancelled and
// Shutdown returns ctx.Err().
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		<-done
		return ctx.Err()
	}
}
