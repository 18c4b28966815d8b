// Package notification queues and delivers application status e-mails.
package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go-recruiter-backend/internal/domain"
	"go-recruiter-backend/pkg/audit"
	"go-recruiter-backend/pkg/email"
	"go-recruiter-backend/pkg/queue"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	ErrRetriesExhausted = errors.New("notification: retries exhausted")
	// ErrRetryNotScheduled means the attempt failed and its successor could
	// not be enqueued. The message must stay unacknowledged.
	ErrRetryNotScheduled = errors.New("notification: retry not scheduled")
)

type Config struct {
	// MaxAttempts counts every delivery attempt, the first included.
	MaxAttempts int
	// BaseDelay is multiplied by the failed attempt number to get the
	// delay before the next one.
	BaseDelay      time.Duration
	UnsubscribeURL string
	CompanyName    string
}

type Dispatcher struct {
	queue  queue.Queue
	sender email.Sender
	cfg    Config
	log    *slog.Logger
	audit  *audit.Logger
	now    func() time.Time
}

var _ domain.Notifier = (*Dispatcher)(nil)

func NewDispatcher(q queue.Queue, sender email.Sender, cfg Config, log *slog.Logger, auditLog *audit.Logger) *Dispatcher {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Minute
	}
	return &Dispatcher{
		queue:  q,
		sender: sender,
		cfg:    cfg,
		log:    log,
		audit:  auditLog,
		now:    time.Now,
	}
}

// NotifyStatus enqueues the first delivery attempt for a status e-mail.
func (d *Dispatcher) NotifyStatus(ctx context.Context, to string, status domain.ApplicationStatus, jobTitle string) error {
	job := domain.NotificationJob{
		ID:             uuid.NewString(),
		Email:          to,
		Status:         status,
		JobTitle:       jobTitle,
		UnsubscribeURL: d.cfg.UnsubscribeURL,
		Attempt:        1,
	}
	return d.enqueue(ctx, job, 0)
}

func (d *Dispatcher) enqueue(ctx context.Context, job domain.NotificationJob, delay time.Duration) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("notification: encode job: %w", err)
	}
	if _, err := d.queue.Enqueue(ctx, body, delay); err != nil {
		return fmt.Errorf("notification: enqueue: %w", err)
	}
	return nil
}

// Dispatch makes one delivery attempt.
func (d *Dispatcher) Dispatch(ctx context.Context, job domain.NotificationJob) error {
	html, err := Render(job.Status, job.JobTitle, job.UnsubscribeURL, d.now().Year(), d.cfg.CompanyName)
	if err != nil {
		return err
	}
	return d.sender.Send(ctx, email.Message{
		To:      job.Email,
		Subject: Subject(job.JobTitle),
		HTML:    html,
	})
}

// Handle runs one attempt and schedules the next one on failure. A job that
// fails its last attempt is dropped and ErrRetriesExhausted is returned.
func (d *Dispatcher) Handle(ctx context.Context, job domain.NotificationJob) error {
	if job.Attempt < 1 {
		job.Attempt = 1
	}

	sendErr := d.Dispatch(ctx, job)
	if sendErr == nil {
		d.log.Info("status email sent", "job_id", job.ID, "status", job.Status, "attempt", job.Attempt)
		d.audit.Log(ctx, audit.Event{
			Type:         audit.EventNotificationSent,
			SubjectType:  "email",
			SubjectValue: job.Email,
			Details:      map[string]any{"job_id": job.ID, "attempt": job.Attempt},
		})
		return nil
	}

	if job.Attempt >= d.cfg.MaxAttempts {
		d.log.Error("status email dropped",
			"job_id", job.ID,
			"attempt", job.Attempt,
			"error", sendErr,
		)
		d.audit.Log(ctx, audit.Event{
			Type:         audit.EventNotificationDropped,
			SubjectType:  "email",
			SubjectValue: job.Email,
			Err:          sendErr,
			Details:      map[string]any{"job_id": job.ID, "attempt": job.Attempt},
		})
		return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, job.Attempt, sendErr)
	}

	delay := d.cfg.BaseDelay * time.Duration(job.Attempt)
	next := job
	next.Attempt++
	if err := d.enqueue(ctx, next, delay); err != nil {
		d.log.Error("status email retry could not be scheduled", "job_id", job.ID, "error", err)
		return fmt.Errorf("%w: %w", ErrRetryNotScheduled, err)
	}

	d.log.Warn("status email failed, retry scheduled",
		"job_id", job.ID,
		"attempt", job.Attempt,
		"retry_in", delay,
		"error", sendErr,
	)
	d.audit.Log(ctx, audit.Event{
		Type:         audit.EventNotificationRetry,
		SubjectType:  "email",
		SubjectValue: job.Email,
		Err:          sendErr,
		Details:      map[string]any{"job_id": job.ID, "attempt": job.Attempt, "retry_in": delay.String()},
	})
	return nil
}

// Run consumes the queue with the given number of workers until ctx is done.
// A message is acknowledged only after Handle returns, so a crash mid-send
// means the job is delivered again once its visibility timeout passes.
func (d *Dispatcher) Run(ctx context.Context, workers int) error {
	if workers < 1 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		worker := i
		g.Go(func() error {
			return d.consume(ctx, worker)
		})
	}
	return g.Wait()
}

func (d *Dispatcher) consume(ctx context.Context, worker int) error {
	for {
		msg, err := d.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, queue.ErrClosed) {
				return nil
			}
			d.log.Error("dequeue failed", "worker", worker, "error", err)
			if !sleepCtx(ctx, time.Second) {
				return nil
			}
			continue
		}

		var job domain.NotificationJob
		if err := json.Unmarshal(msg.Body, &job); err != nil {
			d.log.Error("discarding malformed notification job", "message_id", msg.ID, "error", err)
			d.ack(ctx, msg)
			continue
		}

		// Handle logs its own failures. Without a scheduled retry the message
		// is left in flight and comes back after the visibility timeout.
		if err := d.Handle(ctx, job); errors.Is(err, ErrRetryNotScheduled) {
			continue
		}
		d.ack(ctx, msg)
	}
}

func (d *Dispatcher) ack(ctx context.Context, msg *queue.Message) {
	if err := d.queue.Ack(context.WithoutCancel(ctx), msg); err != nil {
		d.log.Error("ack failed", "message_id", msg.ID, "error", err)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
