// Command worker delivers queued status emails from Redis. Run it next to
// the API with NOTIFICATION_INLINE=false; the API then only enqueues and
// needs no email provider settings.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-recruiter-backend/config"
	"go-recruiter-backend/internal/notification"
	"go-recruiter-backend/pkg/audit"
	"go-recruiter-backend/pkg/email"
	"go-recruiter-backend/pkg/logger"
	"go-recruiter-backend/pkg/queue"
	redisclient "go-recruiter-backend/pkg/redis"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.LogLevel)
	appLog := logger.Log
	auditLog := audit.New("recruiter-worker", cfg.Environment)
	defer func() { _ = auditLog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sender := email.FromConfig(cfg)
	if sender == nil {
		appLog.Error("No email provider configured")
		os.Exit(1)
	}

	// The in-memory queue is per process, so the worker only makes sense with Redis
	rdb, err := redisclient.NewClient(ctx, redisclient.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword})
	if err != nil {
		appLog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	q := queue.NewRedisQueue(rdb, cfg.NotificationQueue, queue.Options{
		VisibilityTimeout: cfg.NotificationVisibility,
		PollInterval:      cfg.NotificationPollInterval,
	})
	dispatcher := notification.NewDispatcher(q, sender, notification.Config{
		MaxAttempts:    cfg.NotificationMaxAttempts,
		BaseDelay:      cfg.NotificationBackoff,
		UnsubscribeURL: cfg.UnsubscribeURL,
		CompanyName:    cfg.EmailFromName,
	}, appLog, auditLog)

	appLog.Info("Notification worker started", "queue", cfg.NotificationQueue, "workers", cfg.NotificationWorkers)
	if err := dispatcher.Run(ctx, cfg.NotificationWorkers); err != nil {
		appLog.Error("Notification worker stopped", "error", err)
		os.Exit(1)
	}
	appLog.Info("Notification worker exiting")
}
