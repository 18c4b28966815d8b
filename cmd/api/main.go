package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go-recruiter-backend/config"
	_ "go-recruiter-backend/docs" // Important for Swagger
	"go-recruiter-backend/internal/delivery/http/middleware"
	v1 "go-recruiter-backend/internal/delivery/http/v1"
	"go-recruiter-backend/internal/domain"
	"go-recruiter-backend/internal/notification"
	"go-recruiter-backend/internal/repository/postgres"
	"go-recruiter-backend/internal/scoring"
	"go-recruiter-backend/internal/usecase"
	"go-recruiter-backend/internal/worker"
	"go-recruiter-backend/pkg/audit"
	"go-recruiter-backend/pkg/auth"
	"go-recruiter-backend/pkg/database"
	"go-recruiter-backend/pkg/email"
	"go-recruiter-backend/pkg/logger"
	"go-recruiter-backend/pkg/queue"
	redisclient "go-recruiter-backend/pkg/redis"
	"go-recruiter-backend/pkg/security/antivirus"
	"go-recruiter-backend/pkg/storage"

	goredis "github.com/redis/go-redis/v9"
)

// @title           Recruiter Screening API
// @version         1.0
// @description     Career posts, applications and automated résumé screening.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// 2. Setup Loggers
	logger.Init(cfg.LogLevel)
	appLog := logger.Log
	auditLog := audit.New("recruiter-api", cfg.Environment)
	defer func() { _ = auditLog.Sync() }()

	appLog.Info("Starting recruiter backend", "port", cfg.Port, "environment", cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl, appLog)
	if err != nil {
		appLog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := database.Migrate(ctx, dbPool); err != nil {
		appLog.Error("Failed to apply schema", "error", err)
		os.Exit(1)
	}

	// 4. Setup Redis (optional)
	var rdb goredis.UniversalClient
	if cfg.RedisURL != "" {
		client, err := redisclient.NewClient(ctx, redisclient.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword})
		if err != nil {
			appLog.Warn("Redis unavailable, using in-memory queue and rate limits", "error", err)
		} else {
			rdb = client
			defer client.Close()
		}
	}

	// 5. Setup Storage
	files, err := storage.New(ctx, cfg)
	if err != nil {
		appLog.Error("Failed to initialise file storage", "backend", cfg.StorageBackend, "error", err)
		os.Exit(1)
	}

	// 6. Setup Repositories
	applicationRepo := postgres.NewApplicationRepository(dbPool)
	careerRepo := postgres.NewCareerRepository(dbPool)

	// 7. Setup Scoring
	oracle, err := scoring.NewGeminiOracle(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		appLog.Error("Failed to create Gemini client", "error", err)
		os.Exit(1)
	}
	scorer := scoring.NewScorer(oracle, cfg.ScoringTimeout, appLog)

	// 8. Setup Notifications
	notifyQueue, inline := newNotificationQueue(cfg, rdb)
	sender := email.FromConfig(cfg)
	mode := notificationModeFor(cfg, inline, sender != nil)
	var notifier domain.Notifier
	var dispatcher *notification.Dispatcher
	if mode.enqueue {
		dispatcher = notification.NewDispatcher(notifyQueue, sender, notification.Config{
			MaxAttempts:    cfg.NotificationMaxAttempts,
			BaseDelay:      cfg.NotificationBackoff,
			UnsubscribeURL: cfg.UnsubscribeURL,
			CompanyName:    cfg.EmailFromName,
		}, appLog, auditLog)
		notifier = dispatcher
		if !mode.deliver {
			appLog.Info("Status emails queued for the notification worker", "queue", cfg.NotificationQueue)
		}
	} else {
		appLog.Warn("Email service not configured - status emails disabled")
	}

	var scanner *antivirus.ClamAVScanner
	if cfg.ClamAVAddress != "" {
		scanner = antivirus.NewClamAVScanner(cfg.ClamAVAddress, cfg.ClamAVTimeout)
	}

	// 9. Setup UseCases
	pool := worker.NewPool(cfg.ScreeningWorkers, cfg.ScreeningQueueSize, auditLog, appLog)
	screeningUC := usecase.NewScreeningUsecase(applicationRepo, scorer, notifier, cfg.MinMatchScore, appLog)
	deps := usecase.ApplicationDeps{
		Applications: applicationRepo,
		Careers:      careerRepo,
		Files:        files,
		Screening:    screeningUC,
		Scheduler:    pool,
		Notifier:     notifier,
		Audit:        auditLog,
		Log:          appLog,
		MaxFileSize:  cfg.MaxFileSize,
	}
	if scanner != nil {
		deps.Scanner = scanner
	}
	applicationUC := usecase.NewApplicationUsecase(deps)
	careerUC := usecase.NewCareerUsecase(careerRepo)
	exportUC := usecase.NewExportUsecase(applicationRepo, careerRepo)
	healthUC := usecase.NewHealthUsecase(healthChecks(dbPool.Ping, rdb, files, scanner))

	// 10. Setup Auth Provider (JWKS)
	jwksProvider := auth.NewProvider(cfg.FirebaseJWKSURL)
	verifier := auth.NewFirebaseVerifier(jwksProvider, cfg.FirebaseProjectID, cfg.AllowedSignInProvider)

	// 11. Setup Router
	rateLimiter := middleware.NewRateLimiter(rdb, auditLog, appLog)
	router := v1.NewRouter(v1.RouterDeps{
		CareerUC:      careerUC,
		ApplicationUC: applicationUC,
		ExportUC:      exportUC,
		HealthUC:      healthUC,
		Verifier:      verifier,
		RateLimiter:   rateLimiter,
		Audit:         auditLog,
		Log:           appLog,
		Config:        cfg,
	})

	// Screening tasks do not survive a restart
	if n, err := applicationUC.ResumePending(ctx, time.Now(), cfg.ScreeningQueueSize); err != nil {
		appLog.Warn("Pending applications not fully rescheduled", "scheduled", n, "error", err)
	} else if n > 0 {
		appLog.Info("Rescheduled pending applications", "count", n)
	}

	// 12. Background loops
	bgCtx, cancelBg := context.WithCancel(context.Background())
	var bg sync.WaitGroup
	bg.Add(1)
	go func() {
		defer bg.Done()
		rateLimiter.RunCleanup(bgCtx, time.Minute)
	}()
	if mode.deliver {
		appLog.Info("Delivering status emails in-process", "workers", cfg.NotificationWorkers)
		bg.Add(1)
		go func() {
			defer bg.Done()
			if err := dispatcher.Run(bgCtx, cfg.NotificationWorkers); err != nil {
				appLog.Error("Notification dispatcher stopped", "error", err)
			}
		}()
	}

	// 13. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Error("Listen failed", "error", err)
			stop()
		}
	}()

	// Graceful Shutdown
	<-ctx.Done()
	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Server forced to shutdown", "error", err)
	}
	if err := pool.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Screening tasks abandoned", "error", err)
	}
	cancelBg()
	bg.Wait()

	appLog.Info("Server exiting")
}

// newNotificationQueue returns the Redis queue when a client is available.
// inline reports that only this process can consume the queue.
func newNotificationQueue(cfg *config.Config, rdb goredis.UniversalClient) (q queue.Queue, inline bool) {
	opts := queue.Options{
		VisibilityTimeout: cfg.NotificationVisibility,
		PollInterval:      cfg.NotificationPollInterval,
	}
	if rdb != nil {
		return queue.NewRedisQueue(rdb, cfg.NotificationQueue, opts), false
	}
	return queue.NewMemoryQueue(opts), true
}

type notificationMode struct {
	enqueue bool // build a notifier for status changes
	deliver bool // run the dispatcher in this process
}

// notificationModeFor decides whether the API enqueues and delivers status
// e-mails. With a shared Redis queue and NOTIFICATION_INLINE=false the API
// only enqueues, so it needs no email credentials of its own.
func notificationModeFor(cfg *config.Config, inlineOnly, hasSender bool) notificationMode {
	external := !inlineOnly && !cfg.NotificationInline
	return notificationMode{
		enqueue: hasSender || external,
		deliver: hasSender && !external,
	}
}

func healthChecks(dbPing usecase.PingFunc, rdb goredis.UniversalClient, files storage.Storage, scanner *antivirus.ClamAVScanner) map[string]usecase.PingFunc {
	checks := map[string]usecase.PingFunc{
		"database": dbPing,
		"redis":    nil,
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	if p, ok := files.(interface{ Ping(context.Context) error }); ok {
		checks["storage"] = p.Ping
	}
	if scanner != nil {
		checks["antivirus"] = scanner.Ping
	}
	return checks
}
