package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends understood by pkg/storage
const (
	StorageLocal = "local"
	StorageS3    = "s3"
	StorageMinio = "minio"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string
	DBUrl       string
	CORSOrigins []string

	// Identity (Firebase ID tokens)
	FirebaseProjectID     string
	FirebaseJWKSURL       string
	AllowedSignInProvider string
	AdminUIDs             []string

	// Scoring oracle (Gemini)
	GeminiAPIKey   string
	GeminiModel    string
	MinMatchScore  int
	ScoringTimeout time.Duration

	// Screening worker pool
	ScreeningWorkers   int
	ScreeningQueueSize int

	// Email (SendGrid primary, SMTP relay fallback)
	SendGridAPIKey string
	EmailFrom      string
	EmailFromName  string
	UnsubscribeURL string
	SMTPHost       string
	SMTPPort       string
	SMTPUsername   string
	SMTPPassword   string

	// Notification queue
	RedisURL                 string
	RedisPassword            string
	NotificationQueue        string
	NotificationWorkers      int
	NotificationMaxAttempts  int
	NotificationBackoff      time.Duration
	NotificationVisibility   time.Duration
	NotificationPollInterval time.Duration
	// Deliver emails from the API process instead of cmd/worker
	NotificationInline bool

	// File storage
	StorageBackend string
	UploadDir      string
	MaxFileSize    int64
	S3Provider     string
	S3Region       string
	S3Bucket       string
	S3AccessKeyID  string
	S3SecretKey    string
	S3Endpoint     string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	// Malware scanning of uploads, disabled when the address is empty
	ClamAVAddress string
	ClamAVTimeout time.Duration

	// Rate limiting (requests per window, per client IP)
	RateLimitWindowSeconds int
	RateLimitCareerCreate  int
	RateLimitApply         int
	RateLimitApplications  int
}

func LoadConfig() (*Config, error) {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	projectID := getEnv("FIREBASE_PROJECT_ID", "")

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "production"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DBUrl:       getEnv("DATABASE_URL", ""),
		CORSOrigins: getEnvList("CORS_ORIGINS", []string{"*"}),

		FirebaseProjectID:     projectID,
		FirebaseJWKSURL:       getEnv("FIREBASE_JWKS_URL", "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"),
		AllowedSignInProvider: getEnv("ALLOWED_SIGN_IN_PROVIDER", "google.com"),
		AdminUIDs:             getEnvList("ADMIN_UIDS", nil),

		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		MinMatchScore:  getEnvInt("MIN_MATCH_SCORE", 50),
		ScoringTimeout: getEnvDuration("SCORING_TIMEOUT", 60*time.Second),

		ScreeningWorkers:   getEnvInt("SCREENING_WORKERS", 4),
		ScreeningQueueSize: getEnvInt("SCREENING_QUEUE_SIZE", 100),

		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		EmailFrom:      getEnv("EMAIL_FROM", "recruiter@yourdomain.com"),
		EmailFromName:  getEnv("EMAIL_FROM_NAME", "Recruitment Team"),
		UnsubscribeURL: getEnv("UNSUBSCRIBE_URL", "https://yourdomain.com/unsubscribe"),
		SMTPHost:       getEnv("SMTP_HOST", "smtp-relay.brevo.com"),
		SMTPPort:       getEnv("SMTP_PORT", "587"),
		SMTPUsername:   getEnv("SMTP_USERNAME", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),

		RedisURL:                 getEnv("REDIS_URL", ""),
		RedisPassword:            getEnv("REDIS_PASSWORD", ""),
		NotificationQueue:        getEnv("NOTIFICATION_QUEUE", "notifications:status_email"),
		NotificationWorkers:      getEnvInt("NOTIFICATION_WORKERS", 2),
		NotificationMaxAttempts:  getEnvInt("NOTIFICATION_MAX_ATTEMPTS", 3),
		NotificationBackoff:      getEnvDuration("NOTIFICATION_BACKOFF", 60*time.Second),
		NotificationVisibility:   getEnvDuration("NOTIFICATION_VISIBILITY_TIMEOUT", 5*time.Minute),
		NotificationPollInterval: getEnvDuration("NOTIFICATION_POLL_INTERVAL", time.Second),
		NotificationInline:       getEnvBool("NOTIFICATION_INLINE", true),

		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", StorageLocal)),
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		MaxFileSize:    int64(getEnvInt("MAX_FILE_SIZE", 5*1024*1024)),
		ClamAVAddress:  getEnv("CLAMAV_ADDRESS", ""),
		ClamAVTimeout:  getEnvDuration("CLAMAV_TIMEOUT", 30*time.Second),
		S3Provider:     getEnv("S3_PROVIDER", "aws"),
		S3Region:       getEnv("S3_REGION", "us-east-1"),
		S3Bucket:       getEnv("S3_BUCKET", ""),
		S3AccessKeyID:  getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretKey:    getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Endpoint:     getEnv("S3_ENDPOINT", ""),
		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getEnv("MINIO_BUCKET", "resumes"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),

		RateLimitWindowSeconds: getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitCareerCreate:  getEnvInt("RATE_LIMIT_CAREER_CREATE", 2),
		RateLimitApply:         getEnvInt("RATE_LIMIT_APPLY", 3),
		RateLimitApplications:  getEnvInt("RATE_LIMIT_APPLICATIONS", 10),
	}

	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Notification queue and rate limiting will be in-memory.")
	}
	if cfg.SendGridAPIKey == "" && cfg.SMTPUsername == "" {
		log.Println("WARNING: no email provider configured - status emails will not be sent")
	}

	return cfg, nil
}

// Validate reports configuration the API cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.DBUrl == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.GeminiAPIKey == "" {
		errs = append(errs, errors.New("GEMINI_API_KEY is required"))
	}
	if c.FirebaseProjectID == "" {
		errs = append(errs, errors.New("FIREBASE_PROJECT_ID is required"))
	}
	if c.MinMatchScore < 0 || c.MinMatchScore > 100 {
		errs = append(errs, errors.New("MIN_MATCH_SCORE must be between 0 and 100"))
	}
	if c.NotificationMaxAttempts < 1 {
		errs = append(errs, errors.New("NOTIFICATION_MAX_ATTEMPTS must be at least 1"))
	}
	switch c.StorageBackend {
	case StorageLocal, StorageS3, StorageMinio:
	default:
		errs = append(errs, errors.New("STORAGE_BACKEND must be one of local, s3, minio"))
	}
	return errors.Join(errs...)
}

// EmailConfigured reports whether any email provider has credentials.
func (c *Config) EmailConfigured() bool {
	return c.SendGridAPIKey != "" || (c.SMTPHost != "" && c.SMTPUsername != "" && c.SMTPPassword != "")
}

// IsAdmin reports whether uid is listed in ADMIN_UIDS.
func (c *Config) IsAdmin(uid string) bool {
	for _, admin := range c.AdminUIDs {
		if admin == uid {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("90s") or a bare number of seconds
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
