// Package audit writes structured pipeline and security events with zap.
package audit

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType represents the type of audit event
type EventType string

const (
	EventScreeningCompleted   EventType = "screening_completed"
	EventScreeningSkipped     EventType = "screening_skipped"
	EventScreeningFailed      EventType = "screening_failed"
	EventNotificationSent     EventType = "notification_sent"
	EventNotificationRetry    EventType = "notification_retry"
	EventNotificationDropped  EventType = "notification_dropped"
	EventRateLimitTriggered   EventType = "rate_limit_triggered"
	EventUnauthorizedAccess   EventType = "unauthorized_access"
	EventApplicationReviewed  EventType = "application_reviewed"
	EventApplicationSubmitted EventType = "application_submitted"
	EventMalwareDetected      EventType = "malware_detected"
)

// Event represents one audit record
type Event struct {
	Type         EventType
	SubjectType  string // "application", "email", "ip", "user_id"
	SubjectValue string
	RequestID    string
	Duration     time.Duration
	Err          error
	Details      map[string]any
}

// Logger writes audit events. A nil *Logger is a no-op.
type Logger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
}

// New builds a production zap logger on stdout
func New(serviceName, environment string) *Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.MessageKey = "message"
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return NewWithZap(logger, serviceName, environment)
}

func NewWithZap(logger *zap.Logger, serviceName, environment string) *Logger {
	return &Logger{zapLogger: logger, serviceName: serviceName, environment: environment}
}

func levelFor(t EventType) zapcore.Level {
	switch t {
	case EventScreeningFailed, EventNotificationDropped, EventUnauthorizedAccess:
		return zapcore.ErrorLevel
	case EventNotificationRetry, EventRateLimitTriggered, EventScreeningSkipped:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

// Log logs an audit event
func (l *Logger) Log(_ context.Context, event Event) {
	if l == nil {
		return
	}

	fields := []zap.Field{
		zap.String("service", l.serviceName),
		zap.String("env", l.environment),
		zap.String("event", string(event.Type)),
	}
	if event.SubjectType != "" {
		fields = append(fields, zap.String("subject_type", event.SubjectType))
	}
	if event.SubjectValue != "" {
		fields = append(fields, zap.String("subject_value", maskValue(event.SubjectType, event.SubjectValue)))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if event.Duration > 0 {
		fields = append(fields, zap.Duration("duration", event.Duration))
	}
	if event.Err != nil {
		fields = append(fields, zap.Error(event.Err))
	}
	if len(event.Details) > 0 {
		fields = append(fields, zap.Any("details", event.Details))
	}

	l.zapLogger.Log(levelFor(event.Type), string(event.Type), fields...)
}

// OnComplete records a finished background task. Task names have the form
// "screening:<application id>".
func (l *Logger) OnComplete(name, outcome string, err error, d time.Duration) {
	kind, subject, _ := strings.Cut(name, ":")

	eventType := EventScreeningCompleted
	switch {
	case err != nil:
		eventType = EventScreeningFailed
	case outcome != "decided":
		eventType = EventScreeningSkipped
	}
	if kind != "screening" {
		subject = name
	}

	l.Log(context.Background(), Event{
		Type:         eventType,
		SubjectType:  "application",
		SubjectValue: subject,
		Duration:     d,
		Err:          err,
		Details:      map[string]any{"outcome": outcome, "task": kind},
	})
}

// Sync flushes any buffered log entries
func (l *Logger) Sync() error {
	if l == nil {
		return nil
	}
	return l.zapLogger.Sync()
}

// MaskEmail masks an email for logging (e.g., "j***@example.com")
func MaskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if len(email) < 3 || at < 0 {
		return "***"
	}
	if at <= 1 {
		return "***" + email[at:]
	}
	return email[:1] + "***" + email[at:]
}

func maskValue(subjectType, value string) string {
	if subjectType == "email" {
		return MaskEmail(value)
	}
	return value
}
