package domain

import (
	"context"
)

// ScoringResult is the oracle's assessment of a résumé. It is not persisted.
type ScoringResult struct {
	MatchScore         int      `json:"match_score"`
	Strengths          []string `json:"strengths"`
	Weaknesses         []string `json:"weaknesses"`
	SuggestedQuestions []string `json:"suggested_questions"`
}

type ScreeningRequest struct {
	ApplicationID  int64
	JobDescription string
	ResumeText     string
	JobTitle       string
}

type ScreeningOutcome string

const (
	OutcomeDecided       ScreeningOutcome = "decided"
	OutcomeMissing       ScreeningOutcome = "application_missing"
	OutcomeNotPending    ScreeningOutcome = "not_pending"
	OutcomeScoringFailed ScreeningOutcome = "scoring_failed"
	OutcomePersistFailed ScreeningOutcome = "persist_failed"
	OutcomeStaleStatus   ScreeningOutcome = "status_changed"
)

// ScreeningReport describes one orchestrator run. Err carries the failure
// that ended the run early, for logging only.
type ScreeningReport struct {
	ApplicationID      int64
	Outcome            ScreeningOutcome
	Status             ApplicationStatus
	MatchScore         int
	NotificationQueued bool
	Err                error
}

type Scorer interface {
	Score(ctx context.Context, jobDescription, resumeText string) (*ScoringResult, error)
}

// Notifier schedules a status e-mail for later delivery.
type Notifier interface {
	NotifyStatus(ctx context.Context, email string, status ApplicationStatus, jobTitle string) error
}

type ScreeningUsecase interface {
	RunScreening(ctx context.Context, req ScreeningRequest) ScreeningReport
}
