package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go-recruiter-backend/internal/domain"
)

type screeningUsecase struct {
	appRepo   domain.ApplicationRepository
	scorer    domain.Scorer
	notifier  domain.Notifier
	threshold int
	log       *slog.Logger
	now       func() time.Time
}

// NewScreeningUsecase wires the orchestrator. notifier may be nil, in which
// case decisions are persisted without a status e-mail.
func NewScreeningUsecase(
	appRepo domain.ApplicationRepository,
	scorer domain.Scorer,
	notifier domain.Notifier,
	threshold int,
	log *slog.Logger,
) domain.ScreeningUsecase {
	return &screeningUsecase{
		appRepo:   appRepo,
		scorer:    scorer,
		notifier:  notifier,
		threshold: threshold,
		log:       log,
		now:       time.Now,
	}
}

// RunScreening scores one pending application and records the decision.
// Nothing is returned to the submitter; the report feeds logs and audit.
func (u *screeningUsecase) RunScreening(ctx context.Context, req domain.ScreeningRequest) domain.ScreeningReport {
	report := domain.ScreeningReport{ApplicationID: req.ApplicationID}
	log := u.log.With("application_id", req.ApplicationID)

	// 1. Load
	app, err := u.appRepo.GetByID(ctx, req.ApplicationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Warn("screening skipped: application not found")
		} else {
			log.Error("screening skipped: load failed", "error", err)
			report.Err = err
		}
		report.Outcome = domain.OutcomeMissing
		return report
	}
	report.Status = app.Status

	if app.Status != domain.StatusPending {
		log.Info("screening skipped: application already processed", "status", app.Status)
		report.Outcome = domain.OutcomeNotPending
		return report
	}

	// 2. Score
	result, err := u.scorer.Score(ctx, req.JobDescription, req.ResumeText)
	if err != nil {
		log.Error("screening failed: scoring", "error", err)
		report.Outcome = domain.OutcomeScoringFailed
		report.Err = err
		return report
	}
	report.MatchScore = result.MatchScore

	// 3. Decide
	decided := Decide(result.MatchScore, u.threshold)

	// 4. Persist
	ok, err := u.appRepo.UpdateStatusFrom(ctx, app.ID, domain.StatusPending, decided, u.now())
	if err != nil {
		log.Error("screening failed: persist", "status", decided, "error", err)
		report.Outcome = domain.OutcomePersistFailed
		report.Err = err
		return report
	}
	if !ok {
		log.Warn("screening result discarded: status changed while scoring", "status", decided)
		report.Outcome = domain.OutcomeStaleStatus
		return report
	}
	report.Status = decided
	report.Outcome = domain.OutcomeDecided

	log.Info("application screened",
		"match_score", result.MatchScore,
		"threshold", u.threshold,
		"status", decided,
	)

	// 5. Notify
	if u.notifier == nil {
		return report
	}
	if err := u.notifier.NotifyStatus(ctx, app.Email, decided, req.JobTitle); err != nil {
		log.Error("status notification not queued", "status", decided, "error", err)
		return report
	}
	report.NotificationQueued = true
	return report
}
