package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go-recruiter-backend/internal/domain"
	"go-recruiter-backend/internal/worker"
	"go-recruiter-backend/pkg/apperror"
	"go-recruiter-backend/pkg/audit"
	"go-recruiter-backend/pkg/document"
	"go-recruiter-backend/pkg/security"
	"go-recruiter-backend/pkg/security/antivirus"
	"go-recruiter-backend/pkg/storage"
)

// Scheduler runs screening tasks off the request path.
type Scheduler interface {
	Submit(name string, task worker.Task) error
}

// TextExtractor reads the text of a stored document.
type TextExtractor interface {
	Extract(ctx context.Context, ref string, kind document.Kind) (string, error)
}

// ApplicationDeps groups the collaborators of the application usecase.
type ApplicationDeps struct {
	Applications domain.ApplicationRepository
	Careers      domain.CareerRepository
	Files        storage.Storage
	Extractor    TextExtractor     // defaults to a document.Extractor over Files
	Scanner      antivirus.Scanner // optional
	Screening    domain.ScreeningUsecase
	Scheduler    Scheduler
	Notifier     domain.Notifier // optional
	Audit        *audit.Logger   // optional
	Log          *slog.Logger
	MaxFileSize  int64
}

type applicationUsecase struct {
	ApplicationDeps
	now func() time.Time
}

// NewApplicationUsecase creates a new application usecase
func NewApplicationUsecase(deps ApplicationDeps) domain.ApplicationUsecase {
	if deps.Extractor == nil {
		deps.Extractor = document.NewExtractor(deps.Files, deps.MaxFileSize)
	}
	return &applicationUsecase{ApplicationDeps: deps, now: time.Now}
}

// Apply stores an application and schedules its screening.
// The returned application is still pending.
func (uc *applicationUsecase) Apply(ctx context.Context, in domain.ApplyInput) (*domain.Application, error) {
	// 1. Required fields
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	if in.FullName == "" || in.Email == "" || in.PhoneNumber == "" {
		return nil, apperror.BadRequest("Full name, email and phone number are required")
	}
	if len(in.CV.Data) == 0 {
		return nil, apperror.BadRequest("CV is required to submit an application")
	}

	// 2. Career must exist
	career, err := uc.Careers.GetByID(ctx, in.CareerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Career not found")
		}
		return nil, apperror.Internal(err)
	}

	// 3. One application per user and career
	exists, err := uc.Applications.CheckExists(ctx, in.CareerID, in.UserID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if exists {
		return nil, apperror.Conflict("You have already applied for this position")
	}

	// 4. Validate uploads and read the résumé before storing anything
	cvCheck, err := uc.validateUpload(in.CV, "CV")
	if err != nil {
		return nil, err
	}
	var docCheck *security.FileValidationResult
	if in.Document != nil && len(in.Document.Data) > 0 {
		if docCheck, err = uc.validateUpload(*in.Document, "Document"); err != nil {
			return nil, err
		}
	}

	if err := uc.scan(ctx, in.CV, "CV"); err != nil {
		return nil, err
	}
	if docCheck != nil {
		if err := uc.scan(ctx, *in.Document, "Document"); err != nil {
			return nil, err
		}
	}

	resumeText, err := document.ExtractBytes(in.CV.Data, kindFor(cvCheck.Extension))
	if err != nil {
		return nil, apperror.Unprocessable("Could not read any text from the CV", err)
	}

	// 5. Store files
	cvRef, err := uc.store(ctx, in.CV, cvCheck)
	if err != nil {
		return nil, err
	}
	stored := []string{cvRef}

	app := &domain.Application{
		CareerID:    in.CareerID,
		UserID:      in.UserID,
		FullName:    in.FullName,
		PhoneNumber: in.PhoneNumber,
		Email:       in.Email,
		CVPath:      cvRef,
		Status:      domain.StatusPending,
		CareerTitle: &career.Title,
	}

	if docCheck != nil {
		docRef, err := uc.store(ctx, *in.Document, docCheck)
		if err != nil {
			uc.discard(ctx, stored)
			return nil, err
		}
		stored = append(stored, docRef)
		app.DocumentPath = &docRef
	}

	// 6. Persist
	if err := uc.Applications.Create(ctx, app); err != nil {
		uc.discard(ctx, stored)
		if errors.Is(err, domain.ErrDuplicateApplication) {
			return nil, apperror.Conflict("You have already applied for this position")
		}
		return nil, apperror.Internal(err)
	}

	uc.Audit.Log(ctx, audit.Event{
		Type:         audit.EventApplicationSubmitted,
		SubjectType:  "application",
		SubjectValue: fmt.Sprint(app.ID),
		Details:      map[string]any{"career_id": app.CareerID},
	})

	// 7. Schedule screening
	if err := uc.schedule(app.ID, career, resumeText); err != nil {
		// the application stays pending and ResumePending picks it up later
		uc.Log.Error("screening not scheduled", "application_id", app.ID, "error", err)
	}

	return app, nil
}

func (uc *applicationUsecase) schedule(applicationID int64, career *domain.CareerPost, resumeText string) error {
	req := domain.ScreeningRequest{
		ApplicationID:  applicationID,
		JobDescription: career.ScreeningText(),
		ResumeText:     resumeText,
		JobTitle:       career.Title,
	}
	return uc.Scheduler.Submit(fmt.Sprintf("screening:%d", applicationID), func(ctx context.Context) (string, error) {
		report := uc.Screening.RunScreening(ctx, req)
		return string(report.Outcome), report.Err
	})
}

// ResumePending schedules screening again for applications that have been
// pending since before the cutoff, reading each CV back from storage.
// Screening tasks live in memory, so this recovers work lost in a restart.
// Applications whose scoring failed are pending too and get scored again.
func (uc *applicationUsecase) ResumePending(ctx context.Context, before time.Time, limit int) (int, error) {
	apps, err := uc.Applications.ListPending(ctx, before, limit)
	if err != nil {
		return 0, err
	}

	careers := make(map[int64]*domain.CareerPost)
	scheduled := 0
	for _, app := range apps {
		career, ok := careers[app.CareerID]
		if !ok {
			if career, err = uc.Careers.GetByID(ctx, app.CareerID); err != nil {
				uc.Log.Warn("pending application skipped, career unavailable", "application_id", app.ID, "career_id", app.CareerID, "error", err)
				continue
			}
			careers[app.CareerID] = career
		}

		text, err := uc.Extractor.Extract(ctx, app.CVPath, "")
		if err != nil {
			uc.Log.Warn("pending application skipped, CV unreadable", "application_id", app.ID, "error", err)
			continue
		}

		if err := uc.schedule(app.ID, career, text); err != nil {
			if errors.Is(err, worker.ErrPoolFull) || errors.Is(err, worker.ErrPoolClosed) {
				return scheduled, err
			}
			uc.Log.Error("screening not scheduled", "application_id", app.ID, "error", err)
			continue
		}
		scheduled++
	}
	return scheduled, nil
}

func (uc *applicationUsecase) validateUpload(u domain.Upload, label string) (*security.FileValidationResult, error) {
	res, err := security.ValidateFile(u.Filename, u.Data, uc.MaxFileSize)
	switch {
	case err == nil:
		return res, nil
	case errors.Is(err, security.ErrFileTooLarge):
		return nil, apperror.TooLarge(fmt.Sprintf("%s exceeds the maximum size of %d MB", label, uc.MaxFileSize>>20))
	case errors.Is(err, security.ErrEmptyFile):
		return nil, apperror.BadRequest(label + " is empty")
	default:
		return nil, apperror.UnsupportedMedia(fmt.Sprintf("%s must be one of %s", label, strings.Join(security.GetAllowedExtensions(), ", ")))
	}
}

func (uc *applicationUsecase) scan(ctx context.Context, u domain.Upload, label string) error {
	if uc.Scanner == nil {
		return nil
	}
	res, err := antivirus.Check(ctx, uc.Scanner, u.Data)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, antivirus.ErrInfected):
		uc.Audit.Log(ctx, audit.Event{
			Type:        audit.EventMalwareDetected,
			SubjectType: "upload",
			Details:     map[string]any{"filename": u.Filename, "threat": res.Threat},
		})
		return apperror.Unprocessable(label+" was rejected by the malware scan", err)
	default:
		// unscanned files are never stored
		return apperror.ServiceUnavailable("Could not scan the uploaded file", err)
	}
}

func (uc *applicationUsecase) store(ctx context.Context, u domain.Upload, check *security.FileValidationResult) (string, error) {
	name := storage.ObjectName(check.Extension)
	ref, err := uc.Files.Save(ctx, name, bytes.NewReader(u.Data), int64(len(u.Data)), check.DetectedMIME)
	if err != nil {
		return "", apperror.ServiceUnavailable("Could not store the uploaded file", err)
	}
	return ref, nil
}

// discard removes files whose application row was never written.
func (uc *applicationUsecase) discard(ctx context.Context, refs []string) {
	for _, ref := range refs {
		if err := uc.Files.Delete(context.WithoutCancel(ctx), ref); err != nil {
			uc.Log.Warn("orphaned upload not removed", "ref", ref, "error", err)
		}
	}
}

func kindFor(ext string) document.Kind {
	if ext == ".docx" {
		return document.KindDOCX
	}
	return document.KindPDF
}

// ListMine returns the caller's applications, newest first
func (uc *applicationUsecase) ListMine(ctx context.Context, userID string) ([]domain.Application, error) {
	apps, err := uc.Applications.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if apps == nil {
		apps = []domain.Application{}
	}
	return apps, nil
}

// CheckApplied reports, for every requested career, whether the user applied.
func (uc *applicationUsecase) CheckApplied(ctx context.Context, userID string, careerIDs []int64) (map[int64]bool, error) {
	result := make(map[int64]bool, len(careerIDs))
	if len(careerIDs) == 0 {
		return result, nil
	}

	applied, err := uc.Applications.AppliedCareerIDs(ctx, userID, careerIDs)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	for _, id := range careerIDs {
		result[id] = applied[id]
	}
	return result, nil
}

// Review lets a reviewer accept or reject an application the pipeline viewed.
// Status flow: viewed → accepted / rejected
func (uc *applicationUsecase) Review(ctx context.Context, applicationID int64, status domain.ApplicationStatus) (*domain.Application, error) {
	// 1. Validate status
	if status != domain.StatusAccepted && status != domain.StatusRejected {
		return nil, apperror.BadRequest("Invalid status. Must be: accepted or rejected")
	}

	// 2. Get application
	app, err := uc.Applications.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Application not found")
		}
		return nil, apperror.Internal(err)
	}

	// 3. Transition must be allowed from the current status
	if !app.Status.CanReview(status) {
		return nil, apperror.New(http.StatusConflict, fmt.Sprintf("Application is %s and cannot be marked %s", app.Status, status), domain.ErrInvalidTransition)
	}

	// 4. Compare-and-set
	now := uc.now()
	ok, err := uc.Applications.UpdateStatusFrom(ctx, app.ID, app.Status, status, now)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !ok {
		return nil, apperror.New(http.StatusConflict, "Application status changed, reload and try again", domain.ErrInvalidTransition)
	}
	previous := app.Status
	app.Status = status
	app.UpdatedAt = now

	uc.Audit.Log(ctx, audit.Event{
		Type:         audit.EventApplicationReviewed,
		SubjectType:  "application",
		SubjectValue: fmt.Sprint(app.ID),
		Details:      map[string]any{"from": previous, "to": status},
	})

	// 5. Notify the candidate; the decision stands even if this fails
	if uc.Notifier != nil {
		title := ""
		if career, err := uc.Careers.GetByID(ctx, app.CareerID); err == nil {
			title = career.Title
			app.CareerTitle = &career.Title
		}
		if err := uc.Notifier.NotifyStatus(ctx, app.Email, status, title); err != nil {
			uc.Log.Error("status notification not queued", "application_id", app.ID, "error", err)
		}
	}

	return app, nil
}
