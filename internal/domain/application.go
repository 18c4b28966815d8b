package domain

import (
	"context"
	"time"
)

type ApplicationStatus string

// Application status constants
const (
	StatusPending  ApplicationStatus = "pending"
	StatusViewed   ApplicationStatus = "viewed"
	StatusAccepted ApplicationStatus = "accepted"
	StatusRejected ApplicationStatus = "rejected"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusViewed, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// CanReview reports whether a reviewer may move an application from s to next.
// Reviewers only act on applications the screening pipeline has already viewed.
func (s ApplicationStatus) CanReview(next ApplicationStatus) bool {
	return s == StatusViewed && (next == StatusAccepted || next == StatusRejected)
}

// Application represents a candidate's application to a career post
type Application struct {
	ID           int64             `json:"id"`
	CareerID     int64             `json:"career_id"`
	UserID       string            `json:"user_id"`
	FullName     string            `json:"full_name"`
	PhoneNumber  string            `json:"phone_number"`
	Email        string            `json:"email"`
	CVPath       string            `json:"cv_path"`
	DocumentPath *string           `json:"document_path,omitempty"`
	Status       ApplicationStatus `json:"status"` // pending → viewed/rejected → accepted/rejected
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`

	// Joined data for list responses
	CareerTitle *string `json:"career_title,omitempty"`
}

// Upload is a file received with an application, already size-limited.
type Upload struct {
	Filename string
	Data     []byte
}

type ApplyInput struct {
	CareerID    int64
	UserID      string
	FullName    string
	PhoneNumber string
	Email       string
	CV          Upload
	Document    *Upload
}

// ApplicationRepository defines data access methods for applications
type ApplicationRepository interface {
	Create(ctx context.Context, app *Application) error
	GetByID(ctx context.Context, id int64) (*Application, error)
	GetByUserID(ctx context.Context, userID string) ([]Application, error)
	GetByCareerID(ctx context.Context, careerID int64) ([]Application, error)
	CheckExists(ctx context.Context, careerID int64, userID string) (bool, error)
	AppliedCareerIDs(ctx context.Context, userID string, careerIDs []int64) (map[int64]bool, error)
	// ListPending returns up to limit pending applications created before
	// the cutoff, oldest first.
	ListPending(ctx context.Context, before time.Time, limit int) ([]Application, error)
	// UpdateStatusFrom sets status to `to` only while the row still has
	// status `from`. It returns false when no row matched.
	UpdateStatusFrom(ctx context.Context, id int64, from, to ApplicationStatus, at time.Time) (bool, error)
}

// ApplicationUsecase defines business logic for applications
type ApplicationUsecase interface {
	// Candidate operations
	Apply(ctx context.Context, in ApplyInput) (*Application, error)
	ListMine(ctx context.Context, userID string) ([]Application, error)
	CheckApplied(ctx context.Context, userID string, careerIDs []int64) (map[int64]bool, error)
	ResumePending(ctx context.Context, before time.Time, limit int) (int, error)

	// Reviewer operations
	Review(ctx context.Context, applicationID int64, status ApplicationStatus) (*Application, error)
}
