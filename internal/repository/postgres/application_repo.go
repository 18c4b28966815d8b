package postgres

import (
	"context"
	"errors"
	"time"

	"go-recruiter-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgreSQL error codes
const (
	pgUniqueViolation = "23505"
)

const applicationColumns = `
	a.id, a.career_id, a.user_id, a.full_name, a.phone_number, a.email,
	a.cv_path, a.document_path, a.status, a.created_at, a.updated_at`

type applicationRepo struct {
	db *pgxpool.Pool
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *pgxpool.Pool) domain.ApplicationRepository {
	return &applicationRepo{db: db}
}

func scanApplication(row pgx.Row, extra ...any) (*domain.Application, error) {
	var app domain.Application
	dest := append([]any{
		&app.ID, &app.CareerID, &app.UserID, &app.FullName, &app.PhoneNumber, &app.Email,
		&app.CVPath, &app.DocumentPath, &app.Status, &app.CreatedAt, &app.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &app, nil
}

// Create inserts a new application. A second application by the same user
// for the same career violates uix_user_career.
func (r *applicationRepo) Create(ctx context.Context, app *domain.Application) error {
	query := `
		INSERT INTO applications (career_id, user_id, full_name, phone_number, email, cv_path, document_path, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now
	if app.Status == "" {
		app.Status = domain.StatusPending
	}

	err := r.db.QueryRow(ctx, query,
		app.CareerID,
		app.UserID,
		app.FullName,
		app.PhoneNumber,
		app.Email,
		app.CVPath,
		app.DocumentPath,
		app.Status,
		app.CreatedAt,
		app.UpdatedAt,
	).Scan(&app.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return domain.ErrDuplicateApplication
		}
		return err
	}
	return nil
}

// GetByID retrieves an application by ID with its career title
func (r *applicationRepo) GetByID(ctx context.Context, id int64) (*domain.Application, error) {
	query := `SELECT` + applicationColumns + `, c.title
		FROM applications a
		LEFT JOIN careers c ON a.career_id = c.id
		WHERE a.id = $1`

	var title *string
	app, err := scanApplication(r.db.QueryRow(ctx, query, id), &title)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	app.CareerTitle = title
	return app, nil
}

// GetByUserID retrieves all applications for a user with career titles
func (r *applicationRepo) GetByUserID(ctx context.Context, userID string) ([]domain.Application, error) {
	query := `SELECT` + applicationColumns + `, c.title
		FROM applications a
		LEFT JOIN careers c ON a.career_id = c.id
		WHERE a.user_id = $1
		ORDER BY a.created_at DESC`
	return r.list(ctx, query, userID)
}

// GetByCareerID retrieves all applications for a career, oldest first
func (r *applicationRepo) GetByCareerID(ctx context.Context, careerID int64) ([]domain.Application, error) {
	query := `SELECT` + applicationColumns + `, c.title
		FROM applications a
		LEFT JOIN careers c ON a.career_id = c.id
		WHERE a.career_id = $1
		ORDER BY a.created_at ASC`
	return r.list(ctx, query, careerID)
}

// ListPending returns applications still waiting for screening, oldest first
func (r *applicationRepo) ListPending(ctx context.Context, before time.Time, limit int) ([]domain.Application, error) {
	query := `SELECT` + applicationColumns + `, c.title
		FROM applications a
		LEFT JOIN careers c ON a.career_id = c.id
		WHERE a.status = $1 AND a.created_at < $2
		ORDER BY a.created_at ASC
		LIMIT $3`
	return r.list(ctx, query, domain.StatusPending, before.UTC(), limit)
}

func (r *applicationRepo) list(ctx context.Context, query string, args ...any) ([]domain.Application, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var applications []domain.Application
	for rows.Next() {
		var title *string
		app, err := scanApplication(rows, &title)
		if err != nil {
			return nil, err
		}
		app.CareerTitle = title
		applications = append(applications, *app)
	}
	return applications, rows.Err()
}

// CheckExists checks if an application already exists for the career/user combination
func (r *applicationRepo) CheckExists(ctx context.Context, careerID int64, userID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM applications WHERE career_id = $1 AND user_id = $2)`
	var exists bool
	err := r.db.QueryRow(ctx, query, careerID, userID).Scan(&exists)
	return exists, err
}

// AppliedCareerIDs returns the subset of careerIDs the user has applied to
func (r *applicationRepo) AppliedCareerIDs(ctx context.Context, userID string, careerIDs []int64) (map[int64]bool, error) {
	query := `SELECT career_id FROM applications WHERE user_id = $1 AND career_id = ANY($2)`
	rows, err := r.db.Query(ctx, query, userID, careerIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int64]bool, len(careerIDs))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		applied[id] = true
	}
	return applied, rows.Err()
}

// UpdateStatusFrom moves an application from one status to another in a
// single statement, so concurrent writers cannot both win.
func (r *applicationRepo) UpdateStatusFrom(ctx context.Context, id int64, from, to domain.ApplicationStatus, at time.Time) (bool, error) {
	query := `UPDATE applications SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`
	result, err := r.db.Exec(ctx, query, id, from, to, at.UTC())
	if err != nil {
		return false, err
	}
	return result.RowsAffected() == 1, nil
}
