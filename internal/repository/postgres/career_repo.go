package postgres

import (
	"context"
	"errors"

	"go-recruiter-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type careerRepo struct {
	db *pgxpool.Pool
}

func NewCareerRepository(db *pgxpool.Pool) domain.CareerRepository {
	return &careerRepo{db: db}
}

func (r *careerRepo) Create(ctx context.Context, career *domain.CareerPost) error {
	query := `INSERT INTO careers (title, description, requirements, location, content, posted_at)
              VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	return r.db.QueryRow(ctx, query,
		career.Title, career.Description, career.Requirements, career.Location, career.Content, career.PostedAt,
	).Scan(&career.ID)
}

func (r *careerRepo) GetByID(ctx context.Context, id int64) (*domain.CareerPost, error) {
	query := `SELECT id, title, description, requirements, location, content, posted_at FROM careers WHERE id = $1`
	var c domain.CareerPost
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Title, &c.Description, &c.Requirements, &c.Location, &c.Content, &c.PostedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *careerRepo) Fetch(ctx context.Context, limit, offset int) ([]domain.CareerPost, int64, error) {
	query := `SELECT id, title, description, requirements, location, content, posted_at
              FROM careers ORDER BY posted_at DESC, id DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var careers []domain.CareerPost
	for rows.Next() {
		var c domain.CareerPost
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.Requirements, &c.Location, &c.Content, &c.PostedAt); err != nil {
			return nil, 0, err
		}
		careers = append(careers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM careers`).Scan(&total); err != nil {
		return nil, 0, err
	}

	return careers, total, nil
}
