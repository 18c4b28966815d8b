package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go-recruiter-backend/internal/domain"
	"go-recruiter-backend/pkg/apperror"
)

const maxCareerPageSize = 100

type careerUsecase struct {
	careerRepo domain.CareerRepository
}

func NewCareerUsecase(careerRepo domain.CareerRepository) domain.CareerUsecase {
	return &careerUsecase{careerRepo: careerRepo}
}

func (u *careerUsecase) CreateCareer(ctx context.Context, career *domain.CareerPost) error {
	career.Title = strings.TrimSpace(career.Title)
	career.Description = strings.TrimSpace(career.Description)
	if career.Title == "" {
		return apperror.BadRequest("Title is required")
	}
	if career.Description == "" {
		return apperror.BadRequest("Description is required")
	}

	career.PostedAt = time.Now()
	if err := u.careerRepo.Create(ctx, career); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (u *careerUsecase) GetCareer(ctx context.Context, id int64) (*domain.CareerPost, error) {
	career, err := u.careerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Career not found")
		}
		return nil, apperror.Internal(err)
	}
	return career, nil
}

// ListCareers returns one page of careers, newest first, and the total count.
func (u *careerUsecase) ListCareers(ctx context.Context, page, pageSize int) ([]domain.CareerPost, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > maxCareerPageSize {
		pageSize = maxCareerPageSize
	}
	offset := (page - 1) * pageSize

	careers, total, err := u.careerRepo.Fetch(ctx, pageSize, offset)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	if careers == nil {
		careers = []domain.CareerPost{}
	}
	return careers, total, nil
}
