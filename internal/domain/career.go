package domain

import (
	"context"
	"time"
)

type CareerPost struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Requirements string    `json:"requirements"`
	Location     string    `json:"location"`
	Content      string    `json:"content"`
	PostedAt     time.Time `json:"posted_at"`
}

// ScreeningText is what the scorer sees as the job description.
func (c *CareerPost) ScreeningText() string {
	text := c.Title + "\n\n" + c.Description
	if c.Requirements != "" {
		text += "\n\nRequirements:\n" + c.Requirements
	}
	if c.Content != "" {
		text += "\n\n" + c.Content
	}
	return text
}

type CareerRepository interface {
	Create(ctx context.Context, career *CareerPost) error
	GetByID(ctx context.Context, id int64) (*CareerPost, error)
	Fetch(ctx context.Context, limit, offset int) ([]CareerPost, int64, error)
}

type CareerUsecase interface {
	CreateCareer(ctx context.Context, career *CareerPost) error
	GetCareer(ctx context.Context, id int64) (*CareerPost, error)
	ListCareers(ctx context.Context, page, pageSize int) ([]CareerPost, int64, error)
}
