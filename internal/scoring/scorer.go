// Package scoring asks a language model to rate a résumé against a job.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go-recruiter-backend/internal/domain"
	"go-recruiter-backend/pkg/logger"
)

var (
	ErrOracle      = errors.New("scoring: oracle call failed")
	ErrEmptyResume = errors.New("scoring: empty résumé text")
)

// Oracle generates a text completion for a prompt.
type Oracle interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

type Scorer struct {
	oracle  Oracle
	timeout time.Duration
	log     *slog.Logger
}

var _ domain.Scorer = (*Scorer)(nil)

// NewScorer returns a scorer that bounds each oracle call by timeout (0 means
// only the caller's context applies). There is no retry.
func NewScorer(oracle Oracle, timeout time.Duration, log *slog.Logger) *Scorer {
	return &Scorer{oracle: oracle, timeout: timeout, log: log}
}

func (s *Scorer) Score(ctx context.Context, jobDescription, resumeText string) (*domain.ScoringResult, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, ErrEmptyResume
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	started := time.Now()
	raw, err := s.oracle.GenerateContent(ctx, BuildPrompt(jobDescription, resumeText))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOracle, err)
	}

	result, err := ParseResult(raw)
	if err != nil {
		s.log.Debug("oracle response rejected",
			"error", err,
			"response", logger.Truncate(raw, 500),
		)
		return nil, err
	}

	s.log.Debug("résumé scored",
		"match_score", result.MatchScore,
		"elapsed", time.Since(started),
	)
	return result, nil
}
