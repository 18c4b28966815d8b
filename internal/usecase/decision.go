package usecase

import "go-recruiter-backend/internal/domain"

// DefaultMatchThreshold is the lowest score that keeps a candidate in the running.
const DefaultMatchThreshold = 50

// Decide maps a match score to the status the screening pipeline assigns.
func Decide(score, threshold int) domain.ApplicationStatus {
	if score < threshold {
		return domain.StatusRejected
	}
	return domain.StatusViewed
}
