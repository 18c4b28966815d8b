package usecase

import (
	"context"
	"time"

	"go-recruiter-backend/internal/domain"
)

// PingFunc reports whether a dependency is reachable.
type PingFunc func(ctx context.Context) error

type healthUsecase struct {
	checks  map[string]PingFunc
	timeout time.Duration
}

// NewHealthUsecase checks each named dependency. A nil check marks the
// dependency as not configured.
func NewHealthUsecase(checks map[string]PingFunc) domain.HealthUsecase {
	return &healthUsecase{checks: checks, timeout: 2 * time.Second}
}

func (u *healthUsecase) Check(ctx context.Context) domain.HealthStatus {
	status := domain.HealthStatus{Status: "ok", Services: make(map[string]string, len(u.checks))}

	for name, check := range u.checks {
		if check == nil {
			status.Services[name] = "not_configured"
			continue
		}

		pingCtx, cancel := context.WithTimeout(ctx, u.timeout)
		err := check(pingCtx)
		cancel()

		if err != nil {
			status.Services[name] = "down"
			status.Status = "degraded"
			continue
		}
		status.Services[name] = "up"
	}
	return status
}
