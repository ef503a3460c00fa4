package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/0xcro3dile/docqa-go/internal/domain/entities"
	"github.com/0xcro3dile/docqa-go/internal/domain/ports"
)

// HealthReport is the outcome of one health check.
type HealthReport struct {
	Health  *entities.HealthResponse
	Latency time.Duration
	Err     error
}

// Healthy reports whether the backend answered and is initialized.
func (r HealthReport) Healthy() bool {
	return r.Err == nil && r.Health != nil && r.Health.Initialized
}

// System checks backend status.
type System struct {
	svc    ports.SystemService
	logger *slog.Logger
}

// NewSystem creates a System use case.
func NewSystem(svc ports.SystemService, logger *slog.Logger) *System {
	return &System{svc: svc, logger: loggerOrDefault(logger)}
}

// Check calls the health endpoint and times it.
func (s *System) Check(ctx context.Context) HealthReport {
	start := time.Now()
	h, err := s.svc.Health(ctx)
	report := HealthReport{Health: h, Latency: time.Since(start)}
	if err != nil {
		s.logger.Warn("health check failed", "error", err)
		report.Err = fmt.Errorf("backend unreachable: %w", err)
	}
	return report
}

// Models returns the model catalogue.
func (s *System) Models(ctx context.Context) (*entities.AvailableModelsResponse, error) {
	return s.svc.AvailableModels(ctx)
}
