package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/0xcro3dile/docqa-go/internal/domain/entities"
)

func TestSystem_Check(t *testing.T) {
	s := NewSystem(&mockBackend{}, nil)
	if report := s.Check(context.Background()); !report.Healthy() {
		t.Errorf("expected healthy report: %+v", report)
	}

	s = NewSystem(&mockBackend{
		healthFn: func() (*entities.HealthResponse, error) { return nil, errors.New("refused") },
	}, nil)
	report := s.Check(context.Background())
	if report.Healthy() || report.Err == nil {
		t.Errorf("expected unhealthy report: %+v", report)
	}
}
