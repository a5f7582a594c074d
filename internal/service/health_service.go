package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Ahammedsa/server-site-fitenss/internal/repository"
)

// HealthReport is the payload of the health endpoint.
type HealthReport struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
	Store  string `json:"store"`
}

// HealthService reports process and store liveness.
type HealthService struct {
	observer
	store   repository.Pinger
	started time.Time
}

func NewHealthService(store repository.Pinger, logger *zap.Logger) *HealthService {
	return &HealthService{observer: newObserver(logger), store: store, started: time.Now()}
}

// Check pings the store. A failed ping degrades the report instead of
// failing it.
func (s *HealthService) Check(ctx context.Context) HealthReport {
	ctx, span := s.startSpan(ctx, "HealthService.Check")
	defer span.End()

	report := HealthReport{
		Status: "ok",
		Uptime: time.Since(s.started).Round(time.Second).String(),
		Store:  "ok",
	}
	if err := s.store.Ping(ctx); err != nil {
		span.RecordError(err)
		s.log().Warn("store ping failed", zap.Error(err))
		report.Status = "degraded"
		report.Store = "unreachable"
	}
	return report
}
