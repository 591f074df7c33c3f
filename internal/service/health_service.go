package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/vbonduro/everything/internal/domain"
)

// checkInRepository is the subset of store.CheckInStore that HealthService requires.
type checkInRepository interface {
	Create(ctx context.Context, when time.Time) (*domain.CheckIn, error)
	Summary(ctx context.Context) (int, *time.Time, error)
}

type HealthService struct {
	store  checkInRepository
	now    clock
	logger *slog.Logger
}

func NewHealthService(store checkInRepository, logger *slog.Logger) *HealthService {
	return &HealthService{store: store, now: systemClock, logger: logger}
}

func (s *HealthService) CheckIn(ctx context.Context) (*domain.CheckIn, error) {
	c, err := s.store.Create(ctx, s.now())
	if err != nil {
		return nil, err
	}
	s.logger.Info("gym check-in recorded", "id", c.ID)
	return c, nil
}

type GymSummary struct {
	TotalCheckins int        `json:"total_checkins"`
	LastCheckin   *time.Time `json:"last_checkin"`
}

func (s *HealthService) Summary(ctx context.Context) (*GymSummary, error) {
	n, last, err := s.store.Summary(ctx)
	if err != nil {
		return nil, err
	}
	return &GymSummary{TotalCheckins: n, LastCheckin: last}, nil
}
