package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vbonduro/everything/internal/domain"
)

const maxAppointmentLimit = 100

// appointmentRepository is the subset of store.AppointmentStore that AppointmentService requires.
type appointmentRepository interface {
	Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error)
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	List(ctx context.Context, status domain.AppointmentStatus, limit int) ([]*domain.Appointment, error)
	ListStartingBetween(ctx context.Context, from, to time.Time) ([]*domain.Appointment, error)
	Update(ctx context.Context, a *domain.Appointment) error
	SetStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error
	MarkNotified(ctx context.Context, id int64, at time.Time) error
	Delete(ctx context.Context, id int64) error
}

type AppointmentService struct {
	store  appointmentRepository
	now    clock
	logger *slog.Logger
}

func NewAppointmentService(store appointmentRepository, logger *slog.Logger) *AppointmentService {
	return &AppointmentService{store: store, now: systemClock, logger: logger}
}

func (s *AppointmentService) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	if err := domain.ValidateAppointment(a); err != nil {
		return nil, err
	}
	a.Status = domain.AppointmentScheduled
	created, err := s.store.Create(ctx, a)
	if err != nil {
		return nil, err
	}
	s.logger.Info("appointment created", "id", created.ID, "start_time", created.StartTime)
	return created, nil
}

func (s *AppointmentService) Get(ctx context.Context, id int64) (*domain.Appointment, error) {
	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.NotFound("appointment", id)
	}
	return a, nil
}

// List returns appointments ordered by start time, optionally by status.
func (s *AppointmentService) List(ctx context.Context, status domain.AppointmentStatus, limit int) ([]*domain.Appointment, error) {
	if status != "" && !status.Valid() {
		return nil, domain.Invalid("status", "unknown status %q", status)
	}
	if limit < 0 || limit > maxAppointmentLimit {
		return nil, domain.Invalid("limit", "must be between 1 and %d", maxAppointmentLimit)
	}
	return s.store.List(ctx, status, limit)
}

// Update replaces the editable fields. Status and created_at are kept.
func (s *AppointmentService) Update(ctx context.Context, id int64, a *domain.Appointment) (*domain.Appointment, error) {
	if err := domain.ValidateAppointment(a); err != nil {
		return nil, err
	}
	a.ID = id
	if err := s.store.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *AppointmentService) SetStatus(ctx context.Context, id int64, status domain.AppointmentStatus) (*domain.Appointment, error) {
	if !status.Valid() {
		return nil, domain.Invalid("status", "must be one of scheduled, completed, cancelled")
	}
	if err := s.store.SetStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to set appointment status: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *AppointmentService) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}

// StartingSoon returns scheduled appointments starting within window that
// have not been notified yet.
func (s *AppointmentService) StartingSoon(ctx context.Context, window time.Duration) ([]*domain.Appointment, error) {
	now := s.now()
	return s.store.ListStartingBetween(ctx, now, now.Add(window))
}

// MarkNotified records that the notification for appointment id went out.
func (s *AppointmentService) MarkNotified(ctx context.Context, id int64) error {
	return s.store.MarkNotified(ctx, id, s.now())
}
