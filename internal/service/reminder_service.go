package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vbonduro/everything/internal/domain"
	"github.com/vbonduro/everything/internal/store"
)

const (
	defaultReminderLimit = 50
	maxReminderLimit     = 100
	defaultUpcomingHours = 24
)

// reminderRepository is the subset of store.ReminderStore that ReminderService requires.
type reminderRepository interface {
	Create(ctx context.Context, r *domain.Reminder) (*domain.Reminder, error)
	GetByID(ctx context.Context, id int64) (*domain.Reminder, error)
	List(ctx context.Context, f store.ReminderFilter) ([]*domain.Reminder, error)
	ListDue(ctx context.Context, from, to time.Time, unnotified bool) ([]*domain.Reminder, error)
	Update(ctx context.Context, r *domain.Reminder) error
	Complete(ctx context.Context, id int64) error
	MarkNotified(ctx context.Context, id int64, at time.Time) error
	Delete(ctx context.Context, id int64) error
}

type ReminderService struct {
	store  reminderRepository
	now    clock
	logger *slog.Logger
}

func NewReminderService(store reminderRepository, logger *slog.Logger) *ReminderService {
	return &ReminderService{store: store, now: systemClock, logger: logger}
}

func (s *ReminderService) Create(ctx context.Context, r *domain.Reminder) (*domain.Reminder, error) {
	if err := domain.ValidateReminder(r, s.now()); err != nil {
		return nil, err
	}
	created, err := s.store.Create(ctx, r)
	if err != nil {
		return nil, err
	}
	s.logger.Info("reminder created", "id", created.ID, "due_date", created.DueDate)
	return created, nil
}

func (s *ReminderService) Get(ctx context.Context, id int64) (*domain.Reminder, error) {
	r, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.NotFound("reminder", id)
	}
	return r, nil
}

func (s *ReminderService) List(ctx context.Context, f store.ReminderFilter) ([]*domain.Reminder, error) {
	limit, ok := pageLimit(f.Limit, defaultReminderLimit, maxReminderLimit)
	if !ok {
		return nil, domain.Invalid("limit", "must be between 1 and %d", maxReminderLimit)
	}
	f.Limit = limit
	if f.Priority != nil && (*f.Priority < domain.MinPriority || *f.Priority > domain.MaxPriority) {
		return nil, domain.Invalid("priority", "must be between %d and %d", domain.MinPriority, domain.MaxPriority)
	}
	return s.store.List(ctx, f)
}

// Update replaces title, description, due date and priority of reminder id.
func (s *ReminderService) Update(ctx context.Context, id int64, r *domain.Reminder) (*domain.Reminder, error) {
	if err := domain.ValidateReminder(r, s.now()); err != nil {
		return nil, err
	}
	r.ID = id
	if err := s.store.Update(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to update reminder: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *ReminderService) Complete(ctx context.Context, id int64) (*domain.Reminder, error) {
	if err := s.store.Complete(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to complete reminder: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *ReminderService) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}

// Upcoming lists incomplete reminders due within the next hours hours.
func (s *ReminderService) Upcoming(ctx context.Context, hours int) ([]*domain.Reminder, error) {
	if hours == 0 {
		hours = defaultUpcomingHours
	}
	if hours < 0 {
		return nil, domain.Invalid("hours", "must be positive")
	}
	now := s.now()
	return s.store.ListDue(ctx, now, now.Add(time.Duration(hours)*time.Hour), false)
}

// DueSoon returns incomplete reminders due within window that have not been
// notified yet.
func (s *ReminderService) DueSoon(ctx context.Context, window time.Duration) ([]*domain.Reminder, error) {
	now := s.now()
	return s.store.ListDue(ctx, now, now.Add(window), true)
}

// MarkNotified records that the notification for reminder id went out.
func (s *ReminderService) MarkNotified(ctx context.Context, id int64) error {
	return s.store.MarkNotified(ctx, id, s.now())
}
