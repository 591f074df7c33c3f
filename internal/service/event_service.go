package service

import (
	"context"
	"log/slog"

	"github.com/vbonduro/everything/internal/domain"
	"github.com/vbonduro/everything/internal/store"
)

const (
	defaultEventLimit       = 100
	defaultDeviceEventLimit = 50
	maxEventLimit           = 1000
)

// eventRepository is the subset of store.EventStore that EventService requires.
type eventRepository interface {
	Create(ctx context.Context, e *domain.Event) (*domain.Event, error)
	GetByID(ctx context.Context, id int64) (*domain.Event, error)
	List(ctx context.Context, f store.EventFilter) ([]*domain.Event, error)
	Delete(ctx context.Context, id int64) error
}

// EventSink receives every stored event, e.g. the websocket hub or Kafka.
type EventSink interface {
	Publish(ctx context.Context, e *domain.Event) error
}

type EventService struct {
	store  eventRepository
	sinks  []EventSink
	logger *slog.Logger
}

func NewEventService(store eventRepository, logger *slog.Logger, sinks ...EventSink) *EventService {
	return &EventService{store: store, sinks: sinks, logger: logger}
}

// Create stores e and fans it out to every sink. Sink failures are logged.
func (s *EventService) Create(ctx context.Context, e *domain.Event) (*domain.Event, error) {
	if e.Severity == "" {
		e.Severity = domain.SeverityInfo
	}
	if err := domain.ValidateEvent(e); err != nil {
		return nil, err
	}
	created, err := s.store.Create(ctx, e)
	if err != nil {
		return nil, err
	}
	for _, sink := range s.sinks {
		if err := sink.Publish(ctx, created); err != nil {
			s.logger.Warn("failed to publish event", "event_id", created.ID, "error", err)
		}
	}
	return created, nil
}

func (s *EventService) Get(ctx context.Context, id int64) (*domain.Event, error) {
	e, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, domain.NotFound("event", id)
	}
	return e, nil
}

// List returns the last f.Limit matching events, oldest first.
func (s *EventService) List(ctx context.Context, f store.EventFilter) ([]*domain.Event, error) {
	limit, ok := pageLimit(f.Limit, defaultEventLimit, maxEventLimit)
	if !ok {
		return nil, domain.Invalid("limit", "must be between 1 and %d", maxEventLimit)
	}
	f.Limit = limit
	if f.Severity != "" && !f.Severity.Valid() {
		return nil, domain.Invalid("severity", "must be one of info, warning, critical")
	}
	return s.store.List(ctx, f)
}

func (s *EventService) ForDevice(ctx context.Context, deviceID int64, limit int) ([]*domain.Event, error) {
	limit, ok := pageLimit(limit, defaultDeviceEventLimit, maxEventLimit)
	if !ok {
		return nil, domain.Invalid("limit", "must be between 1 and %d", maxEventLimit)
	}
	return s.store.List(ctx, store.EventFilter{DeviceID: &deviceID, Limit: limit})
}

func (s *EventService) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}
