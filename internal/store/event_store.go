package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vbonduro/everything/internal/domain"
)

type EventStore struct {
	db *sql.DB
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

// EventFilter narrows List. List returns the last Limit matches, oldest first.
type EventFilter struct {
	DeviceID  *int64
	EventType string
	Severity  domain.Severity
	Limit     int
}

const eventColumns = `id, device_id, event_type, description, severity, metadata, timestamp`

func scanEvent(sc scanner) (*domain.Event, error) {
	var (
		e        = &domain.Event{}
		metadata string
	)
	if err := sc.Scan(&e.ID, &e.DeviceID, &e.EventType, &e.Description, &e.Severity, &metadata, &e.Timestamp); err != nil {
		return nil, err
	}
	m, err := decodeObject(metadata)
	if err != nil {
		return nil, err
	}
	e.Metadata = m
	e.Timestamp = e.Timestamp.UTC()
	return e, nil
}

// Create stores e. A zero Timestamp is replaced with the current time.
func (s *EventStore) Create(ctx context.Context, e *domain.Event) (*domain.Event, error) {
	metadata, err := encodeObject(e.Metadata)
	if err != nil {
		return nil, err
	}
	ts := e.Timestamp.UTC()
	if e.Timestamp.IsZero() {
		ts = now()
	}
	severity := e.Severity
	if severity == "" {
		severity = domain.SeverityInfo
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO events (device_id, event_type, description, severity, metadata, timestamp) VALUES (?, ?, ?, ?, ?, ?)
	`, e.DeviceID, e.EventType, e.Description, string(severity), metadata, ts)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *EventStore) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	e, err := scanEvent(s.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return e, nil
}

func (s *EventStore) List(ctx context.Context, f EventFilter) ([]*domain.Event, error) {
	var (
		where []string
		args  []any
	)
	if f.DeviceID != nil {
		where = append(where, "device_id = ?")
		args = append(args, *f.DeviceID)
	}
	if f.EventType != "" {
		where = append(where, "event_type = ?")
		args = append(args, f.EventType)
	}
	if f.Severity != "" {
		where = append(where, "severity = ?")
		args = append(args, string(f.Severity))
	}

	inner := `SELECT ` + eventColumns + ` FROM events`
	if len(where) > 0 {
		inner += ` WHERE ` + strings.Join(where, " AND ")
	}
	inner += ` ORDER BY id DESC`
	if f.Limit > 0 {
		inner += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+eventColumns+` FROM (`+inner+`) ORDER BY id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer closeRows(rows)

	events := []*domain.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}
	return events, nil
}

func (s *EventStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return checkAffected(result, "event", id)
}
