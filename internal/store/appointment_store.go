package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vbonduro/everything/internal/domain"
)

type AppointmentStore struct {
	db *sql.DB
}

func NewAppointmentStore(db *sql.DB) *AppointmentStore {
	return &AppointmentStore{db: db}
}

const appointmentColumns = `id, title, description, start_time, end_time, location, status, created_at`

func scanAppointment(sc scanner) (*domain.Appointment, error) {
	a := &domain.Appointment{}
	if err := sc.Scan(&a.ID, &a.Title, &a.Description, &a.StartTime, &a.EndTime, &a.Location, &a.Status, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.StartTime = a.StartTime.UTC()
	a.EndTime = a.EndTime.UTC()
	a.CreatedAt = a.CreatedAt.UTC()
	return a, nil
}

func (s *AppointmentStore) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	status := a.Status
	if status == "" {
		status = domain.AppointmentScheduled
	}
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO appointments (title, description, start_time, end_time, location, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, a.Title, a.Description, a.StartTime.UTC(), a.EndTime.UTC(), a.Location, string(status), now())
	if err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *AppointmentStore) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	a, err := scanAppointment(s.db.QueryRowContext(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return a, nil
}

// List returns appointments ordered by start time. An empty status lists all.
func (s *AppointmentStore) List(ctx context.Context, status domain.AppointmentStatus, limit int) ([]*domain.Appointment, error) {
	q := `SELECT ` + appointmentColumns + ` FROM appointments`
	var args []any
	if status != "" {
		q += ` WHERE status = ?`
		args = append(args, string(status))
	}
	q += ` ORDER BY start_time ASC, id ASC`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.query(ctx, q, args...)
}

// ListStartingBetween returns scheduled appointments starting in [from, to]
// that have not been notified yet.
func (s *AppointmentStore) ListStartingBetween(ctx context.Context, from, to time.Time) ([]*domain.Appointment, error) {
	return s.query(ctx, `SELECT `+appointmentColumns+` FROM appointments
		WHERE status = ? AND notified_at IS NULL AND start_time >= ? AND start_time <= ?
		ORDER BY start_time ASC, id ASC`, string(domain.AppointmentScheduled), from.UTC(), to.UTC())
}

func (s *AppointmentStore) query(ctx context.Context, q string, args ...any) ([]*domain.Appointment, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer closeRows(rows)

	appointments := []*domain.Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		appointments = append(appointments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating appointments: %w", err)
	}
	return appointments, nil
}

// Update replaces title, description, times and location. Status and
// created_at are left alone.
func (s *AppointmentStore) Update(ctx context.Context, a *domain.Appointment) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE appointments SET title = ?, description = ?, start_time = ?, end_time = ?, location = ?, notified_at = NULL
		WHERE id = ?
	`, a.Title, a.Description, a.StartTime.UTC(), a.EndTime.UTC(), a.Location, a.ID)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	return checkAffected(result, "appointment", a.ID)
}

func (s *AppointmentStore) SetStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error {
	result, err := s.db.ExecContext(ctx, `UPDATE appointments SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}
	return checkAffected(result, "appointment", id)
}

func (s *AppointmentStore) MarkNotified(ctx context.Context, id int64, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `UPDATE appointments SET notified_at = ? WHERE id = ?`, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark appointment notified: %w", err)
	}
	return nil
}

func (s *AppointmentStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	return checkAffected(result, "appointment", id)
}
