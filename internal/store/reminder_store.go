package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vbonduro/everything/internal/domain"
)

type ReminderStore struct {
	db *sql.DB
}

func NewReminderStore(db *sql.DB) *ReminderStore {
	return &ReminderStore{db: db}
}

// ReminderFilter narrows List. Zero values mean "no filter"; Limit <= 0 means no limit.
type ReminderFilter struct {
	Completed *bool
	Priority  *int
	Limit     int
}

const reminderColumns = `id, title, description, due_date, priority, completed, created_at`

func scanReminder(sc scanner) (*domain.Reminder, error) {
	r := &domain.Reminder{}
	if err := sc.Scan(&r.ID, &r.Title, &r.Description, &r.DueDate, &r.Priority, &r.Completed, &r.CreatedAt); err != nil {
		return nil, err
	}
	r.DueDate = r.DueDate.UTC()
	r.CreatedAt = r.CreatedAt.UTC()
	return r, nil
}

func (s *ReminderStore) Create(ctx context.Context, r *domain.Reminder) (*domain.Reminder, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO reminders (title, description, due_date, priority, completed, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.Title, r.Description, r.DueDate.UTC(), r.Priority, r.Completed, now())
	if err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *ReminderStore) GetByID(ctx context.Context, id int64) (*domain.Reminder, error) {
	r, err := scanReminder(s.db.QueryRowContext(ctx, `SELECT `+reminderColumns+` FROM reminders WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}
	return r, nil
}

func (s *ReminderStore) List(ctx context.Context, f ReminderFilter) ([]*domain.Reminder, error) {
	var (
		where []string
		args  []any
	)
	if f.Completed != nil {
		where = append(where, "completed = ?")
		args = append(args, *f.Completed)
	}
	if f.Priority != nil {
		where = append(where, "priority = ?")
		args = append(args, *f.Priority)
	}

	q := `SELECT ` + reminderColumns + ` FROM reminders`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY due_date ASC, id ASC`
	if f.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	return s.query(ctx, q, args...)
}

// ListDue returns incomplete reminders due in [from, to]. When unnotified is
// set, reminders already marked notified are skipped.
func (s *ReminderStore) ListDue(ctx context.Context, from, to time.Time, unnotified bool) ([]*domain.Reminder, error) {
	q := `SELECT ` + reminderColumns + ` FROM reminders
		WHERE completed = 0 AND due_date >= ? AND due_date <= ?`
	if unnotified {
		q += ` AND notified_at IS NULL`
	}
	q += ` ORDER BY due_date ASC, id ASC`
	return s.query(ctx, q, from.UTC(), to.UTC())
}

func (s *ReminderStore) query(ctx context.Context, q string, args ...any) ([]*domain.Reminder, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	defer closeRows(rows)

	reminders := []*domain.Reminder{}
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reminders: %w", err)
	}
	return reminders, nil
}

// Update replaces the editable fields of reminder r.ID.
func (s *ReminderStore) Update(ctx context.Context, r *domain.Reminder) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE reminders SET title = ?, description = ?, due_date = ?, priority = ?, notified_at = NULL
		WHERE id = ?
	`, r.Title, r.Description, r.DueDate.UTC(), r.Priority, r.ID)
	if err != nil {
		return fmt.Errorf("failed to update reminder: %w", err)
	}
	return checkAffected(result, "reminder", r.ID)
}

func (s *ReminderStore) Complete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `UPDATE reminders SET completed = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to complete reminder: %w", err)
	}
	return checkAffected(result, "reminder", id)
}

func (s *ReminderStore) MarkNotified(ctx context.Context, id int64, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `UPDATE reminders SET notified_at = ? WHERE id = ?`, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark reminder notified: %w", err)
	}
	return nil
}

func (s *ReminderStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	return checkAffected(result, "reminder", id)
}
