package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/vbonduro/everything/internal/domain"
)

type CheckInStore struct {
	db *sql.DB
}

func NewCheckInStore(db *sql.DB) *CheckInStore {
	return &CheckInStore{db: db}
}

func (s *CheckInStore) Create(ctx context.Context, when time.Time) (*domain.CheckIn, error) {
	when = when.UTC()
	result, err := s.db.ExecContext(ctx, `INSERT INTO gym_checkins (checked_in_at) VALUES (?)`, when)
	if err != nil {
		return nil, fmt.Errorf("failed to create check-in: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return &domain.CheckIn{ID: id, Timestamp: when}, nil
}

// Summary returns the number of check-ins and the most recent one, if any.
func (s *CheckInStore) Summary(ctx context.Context) (int, *time.Time, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM gym_checkins`).Scan(&count); err != nil {
		return 0, nil, fmt.Errorf("failed to count check-ins: %w", err)
	}
	if count == 0 {
		return 0, nil, nil
	}

	var last time.Time
	err := s.db.QueryRowContext(ctx, `
		SELECT checked_in_at FROM gym_checkins ORDER BY checked_in_at DESC, id DESC LIMIT 1
	`).Scan(&last)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to get last check-in: %w", err)
	}
	last = last.UTC()
	return count, &last, nil
}

type PushTokenStore struct {
	db *sql.DB
}

func NewPushTokenStore(db *sql.DB) *PushTokenStore {
	return &PushTokenStore{db: db}
}

// Add remembers token. Registering the same token twice is a no-op.
func (s *PushTokenStore) Add(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO push_tokens (token, created_at) VALUES (?, ?)
	`, strings.TrimSpace(token), now())
	if err != nil {
		return fmt.Errorf("failed to add push token: %w", err)
	}
	return nil
}

func (s *PushTokenStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT token FROM push_tokens ORDER BY created_at ASC, token ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list push tokens: %w", err)
	}
	defer closeRows(rows)

	var tokens []string
	for rows.Next() {
		var tok string
		if err := rows.Scan(&tok); err != nil {
			return nil, fmt.Errorf("failed to scan push token: %w", err)
		}
		tokens = append(tokens, tok)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating push tokens: %w", err)
	}
	return tokens, nil
}
