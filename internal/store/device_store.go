package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vbonduro/everything/internal/domain"
)

const defaultDeviceStatus = "off"

type DeviceStore struct {
	db *sql.DB
}

func NewDeviceStore(db *sql.DB) *DeviceStore {
	return &DeviceStore{db: db}
}

const deviceColumns = `id, name, type, location, status, settings, last_updated`

func scanDevice(sc scanner) (*domain.Device, error) {
	var (
		d        = &domain.Device{}
		settings string
	)
	if err := sc.Scan(&d.ID, &d.Name, &d.Type, &d.Location, &d.Status, &settings, &d.LastUpdated); err != nil {
		return nil, err
	}
	m, err := decodeObject(settings)
	if err != nil {
		return nil, err
	}
	d.Settings = m
	d.LastUpdated = d.LastUpdated.UTC()
	return d, nil
}

func (s *DeviceStore) Create(ctx context.Context, d *domain.Device) (*domain.Device, error) {
	settings, err := encodeObject(d.Settings)
	if err != nil {
		return nil, err
	}
	status := strings.TrimSpace(d.Status)
	if status == "" {
		status = defaultDeviceStatus
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO devices (name, type, location, status, settings, last_updated) VALUES (?, ?, ?, ?, ?, ?)
	`, strings.TrimSpace(d.Name), d.Type, d.Location, status, settings, now())
	if err != nil {
		return nil, fmt.Errorf("failed to create device: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *DeviceStore) GetByID(ctx context.Context, id int64) (*domain.Device, error) {
	d, err := scanDevice(s.db.QueryRowContext(ctx, `SELECT `+deviceColumns+` FROM devices WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}
	return d, nil
}

// GetByName matches name case-insensitively; the oldest device wins.
func (s *DeviceStore) GetByName(ctx context.Context, name string) (*domain.Device, error) {
	d, err := scanDevice(s.db.QueryRowContext(ctx, `
		SELECT `+deviceColumns+` FROM devices WHERE LOWER(name) = LOWER(?) ORDER BY id ASC LIMIT 1
	`, strings.TrimSpace(name)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device by name: %w", err)
	}
	return d, nil
}

func (s *DeviceStore) List(ctx context.Context) ([]*domain.Device, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+deviceColumns+` FROM devices ORDER BY location ASC, name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	defer closeRows(rows)

	devices := []*domain.Device{}
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating devices: %w", err)
	}
	return devices, nil
}

func (s *DeviceStore) UpdateStatus(ctx context.Context, id int64, status string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE devices SET status = ?, last_updated = ? WHERE id = ?
	`, status, now(), id)
	if err != nil {
		return fmt.Errorf("failed to update device status: %w", err)
	}
	return checkAffected(result, "device", id)
}

// UpdateSettings overwrites the stored settings object; merging is the caller's job.
func (s *DeviceStore) UpdateSettings(ctx context.Context, id int64, settings map[string]any) error {
	encoded, err := encodeObject(settings)
	if err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE devices SET settings = ?, last_updated = ? WHERE id = ?
	`, encoded, now(), id)
	if err != nil {
		return fmt.Errorf("failed to update device settings: %w", err)
	}
	return checkAffected(result, "device", id)
}

func (s *DeviceStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM devices WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete device: %w", err)
	}
	return checkAffected(result, "device", id)
}
