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

type ItemStore struct {
	db *sql.DB
}

func NewItemStore(db *sql.DB) *ItemStore {
	return &ItemStore{db: db}
}

// ItemFilter narrows List. An empty Category matches every category.
type ItemFilter struct {
	Category     domain.ItemCategory
	NeedsRestock *bool
}

const itemColumns = `id, name, category, quantity, unit, location, min_quantity, notes, expiry_date, last_updated`

const restockCondition = `(min_quantity IS NOT NULL AND quantity <= min_quantity)`

func scanItem(sc scanner) (*domain.Item, error) {
	var (
		item   = &domain.Item{}
		minQty sql.NullFloat64
		expiry sql.NullTime
	)
	if err := sc.Scan(&item.ID, &item.Name, &item.Category, &item.Quantity, &item.Unit, &item.Location,
		&minQty, &item.Notes, &expiry, &item.LastUpdated); err != nil {
		return nil, err
	}
	if minQty.Valid {
		v := minQty.Float64
		item.MinQuantity = &v
	}
	item.ExpiryDate = timePtr(expiry)
	item.LastUpdated = item.LastUpdated.UTC()
	item.NeedsRestock = item.RestockNeeded()
	return item, nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func (s *ItemStore) Create(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO items (name, normalized_name, category, quantity, unit, location, min_quantity, notes, expiry_date, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, strings.TrimSpace(item.Name), domain.NormalizeName(item.Name), string(item.Category), item.Quantity, string(item.Unit),
		item.Location, nullFloat(item.MinQuantity), item.Notes, nullTime(item.ExpiryDate), now())
	if err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *ItemStore) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	item, err := scanItem(s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// GetByName looks an item up by its normalised name. The oldest match wins.
func (s *ItemStore) GetByName(ctx context.Context, name string) (*domain.Item, error) {
	item, err := scanItem(s.db.QueryRowContext(ctx, `
		SELECT `+itemColumns+` FROM items WHERE normalized_name = ? ORDER BY id ASC LIMIT 1
	`, domain.NormalizeName(name)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item by name: %w", err)
	}
	return item, nil
}

func (s *ItemStore) List(ctx context.Context, f ItemFilter) ([]*domain.Item, error) {
	var (
		where []string
		args  []any
	)
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, string(f.Category))
	}
	if f.NeedsRestock != nil {
		if *f.NeedsRestock {
			where = append(where, restockCondition)
		} else {
			where = append(where, "NOT "+restockCondition)
		}
	}

	q := `SELECT ` + itemColumns + ` FROM items`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY name ASC, id ASC`
	return s.query(ctx, q, args...)
}

func (s *ItemStore) ListLowStock(ctx context.Context) ([]*domain.Item, error) {
	return s.query(ctx, `SELECT `+itemColumns+` FROM items WHERE `+restockCondition+` ORDER BY name ASC, id ASC`)
}

// ListSnacks returns snacks that have not expired as of asOf.
func (s *ItemStore) ListSnacks(ctx context.Context, asOf time.Time) ([]*domain.Item, error) {
	return s.query(ctx, `SELECT `+itemColumns+` FROM items
		WHERE category = ? AND (expiry_date IS NULL OR expiry_date >= ?)
		ORDER BY name ASC, id ASC`, string(domain.CategorySnacks), asOf.UTC())
}

func (s *ItemStore) Categories(ctx context.Context) ([]domain.ItemCategory, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT category FROM items ORDER BY category ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer closeRows(rows)

	categories := []domain.ItemCategory{}
	for rows.Next() {
		var c domain.ItemCategory
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

func (s *ItemStore) query(ctx context.Context, q string, args ...any) ([]*domain.Item, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer closeRows(rows)

	items := []*domain.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}
	return items, nil
}

// Update replaces every stored field of item.ID and bumps last_updated.
func (s *ItemStore) Update(ctx context.Context, item *domain.Item) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE items SET name = ?, normalized_name = ?, category = ?, quantity = ?, unit = ?, location = ?,
			min_quantity = ?, notes = ?, expiry_date = ?, last_updated = ?
		WHERE id = ?
	`, strings.TrimSpace(item.Name), domain.NormalizeName(item.Name), string(item.Category), item.Quantity, string(item.Unit),
		item.Location, nullFloat(item.MinQuantity), item.Notes, nullTime(item.ExpiryDate), now(), item.ID)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	return checkAffected(result, "item", item.ID)
}

func (s *ItemStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return checkAffected(result, "item", id)
}
