package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/vbonduro/everything/internal/domain"
)

type ReceiptStore struct {
	db *sql.DB
}

func NewReceiptStore(db *sql.DB) *ReceiptStore {
	return &ReceiptStore{db: db}
}

// ReceiptFilter narrows List. Start and End are inclusive purchase-date bounds.
type ReceiptFilter struct {
	StoreName string
	Start     *time.Time
	End       *time.Time
}

const receiptColumns = `id, store_name, purchase_date, items, total_amount, payment_method, notes, image_key, created_at`

func scanReceipt(sc scanner) (*domain.Receipt, error) {
	var (
		r     = &domain.Receipt{}
		lines string
		total string
	)
	if err := sc.Scan(&r.ID, &r.StoreName, &r.PurchaseDate, &lines, &total, &r.PaymentMethod, &r.Notes, &r.ImageKey, &r.CreatedAt); err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("failed to parse total_amount %q: %w", total, err)
	}
	r.TotalAmount = amount
	r.Items = []domain.ReceiptLine{}
	if err := json.Unmarshal([]byte(lines), &r.Items); err != nil {
		return nil, fmt.Errorf("failed to decode receipt items: %w", err)
	}
	r.PurchaseDate = r.PurchaseDate.UTC()
	r.CreatedAt = r.CreatedAt.UTC()
	return r, nil
}

func (s *ReceiptStore) Create(ctx context.Context, r *domain.Receipt) (*domain.Receipt, error) {
	lines := r.Items
	if lines == nil {
		lines = []domain.ReceiptLine{}
	}
	encoded, err := json.Marshal(lines)
	if err != nil {
		return nil, fmt.Errorf("failed to encode receipt items: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO receipts (store_name, purchase_date, items, total_amount, payment_method, notes, image_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, strings.TrimSpace(r.StoreName), r.PurchaseDate.UTC(), string(encoded), r.TotalAmount.String(),
		r.PaymentMethod, r.Notes, r.ImageKey, now())
	if err != nil {
		return nil, fmt.Errorf("failed to create receipt: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *ReceiptStore) GetByID(ctx context.Context, id int64) (*domain.Receipt, error) {
	r, err := scanReceipt(s.db.QueryRowContext(ctx, `SELECT `+receiptColumns+` FROM receipts WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	return r, nil
}

// List returns matching receipts, newest purchase first. Store names match
// case-insensitively.
func (s *ReceiptStore) List(ctx context.Context, f ReceiptFilter) ([]*domain.Receipt, error) {
	var (
		where []string
		args  []any
	)
	if name := strings.TrimSpace(f.StoreName); name != "" {
		where = append(where, "LOWER(store_name) = LOWER(?)")
		args = append(args, name)
	}
	if f.Start != nil {
		where = append(where, "purchase_date >= ?")
		args = append(args, f.Start.UTC())
	}
	if f.End != nil {
		where = append(where, "purchase_date <= ?")
		args = append(args, f.End.UTC())
	}

	q := `SELECT ` + receiptColumns + ` FROM receipts`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY purchase_date DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	defer closeRows(rows)

	receipts := []*domain.Receipt{}
	for rows.Next() {
		r, err := scanReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}
		receipts = append(receipts, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating receipts: %w", err)
	}
	return receipts, nil
}

func (s *ReceiptStore) Stores(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT store_name FROM receipts ORDER BY store_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	defer closeRows(rows)

	stores := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan store: %w", err)
		}
		stores = append(stores, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stores: %w", err)
	}
	return stores, nil
}

func (s *ReceiptStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM receipts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete receipt: %w", err)
	}
	return checkAffected(result, "receipt", id)
}
