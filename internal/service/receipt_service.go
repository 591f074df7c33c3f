package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vbonduro/everything/internal/domain"
	"github.com/vbonduro/everything/internal/imagestore"
	"github.com/vbonduro/everything/internal/store"
	"github.com/vbonduro/everything/internal/vision"
)

const unknownStore = "Unknown store"

// receiptRepository is the subset of store.ReceiptStore that ReceiptService requires.
type receiptRepository interface {
	Create(ctx context.Context, r *domain.Receipt) (*domain.Receipt, error)
	GetByID(ctx context.Context, id int64) (*domain.Receipt, error)
	List(ctx context.Context, f store.ReceiptFilter) ([]*domain.Receipt, error)
	Stores(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, id int64) error
}

// stockAdder is the part of InventoryService a receipt scan feeds.
type stockAdder interface {
	AddStock(ctx context.Context, name string, quantity float64) (*domain.Item, error)
}

type ReceiptService struct {
	store     receiptRepository
	inventory stockAdder
	visionAPI vision.ReceiptAnalyzer
	images    imagestore.ImageStore
	now       clock
	logger    *slog.Logger
}

func NewReceiptService(
	store receiptRepository,
	inventory stockAdder,
	visionAPI vision.ReceiptAnalyzer,
	images imagestore.ImageStore,
	logger *slog.Logger,
) *ReceiptService {
	return &ReceiptService{
		store:     store,
		inventory: inventory,
		visionAPI: visionAPI,
		images:    images,
		now:       systemClock,
		logger:    logger,
	}
}

// Create stores r. A zero total is filled in from the line totals.
func (s *ReceiptService) Create(ctx context.Context, r *domain.Receipt) (*domain.Receipt, error) {
	if err := domain.ValidateReceipt(r); err != nil {
		return nil, err
	}
	if r.TotalAmount.IsZero() {
		r.TotalAmount = sumLines(r.Items)
	}
	return s.store.Create(ctx, r)
}

func (s *ReceiptService) Get(ctx context.Context, id int64) (*domain.Receipt, error) {
	r, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.NotFound("receipt", id)
	}
	return r, nil
}

func (s *ReceiptService) List(ctx context.Context, f store.ReceiptFilter) ([]*domain.Receipt, error) {
	if f.Start != nil && f.End != nil && f.End.Before(*f.Start) {
		return nil, domain.Invalid("end_date", "must not be before start_date")
	}
	return s.store.List(ctx, f)
}

// Delete removes the receipt and, best effort, its stored image.
func (s *ReceiptService) Delete(ctx context.Context, id int64) error {
	r, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	if r.ImageKey != "" {
		if err := s.images.Delete(ctx, r.ImageKey); err != nil {
			s.logger.Error("failed to delete receipt image", "receipt_id", id, "image_key", r.ImageKey, "error", err)
		}
	}
	return nil
}

func (s *ReceiptService) Stores(ctx context.Context) ([]string, error) {
	return s.store.Stores(ctx)
}

func (s *ReceiptService) Summary(ctx context.Context, start, end *time.Time) (*domain.ExpenseSummary, error) {
	receipts, err := s.List(ctx, store.ReceiptFilter{Start: start, End: end})
	if err != nil {
		return nil, err
	}

	summary := &domain.ExpenseSummary{
		TotalSpent:  decimal.Zero,
		StoreTotals: map[string]decimal.Decimal{},
	}
	for _, r := range receipts {
		summary.TotalSpent = summary.TotalSpent.Add(r.TotalAmount)
		summary.ReceiptCount++
		summary.StoreTotals[r.StoreName] = summary.StoreTotals[r.StoreName].Add(r.TotalAmount)
	}
	return summary, nil
}

// ScanResult is a receipt created from a photo plus the inventory it touched.
type ScanResult struct {
	Receipt *domain.Receipt `json:"receipt"`
	Items   []*domain.Item  `json:"updated_items"`
}

// Scan reads a receipt photo with the vision backend, stores the image,
// records the receipt and adds every line to inventory.
func (s *ReceiptService) Scan(ctx context.Context, imageData []byte, mimeType string) (*ScanResult, error) {
	s.logger.Info("receipt scan started", "mime_type", mimeType, "bytes", len(imageData))

	result, err := s.visionAPI.Analyze(ctx, bytes.NewReader(imageData), mimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze receipt: %w", err)
	}
	s.logger.Info("receipt analysis complete", "lines", len(result.Items), "store", result.StoreName)

	key, err := s.images.Save(ctx, "receipt", mimeType, bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to save receipt image: %w", err)
	}

	receipt := &domain.Receipt{
		StoreName:     strings.TrimSpace(result.StoreName),
		PurchaseDate:  s.now(),
		PaymentMethod: result.PaymentMethod,
		ImageKey:      key,
		Items:         make([]domain.ReceiptLine, 0, len(result.Items)),
	}
	if receipt.StoreName == "" {
		receipt.StoreName = unknownStore
	}
	for _, line := range result.Items {
		receipt.Items = append(receipt.Items, domain.ReceiptLine{
			ItemName:   line.Name,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			TotalPrice: line.LineTotal(),
			Category:   string(domain.CategorizeItem(line.Name)),
		})
	}
	if result.Total != nil {
		receipt.TotalAmount = *result.Total
	}

	created, err := s.Create(ctx, receipt)
	if err != nil {
		if derr := s.images.Delete(ctx, key); derr != nil {
			s.logger.Error("failed to remove receipt image after create error", "image_key", key, "error", derr)
		}
		return nil, err
	}

	items := make([]*domain.Item, 0, len(result.Items))
	for _, line := range result.Items {
		item, err := s.inventory.AddStock(ctx, line.Name, line.Quantity.InexactFloat64())
		if err != nil {
			s.logger.Error("failed to add receipt line to inventory", "name", line.Name, "error", err)
			continue
		}
		items = append(items, item)
	}

	s.logger.Info("receipt scan complete", "receipt_id", created.ID, "items_updated", len(items))
	return &ScanResult{Receipt: created, Items: items}, nil
}

// Image opens the stored photo of receipt id.
func (s *ReceiptService) Image(ctx context.Context, id int64) (io.ReadCloser, string, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if r.ImageKey == "" {
		return nil, "", fmt.Errorf("receipt %d image: %w", id, domain.ErrNotFound)
	}
	return s.images.Get(ctx, r.ImageKey)
}

func sumLines(lines []domain.ReceiptLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		line := l.TotalPrice
		if line.IsZero() {
			line = l.Quantity.Mul(l.UnitPrice)
		}
		total = total.Add(line)
	}
	return total
}
