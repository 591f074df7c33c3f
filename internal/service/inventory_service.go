package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vbonduro/everything/internal/domain"
	"github.com/vbonduro/everything/internal/store"
)

// itemRepository is the subset of store.ItemStore that InventoryService requires.
type itemRepository interface {
	Create(ctx context.Context, item *domain.Item) (*domain.Item, error)
	GetByID(ctx context.Context, id int64) (*domain.Item, error)
	GetByName(ctx context.Context, name string) (*domain.Item, error)
	List(ctx context.Context, f store.ItemFilter) ([]*domain.Item, error)
	ListLowStock(ctx context.Context) ([]*domain.Item, error)
	ListSnacks(ctx context.Context, asOf time.Time) ([]*domain.Item, error)
	Categories(ctx context.Context) ([]domain.ItemCategory, error)
	Update(ctx context.Context, item *domain.Item) error
	Delete(ctx context.Context, id int64) error
}

type InventoryService struct {
	store  itemRepository
	now    clock
	logger *slog.Logger
}

func NewInventoryService(store itemRepository, logger *slog.Logger) *InventoryService {
	return &InventoryService{store: store, now: systemClock, logger: logger}
}

func (s *InventoryService) Create(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	if err := domain.ValidateItem(item); err != nil {
		return nil, err
	}
	return s.store.Create(ctx, item)
}

func (s *InventoryService) Get(ctx context.Context, id int64) (*domain.Item, error) {
	item, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.NotFound("item", id)
	}
	return item, nil
}

func (s *InventoryService) List(ctx context.Context, f store.ItemFilter) ([]*domain.Item, error) {
	if f.Category != "" && !f.Category.Valid() {
		return nil, domain.Invalid("category", "unknown category %q", f.Category)
	}
	return s.store.List(ctx, f)
}

func (s *InventoryService) Update(ctx context.Context, id int64, item *domain.Item) (*domain.Item, error) {
	if err := domain.ValidateItem(item); err != nil {
		return nil, err
	}
	item.ID = id
	if err := s.store.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *InventoryService) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}

func (s *InventoryService) Categories(ctx context.Context) ([]domain.ItemCategory, error) {
	return s.store.Categories(ctx)
}

func (s *InventoryService) LowStock(ctx context.Context) ([]*domain.Item, error) {
	return s.store.ListLowStock(ctx)
}

// Snacks lists snacks that have not expired.
func (s *InventoryService) Snacks(ctx context.Context) ([]*domain.Item, error) {
	return s.store.ListSnacks(ctx, s.now())
}

// Upsert replaces the item with the same normalised name, or creates it.
func (s *InventoryService) Upsert(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	if item.ExpiryDate != nil && item.ExpiryDate.Before(s.now()) {
		return nil, domain.Invalid("expiry_date", "cannot add item with past expiry date")
	}
	if err := domain.ValidateItem(item); err != nil {
		return nil, err
	}

	existing, err := s.store.GetByName(ctx, item.Name)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		created, err := s.store.Create(ctx, item)
		if err != nil {
			return nil, err
		}
		s.logger.Info("inventory item added", "id", created.ID, "name", created.Name)
		return created, nil
	}

	item.ID = existing.ID
	if err := s.store.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	s.logger.Info("inventory item replaced", "id", item.ID, "name", item.Name)
	return s.Get(ctx, item.ID)
}

// AddStock increases the quantity of the item named name, creating it with a
// keyword-derived category when it does not exist.
func (s *InventoryService) AddStock(ctx context.Context, name string, quantity float64) (*domain.Item, error) {
	existing, err := s.store.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return s.Create(ctx, &domain.Item{
			Name:     name,
			Category: domain.CategorizeItem(name),
			Quantity: quantity,
			Unit:     domain.UnitPieces,
		})
	}

	existing.Quantity += quantity
	if err := s.store.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to add stock: %w", err)
	}
	return s.Get(ctx, existing.ID)
}
