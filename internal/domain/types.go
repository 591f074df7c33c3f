package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Reminder struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	DueDate     time.Time `json:"due_date"`
	Priority    int       `json:"priority"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
}

type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

type Appointment struct {
	ID          int64             `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	StartTime   time.Time         `json:"start_time"`
	EndTime     time.Time         `json:"end_time"`
	Location    string            `json:"location,omitempty"`
	Status      AppointmentStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
}

type ItemCategory string

const (
	CategorySnacks    ItemCategory = "snacks"
	CategoryGroceries ItemCategory = "groceries"
	CategoryHousehold ItemCategory = "household"
	CategoryOther     ItemCategory = "other"
)

type ItemUnit string

const (
	UnitPieces  ItemUnit = "pieces"
	UnitBags    ItemUnit = "bags"
	UnitBoxes   ItemUnit = "boxes"
	UnitBottles ItemUnit = "bottles"
	UnitCans    ItemUnit = "cans"
	UnitPounds  ItemUnit = "pounds"
	UnitGallons ItemUnit = "gallons"
	UnitGrams   ItemUnit = "grams"
	UnitLiters  ItemUnit = "liters"
)

// Item is a single inventory entry. NeedsRestock is derived, never stored.
type Item struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	Category     ItemCategory `json:"category"`
	Quantity     float64      `json:"quantity"`
	Unit         ItemUnit     `json:"unit"`
	Location     string       `json:"location,omitempty"`
	MinQuantity  *float64     `json:"min_quantity,omitempty"`
	Notes        string       `json:"notes,omitempty"`
	ExpiryDate   *time.Time   `json:"expiry_date,omitempty"`
	LastUpdated  time.Time    `json:"last_updated"`
	NeedsRestock bool         `json:"needs_restock"`
}

// RestockNeeded reports whether the item is at or below its minimum quantity.
func (i *Item) RestockNeeded() bool {
	return i.MinQuantity != nil && i.Quantity <= *i.MinQuantity
}

type ReceiptLine struct {
	ItemName   string          `json:"item_name"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Category   string          `json:"category,omitempty"`
}

type Receipt struct {
	ID            int64           `json:"id"`
	StoreName     string          `json:"store_name"`
	PurchaseDate  time.Time       `json:"purchase_date"`
	Items         []ReceiptLine   `json:"items"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentMethod string          `json:"payment_method"`
	Notes         string          `json:"notes,omitempty"`
	ImageKey      string          `json:"image_key,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ExpenseSummary aggregates receipt totals over a date range.
type ExpenseSummary struct {
	TotalSpent   decimal.Decimal            `json:"total_spent"`
	ReceiptCount int                        `json:"receipt_count"`
	StoreTotals  map[string]decimal.Decimal `json:"store_totals"`
}

type Device struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Location    string         `json:"location"`
	Status      string         `json:"status"`
	Settings    map[string]any `json:"settings"`
	LastUpdated time.Time      `json:"last_updated"`
}

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

type Event struct {
	ID          int64          `json:"id"`
	DeviceID    int64          `json:"device_id"`
	EventType   string         `json:"event_type"`
	Description string         `json:"description"`
	Severity    Severity       `json:"severity"`
	Metadata    map[string]any `json:"metadata"`
	Timestamp   time.Time      `json:"timestamp"`
}

type CheckIn struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"time"`
}
