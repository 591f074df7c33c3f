package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxItemNameLen  = 100
	MaxItemNotesLen = 500
	MinPriority     = 1
	MaxPriority     = 5
)

var itemCategories = map[ItemCategory]bool{
	CategorySnacks:    true,
	CategoryGroceries: true,
	CategoryHousehold: true,
	CategoryOther:     true,
}

var itemUnits = map[ItemUnit]bool{
	UnitPieces:  true,
	UnitBags:    true,
	UnitBoxes:   true,
	UnitBottles: true,
	UnitCans:    true,
	UnitPounds:  true,
	UnitGallons: true,
	UnitGrams:   true,
	UnitLiters:  true,
}

func (c ItemCategory) Valid() bool { return itemCategories[c] }
func (u ItemUnit) Valid() bool     { return itemUnits[u] }

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentScheduled, AppointmentCompleted, AppointmentCancelled:
		return true
	}
	return false
}

func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityCritical:
		return true
	}
	return false
}

// ValidateReminder checks r for creation or replacement at time now.
func ValidateReminder(r *Reminder, now time.Time) error {
	if strings.TrimSpace(r.Title) == "" {
		return Invalid("title", "required")
	}
	if r.DueDate.IsZero() {
		return Invalid("due_date", "required")
	}
	if r.DueDate.Before(now) {
		return Invalid("due_date", "cannot be in the past")
	}
	if r.Priority < MinPriority || r.Priority > MaxPriority {
		return Invalid("priority", "must be between %d and %d", MinPriority, MaxPriority)
	}
	return nil
}

func ValidateAppointment(a *Appointment) error {
	if strings.TrimSpace(a.Title) == "" {
		return Invalid("title", "required")
	}
	if a.StartTime.IsZero() || a.EndTime.IsZero() {
		return Invalid("start_time", "start_time and end_time are required")
	}
	if !a.EndTime.After(a.StartTime) {
		return Invalid("end_time", "must be after start_time")
	}
	return nil
}

func ValidateItem(i *Item) error {
	name := strings.TrimSpace(i.Name)
	if name == "" {
		return Invalid("name", "required")
	}
	if utf8.RuneCountInString(name) > MaxItemNameLen {
		return Invalid("name", "must be at most %d characters", MaxItemNameLen)
	}
	if !i.Category.Valid() {
		return Invalid("category", "unknown category %q", i.Category)
	}
	if !i.Unit.Valid() {
		return Invalid("unit", "unknown unit %q", i.Unit)
	}
	if i.Quantity < 0 {
		return Invalid("quantity", "must not be negative")
	}
	if i.MinQuantity != nil && *i.MinQuantity < 0 {
		return Invalid("min_quantity", "must not be negative")
	}
	if utf8.RuneCountInString(i.Notes) > MaxItemNotesLen {
		return Invalid("notes", "must be at most %d characters", MaxItemNotesLen)
	}
	return nil
}

func ValidateReceipt(r *Receipt) error {
	if strings.TrimSpace(r.StoreName) == "" {
		return Invalid("store_name", "required")
	}
	if r.PurchaseDate.IsZero() {
		return Invalid("purchase_date", "required")
	}
	if r.TotalAmount.IsNegative() {
		return Invalid("total_amount", "must not be negative")
	}
	for i, line := range r.Items {
		if strings.TrimSpace(line.ItemName) == "" {
			return Invalid("items", "line %d: item_name required", i+1)
		}
	}
	return nil
}

func ValidateDevice(d *Device) error {
	if strings.TrimSpace(d.Name) == "" {
		return Invalid("name", "required")
	}
	if strings.TrimSpace(d.Type) == "" {
		return Invalid("type", "required")
	}
	if strings.TrimSpace(d.Location) == "" {
		return Invalid("location", "required")
	}
	return nil
}

func ValidateEvent(e *Event) error {
	if strings.TrimSpace(e.EventType) == "" {
		return Invalid("event_type", "required")
	}
	if !e.Severity.Valid() {
		return Invalid("severity", "must be one of info, warning, critical")
	}
	return nil
}

// NormalizeName lower-cases and trims an item name for lookups.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

var categoryKeywords = []struct {
	category ItemCategory
	words    []string
}{
	{CategorySnacks, []string{"chips", "candy", "snack", "pretzel", "cookie", "cracker"}},
	{CategoryGroceries, []string{"milk", "bread", "fruit", "vegetable", "egg", "cheese", "apple", "banana"}},
	{CategoryHousehold, []string{"soap", "paper", "cleaner", "detergent", "sponge"}},
}

// CategorizeItem guesses a category from keywords in the item name.
func CategorizeItem(name string) ItemCategory {
	n := NormalizeName(name)
	for _, ck := range categoryKeywords {
		for _, w := range ck.words {
			if strings.Contains(n, w) {
				return ck.category
			}
		}
	}
	return CategoryOther
}
