package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidateReminder(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		r       Reminder
		wantErr bool
	}{
		{name: "valid", r: Reminder{Title: "Call mom", DueDate: now.Add(time.Hour), Priority: 1}},
		{name: "missing title", r: Reminder{Title: "  ", DueDate: now.Add(time.Hour), Priority: 1}, wantErr: true},
		{name: "due in the past", r: Reminder{Title: "Late", DueDate: now.Add(-time.Minute), Priority: 1}, wantErr: true},
		{name: "priority too high", r: Reminder{Title: "x", DueDate: now.Add(time.Hour), Priority: 6}, wantErr: true},
		{name: "priority zero", r: Reminder{Title: "x", DueDate: now.Add(time.Hour), Priority: 0}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateReminder(&tt.r, now)
			if tt.wantErr {
				assert.True(t, IsValidation(err), "expected validation error, got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateAppointment_EndBeforeStart(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	err := ValidateAppointment(&Appointment{Title: "Dentist", StartTime: start, EndTime: start})
	assert.True(t, IsValidation(err))

	err = ValidateAppointment(&Appointment{Title: "Dentist", StartTime: start, EndTime: start.Add(time.Hour)})
	assert.NoError(t, err)
}

func TestValidateItem(t *testing.T) {
	neg := -1.0
	tests := []struct {
		name    string
		item    Item
		wantErr bool
	}{
		{name: "valid", item: Item{Name: "Chips", Category: CategorySnacks, Unit: UnitBags, Quantity: 2}},
		{name: "unknown category", item: Item{Name: "Chips", Category: "toys", Unit: UnitBags}, wantErr: true},
		{name: "unknown unit", item: Item{Name: "Chips", Category: CategorySnacks, Unit: "crates"}, wantErr: true},
		{name: "negative quantity", item: Item{Name: "Chips", Category: CategorySnacks, Unit: UnitBags, Quantity: -1}, wantErr: true},
		{name: "negative minimum", item: Item{Name: "Chips", Category: CategorySnacks, Unit: UnitBags, MinQuantity: &neg}, wantErr: true},
		{name: "empty name", item: Item{Category: CategorySnacks, Unit: UnitBags}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateItem(&tt.item)
			assert.Equal(t, tt.wantErr, err != nil, "err = %v", err)
		})
	}
}

func TestItemRestockNeeded(t *testing.T) {
	min := 2.0
	item := Item{Quantity: 2, MinQuantity: &min}
	assert.True(t, item.RestockNeeded())

	item.Quantity = 3
	assert.False(t, item.RestockNeeded())

	item.MinQuantity = nil
	item.Quantity = 0
	assert.False(t, item.RestockNeeded())
}

func TestValidateReceipt(t *testing.T) {
	r := Receipt{
		StoreName:    "Corner Shop",
		PurchaseDate: time.Now(),
		TotalAmount:  decimal.RequireFromString("4.50"),
		Items:        []ReceiptLine{{ItemName: "Milk"}},
	}
	assert.NoError(t, ValidateReceipt(&r))

	r.Items = append(r.Items, ReceiptLine{ItemName: " "})
	assert.True(t, IsValidation(ValidateReceipt(&r)))
}

func TestValidateEvent_Severity(t *testing.T) {
	assert.NoError(t, ValidateEvent(&Event{EventType: "motion", Severity: SeverityWarning}))
	assert.Error(t, ValidateEvent(&Event{EventType: "motion", Severity: "loud"}))
}

func TestCategorizeItem(t *testing.T) {
	tests := map[string]ItemCategory{
		"Potato Chips":  CategorySnacks,
		"WHOLE MILK":    CategoryGroceries,
		"Dish Soap":     CategoryHousehold,
		"Birthday Card": CategoryOther,
		" candy corn  ": CategorySnacks,
		"Paper Towels":  CategoryHousehold,
	}
	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, want, CategorizeItem(name))
		})
	}
}
