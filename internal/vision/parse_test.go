package vision

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestParseLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantName string
		wantQty  string
		wantUnit string
		wantNil  bool
	}{
		{name: "full item", line: "Milk | 2 | 1.25", wantName: "Milk", wantQty: "2", wantUnit: "1.25"},
		{name: "currency and multiplier", line: "Chips | 3x | $2.99", wantName: "Chips", wantQty: "3", wantUnit: "2.99"},
		{name: "quantity missing defaults to one", line: "Bread | | 3.10", wantName: "Bread", wantQty: "1", wantUnit: "3.10"},
		{name: "name and quantity only", line: "Eggs | 12", wantName: "Eggs", wantQty: "12", wantUnit: "0"},
		// Lines without a pipe separator are indistinguishable from preamble.
		{name: "name only without pipe", line: "Butter", wantNil: true},
		{name: "empty line", line: "", wantNil: true},
		{name: "whitespace only", line: "   ", wantNil: true},
		{name: "header line Here", line: "Here are the items: | x", wantNil: true},
		{name: "header line Based on", line: "Based on the image | y", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLine(tt.line)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantName, got.Name)
			assert.True(t, dec(tt.wantQty).Equal(got.Quantity), "quantity %s", got.Quantity)
			assert.True(t, dec(tt.wantUnit).Equal(got.UnitPrice), "unit price %s", got.UnitPrice)
		})
	}
}

func TestParseResponse(t *testing.T) {
	raw := `Here is the receipt:
STORE | Corner Shop
Milk | 2 | 1.25

Chips | 1 | 2.99
TOTAL | $5.49
PAYMENT | Card`

	res := ParseResponse(raw)
	assert.Equal(t, "Corner Shop", res.StoreName)
	assert.Equal(t, "card", res.PaymentMethod)
	require.NotNil(t, res.Total)
	assert.True(t, dec("5.49").Equal(*res.Total))
	require.Len(t, res.Items, 2)
	assert.Equal(t, "Milk", res.Items[0].Name)
	assert.True(t, dec("2.50").Equal(res.Items[0].LineTotal()))
	assert.Equal(t, "Chips", res.Items[1].Name)
	assert.Equal(t, raw, res.RawResponse)
}

func TestParseResponseNoItems(t *testing.T) {
	res := ParseResponse("I could not read this receipt.")
	assert.Empty(t, res.Items)
	assert.Nil(t, res.Total)
	assert.Empty(t, res.StoreName)
}

func TestParseAmount(t *testing.T) {
	d, ok := ParseAmount("1,299.00")
	assert.True(t, ok)
	assert.True(t, dec("1299").Equal(d))

	_, ok = ParseAmount("n/a")
	assert.False(t, ok)
}
