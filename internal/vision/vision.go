package vision

import (
	"context"
	"io"

	"github.com/shopspring/decimal"
)

// ReceiptPrompt is the shared prompt used by all vision adapters.
const ReceiptPrompt = `Read the shopping receipt in this photo.
Respond in plain text with one entry per line and nothing else:
STORE | store name
name | quantity | unit price      (one line per purchased item)
TOTAL | amount
PAYMENT | payment method          (only if printed)
Use plain numbers without currency symbols.`

type ReceiptAnalyzer interface {
	Analyze(ctx context.Context, r io.Reader, mimeType string) (*AnalysisResult, error)
}

type AnalysisResult struct {
	StoreName     string
	PaymentMethod string
	// Total is nil when the model did not report one.
	Total       *decimal.Decimal
	Items       []DetectedItem
	RawResponse string
}

type DetectedItem struct {
	Name      string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// LineTotal is quantity times unit price.
func (d DetectedItem) LineTotal() decimal.Decimal {
	return d.Quantity.Mul(d.UnitPrice)
}
