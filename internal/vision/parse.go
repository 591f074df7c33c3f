package vision

import (
	"strings"

	"github.com/shopspring/decimal"
)

var skipPrefixes = []string{"Here", "I see", "Based on"}

// ParseLine parses a single "name | quantity | unit price" line. It returns
// nil for blank lines, preamble and lines without a pipe separator.
func ParseLine(line string) *DetectedItem {
	line = strings.TrimSpace(line)
	if line == "" || !strings.Contains(line, "|") {
		return nil
	}
	for _, p := range skipPrefixes {
		if strings.HasPrefix(line, p) {
			return nil
		}
	}

	parts := strings.Split(line, "|")
	name := strings.TrimSpace(parts[0])
	if name == "" {
		return nil
	}

	item := &DetectedItem{Name: name, Quantity: decimal.NewFromInt(1)}
	if len(parts) >= 2 {
		if q, ok := ParseAmount(parts[1]); ok && q.IsPositive() {
			item.Quantity = q
		}
	}
	if len(parts) >= 3 {
		if p, ok := ParseAmount(parts[2]); ok {
			item.UnitPrice = p
		}
	}
	return item
}

// ParseResponse parses a full model reply into header fields and item lines.
func ParseResponse(raw string) *AnalysisResult {
	res := &AnalysisResult{Items: make([]DetectedItem, 0), RawResponse: raw}

	for _, line := range strings.Split(raw, "\n") {
		key, value, found := strings.Cut(strings.TrimSpace(line), "|")
		if found {
			value = strings.TrimSpace(value)
			switch strings.ToUpper(strings.TrimSpace(key)) {
			case "STORE":
				res.StoreName = value
				continue
			case "TOTAL":
				if total, ok := ParseAmount(value); ok {
					res.Total = &total
				}
				continue
			case "PAYMENT":
				res.PaymentMethod = strings.ToLower(value)
				continue
			}
		}

		if item := ParseLine(line); item != nil {
			res.Items = append(res.Items, *item)
		}
	}

	return res
}

// ParseAmount reads a number such as "$3.49", "2x" or "1,299.00".
func ParseAmount(s string) (decimal.Decimal, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return -1
		}
	}, s)
	if cleaned == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
