package domain

import "github.com/shopspring/decimal"

// PriceDriftTolerance is the largest difference between the remembered and the
// current unit price that is still accepted as unchanged.
var PriceDriftTolerance = decimal.RequireFromString("0.01")

// CartLine is a client-declared cart entry. CartPrice is advisory only.
type CartLine struct {
	ProductID int64
	Quantity  int
	CartPrice decimal.Decimal
}

type ValidationResult struct {
	ProductID    int64
	ProductName  string
	Valid        bool
	CurrentPrice decimal.Decimal
	CartPrice    decimal.Decimal
	PriceChanged bool
	Available    bool
	Quantity     int
	LineTotal    decimal.Decimal
	Error        string
}

type CartSummary struct {
	ValidItems   int
	InvalidItems int
	TotalAmount  decimal.Decimal
	TotalItems   int
	CartValid    bool
}

// CartValidation holds the per-line results in input order and the summary derived from them.
type CartValidation struct {
	Items   []ValidationResult
	Summary CartSummary
}

// Summarize derives the aggregate summary from per-line results.
func Summarize(items []ValidationResult) CartSummary {
	summary := CartSummary{
		TotalAmount: decimal.Zero,
		TotalItems:  len(items),
	}
	for _, item := range items {
		if !item.Valid {
			summary.InvalidItems++
			continue
		}
		summary.ValidItems++
		summary.TotalAmount = summary.TotalAmount.Add(item.LineTotal)
	}
	summary.TotalAmount = summary.TotalAmount.Round(2)
	summary.CartValid = summary.InvalidItems == 0 && summary.ValidItems > 0
	return summary
}
