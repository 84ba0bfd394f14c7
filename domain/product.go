package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sponsorable tree as listed in the catalog.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
	Available   bool
	CreatedAt   time.Time
}
