package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceWindow is a time-bounded price for a product. A window with no end
// date is open-ended.
type PriceWindow struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Value     decimal.Decimal `json:"value"`
	StartDate *time.Time      `json:"start_date,omitempty"`
	EndDate   *time.Time      `json:"end_date,omitempty"`
}
