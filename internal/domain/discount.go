package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountPercentageTotal DiscountType = "percentage_total"
	DiscountFixedTotal      DiscountType = "fixed_total"
)

// DiscountCode is a promotional code with an optional validity window and an
// optional redemption budget. Remaining is nil for unlimited codes and is
// only ever decremented by a successful checkout that used the code.
type DiscountCode struct {
	ID        string          `json:"id"`
	Code      string          `json:"code"`
	Type      DiscountType    `json:"type"`
	Value     decimal.Decimal `json:"value"`
	Limit     *int            `json:"limit,omitempty"`
	Remaining *int            `json:"remaining,omitempty"`
	StartDate time.Time       `json:"start_date"`
	EndDate   *time.Time      `json:"end_date,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
