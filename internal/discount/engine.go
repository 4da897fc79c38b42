package discount

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/emindev/giftshop/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Apply computes the discounted total. It is read-only: the budget decrement
// belongs to the checkout commit, so that total previews never consume uses.
// An unknown code (nil), an exhausted budget, or an out-of-window code all
// leave the total unchanged rather than erroring. The result is not clamped;
// a fixed discount larger than the total goes negative and the caller decides
// what to do with that.
func Apply(total decimal.Decimal, d *domain.DiscountCode, now time.Time) decimal.Decimal {
	if d == nil {
		return total
	}
	if d.Remaining != nil && *d.Remaining == 0 {
		return total
	}
	if d.EndDate != nil && (now.Before(d.StartDate) || !now.Before(*d.EndDate)) {
		return total
	}

	switch d.Type {
	case domain.DiscountPercentageTotal:
		return total.Sub(total.Mul(d.Value).Div(hundred))
	case domain.DiscountFixedTotal:
		return total.Sub(d.Value)
	}
	return total
}
