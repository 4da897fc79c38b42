package pricing

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/emindev/giftshop/internal/domain"
)

// ErrNoActivePrice means a product has no window valid at the requested
// instant. Callers must treat it as a data-integrity error, not user input.
var ErrNoActivePrice = errors.New("no active price window")

// Resolve picks the single price valid at now. A window is valid when it has
// no end date, or when start_date <= now < end_date. Among valid windows the
// one with the latest start date wins; a window without a start date ranks
// lowest. The data model does not enforce non-overlap, so the tie-break has
// to be deterministic.
func Resolve(windows []domain.PriceWindow, now time.Time) (decimal.Decimal, error) {
	best := -1
	for i, w := range windows {
		if !validAt(w, now) {
			continue
		}
		if best == -1 || startOf(w).After(startOf(windows[best])) {
			best = i
		}
	}
	if best == -1 {
		return decimal.Zero, ErrNoActivePrice
	}
	return windows[best].Value, nil
}

func validAt(w domain.PriceWindow, now time.Time) bool {
	if w.EndDate == nil {
		return true
	}
	if w.StartDate == nil {
		return now.Before(*w.EndDate)
	}
	return !now.Before(*w.StartDate) && now.Before(*w.EndDate)
}

func startOf(w domain.PriceWindow) time.Time {
	if w.StartDate == nil {
		return time.Time{}
	}
	return *w.StartDate
}
