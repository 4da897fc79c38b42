package payment

import (
	"context"
	"errors"

	"github.com/emindev/giftshop/internal/domain"
)

// ErrDeclined means the processor rejected the card. User-actionable; a
// retry with the same card will fail again.
var ErrDeclined = errors.New("payment declined")

// ErrUnavailable means the processor could not be reached or failed
// internally. The charge may be retried.
var ErrUnavailable = errors.New("payment gateway unavailable")

// ChargeRequest carries the card, the amount in minor units, and the
// shipping details the processor attaches to the charge.
type ChargeRequest struct {
	CardNumber  string `json:"number"`
	ExpMonth    int    `json:"exp_month"`
	ExpYear     int    `json:"exp_year"`
	CVC         string `json:"cvc"`
	AmountMinor int64  `json:"amount"`
	Location    string `json:"location"`
	Note        string `json:"note"`
}

// Gateway is the orchestrator's contract with the payment processor: one
// request, one response, no automatic retry. A nil error guarantees the
// returned transaction id refers to a captured charge.
type Gateway interface {
	Charge(ctx context.Context, cust domain.Customer, req ChargeRequest) (string, error)
}
