package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderConfirmedEvent is published after a checkout fully commits. It drives
// the confirmation email; delivery failures never fail the checkout.
type OrderConfirmedEvent struct {
	OrderID    string          `json:"order_id"`
	CustomerID string          `json:"customer_id"`
	Email      string          `json:"email"`
	Total      decimal.Decimal `json:"total"`
	Timestamp  time.Time       `json:"timestamp"`
}

// CheckoutFailureEvent carries a post-charge consistency failure onto the
// dead-letter topic for downstream reconciliation.
type CheckoutFailureEvent struct {
	TransactionID string    `json:"transaction_id"`
	UserID        string    `json:"user_id"`
	AmountMinor   int64     `json:"amount_minor"`
	Stage         string    `json:"stage"`
	Reason        string    `json:"reason"`
	Timestamp     time.Time `json:"timestamp"`
}
