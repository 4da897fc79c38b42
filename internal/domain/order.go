package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Order is created only after a successful charge. Its ID is the payment
// transaction id, which doubles as the idempotency key for the checkout.
type Order struct {
	ID            string          `json:"id"`
	CustomerID    string          `json:"customer_id"`
	Items         []OrderItem     `json:"items"`
	Total         decimal.Decimal `json:"total"`
	DiscountTotal decimal.Decimal `json:"discount_total"`
	Location      string          `json:"location"`
	Note          string          `json:"note"`
	CreatedAt     time.Time       `json:"created_at"`
}
