package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/emindev/giftshop/internal/cart"
	"github.com/emindev/giftshop/internal/discount"
	"github.com/emindev/giftshop/internal/domain"
	"github.com/emindev/giftshop/internal/payment"
)

// ErrEmptyCart means there is nothing to check out.
var ErrEmptyCart = errors.New("cart is empty")

// ErrPostChargeFailure means the customer was charged but a later step did
// not commit. The failure is recorded for reconciliation before this is
// returned.
var ErrPostChargeFailure = errors.New("post-charge consistency failure")

type CartStore interface {
	Priced(ctx context.Context, userID string, now time.Time) (*cart.Priced, error)
	Clear(ctx context.Context, userID string) error
}

// DiscountService resolves and redeems codes; (nil, nil) from GetByCode
// means the code does not exist.
type DiscountService interface {
	GetByCode(ctx context.Context, code string) (*domain.DiscountCode, error)
	Redeem(ctx context.Context, code string) error
}

type OrderStore interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
}

type FailureStore interface {
	Record(ctx context.Context, f *Failure) error
}

// Publisher emits domain events; nil disables publishing.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

type Request struct {
	CardNumber   string `json:"number"`
	ExpMonth     int    `json:"exp_month"`
	ExpYear      int    `json:"exp_year"`
	CVC          string `json:"cvc"`
	Location     string `json:"location"`
	Note         string `json:"note"`
	DiscountCode string `json:"discount_code"`
}

type Orchestrator struct {
	carts     CartStore
	discounts DiscountService
	gateway   payment.Gateway
	orders    OrderStore
	failures  FailureStore
	publisher Publisher
	locks     *userLocks
	logger    *slog.Logger
}

func NewOrchestrator(
	carts CartStore,
	discounts DiscountService,
	gateway payment.Gateway,
	orders OrderStore,
	failures FailureStore,
	publisher Publisher,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		carts:     carts,
		discounts: discounts,
		gateway:   gateway,
		orders:    orders,
		failures:  failures,
		publisher: publisher,
		locks:     newUserLocks(),
		logger:    logger,
	}
}

// Checkout turns the user's priced cart into a charged order: resolve prices
// and discount, charge the gateway, persist the order keyed by the
// transaction id, clear the cart, and consume the discount budget when the
// discount actually reduced the charge.
//
// A failure before the charge aborts with nothing mutated. After the charge
// the remaining steps run under a detached context so a cancelled request
// cannot drop a captured payment, and any failure is recorded durably before
// ErrPostChargeFailure is returned.
func (o *Orchestrator) Checkout(ctx context.Context, cust domain.Customer, req Request) (*domain.Order, error) {
	unlock := o.locks.lock(cust.ID)
	defer unlock()

	now := time.Now().UTC()

	priced, err := o.carts.Priced(ctx, cust.ID, now)
	if err != nil {
		return nil, fmt.Errorf("price cart: %w", err)
	}
	if len(priced.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	var code *domain.DiscountCode
	if req.DiscountCode != "" {
		code, err = o.discounts.GetByCode(ctx, req.DiscountCode)
		if err != nil {
			return nil, fmt.Errorf("resolve discount: %w", err)
		}
	}

	discountTotal := discount.Apply(priced.Total, code, now)
	if discountTotal.IsNegative() {
		discountTotal = decimal.Zero
	}

	txID, err := o.gateway.Charge(ctx, cust, payment.ChargeRequest{
		CardNumber:  req.CardNumber,
		ExpMonth:    req.ExpMonth,
		ExpYear:     req.ExpYear,
		CVC:         req.CVC,
		AmountMinor: discountTotal.Shift(2).IntPart(),
		Location:    req.Location,
		Note:        req.Note,
	})
	if err != nil {
		return nil, fmt.Errorf("charge customer: %w", err)
	}

	order := &domain.Order{
		ID:            txID,
		CustomerID:    cust.ID,
		Items:         priced.OrderItems(),
		Total:         priced.Total,
		DiscountTotal: discountTotal,
		Location:      req.Location,
		Note:          req.Note,
		CreatedAt:     now,
	}

	// The charge is captured. From here on the caller's cancellation or
	// timeout must not interrupt persistence.
	ctx = context.WithoutCancel(ctx)

	if err := o.orders.Create(ctx, order); err != nil {
		if errors.Is(err, ErrDuplicateOrder) {
			existing, getErr := o.orders.GetByID(ctx, txID)
			if getErr == nil && existing != nil {
				o.logger.Warn("charge already recorded", "transaction_id", txID, "user_id", cust.ID)
				return existing, nil
			}
		}
		return nil, o.failPostCharge(ctx, order, "persist_order", err)
	}

	if err := o.carts.Clear(ctx, cust.ID); err != nil {
		return nil, o.failPostCharge(ctx, order, "clear_cart", err)
	}

	if code != nil && order.DiscountTotal.LessThan(order.Total) {
		if err := o.discounts.Redeem(ctx, code.Code); err != nil {
			return nil, o.failPostCharge(ctx, order, "redeem_discount", err)
		}
	}

	if o.publisher != nil {
		event := domain.OrderConfirmedEvent{
			OrderID:    order.ID,
			CustomerID: order.CustomerID,
			Email:      cust.Email,
			Total:      order.DiscountTotal,
			Timestamp:  order.CreatedAt,
		}
		if err := o.publisher.Publish(ctx, order.ID, event); err != nil {
			o.logger.Error("failed to publish order confirmed event", "error", err, "order_id", order.ID)
		}
	}

	o.logger.Info("checkout complete",
		"order_id", order.ID,
		"user_id", cust.ID,
		"total", order.Total,
		"discount_total", order.DiscountTotal,
	)

	return order, nil
}

func (o *Orchestrator) failPostCharge(ctx context.Context, order *domain.Order, stage string, cause error) error {
	o.logger.Error("post-charge failure",
		"stage", stage,
		"error", cause,
		"transaction_id", order.ID,
		"user_id", order.CustomerID,
	)

	f := &Failure{
		TransactionID: order.ID,
		UserID:        order.CustomerID,
		AmountMinor:   order.DiscountTotal.Shift(2).IntPart(),
		Stage:         stage,
		Reason:        cause.Error(),
	}
	if err := o.failures.Record(ctx, f); err != nil {
		o.logger.Error("failed to record checkout failure", "error", err, "transaction_id", order.ID)
	}

	return fmt.Errorf("%w: %s: %v", ErrPostChargeFailure, stage, cause)
}
