package checkout

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/emindev/giftshop/internal/domain"
)

// ErrDuplicateOrder means an order with this transaction id already exists;
// the charge it refers to was already recorded.
var ErrDuplicateOrder = errors.New("order already recorded")

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, customer_id, total, discount_total, location, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, order.ID, order.CustomerID, order.Total, order.DiscountTotal, order.Location, order.Note, order.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrDuplicateOrder
		}
		return err
	}

	for _, item := range order.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity)
			VALUES ($1, $2, $3, $4)
		`, uuid.New().String(), order.ID, item.ProductID, item.Quantity)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	order := &domain.Order{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, customer_id, total, discount_total, location, note, created_at
		FROM orders
		WHERE id = $1
	`, id).Scan(&order.ID, &order.CustomerID, &order.Total, &order.DiscountTotal, &order.Location, &order.Note, &order.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY product_id
	`, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ProductID, &item.Quantity); err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return order, nil
}

// Failure is a durable record of a post-charge consistency failure: the
// customer was charged but some later step did not commit. Rows stay until
// reconciliation resolves them; they are never silently dropped.
type Failure struct {
	ID            string     `json:"id"`
	TransactionID string     `json:"transaction_id"`
	UserID        string     `json:"user_id"`
	AmountMinor   int64      `json:"amount_minor"`
	Stage         string     `json:"stage"`
	Reason        string     `json:"reason"`
	CreatedAt     time.Time  `json:"created_at"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
}

type FailureRepository struct {
	db *sql.DB
}

func NewFailureRepository(db *sql.DB) *FailureRepository {
	return &FailureRepository{db: db}
}

func (r *FailureRepository) Record(ctx context.Context, f *Failure) error {
	f.ID = uuid.New().String()
	f.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO checkout_failures (id, transaction_id, user_id, amount_minor, stage, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, f.ID, f.TransactionID, f.UserID, f.AmountMinor, f.Stage, f.Reason, f.CreatedAt)
	return err
}

func (r *FailureRepository) Unpublished(ctx context.Context, limit int) ([]Failure, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, transaction_id, user_id, amount_minor, stage, reason, created_at, published_at
		FROM checkout_failures
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var failures []Failure
	for rows.Next() {
		var f Failure
		if err := rows.Scan(&f.ID, &f.TransactionID, &f.UserID, &f.AmountMinor, &f.Stage, &f.Reason, &f.CreatedAt, &f.PublishedAt); err != nil {
			return nil, err
		}
		failures = append(failures, f)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return failures, nil
}

func (r *FailureRepository) MarkPublished(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE checkout_failures SET published_at = NOW()
		WHERE id = $1
	`, id)
	return err
}
