package cart

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/emindev/giftshop/internal/domain"
	"github.com/emindev/giftshop/internal/pricing"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) List(ctx context.Context, userID string) ([]domain.CartLine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, product_id, quantity
		FROM cart_lines
		WHERE user_id = $1
		ORDER BY product_id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	lines := []domain.CartLine{}
	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(&line.UserID, &line.ProductID, &line.Quantity); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}

// Reconcile converts the desired item set into the minimal updates, one batch
// insert and one batch delete against the stored cart, all inside a single
// transaction, and returns the refreshed cart. An empty desired set clears
// the cart. An unknown product id surfaces as the foreign key violation.
func (s *Store) Reconcile(ctx context.Context, userID string, desired []domain.CartItem) ([]domain.CartLine, error) {
	current, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	cs := diffLines(current, desired)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	for _, item := range cs.updates {
		_, err = tx.ExecContext(ctx, `
			UPDATE cart_lines SET quantity = $3
			WHERE user_id = $1 AND product_id = $2
		`, userID, item.ProductID, item.Quantity)
		if err != nil {
			return nil, fmt.Errorf("update cart line %s: %w", item.ProductID, err)
		}
	}

	if len(cs.inserts) > 0 {
		values := make([]string, 0, len(cs.inserts))
		args := []any{userID}
		for _, item := range cs.inserts {
			values = append(values, fmt.Sprintf("($1, $%d, $%d)", len(args)+1, len(args)+2))
			args = append(args, item.ProductID, item.Quantity)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO cart_lines (user_id, product_id, quantity)
			VALUES `+strings.Join(values, ", "),
			args...)
		if err != nil {
			return nil, fmt.Errorf("insert cart lines: %w", err)
		}
	}

	if len(cs.deletes) > 0 {
		_, err = tx.ExecContext(ctx, `
			DELETE FROM cart_lines
			WHERE user_id = $1 AND product_id = ANY($2)
		`, userID, pq.Array(cs.deletes))
		if err != nil {
			return nil, fmt.Errorf("delete cart lines: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return s.List(ctx, userID)
}

func (s *Store) Clear(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM cart_lines WHERE user_id = $1`, userID)
	return err
}

// Priced is a cart snapshot captured at pricing time. Checkout persists this
// snapshot rather than re-reading the cart, so concurrent cart mutation
// between pricing and order creation cannot change what was charged for.
type Priced struct {
	Lines []domain.CartLine
	Total decimal.Decimal
}

func (p *Priced) OrderItems() []domain.OrderItem {
	items := make([]domain.OrderItem, 0, len(p.Lines))
	for _, line := range p.Lines {
		items = append(items, domain.OrderItem{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	return items
}

// Priced loads the user's cart joined to its products' price windows and
// resolves each line's price at now. A product with no valid window fails
// the whole pricing with pricing.ErrNoActivePrice.
func (s *Store) Priced(ctx context.Context, userID string, now time.Time) (*Priced, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.product_id, c.quantity, p.value, p.start_date, p.end_date
		FROM cart_lines c
		LEFT JOIN price_windows p ON p.product_id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.product_id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	type productLines struct {
		quantity int
		windows  []domain.PriceWindow
	}

	byProduct := make(map[string]*productLines)
	var order []string

	for rows.Next() {
		var (
			productID string
			quantity  int
			value     decimal.NullDecimal
			start     *time.Time
			end       *time.Time
		)
		if err := rows.Scan(&productID, &quantity, &value, &start, &end); err != nil {
			return nil, err
		}

		pl, seen := byProduct[productID]
		if !seen {
			pl = &productLines{quantity: quantity}
			byProduct[productID] = pl
			order = append(order, productID)
		}
		if value.Valid {
			pl.windows = append(pl.windows, domain.PriceWindow{
				ProductID: productID,
				Value:     value.Decimal,
				StartDate: start,
				EndDate:   end,
			})
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	priced := &Priced{Total: decimal.Zero}
	for _, productID := range order {
		pl := byProduct[productID]

		price, err := pricing.Resolve(pl.windows, now)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", productID, err)
		}

		priced.Lines = append(priced.Lines, domain.CartLine{
			UserID:    userID,
			ProductID: productID,
			Quantity:  pl.quantity,
		})
		priced.Total = priced.Total.Add(price.Mul(decimal.NewFromInt(int64(pl.quantity))))
	}

	return priced, nil
}
