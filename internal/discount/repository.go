package discount

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/emindev/giftshop/internal/domain"
)

// ErrExhausted means a conditional decrement found no budget left.
var ErrExhausted = errors.New("discount budget exhausted")

// ErrDuplicateCode means an insert hit the unique constraint on code.
var ErrDuplicateCode = errors.New("discount code already exists")

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, d *domain.DiscountCode) error {
	d.ID = uuid.New().String()
	d.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO discounts (id, code, type, value, usage_limit, remaining, start_date, end_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, d.ID, d.Code, d.Type, d.Value, d.Limit, d.Remaining, d.StartDate, d.EndDate, d.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrDuplicateCode
		}
		return err
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.DiscountCode, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *Repository) GetByCode(ctx context.Context, code string) (*domain.DiscountCode, error) {
	return r.getOne(ctx, `WHERE code = $1`, code)
}

func (r *Repository) getOne(ctx context.Context, where string, arg any) (*domain.DiscountCode, error) {
	d := &domain.DiscountCode{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, code, type, value, usage_limit, remaining, start_date, end_date, created_at
		FROM discounts `+where,
		arg,
	).Scan(&d.ID, &d.Code, &d.Type, &d.Value, &d.Limit, &d.Remaining, &d.StartDate, &d.EndDate, &d.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return d, nil
}

func (r *Repository) List(ctx context.Context) ([]domain.DiscountCode, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, code, type, value, usage_limit, remaining, start_date, end_date, created_at
		FROM discounts
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	discounts := []domain.DiscountCode{}
	for rows.Next() {
		var d domain.DiscountCode
		if err := rows.Scan(&d.ID, &d.Code, &d.Type, &d.Value, &d.Limit, &d.Remaining, &d.StartDate, &d.EndDate, &d.CreatedAt); err != nil {
			return nil, err
		}
		discounts = append(discounts, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return discounts, nil
}

// UpdatePatch holds the mutable discount fields; nil means leave unchanged.
type UpdatePatch struct {
	Value     *decimal.Decimal
	Limit     *int
	Remaining *int
	StartDate *time.Time
	EndDate   *time.Time
}

func (r *Repository) Update(ctx context.Context, id string, patch UpdatePatch) (*domain.DiscountCode, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE discounts SET
			value = COALESCE($2, value),
			usage_limit = COALESCE($3, usage_limit),
			remaining = COALESCE($4, remaining),
			start_date = COALESCE($5, start_date),
			end_date = COALESCE($6, end_date)
		WHERE id = $1
	`, id, patch.Value, patch.Limit, patch.Remaining, patch.StartDate, patch.EndDate)
	if err != nil {
		return nil, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rowsAffected == 0 {
		return nil, nil
	}

	return r.GetByID(ctx, id)
}

func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM discounts WHERE id = $1`, id)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

// DecrementRemaining consumes one use of the code's budget. The check and the
// decrement are a single conditional statement so that two concurrent
// redemptions of a remaining=1 code cannot both pass. A code without a budget
// (remaining IS NULL) matches and stays NULL.
func (r *Repository) DecrementRemaining(ctx context.Context, code string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE discounts
		SET remaining = remaining - 1
		WHERE code = $1 AND (remaining IS NULL OR remaining > 0)
	`, code)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrExhausted
	}

	return nil
}
