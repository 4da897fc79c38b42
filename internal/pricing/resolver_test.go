package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emindev/giftshop/internal/domain"
)

func tp(t time.Time) *time.Time { return &t }

func TestResolve(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	t1 := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	base := domain.PriceWindow{Value: decimal.NewFromInt(100)}
	promo := domain.PriceWindow{
		Value:     decimal.NewFromInt(120),
		StartDate: tp(t0),
		EndDate:   tp(t1),
	}
	windows := []domain.PriceWindow{base, promo}

	t.Run("bounded window wins inside its range", func(t *testing.T) {
		got, err := Resolve(windows, t0.Add(24*time.Hour))
		require.NoError(t, err)
		assert.True(t, got.Equal(decimal.NewFromInt(120)), "got %s", got)
	})

	t.Run("falls back to open-ended window after the range", func(t *testing.T) {
		got, err := Resolve(windows, t1.Add(time.Hour))
		require.NoError(t, err)
		assert.True(t, got.Equal(decimal.NewFromInt(100)), "got %s", got)
	})

	t.Run("start is inclusive, end is exclusive", func(t *testing.T) {
		got, err := Resolve(windows, t0)
		require.NoError(t, err)
		assert.True(t, got.Equal(decimal.NewFromInt(120)))

		got, err = Resolve(windows, t1)
		require.NoError(t, err)
		assert.True(t, got.Equal(decimal.NewFromInt(100)))
	})

	t.Run("latest start wins under overlap", func(t *testing.T) {
		early := domain.PriceWindow{Value: decimal.NewFromInt(80), StartDate: tp(t0.Add(-48 * time.Hour))}
		late := domain.PriceWindow{Value: decimal.NewFromInt(90), StartDate: tp(t0)}
		got, err := Resolve([]domain.PriceWindow{early, late}, t0.Add(time.Hour))
		require.NoError(t, err)
		assert.True(t, got.Equal(decimal.NewFromInt(90)))

		// order in the slice must not matter
		got, err = Resolve([]domain.PriceWindow{late, early}, t0.Add(time.Hour))
		require.NoError(t, err)
		assert.True(t, got.Equal(decimal.NewFromInt(90)))
	})

	t.Run("no valid window is an error", func(t *testing.T) {
		_, err := Resolve([]domain.PriceWindow{promo}, t1.Add(time.Hour))
		assert.ErrorIs(t, err, ErrNoActivePrice)

		_, err = Resolve(nil, t0)
		assert.ErrorIs(t, err, ErrNoActivePrice)
	})

	t.Run("bounded window without a start applies until its end", func(t *testing.T) {
		w := domain.PriceWindow{Value: decimal.NewFromInt(70), EndDate: tp(t1)}
		got, err := Resolve([]domain.PriceWindow{w}, t0)
		require.NoError(t, err)
		assert.True(t, got.Equal(decimal.NewFromInt(70)))

		_, err = Resolve([]domain.PriceWindow{w}, t1)
		assert.ErrorIs(t, err, ErrNoActivePrice)
	})
}
