package cart

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/emindev/giftshop/internal/discount"
	"github.com/emindev/giftshop/internal/domain"
	"github.com/emindev/giftshop/internal/identity"
	"github.com/emindev/giftshop/internal/pricing"
)

// CartStore is the slice of Store the handler needs.
type CartStore interface {
	List(ctx context.Context, userID string) ([]domain.CartLine, error)
	Reconcile(ctx context.Context, userID string, desired []domain.CartItem) ([]domain.CartLine, error)
	Priced(ctx context.Context, userID string, now time.Time) (*Priced, error)
}

// DiscountLookup resolves a discount code; (nil, nil) means unknown code.
type DiscountLookup interface {
	GetByCode(ctx context.Context, code string) (*domain.DiscountCode, error)
}

type Handler struct {
	store     CartStore
	discounts DiscountLookup
	logger    *slog.Logger
}

func NewHandler(store CartStore, discounts DiscountLookup, logger *slog.Logger) *Handler {
	return &Handler{
		store:     store,
		discounts: discounts,
		logger:    logger,
	}
}

func (h *Handler) HandleGetCart(w http.ResponseWriter, r *http.Request) {
	cust, ok := identity.FromRequest(r)
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "missing customer identity")
		return
	}

	lines, err := h.store.List(r.Context(), cust.ID)
	if err != nil {
		h.logger.Error("failed to list cart", "error", err, "user_id", cust.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, lines)
}

type reconcileRequest struct {
	Items []domain.CartItem `json:"items"`
}

func (h *Handler) HandleReconcile(w http.ResponseWriter, r *http.Request) {
	cust, ok := identity.FromRequest(r)
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "missing customer identity")
		return
	}

	var req reconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	seen := make(map[string]bool, len(req.Items))
	for _, item := range req.Items {
		if item.ProductID == "" {
			h.writeError(w, http.StatusBadRequest, "product_id is required")
			return
		}
		if item.Quantity < 1 {
			h.writeError(w, http.StatusBadRequest, "quantity must be positive")
			return
		}
		if seen[item.ProductID] {
			h.writeError(w, http.StatusBadRequest, "duplicate product "+item.ProductID)
			return
		}
		seen[item.ProductID] = true
	}

	lines, err := h.store.Reconcile(r.Context(), cust.ID, req.Items)
	if err != nil {
		h.logger.Error("failed to reconcile cart", "error", err, "user_id", cust.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("cart reconciled", "user_id", cust.ID, "lines", len(lines))
	h.writeJSON(w, http.StatusOK, lines)
}

type totalResponse struct {
	Total         decimal.Decimal `json:"total"`
	DiscountTotal decimal.Decimal `json:"discount_total"`
}

// HandleGetTotal prices the cart without committing anything; the same
// resolution and discount path checkout uses, minus the charge.
func (h *Handler) HandleGetTotal(w http.ResponseWriter, r *http.Request) {
	cust, ok := identity.FromRequest(r)
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "missing customer identity")
		return
	}

	now := time.Now().UTC()

	priced, err := h.store.Priced(r.Context(), cust.ID, now)
	if err != nil {
		if errors.Is(err, pricing.ErrNoActivePrice) {
			h.logger.Error("cart contains an unpriced product", "error", err, "user_id", cust.ID)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		h.logger.Error("failed to price cart", "error", err, "user_id", cust.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	var code *domain.DiscountCode
	if dc := r.URL.Query().Get("discountCode"); dc != "" {
		code, err = h.discounts.GetByCode(r.Context(), dc)
		if err != nil {
			h.logger.Error("failed to look up discount", "error", err, "code", dc)
			h.writeError(w, http.StatusBadGateway, "discount service unavailable")
			return
		}
	}

	h.writeJSON(w, http.StatusOK, totalResponse{
		Total:         priced.Total,
		DiscountTotal: discount.Apply(priced.Total, code, now),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
