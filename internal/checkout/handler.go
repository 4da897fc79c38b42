package checkout

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/emindev/giftshop/internal/identity"
	"github.com/emindev/giftshop/internal/payment"
	"github.com/emindev/giftshop/internal/pricing"
)

type Handler struct {
	orchestrator *Orchestrator
	logger       *slog.Logger
}

func NewHandler(orchestrator *Orchestrator, logger *slog.Logger) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		logger:       logger,
	}
}

func (h *Handler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	cust, ok := identity.FromRequest(r)
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "missing customer identity")
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.CardNumber == "" || req.CVC == "" || req.Location == "" {
		h.writeError(w, http.StatusBadRequest, "card details and location are required")
		return
	}

	order, err := h.orchestrator.Checkout(r.Context(), cust, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyCart):
			h.writeError(w, http.StatusBadRequest, "cart is empty")
		case errors.Is(err, payment.ErrDeclined):
			h.writeError(w, http.StatusPaymentRequired, "payment declined")
		case errors.Is(err, payment.ErrUnavailable):
			h.logger.Error("payment gateway unavailable", "error", err, "user_id", cust.ID)
			h.writeError(w, http.StatusBadGateway, "payment gateway unavailable")
		case errors.Is(err, pricing.ErrNoActivePrice):
			h.logger.Error("cart contains an unpriced product", "error", err, "user_id", cust.ID)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
		default:
			h.logger.Error("checkout failed", "error", err, "user_id", cust.ID)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) HandleGetOrder(w http.ResponseWriter, r *http.Request) {
	cust, ok := identity.FromRequest(r)
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "missing customer identity")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	order, err := h.orchestrator.orders.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get order", "error", err, "order_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if order == nil || order.CustomerID != cust.ID {
		h.writeError(w, http.StatusNotFound, "order not found")
		return
	}

	h.writeJSON(w, http.StatusOK, order)
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
