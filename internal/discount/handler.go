package discount

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/emindev/giftshop/internal/domain"
)

type Handler struct {
	repo   *Repository
	logger *slog.Logger
}

func NewHandler(repo *Repository, logger *slog.Logger) *Handler {
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

type createDiscountRequest struct {
	Code      string              `json:"code"`
	Type      domain.DiscountType `json:"type"`
	Value     decimal.Decimal     `json:"value"`
	Limit     *int                `json:"limit"`
	Remaining *int                `json:"remaining"`
	StartDate time.Time           `json:"start_date"`
	EndDate   *time.Time          `json:"end_date"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createDiscountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Code == "" {
		h.writeError(w, http.StatusBadRequest, "code is required")
		return
	}
	if req.Type != domain.DiscountPercentageTotal && req.Type != domain.DiscountFixedTotal {
		h.writeError(w, http.StatusBadRequest, "unknown discount type")
		return
	}

	d := &domain.DiscountCode{
		Code:      req.Code,
		Type:      req.Type,
		Value:     req.Value,
		Limit:     req.Limit,
		Remaining: req.Remaining,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	if d.Remaining == nil && d.Limit != nil {
		limit := *d.Limit
		d.Remaining = &limit
	}

	if err := h.repo.Create(r.Context(), d); err != nil {
		if errors.Is(err, ErrDuplicateCode) {
			h.writeError(w, http.StatusConflict, "discount code already exists")
			return
		}
		h.logger.Error("failed to create discount", "error", err, "code", req.Code)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("discount created", "code", d.Code, "type", d.Type)
	h.writeJSON(w, http.StatusCreated, d)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	discounts, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list discounts", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, discounts)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing discount id")
		return
	}

	d, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get discount", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if d == nil {
		h.writeError(w, http.StatusNotFound, "discount not found")
		return
	}

	h.writeJSON(w, http.StatusOK, d)
}

// HandleGetByCode serves the lookup the cart service prices against. An
// unknown code is a 404 the caller maps to "no discount applied".
func (h *Handler) HandleGetByCode(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if code == "" {
		h.writeError(w, http.StatusBadRequest, "missing discount code")
		return
	}

	d, err := h.repo.GetByCode(r.Context(), code)
	if err != nil {
		h.logger.Error("failed to get discount by code", "error", err, "code", code)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if d == nil {
		h.writeError(w, http.StatusNotFound, "discount not found")
		return
	}

	h.writeJSON(w, http.StatusOK, d)
}

type updateDiscountRequest struct {
	Value     *decimal.Decimal `json:"value"`
	Limit     *int             `json:"limit"`
	Remaining *int             `json:"remaining"`
	StartDate *time.Time       `json:"start_date"`
	EndDate   *time.Time       `json:"end_date"`
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing discount id")
		return
	}

	var req updateDiscountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	d, err := h.repo.Update(r.Context(), id, UpdatePatch{
		Value:     req.Value,
		Limit:     req.Limit,
		Remaining: req.Remaining,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		h.logger.Error("failed to update discount", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if d == nil {
		h.writeError(w, http.StatusNotFound, "discount not found")
		return
	}

	h.logger.Info("discount updated", "id", id, "code", d.Code)
	h.writeJSON(w, http.StatusOK, d)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing discount id")
		return
	}

	deleted, err := h.repo.Delete(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to delete discount", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if !deleted {
		h.writeError(w, http.StatusNotFound, "discount not found")
		return
	}

	h.logger.Info("discount deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// HandleRedeem consumes one use of a code's budget. Called by the checkout
// orchestrator after a successful charge, never by clients directly.
func (h *Handler) HandleRedeem(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if code == "" {
		h.writeError(w, http.StatusBadRequest, "missing discount code")
		return
	}

	d, err := h.repo.GetByCode(r.Context(), code)
	if err != nil {
		h.logger.Error("failed to get discount for redeem", "error", err, "code", code)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if d == nil {
		h.writeError(w, http.StatusNotFound, "discount not found")
		return
	}

	if err := h.repo.DecrementRemaining(r.Context(), code); err != nil {
		if errors.Is(err, ErrExhausted) {
			h.writeError(w, http.StatusConflict, "discount budget exhausted")
			return
		}
		h.logger.Error("failed to redeem discount", "error", err, "code", code)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("discount redeemed", "code", code)
	w.WriteHeader(http.StatusNoContent)
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
