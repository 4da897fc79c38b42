package payment

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// declineSuffix mimics processor test cards: any number ending in it is
// rejected with a card_declined.
const declineSuffix = "0002"

// ProcessorHandler simulates the external card processor. It validates the
// card, sleeps a little like a real network hop, and returns a
// payment-intent style transaction id.
type ProcessorHandler struct {
	logger *slog.Logger
}

func NewProcessorHandler(logger *slog.Logger) *ProcessorHandler {
	return &ProcessorHandler{logger: logger}
}

func (h *ProcessorHandler) HandleCharge(w http.ResponseWriter, r *http.Request) {
	var req chargePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.AmountMinor < 0 {
		h.writeError(w, http.StatusBadRequest, "amount must not be negative")
		return
	}
	if len(req.CardNumber) < 12 || req.CVC == "" {
		h.writeError(w, http.StatusBadRequest, "invalid card details")
		return
	}

	delay := time.Duration(30+rand.Intn(121)) * time.Millisecond
	time.Sleep(delay)

	now := time.Now()
	if req.ExpYear < now.Year() || (req.ExpYear == now.Year() && time.Month(req.ExpMonth) < now.Month()) {
		h.writeError(w, http.StatusPaymentRequired, "card expired")
		return
	}
	if strings.HasSuffix(req.CardNumber, declineSuffix) {
		h.logger.Info("charge declined", "customer_id", req.CustomerID, "amount", req.AmountMinor)
		h.writeError(w, http.StatusPaymentRequired, "card declined")
		return
	}

	txID := "pi_" + strings.ReplaceAll(uuid.New().String(), "-", "")

	h.logger.Info("charge captured",
		"transaction_id", txID,
		"customer_id", req.CustomerID,
		"amount", req.AmountMinor,
	)

	h.writeJSON(w, http.StatusOK, chargeResponse{TransactionID: txID})
}

func (h *ProcessorHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *ProcessorHandler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
