package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/emindev/giftshop/internal/domain"
)

const confirmationSender = "orders@giftshop.example"

// ConfirmationHandler turns order confirmed events into confirmation emails.
// Email delivery is best effort from the customer's point of view; the
// checkout has already committed by the time this runs.
type ConfirmationHandler struct {
	emailServiceURL string
	shopBaseURL     string
	httpClient      *http.Client
	logger          *slog.Logger
}

func NewConfirmationHandler(emailServiceURL, shopBaseURL string, client *http.Client, logger *slog.Logger) *ConfirmationHandler {
	return &ConfirmationHandler{
		emailServiceURL: emailServiceURL,
		shopBaseURL:     shopBaseURL,
		httpClient:      client,
		logger:          logger,
	}
}

func (h *ConfirmationHandler) Handle(ctx context.Context, payload []byte) error {
	var event domain.OrderConfirmedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal order confirmed event: %w", err)
	}

	h.logger.Info("processing order confirmed event", "order_id", event.OrderID, "customer_id", event.CustomerID)

	if event.Email == "" {
		h.logger.Warn("order confirmed event has no customer email", "order_id", event.OrderID)
		return nil
	}

	if err := h.sendConfirmationEmail(ctx, event); err != nil {
		h.logger.Error("failed to send confirmation email", "error", err, "order_id", event.OrderID)
		return fmt.Errorf("send confirmation email: %w", err)
	}

	h.logger.Info("confirmation email sent", "order_id", event.OrderID)
	return nil
}

func (h *ConfirmationHandler) sendConfirmationEmail(ctx context.Context, event domain.OrderConfirmedEvent) error {
	orderLink := fmt.Sprintf("%s/orders/%s", h.shopBaseURL, event.OrderID)
	body := map[string]string{
		"from":    confirmationSender,
		"to":      event.Email,
		"subject": "Your order is confirmed",
		"html": fmt.Sprintf(
			"<p>Thank you for your purchase of %s AZN.</p><p>View your order at <a href=%q>%s</a>.</p>",
			event.Total.StringFixed(2), orderLink, orderLink,
		),
	}

	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.emailServiceURL+"/send", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("email service returned status %d", resp.StatusCode)
	}

	return nil
}
