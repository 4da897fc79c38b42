package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/emindev/giftshop/internal/domain"
)

type chargePayload struct {
	ChargeRequest
	CustomerID string `json:"customer_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
}

type chargeResponse struct {
	TransactionID string `json:"transaction_id"`
	Error         string `json:"error"`
}

// Client talks to the payment service over HTTP. The http.Client's timeout
// bounds how long a charge may hang; past it the result is ErrUnavailable
// and the orchestrator aborts without mutating anything.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

func (c *Client) Charge(ctx context.Context, cust domain.Customer, req ChargeRequest) (string, error) {
	payload := chargePayload{
		ChargeRequest: req,
		CustomerID:    cust.ID,
		Name:          cust.FullName(),
		Email:         cust.Email,
		Phone:         cust.Phone,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal charge request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/charge", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create charge request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var body chargeResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&body); decodeErr != nil && resp.StatusCode == http.StatusOK {
		return "", fmt.Errorf("%w: decode response: %v", ErrUnavailable, decodeErr)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		if body.TransactionID == "" {
			return "", fmt.Errorf("%w: empty transaction id", ErrUnavailable)
		}
		return body.TransactionID, nil
	case resp.StatusCode == http.StatusPaymentRequired:
		if body.Error != "" {
			return "", fmt.Errorf("%w: %s", ErrDeclined, body.Error)
		}
		return "", ErrDeclined
	default:
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
}
