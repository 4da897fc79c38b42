package discount

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/emindev/giftshop/internal/domain"
)

// Client is the cart service's view of the discount service.
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

// GetByCode resolves a code, returning (nil, nil) when it does not exist so
// that an unknown code prices as "no discount" instead of failing the request.
func (c *Client) GetByCode(ctx context.Context, code string) (*domain.DiscountCode, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/discounts/code/"+code, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup discount %s: %w", code, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discount service returned status %d for code %s", resp.StatusCode, code)
	}

	var d domain.DiscountCode
	if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode discount %s: %w", code, err)
	}

	return &d, nil
}

// Redeem consumes one budget use. A 409 maps to ErrExhausted.
func (c *Client) Redeem(ctx context.Context, code string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/discounts/code/"+code+"/redeem", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("redeem discount %s: %w", code, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusNoContent:
		return nil
	case http.StatusConflict:
		return ErrExhausted
	default:
		return fmt.Errorf("discount service returned status %d redeeming code %s", resp.StatusCode, code)
	}
}
