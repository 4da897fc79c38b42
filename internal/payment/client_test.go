package payment

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emindev/giftshop/internal/domain"
)

var testCustomer = domain.Customer{
	ID:        "user-1",
	Email:     "user@example.com",
	FirstName: "Emin",
	LastName:  "Aliyev",
}

func validRequest() ChargeRequest {
	return ChargeRequest{
		CardNumber:  "4242424242424242",
		ExpMonth:    12,
		ExpYear:     time.Now().Year() + 1,
		CVC:         "123",
		AmountMinor: 110500,
		Location:    "28 May St, Baku",
	}
}

func TestClient_Charge(t *testing.T) {
	t.Run("success returns the transaction id", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/charge", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"transaction_id":"pi_abc123"}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, server.Client())
		txID, err := client.Charge(context.Background(), testCustomer, validRequest())
		require.NoError(t, err)
		assert.Equal(t, "pi_abc123", txID)
	})

	t.Run("402 maps to ErrDeclined", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusPaymentRequired)
			_, _ = w.Write([]byte(`{"error":"card declined"}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, server.Client())
		_, err := client.Charge(context.Background(), testCustomer, validRequest())
		assert.ErrorIs(t, err, ErrDeclined)
		assert.NotErrorIs(t, err, ErrUnavailable)
	})

	t.Run("5xx maps to ErrUnavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewClient(server.URL, server.Client())
		_, err := client.Charge(context.Background(), testCustomer, validRequest())
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("transport failure maps to ErrUnavailable", func(t *testing.T) {
		client := NewClient("http://localhost:1", &http.Client{Timeout: time.Second})
		_, err := client.Charge(context.Background(), testCustomer, validRequest())
		assert.ErrorIs(t, err, ErrUnavailable)
	})
}

func TestProcessorHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewProcessorHandler(logger)

	server := httptest.NewServer(http.HandlerFunc(handler.HandleCharge))
	defer server.Close()

	client := NewClient(server.URL, server.Client())

	t.Run("captures a valid charge", func(t *testing.T) {
		txID, err := client.Charge(context.Background(), testCustomer, validRequest())
		require.NoError(t, err)
		assert.True(t, len(txID) > 3 && txID[:3] == "pi_", "unexpected transaction id %q", txID)
	})

	t.Run("declines the decline test card", func(t *testing.T) {
		req := validRequest()
		req.CardNumber = "4000000000000002"
		_, err := client.Charge(context.Background(), testCustomer, req)
		assert.ErrorIs(t, err, ErrDeclined)
	})

	t.Run("declines an expired card", func(t *testing.T) {
		req := validRequest()
		req.ExpYear = time.Now().Year() - 1
		_, err := client.Charge(context.Background(), testCustomer, req)
		assert.ErrorIs(t, err, ErrDeclined)
	})

	t.Run("rejects a negative amount", func(t *testing.T) {
		req := validRequest()
		req.AmountMinor = -1
		_, err := client.Charge(context.Background(), testCustomer, req)
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("captures a zero amount charge", func(t *testing.T) {
		req := validRequest()
		req.AmountMinor = 0
		_, err := client.Charge(context.Background(), testCustomer, req)
		assert.NoError(t, err)
	})
}
