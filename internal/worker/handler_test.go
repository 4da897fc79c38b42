package worker

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/emindev/giftshop/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestConfirmationHandler_Handle(t *testing.T) {
	t.Run("sends a confirmation email with the order link", func(t *testing.T) {
		var got map[string]string
		emailServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/send" {
				t.Errorf("expected /send, got %s", r.URL.Path)
			}
			if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
				t.Fatalf("failed to decode email payload: %v", err)
			}
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"sent"}`))
		}))
		defer emailServer.Close()

		handler := NewConfirmationHandler(emailServer.URL, "https://shop.example", emailServer.Client(), testLogger())

		event := domain.OrderConfirmedEvent{
			OrderID:    "pi_abc123",
			CustomerID: "user-1",
			Email:      "user@example.com",
			Total:      decimal.RequireFromString("1105"),
			Timestamp:  time.Now(),
		}
		payload, _ := json.Marshal(event)

		if err := handler.Handle(context.Background(), payload); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got["to"] != "user@example.com" {
			t.Errorf("expected to=user@example.com, got %q", got["to"])
		}
		if got["from"] != confirmationSender {
			t.Errorf("expected from=%s, got %q", confirmationSender, got["from"])
		}
		if !strings.Contains(got["html"], "https://shop.example/orders/pi_abc123") {
			t.Errorf("expected order link in html, got %q", got["html"])
		}
		if !strings.Contains(got["html"], "1105.00") {
			t.Errorf("expected total in html, got %q", got["html"])
		}
	})

	t.Run("skips events without a customer email", func(t *testing.T) {
		called := false
		emailServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			w.WriteHeader(http.StatusOK)
		}))
		defer emailServer.Close()

		handler := NewConfirmationHandler(emailServer.URL, "https://shop.example", emailServer.Client(), testLogger())

		payload, _ := json.Marshal(domain.OrderConfirmedEvent{OrderID: "pi_abc123", CustomerID: "user-1"})
		if err := handler.Handle(context.Background(), payload); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if called {
			t.Error("expected no email send for an event without an address")
		}
	})

	t.Run("returns an error when the email service fails", func(t *testing.T) {
		emailServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer emailServer.Close()

		handler := NewConfirmationHandler(emailServer.URL, "https://shop.example", emailServer.Client(), testLogger())

		payload, _ := json.Marshal(domain.OrderConfirmedEvent{
			OrderID: "pi_abc123",
			Email:   "user@example.com",
		})
		if err := handler.Handle(context.Background(), payload); err == nil {
			t.Fatal("expected error, got nil")
		}
	})

	t.Run("rejects malformed payloads", func(t *testing.T) {
		handler := NewConfirmationHandler("http://unused", "https://shop.example", http.DefaultClient, testLogger())

		if err := handler.Handle(context.Background(), []byte("not json")); err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}
