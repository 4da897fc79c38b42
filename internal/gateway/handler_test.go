package gateway

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandler_HandleCart(t *testing.T) {
	t.Run("proxies GET /cart with identity headers", func(t *testing.T) {
		cartServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/cart" {
				t.Errorf("expected /cart, got %s", r.URL.Path)
			}
			if r.Header.Get("X-User-Id") != "user-1" {
				t.Errorf("expected X-User-Id to be forwarded, got %q", r.Header.Get("X-User-Id"))
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`[{"product_id":"GIFT-001","quantity":2}]`))
		}))
		defer cartServer.Close()

		handler := NewHandler(
			NewServiceProxy(cartServer.URL, cartServer.Client()),
			NewServiceProxy("http://unused", http.DefaultClient),
			slog.New(slog.NewTextHandler(io.Discard, nil)),
		)

		req := httptest.NewRequest(http.MethodGet, "/cart", nil)
		req.Header.Set("X-User-Id", "user-1")
		rec := httptest.NewRecorder()

		handler.HandleCart(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
		if rec.Body.String() != `[{"product_id":"GIFT-001","quantity":2}]` {
			t.Errorf("unexpected body: %s", rec.Body.String())
		}
	})

	t.Run("rejects anonymous cart traffic", func(t *testing.T) {
		handler := NewHandler(
			NewServiceProxy("http://unused", http.DefaultClient),
			NewServiceProxy("http://unused", http.DefaultClient),
			slog.New(slog.NewTextHandler(io.Discard, nil)),
		)

		req := httptest.NewRequest(http.MethodGet, "/cart", nil)
		rec := httptest.NewRecorder()

		handler.HandleCart(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", rec.Code)
		}
	})

	t.Run("forwards the discountCode query", func(t *testing.T) {
		cartServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("discountCode"); got != "PCT15" {
				t.Errorf("expected discountCode=PCT15, got %q", got)
			}
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"total":"1300","discount_total":"1105"}`))
		}))
		defer cartServer.Close()

		handler := NewHandler(
			NewServiceProxy(cartServer.URL, cartServer.Client()),
			NewServiceProxy("http://unused", http.DefaultClient),
			slog.New(slog.NewTextHandler(io.Discard, nil)),
		)

		req := httptest.NewRequest(http.MethodGet, "/cart/total?discountCode=PCT15", nil)
		req.Header.Set("X-User-Id", "user-1")
		rec := httptest.NewRecorder()

		handler.HandleCart(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
	})

	t.Run("proxies POST /cart/checkout with body", func(t *testing.T) {
		cartServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			if !strings.Contains(string(body), `"4242424242424242"`) {
				t.Errorf("expected checkout body to be forwarded, got %s", body)
			}
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":"pi_abc"}`))
		}))
		defer cartServer.Close()

		handler := NewHandler(
			NewServiceProxy(cartServer.URL, cartServer.Client()),
			NewServiceProxy("http://unused", http.DefaultClient),
			slog.New(slog.NewTextHandler(io.Discard, nil)),
		)

		body := `{"number":"4242424242424242","cvc":"123","location":"Baku"}`
		req := httptest.NewRequest(http.MethodPost, "/cart/checkout", strings.NewReader(body))
		req.Header.Set("X-User-Id", "user-1")
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		handler.HandleCart(rec, req)

		if rec.Code != http.StatusCreated {
			t.Errorf("expected status 201, got %d", rec.Code)
		}
	})

	t.Run("returns 502 when the cart service is unavailable", func(t *testing.T) {
		handler := NewHandler(
			NewServiceProxy("http://localhost:1", &http.Client{}),
			NewServiceProxy("http://unused", http.DefaultClient),
			slog.New(slog.NewTextHandler(io.Discard, nil)),
		)

		req := httptest.NewRequest(http.MethodGet, "/cart", nil)
		req.Header.Set("X-User-Id", "user-1")
		rec := httptest.NewRecorder()

		handler.HandleCart(rec, req)

		if rec.Code != http.StatusBadGateway {
			t.Errorf("expected status 502, got %d", rec.Code)
		}

		var resp map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp["error"] != "service unavailable" {
			t.Errorf("expected 'service unavailable', got %s", resp["error"])
		}
	})
}

func TestHandler_HandleDiscounts(t *testing.T) {
	t.Run("proxies discount lookups without identity", func(t *testing.T) {
		discountServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/discounts/code/PCT15" {
				t.Errorf("expected /discounts/code/PCT15, got %s", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"code":"PCT15"}`))
		}))
		defer discountServer.Close()

		handler := NewHandler(
			NewServiceProxy("http://unused", http.DefaultClient),
			NewServiceProxy(discountServer.URL, discountServer.Client()),
			slog.New(slog.NewTextHandler(io.Discard, nil)),
		)

		req := httptest.NewRequest(http.MethodGet, "/discounts/code/PCT15", nil)
		rec := httptest.NewRecorder()

		handler.HandleDiscounts(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
	})

	t.Run("preserves downstream error status", func(t *testing.T) {
		discountServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"discount not found"}`))
		}))
		defer discountServer.Close()

		handler := NewHandler(
			NewServiceProxy("http://unused", http.DefaultClient),
			NewServiceProxy(discountServer.URL, discountServer.Client()),
			slog.New(slog.NewTextHandler(io.Discard, nil)),
		)

		req := httptest.NewRequest(http.MethodGet, "/discounts/code/NOPE", nil)
		rec := httptest.NewRecorder()

		handler.HandleDiscounts(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rec.Code)
		}
	})
}
