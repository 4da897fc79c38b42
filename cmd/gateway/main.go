package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/emindev/giftshop/internal/gateway"
	"github.com/emindev/giftshop/internal/telemetry"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "gateway", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	cartServiceURL := os.Getenv("CART_SERVICE_URL")
	if cartServiceURL == "" {
		logger.Error("CART_SERVICE_URL is required")
		os.Exit(1)
	}

	discountServiceURL := os.Getenv("DISCOUNT_SERVICE_URL")
	if discountServiceURL == "" {
		logger.Error("DISCOUNT_SERVICE_URL is required")
		os.Exit(1)
	}

	httpClient := &http.Client{
		Timeout:   10 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	cartProxy := gateway.NewServiceProxy(cartServiceURL, httpClient)
	discountProxy := gateway.NewServiceProxy(discountServiceURL, httpClient)
	handler := gateway.NewHandler(cartProxy, discountProxy, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /cart", telemetry.WithHTTPRoute(handler.HandleCart))
	mux.HandleFunc("POST /cart", telemetry.WithHTTPRoute(handler.HandleCart))
	mux.HandleFunc("GET /cart/total", telemetry.WithHTTPRoute(handler.HandleCart))
	mux.HandleFunc("POST /cart/checkout", telemetry.WithHTTPRoute(handler.HandleCart))
	mux.HandleFunc("GET /orders/{id}", telemetry.WithHTTPRoute(handler.HandleCart))
	mux.HandleFunc("POST /discounts", telemetry.WithHTTPRoute(handler.HandleDiscounts))
	mux.HandleFunc("GET /discounts", telemetry.WithHTTPRoute(handler.HandleDiscounts))
	mux.HandleFunc("GET /discounts/{id}", telemetry.WithHTTPRoute(handler.HandleDiscounts))
	mux.HandleFunc("PATCH /discounts/{id}", telemetry.WithHTTPRoute(handler.HandleDiscounts))
	mux.HandleFunc("DELETE /discounts/{id}", telemetry.WithHTTPRoute(handler.HandleDiscounts))
	mux.HandleFunc("GET /discounts/code/{code}", telemetry.WithHTTPRoute(handler.HandleDiscounts))

	server := &http.Server{
		Addr: ":" + port,
		Handler: otelhttp.NewHandler(mux, "gateway",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting gateway service", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
