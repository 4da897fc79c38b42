package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/emindev/giftshop/internal/checkout"
	"github.com/emindev/giftshop/internal/messaging"
	"github.com/emindev/giftshop/internal/telemetry"
	"github.com/emindev/giftshop/internal/worker"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	kafkaBrokers := os.Getenv("KAFKA_BROKERS")
	if kafkaBrokers == "" {
		logger.Error("KAFKA_BROKERS environment variable is required")
		os.Exit(1)
	}

	emailServiceURL := os.Getenv("EMAIL_SERVICE_URL")
	if emailServiceURL == "" {
		logger.Error("EMAIL_SERVICE_URL environment variable is required")
		os.Exit(1)
	}

	shopBaseURL := os.Getenv("SHOP_BASE_URL")
	if shopBaseURL == "" {
		logger.Error("SHOP_BASE_URL environment variable is required")
		os.Exit(1)
	}

	postgresURL := os.Getenv("POSTGRES_URL")
	if postgresURL == "" {
		logger.Error("POSTGRES_URL environment variable is required")
		os.Exit(1)
	}

	db, err := telemetry.OpenDB("postgres", postgresURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if _, err := db.Exec("SET search_path TO orders"); err != nil {
		logger.Error("failed to set search_path", "error", err)
		os.Exit(1)
	}

	brokers := strings.Split(kafkaBrokers, ",")
	consumer := messaging.NewConsumer(brokers, messaging.TopicOrderConfirmed, "confirmation-worker")
	defer func() { _ = consumer.Close() }()

	producer := messaging.NewProducer(brokers, messaging.TopicCheckoutFailure)
	defer func() { _ = producer.Close() }()

	httpClient := &http.Client{
		Timeout: 10 * time.Second,
	}

	confirmationHandler := worker.NewConfirmationHandler(emailServiceURL, shopBaseURL, httpClient, logger)
	failurePublisher := worker.NewFailurePublisher(
		checkout.NewFailureRepository(db),
		producer,
		5*time.Second,
		50,
		logger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		logger.Info("shutting down")
		cancel()
	}()

	go func() {
		if err := failurePublisher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("failure publisher error", "error", err)
		}
	}()

	logger.Info("starting confirmation worker", "brokers", brokers)

	if err := consumer.Consume(ctx, confirmationHandler.Handle); err != nil {
		if ctx.Err() == context.Canceled {
			logger.Info("consumer stopped")
			return
		}
		logger.Error("consumer error", "error", err)
		os.Exit(1)
	}
}
