package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/emindev/giftshop/internal/checkout"
	"github.com/emindev/giftshop/internal/domain"
)

// FailureStore lists durable checkout failures that have not been published
// yet and marks them once they reach the dead-letter topic.
type FailureStore interface {
	Unpublished(ctx context.Context, limit int) ([]checkout.Failure, error)
	MarkPublished(ctx context.Context, id string) error
}

type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// FailurePublisher drains the checkout_failures table onto the dead-letter
// topic. Failures are recorded synchronously during checkout and published
// asynchronously here, so a broker outage never blocks a charge from being
// persisted.
type FailurePublisher struct {
	failures  FailureStore
	publisher Publisher
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
}

func NewFailurePublisher(failures FailureStore, publisher Publisher, interval time.Duration, batchSize int, logger *slog.Logger) *FailurePublisher {
	return &FailurePublisher{
		failures:  failures,
		publisher: publisher,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Run polls until ctx is cancelled.
func (p *FailurePublisher) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := p.publishBatch(ctx); err != nil {
				p.logger.Error("failed to publish checkout failures", "error", err)
			}
		}
	}
}

func (p *FailurePublisher) publishBatch(ctx context.Context) error {
	failures, err := p.failures.Unpublished(ctx, p.batchSize)
	if err != nil {
		return err
	}

	for _, f := range failures {
		event := domain.CheckoutFailureEvent{
			TransactionID: f.TransactionID,
			UserID:        f.UserID,
			AmountMinor:   f.AmountMinor,
			Stage:         f.Stage,
			Reason:        f.Reason,
			Timestamp:     f.CreatedAt,
		}

		if err := p.publisher.Publish(ctx, f.TransactionID, event); err != nil {
			// Leave the row unpublished; the next tick retries it.
			p.logger.Error("failed to publish checkout failure", "error", err, "transaction_id", f.TransactionID)
			continue
		}

		if err := p.failures.MarkPublished(ctx, f.ID); err != nil {
			p.logger.Error("failed to mark checkout failure published", "error", err, "id", f.ID)
			continue
		}

		p.logger.Info("checkout failure published", "transaction_id", f.TransactionID, "stage", f.Stage)
	}

	return nil
}
