package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/emindev/giftshop/internal/checkout"
	"github.com/emindev/giftshop/internal/domain"
)

type fakeFailureStore struct {
	failures  []checkout.Failure
	published []string
	listErr   error
}

func (f *fakeFailureStore) Unpublished(_ context.Context, limit int) ([]checkout.Failure, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.failures) > limit {
		return f.failures[:limit], nil
	}
	return f.failures, nil
}

func (f *fakeFailureStore) MarkPublished(_ context.Context, id string) error {
	f.published = append(f.published, id)
	return nil
}

type fakePublisher struct {
	events []domain.CheckoutFailureEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, _ string, event any) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event.(domain.CheckoutFailureEvent))
	return nil
}

func TestFailurePublisher_publishBatch(t *testing.T) {
	failure := checkout.Failure{
		ID:            "f-1",
		TransactionID: "pi_abc123",
		UserID:        "user-1",
		AmountMinor:   110500,
		Stage:         "persist_order",
		Reason:        "connection reset",
		CreatedAt:     time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}

	t.Run("publishes and marks each unpublished failure", func(t *testing.T) {
		store := &fakeFailureStore{failures: []checkout.Failure{failure}}
		pub := &fakePublisher{}
		publisher := NewFailurePublisher(store, pub, time.Second, 50, testLogger())

		if err := publisher.publishBatch(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(pub.events) != 1 {
			t.Fatalf("expected 1 event, got %d", len(pub.events))
		}
		event := pub.events[0]
		if event.TransactionID != "pi_abc123" || event.Stage != "persist_order" || event.AmountMinor != 110500 {
			t.Errorf("unexpected event: %+v", event)
		}
		if !event.Timestamp.Equal(failure.CreatedAt) {
			t.Errorf("expected event timestamp to carry the failure time, got %v", event.Timestamp)
		}
		if len(store.published) != 1 || store.published[0] != "f-1" {
			t.Errorf("expected failure f-1 marked published, got %v", store.published)
		}
	})

	t.Run("leaves rows unpublished when the broker is down", func(t *testing.T) {
		store := &fakeFailureStore{failures: []checkout.Failure{failure}}
		pub := &fakePublisher{err: errors.New("broker unavailable")}
		publisher := NewFailurePublisher(store, pub, time.Second, 50, testLogger())

		if err := publisher.publishBatch(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(store.published) != 0 {
			t.Errorf("expected no rows marked published, got %v", store.published)
		}
	})

	t.Run("propagates store errors", func(t *testing.T) {
		store := &fakeFailureStore{listErr: errors.New("db down")}
		publisher := NewFailurePublisher(store, &fakePublisher{}, time.Second, 50, testLogger())

		if err := publisher.publishBatch(context.Background()); err == nil {
			t.Fatal("expected error, got nil")
		}
	})

	t.Run("respects the batch size", func(t *testing.T) {
		store := &fakeFailureStore{failures: []checkout.Failure{failure, failure, failure}}
		pub := &fakePublisher{}
		publisher := NewFailurePublisher(store, pub, time.Second, 2, testLogger())

		if err := publisher.publishBatch(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(pub.events) != 2 {
			t.Errorf("expected 2 events, got %d", len(pub.events))
		}
	})
}

func TestFailurePublisher_Run(t *testing.T) {
	t.Run("stops when the context is cancelled", func(t *testing.T) {
		publisher := NewFailurePublisher(&fakeFailureStore{}, &fakePublisher{}, time.Millisecond, 50, testLogger())

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- publisher.Run(ctx) }()

		time.Sleep(10 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		case <-time.After(time.Second):
			t.Fatal("publisher did not stop after cancellation")
		}
	})
}
