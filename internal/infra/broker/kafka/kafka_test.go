package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"

	"homestay/internal/app/dto"
	reviewhandlers "homestay/internal/app/handlers/reviews"
	"homestay/internal/infra/inbox"
)

func TestProducerPublishesWithHeaders(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	mock.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "review.events.v1" {
			return errors.New("unexpected topic " + msg.Topic)
		}
		key, _ := msg.Key.Encode()
		if string(key) != "p-1" {
			return errors.New("unexpected key " + string(key))
		}
		if len(msg.Headers) != 1 || string(msg.Headers[0].Key) != "ce-id" {
			return errors.New("missing ce-id header")
		}
		return nil
	})
	p := newProducerWith(mock)
	if err := p.Publish(context.Background(), "review.events.v1", "p-1", []byte(`{}`), map[string]string{"ce-id": "e-1"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

type fakeRecomputer struct {
	calls []string
	err   error
}

func (f *fakeRecomputer) Handle(_ context.Context, cmd reviewhandlers.RecomputeRatingCommand) (*dto.RatingSummary, error) {
	f.calls = append(f.calls, cmd.PropertyID)
	if f.err != nil {
		return nil, f.err
	}
	return &dto.RatingSummary{PropertyID: cmd.PropertyID, AverageRating: 4.5, NumReviews: 2}, nil
}

func message(value string) *sarama.ConsumerMessage {
	return &sarama.ConsumerMessage{Topic: "review.events.v1", Value: []byte(value)}
}

const submitted = `{"id":"e-1","type":"review.submitted.v1","subject":"r-1","data":{"property_id":"p-1","rating":5}}`

func TestRatingReconcilerDedupes(t *testing.T) {
	rec := &fakeRecomputer{}
	r := &RatingReconciler{Recompute: rec, Inbox: inbox.NewMemory()}
	ctx := context.Background()

	for range 2 {
		if err := r.Handle(ctx, message(submitted)); err != nil {
			t.Fatalf("handle: %v", err)
		}
	}
	if len(rec.calls) != 1 || rec.calls[0] != "p-1" {
		t.Fatalf("expected a single recompute for p-1, got %v", rec.calls)
	}
}

func TestRatingReconcilerIgnoresOtherEvents(t *testing.T) {
	rec := &fakeRecomputer{}
	r := &RatingReconciler{Recompute: rec}
	for _, body := range []string{
		`not json`,
		`{"id":"e-2","type":"booking.created.v1","data":{"property_id":"p-1"}}`,
		`{"id":"e-3","type":"review.submitted.v1","data":{}}`,
	} {
		if err := r.Handle(context.Background(), message(body)); err != nil {
			t.Fatalf("handle %q: %v", body, err)
		}
	}
	if len(rec.calls) != 0 {
		t.Fatalf("expected no recompute, got %v", rec.calls)
	}
}

func TestRatingReconcilerRetriesAfterFailure(t *testing.T) {
	rec := &fakeRecomputer{err: errors.New("store down")}
	r := &RatingReconciler{Recompute: rec, Inbox: inbox.NewMemory()}
	ctx := context.Background()
	if err := r.Handle(ctx, message(submitted)); err == nil {
		t.Fatal("expected failure to surface")
	}
	rec.err = nil
	if err := r.Handle(ctx, message(submitted)); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if len(rec.calls) != 2 {
		t.Fatalf("expected the redelivery to be processed, got %d calls", len(rec.calls))
	}
}
