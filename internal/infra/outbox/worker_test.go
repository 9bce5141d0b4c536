package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

type fakeSource struct {
	docs   []*EventDocument
	sent   []string
	failed []string
}

func (f *fakeSource) Claim(context.Context, string) (*EventDocument, error) {
	if len(f.docs) == 0 {
		return nil, nil
	}
	doc := f.docs[0]
	f.docs = f.docs[1:]
	return doc, nil
}

func (f *fakeSource) MarkSent(_ context.Context, id string) error {
	f.sent = append(f.sent, id)
	return nil
}

func (f *fakeSource) MarkFailed(_ context.Context, id string, _ time.Time, _ string) error {
	f.failed = append(f.failed, id)
	return nil
}

type published struct {
	topic   string
	key     string
	payload []byte
	headers map[string]string
}

type fakeProducer struct {
	out  []published
	fail bool
}

func (p *fakeProducer) Publish(_ context.Context, topic, key string, payload []byte, headers map[string]string) error {
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.out = append(p.out, published{topic: topic, key: key, payload: payload, headers: headers})
	return nil
}

func TestWorkerRelaysCloudEvents(t *testing.T) {
	src := &fakeSource{docs: []*EventDocument{
		{ID: "e1", Name: "booking.requested", Aggregate: "b-1", Payload: []byte(`{"property_id":"p-1"}`), OccurredAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "e2", Name: "review.submitted", Aggregate: "r-1", Payload: []byte(`not json`)},
	}}
	prod := &fakeProducer{}
	w := &Worker{Source: src, Producer: prod, TopicPrefix: "stage.", ID: "w1"}

	if err := w.drain(context.Background()); err != nil {
		t.Fatalf("drain: %v", err)
	}
	if len(prod.out) != 1 || prod.out[0].topic != "stage.booking.events.v1" || prod.out[0].key != "b-1" {
		t.Fatalf("unexpected publications %+v", prod.out)
	}
	var evt map[string]any
	if err := json.Unmarshal(prod.out[0].payload, &evt); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if evt["id"] != "e1" || evt["type"] != "booking.requested.v1" || evt["source"] != "app://homestay" {
		t.Fatalf("unexpected envelope %v", evt)
	}
	if prod.out[0].headers["content-type"] != "application/cloudevents+json" {
		t.Fatalf("missing content type header")
	}
	if len(src.sent) != 1 || src.sent[0] != "e1" || len(src.failed) != 1 || src.failed[0] != "e2" {
		t.Fatalf("unexpected marks sent=%v failed=%v", src.sent, src.failed)
	}
}

func TestWorkerMarksFailedWhenBrokerRejects(t *testing.T) {
	src := &fakeSource{docs: []*EventDocument{{ID: "e1", Name: "booking.confirmed", Payload: []byte(`{}`)}}}
	w := &Worker{Source: src, Producer: &fakeProducer{fail: true}, ID: "w1"}
	if err := w.drain(context.Background()); err != nil {
		t.Fatalf("drain: %v", err)
	}
	if len(src.failed) != 1 || len(src.sent) != 0 {
		t.Fatalf("expected failure mark, sent=%v failed=%v", src.sent, src.failed)
	}
}

func TestNextRetryUsesBackoffSchedule(t *testing.T) {
	w := &Worker{Backoff: []time.Duration{time.Second, time.Minute}}
	before := time.Now()
	if got := w.nextRetry(0).Sub(before); got < time.Second || got > 2*time.Second {
		t.Fatalf("unexpected first retry %v", got)
	}
	if got := w.nextRetry(5).Sub(before); got < time.Minute {
		t.Fatalf("expected last backoff to repeat, got %v", got)
	}
}

func TestRunRequiresDependencies(t *testing.T) {
	if err := (&Worker{}).Run(context.Background()); !errors.Is(err, ErrWorkerNotConfigured) {
		t.Fatalf("expected ErrWorkerNotConfigured, got %v", err)
	}
}
