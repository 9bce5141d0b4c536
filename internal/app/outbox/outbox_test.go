package outbox

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"homestay/internal/domain/shared/events"
)

type captureBox struct {
	records []EventRecord
}

func (c *captureBox) Add(_ context.Context, rec EventRecord) error {
	c.records = append(c.records, rec)
	return nil
}

func (c *captureBox) Flush(context.Context) error { return nil }

type sampleEvent struct {
	events.Base
	PropertyID string `json:"property_id"`
}

type aggregate struct {
	events.EventRecorder
}

func TestRecordDrainsPendingEvents(t *testing.T) {
	agg := &aggregate{}
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	agg.Record(sampleEvent{Base: events.Base{Name: "review.submitted", Aggregate: "r-1", Time: at}, PropertyID: "p-1"})

	box := &captureBox{}
	enc := JSONEventEncoder{IDGenerator: func() string { return "evt-1" }}
	if err := Record(context.Background(), box, enc, agg); err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(agg.PendingEvents()) != 0 {
		t.Fatalf("expected events drained")
	}
	if len(box.records) != 1 {
		t.Fatalf("expected one record, got %d", len(box.records))
	}
	rec := box.records[0]
	if rec.ID != "evt-1" || rec.Name != "review.submitted" || rec.Aggregate != "r-1" || !rec.OccurredAt.Equal(at) {
		t.Fatalf("unexpected record %+v", rec)
	}
	var payload map[string]any
	if err := json.Unmarshal(rec.Payload, &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if payload["property_id"] != "p-1" {
		t.Fatalf("unexpected payload %v", payload)
	}
}

func TestRecordWithoutOutboxIsNoop(t *testing.T) {
	agg := &aggregate{}
	agg.Record(sampleEvent{Base: events.Base{Name: "x"}})
	if err := Record(context.Background(), nil, nil, agg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
