package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/streadway/amqp"

	"homestay/internal/app/policies"
)

type fakeChannel struct {
	published []amqp.Publishing
	keys      []string
}

func (f *fakeChannel) Publish(_, key string, _, _ bool, msg amqp.Publishing) error {
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error { return nil }

func TestAMQPNotifierPublishesJSON(t *testing.T) {
	ch := &fakeChannel{}
	n := &AMQPNotifier{queue: "notes", ch: ch}
	if err := n.Send(context.Background(), "ana@example.com", policies.TemplateBookingConfirmed, map[string]string{"booking_id": "b-1"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(ch.published) != 1 || ch.keys[0] != "notes" {
		t.Fatalf("expected one message on notes, got %v", ch.keys)
	}
	msg := ch.published[0]
	if msg.DeliveryMode != amqp.Persistent || msg.Type != policies.TemplateBookingConfirmed {
		t.Fatalf("unexpected publishing %+v", msg)
	}
	var body Message
	if err := json.Unmarshal(msg.Body, &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.To != "ana@example.com" || body.Template != policies.TemplateBookingConfirmed {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestAMQPNotifierHonoursCancelledContext(t *testing.T) {
	ch := &fakeChannel{}
	n := &AMQPNotifier{queue: "notes", ch: ch}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := n.Send(ctx, "a@b.c", "x", nil); err == nil {
		t.Fatal("expected context error")
	}
	if len(ch.published) != 0 {
		t.Fatal("nothing should be published")
	}
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := LogNotifier{Logger: slog.New(slog.NewTextHandler(&buf, nil))}
	_ = n.Send(context.Background(), "a@b.c", policies.TemplateBookingCreated, nil)
	if !strings.Contains(buf.String(), "template="+policies.TemplateBookingCreated) {
		t.Fatalf("unexpected log %q", buf.String())
	}
}
