// Package notify delivers booking notifications. Messages are handed to a
// RabbitMQ queue consumed by the mailer; without a broker they are logged.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"homestay/internal/app/policies"
)

// Message is the JSON body placed on the notification queue.
type Message struct {
	To       string    `json:"to"`
	Template string    `json:"template"`
	Data     any       `json:"data,omitempty"`
	SentAt   time.Time `json:"sent_at"`
}

type publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPNotifier publishes persistent messages to a durable queue through the
// default exchange.
type AMQPNotifier struct {
	conn  *amqp.Connection
	queue string

	mu sync.Mutex
	ch publisher
}

func DialAMQP(url, queue string) (*AMQPNotifier, error) {
	if queue == "" {
		queue = "homestay.notifications"
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("notify: connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("notify: open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("notify: declare queue: %w", err)
	}
	return &AMQPNotifier{conn: conn, queue: queue, ch: ch}, nil
}

func (n *AMQPNotifier) Send(ctx context.Context, to, template string, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(Message{To: to, Template: template, Data: data, SentAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ch.Publish("", n.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         template,
		Body:         body,
	})
}

func (n *AMQPNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.ch != nil {
		_ = n.ch.Close()
	}
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}

// LogNotifier writes notifications to the log instead of sending them.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Send(ctx context.Context, to, template string, _ any) error {
	if n.Logger != nil {
		n.Logger.InfoContext(ctx, "notification", "to", to, "template", template)
	}
	return nil
}

var (
	_ policies.Notifier = (*AMQPNotifier)(nil)
	_ policies.Notifier = LogNotifier{}
)
