package kafka

import (
	"context"
	"errors"
	"log/slog"

	"github.com/IBM/sarama"
)

type MessageHandler interface {
	Handle(ctx context.Context, msg *sarama.ConsumerMessage) error
}

// Consumer drives a consumer group until its context ends. Offsets are marked
// only after the handler succeeded, so failed messages come back after the
// next rebalance or restart.
type Consumer struct {
	group   sarama.ConsumerGroup
	handler MessageHandler
	logger  *slog.Logger
}

func NewConsumer(brokers []string, groupID string, cfg *sarama.Config, handler MessageHandler, logger *slog.Logger) (*Consumer, error) {
	if handler == nil {
		return nil, errors.New("kafka: consumer handler required")
	}
	if cfg == nil {
		cfg = sarama.NewConfig()
		cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
		cfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	}
	cfg.Version = sarama.V2_5_0_0
	g, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, err
	}
	return &Consumer{group: g, handler: handler, logger: logger}, nil
}

// Run rejoins the group after every rebalance and returns ctx.Err() on
// shutdown or nil once the group was closed.
func (c *Consumer) Run(ctx context.Context, topics []string) error {
	claims := claimLoop{handler: c.handler, logger: c.logger}
	for {
		err := c.group.Consume(ctx, topics, claims)
		switch {
		case errors.Is(err, sarama.ErrClosedConsumerGroup):
			return nil
		case err != nil:
			return err
		case ctx.Err() != nil:
			return ctx.Err()
		}
	}
}

func (c *Consumer) Close() error {
	return c.group.Close()
}

type claimLoop struct {
	handler MessageHandler
	logger  *slog.Logger
}

func (claimLoop) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (claimLoop) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (l claimLoop) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	ctx := sess.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := l.handler.Handle(ctx, msg); err != nil {
				if l.logger != nil {
					l.logger.Error("kafka message left unacknowledged",
						"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset, "error", err)
				}
				continue
			}
			sess.MarkMessage(msg, "")
		}
	}
}
