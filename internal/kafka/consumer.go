package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, groupID, topic string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume reads messages until ctx is done or the handler fails.
func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, kafka.Message) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		if err := handler(ctx, msg); err != nil {
			return err
		}
	}
}

// ConsumeAudit decodes each message as an AuditEvent before handing it over.
// Messages that fail to decode are passed to onInvalid and skipped.
func (c *Consumer) ConsumeAudit(ctx context.Context, handler func(context.Context, AuditEvent) error, onInvalid func(kafka.Message, error)) error {
	return c.Consume(ctx, func(ctx context.Context, msg kafka.Message) error {
		return HandleAuditMessage(ctx, msg, handler, onInvalid)
	})
}

func HandleAuditMessage(ctx context.Context, msg kafka.Message, handler func(context.Context, AuditEvent) error, onInvalid func(kafka.Message, error)) error {
	ev, err := DecodeAuditEvent(msg.Value)
	if err != nil {
		if onInvalid != nil {
			onInvalid(msg, err)
		}
		return nil
	}
	return handler(ctx, ev)
}
