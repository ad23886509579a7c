package notification

import (
	"context"
	"errors"

	"github.com/segmentio/kafka-go"
	"github.com/sharath018/invitation-rsvp-backend/internal/changefeed"
	"go.uber.org/zap"
)

// MessageReader is the subset of *kafka.Reader the consumer uses
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer feeds change events from Kafka into the notification service
type Consumer struct {
	reader  MessageReader
	service Service
	log     *zap.Logger
}

func NewConsumer(reader MessageReader, service Service, log *zap.Logger) *Consumer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Consumer{reader: reader, service: service, log: log}
}

// Run consumes until ctx ends. A message whose handling fails is logged and
// committed so one bad event cannot stall the partition.
func (c *Consumer) Run(ctx context.Context) error {
	c.log.Info("notification consumer started")
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		ev, err := changefeed.DecodeMessage(msg)
		if err != nil {
			c.log.Warn("skipping undecodable message", zap.Int64("offset", msg.Offset), zap.Error(err))
		} else if err := c.service.HandleChange(ctx, ev); err != nil {
			c.log.Error("notification failed",
				zap.String("op", string(ev.Op)),
				zap.String("invitation_id", ev.Scope),
				zap.String("response_id", ev.ID),
				zap.Error(err))
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.log.Warn("commit failed", zap.Int64("offset", msg.Offset), zap.Error(err))
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
