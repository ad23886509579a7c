package changefeed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/multierr"
)

// MessageWriter is the subset of *kafka.Writer used for publishing
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaPublisher appends events to a durable topic keyed by scope, so all
// changes under one invitation land on the same partition in commit order.
type KafkaPublisher struct {
	writer MessageWriter
}

func NewKafkaPublisher(w MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode change event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(ev.Scope),
		Value: value,
		Headers: []kafka.Header{
			{Key: "op", Value: []byte(ev.Op)},
			{Key: "collection", Value: []byte(ev.Collection)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka publish: %w", err)
	}
	return nil
}

// DecodeMessage turns a consumed kafka message back into an Event
func DecodeMessage(msg kafka.Message) (Event, error) {
	var ev Event
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		return Event{}, fmt.Errorf("decode change event at offset %d: %w", msg.Offset, err)
	}
	return ev, nil
}

// Fanout publishes to every wrapped publisher and combines their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, ev Event) error {
	var err error
	for _, p := range f {
		if p == nil {
			continue
		}
		err = multierr.Append(err, p.Publish(ctx, ev))
	}
	return err
}
