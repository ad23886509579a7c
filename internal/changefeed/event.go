// Package changefeed carries row-level change notifications (INSERT, UPDATE,
// DELETE) from writers to live subscribers such as dashboard ledgers.
package changefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type Op string

const (
	OpInsert Op = "INSERT"
	OpUpdate Op = "UPDATE"
	OpDelete Op = "DELETE"
)

// Collections with change notifications
const (
	CollectionResponses = "responses"
)

var ErrClosed = errors.New("changefeed: closed")

// Event describes one committed change. Scope narrows the collection to a
// parent record (the invitation id for responses). Record is empty for DELETE.
type Event struct {
	Op         Op              `json:"op"`
	Collection string          `json:"collection"`
	Scope      string          `json:"scope"`
	ID         string          `json:"id"`
	Record     json.RawMessage `json:"record,omitempty"`
	At         time.Time       `json:"at"`
}

// NewEvent encodes record into an Event
func NewEvent(op Op, collection, scope, id string, record any) (Event, error) {
	ev := Event{
		Op:         op,
		Collection: collection,
		Scope:      scope,
		ID:         id,
		At:         time.Now().UTC(),
	}
	if record != nil && op != OpDelete {
		raw, err := json.Marshal(record)
		if err != nil {
			return Event{}, fmt.Errorf("encode %s record %s: %w", collection, id, err)
		}
		ev.Record = raw
	}
	return ev, nil
}

// Decode unmarshals the record payload into v
func (e Event) Decode(v any) error {
	if len(e.Record) == 0 {
		return fmt.Errorf("%s event for %s carries no record", e.Op, e.ID)
	}
	return json.Unmarshal(e.Record, v)
}

// Topic is the channel name for one scoped collection
func Topic(collection, scope string) string {
	return "changes:" + collection + ":" + scope
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type Subscriber interface {
	// Subscribe returns once the subscription is active.
	Subscribe(ctx context.Context, collection, scope string) (Subscription, error)
}

type Subscription interface {
	Events() <-chan Event
	// Close stops delivery and closes the Events channel; calling it more
	// than once is safe.
	Close() error
}
