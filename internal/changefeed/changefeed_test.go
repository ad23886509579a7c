package changefeed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

type row struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func mustEvent(t *testing.T, op Op, scope, id string, rec any) Event {
	t.Helper()
	ev, err := NewEvent(op, CollectionResponses, scope, id, rec)
	require.NoError(t, err)
	return ev
}

func receive(t *testing.T, sub Subscription) Event {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		require.True(t, ok, "subscription closed early")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestNewEventDeleteHasNoRecord(t *testing.T) {
	ev := mustEvent(t, OpDelete, "inv-1", "r1", row{ID: "r1"})
	assert.Empty(t, ev.Record)
	assert.Error(t, ev.Decode(&row{}))
}

func TestBrokerScopesDelivery(t *testing.T) {
	b := NewBroker()
	ctx := context.Background()

	subA, err := b.Subscribe(ctx, CollectionResponses, "inv-a")
	require.NoError(t, err)
	subB, err := b.Subscribe(ctx, CollectionResponses, "inv-b")
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, mustEvent(t, OpInsert, "inv-a", "r1", row{ID: "r1", Name: "Ann"})))

	got := receive(t, subA)
	var r row
	require.NoError(t, got.Decode(&r))
	assert.Equal(t, "Ann", r.Name)

	select {
	case <-subB.Events():
		t.Fatal("event leaked into another scope")
	default:
	}
}

func TestBrokerCloseIsIdempotent(t *testing.T) {
	b := NewBroker()
	sub, err := b.Subscribe(context.Background(), CollectionResponses, "inv")
	require.NoError(t, err)
	assert.Equal(t, 1, b.Subscribers(CollectionResponses, "inv"))

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())
	assert.Equal(t, 0, b.Subscribers(CollectionResponses, "inv"))

	_, ok := <-sub.Events()
	assert.False(t, ok)

	// publishing to a topic with no subscribers is fine
	assert.NoError(t, b.Publish(context.Background(), mustEvent(t, OpDelete, "inv", "x", nil)))
}

func TestRedisFeedRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	feed := NewRedisFeed(client, nil)
	ctx := context.Background()

	sub, err := feed.Subscribe(ctx, CollectionResponses, "inv-1")
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, feed.Publish(ctx, mustEvent(t, OpUpdate, "inv-1", "r9", row{ID: "r9", Name: "Bo"})))

	got := receive(t, sub)
	assert.Equal(t, OpUpdate, got.Op)
	assert.Equal(t, "r9", got.ID)
	assert.Equal(t, "inv-1", got.Scope)

	require.NoError(t, sub.Close())
	assert.NoError(t, sub.Close())
}

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func TestKafkaPublisherKeysByScope(t *testing.T) {
	w := &recordingWriter{}
	p := NewKafkaPublisher(w)

	ev := mustEvent(t, OpInsert, "inv-7", "r1", row{ID: "r1"})
	require.NoError(t, p.Publish(context.Background(), ev))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "inv-7", string(w.msgs[0].Key))

	decoded, err := DecodeMessage(w.msgs[0])
	require.NoError(t, err)
	assert.Equal(t, ev.ID, decoded.ID)
	assert.Equal(t, OpInsert, decoded.Op)
}

func TestFanoutCombinesErrors(t *testing.T) {
	b := NewBroker()
	sub, err := b.Subscribe(context.Background(), CollectionResponses, "inv")
	require.NoError(t, err)

	broken := NewKafkaPublisher(&recordingWriter{err: errors.New("broker down")})
	f := Fanout{b, broken, nil}

	err = f.Publish(context.Background(), mustEvent(t, OpInsert, "inv", "r1", row{ID: "r1"}))
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 1)

	// the healthy publisher still delivered
	assert.Equal(t, "r1", receive(t, sub).ID)
}
