package changefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisFeed publishes events as JSON on Redis pub/sub channels and
// subscribes to them. Delivery is at-most-once per live subscriber.
type RedisFeed struct {
	client *redis.Client
	log    *zap.Logger
}

func NewRedisFeed(client *redis.Client, log *zap.Logger) *RedisFeed {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisFeed{client: client, log: log}
}

func (f *RedisFeed) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode change event: %w", err)
	}
	if err := f.client.Publish(ctx, Topic(ev.Collection, ev.Scope), payload).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

func (f *RedisFeed) Subscribe(ctx context.Context, collection, scope string) (Subscription, error) {
	topic := Topic(collection, scope)
	ps := f.client.Subscribe(ctx, topic)

	// wait for the subscribe confirmation so no publish after return is missed
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("redis subscribe %s: %w", topic, err)
	}

	s := &redisSub{
		ps:   ps,
		out:  make(chan Event, defaultBuffer),
		done: make(chan struct{}),
		log:  f.log.With(zap.String("topic", topic)),
	}
	s.wg.Add(1)
	go s.pump()
	return s, nil
}

type redisSub struct {
	ps   *redis.PubSub
	out  chan Event
	done chan struct{}
	once sync.Once
	wg   sync.WaitGroup
	log  *zap.Logger
}

func (s *redisSub) pump() {
	defer s.wg.Done()
	defer close(s.out)

	for msg := range s.ps.Channel() {
		var ev Event
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			s.log.Warn("dropping malformed change event", zap.Error(err))
			continue
		}
		select {
		case s.out <- ev:
		case <-s.done:
			return
		}
	}
}

func (s *redisSub) Events() <-chan Event { return s.out }

func (s *redisSub) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.ps.Close()
		s.wg.Wait()
	})
	return err
}
