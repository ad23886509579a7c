package changefeed

import (
	"context"
	"sync"
)

const defaultBuffer = 256

// Broker is an in-process Publisher and Subscriber. It backs single-node
// deployments without Redis and the package tests.
type Broker struct {
	mu     sync.RWMutex
	subs   map[string]map[*memorySub]struct{}
	buffer int
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[string]map[*memorySub]struct{}), buffer: defaultBuffer}
}

func (b *Broker) Subscribe(ctx context.Context, collection, scope string) (Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	topic := Topic(collection, scope)
	s := &memorySub{
		broker: b,
		topic:  topic,
		ch:     make(chan Event, b.buffer),
		done:   make(chan struct{}),
	}

	b.mu.Lock()
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[*memorySub]struct{})
	}
	b.subs[topic][s] = struct{}{}
	b.mu.Unlock()

	return s, nil
}

// Publish delivers ev to every live subscriber of its topic. A full
// subscriber buffer blocks the publisher until the reader catches up,
// the subscriber closes, or ctx ends.
func (b *Broker) Publish(ctx context.Context, ev Event) error {
	b.mu.RLock()
	targets := make([]*memorySub, 0, len(b.subs[Topic(ev.Collection, ev.Scope)]))
	for s := range b.subs[Topic(ev.Collection, ev.Scope)] {
		targets = append(targets, s)
	}
	b.mu.RUnlock()

	for _, s := range targets {
		if err := s.deliver(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

// Subscribers returns the number of live subscriptions on a topic
func (b *Broker) Subscribers(collection, scope string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[Topic(collection, scope)])
}

func (b *Broker) remove(s *memorySub) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs[s.topic], s)
	if len(b.subs[s.topic]) == 0 {
		delete(b.subs, s.topic)
	}
}

type memorySub struct {
	broker *Broker
	topic  string
	ch     chan Event
	done   chan struct{}
	once   sync.Once

	mu     sync.RWMutex
	closed bool
}

func (s *memorySub) Events() <-chan Event { return s.ch }

func (s *memorySub) deliver(ctx context.Context, ev Event) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil
	}
	select {
	case s.ch <- ev:
	case <-s.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// Close detaches the subscription and closes the event channel.
func (s *memorySub) Close() error {
	s.once.Do(func() {
		close(s.done)
		s.mu.Lock()
		s.closed = true
		close(s.ch)
		s.mu.Unlock()
		s.broker.remove(s)
	})
	return nil
}
