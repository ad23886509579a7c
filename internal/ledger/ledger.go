// Package ledger keeps an in-memory, live view of the responses to one
// invitation and derives the dashboard aggregates from it.
package ledger

import (
	"context"
	"errors"
	"sync"

	"github.com/sharath018/invitation-rsvp-backend/internal/changefeed"
	"github.com/sharath018/invitation-rsvp-backend/internal/rsvp"
	"go.uber.org/zap"
)

var ErrAlreadySubscribed = errors.New("ledger: already subscribed")

// Source loads the full response set of an invitation in arrival order
type Source interface {
	ListResponses(ctx context.Context, invitationID string) ([]rsvp.Response, error)
}

type Aggregates struct {
	TotalResponses int `json:"total_responses"`
	TotalAccepted  int `json:"total_accepted"`
	TotalAttendees int `json:"total_attendees"`
}

// Summarize computes the aggregates of a response set
func Summarize(responses []rsvp.Response) Aggregates {
	agg := Aggregates{TotalResponses: len(responses)}
	for _, r := range responses {
		if r.Accept {
			agg.TotalAccepted++
		}
		agg.TotalAttendees += r.NumAttendees
	}
	return agg
}

type Ledger struct {
	invitationID string
	source       Source
	feed         changefeed.Subscriber
	log          *zap.Logger

	mu        sync.RWMutex
	responses []rsvp.Response
	loading   bool
	pending   []changefeed.Event

	subMu sync.Mutex
	sub   changefeed.Subscription
	done  chan struct{}
	wg    sync.WaitGroup
}

type Option func(*Ledger)

func WithLogger(l *zap.Logger) Option { return func(lg *Ledger) { lg.log = l } }

func New(invitationID string, source Source, feed changefeed.Subscriber, opts ...Option) *Ledger {
	l := &Ledger{
		invitationID: invitationID,
		source:       source,
		feed:         feed,
		log:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load replaces the local set with the source's. Events applied while the
// fetch is running are replayed on top of the fetched set.
func (l *Ledger) Load(ctx context.Context) ([]rsvp.Response, error) {
	l.mu.Lock()
	l.loading = true
	l.pending = nil
	l.mu.Unlock()

	fetched, err := l.source.ListResponses(ctx, l.invitationID)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.loading = false
	pending := l.pending
	l.pending = nil
	if err != nil {
		return nil, err
	}

	l.responses = append([]rsvp.Response(nil), fetched...)
	for _, ev := range pending {
		l.applyLocked(ev)
	}
	return l.snapshotLocked(), nil
}

// Subscribe starts applying live changes. onChange, when set, runs after every
// event that changed the set; it must not call Unsubscribe. A subscription
// that ended with its context or its feed can be replaced by subscribing again.
func (l *Ledger) Subscribe(ctx context.Context, onChange func(changefeed.Event, Aggregates)) error {
	l.subMu.Lock()
	defer l.subMu.Unlock()
	if l.sub != nil {
		select {
		case <-l.done:
			l.wg.Wait()
			l.sub.Close()
			l.sub = nil
		default:
			return ErrAlreadySubscribed
		}
	}

	sub, err := l.feed.Subscribe(ctx, changefeed.CollectionResponses, l.invitationID)
	if err != nil {
		return err
	}
	done := make(chan struct{})
	l.sub = sub
	l.done = done

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				sub.Close()
				return
			case ev, ok := <-sub.Events():
				if !ok {
					return
				}
				if l.Apply(ev) && onChange != nil {
					onChange(ev, l.Aggregates())
				}
			}
		}
	}()
	return nil
}

// Unsubscribe stops delivery. Calling it again, or without a subscription, is a no-op.
func (l *Ledger) Unsubscribe() error {
	l.subMu.Lock()
	defer l.subMu.Unlock()
	if l.sub == nil {
		return nil
	}
	err := l.sub.Close()
	l.wg.Wait()
	l.sub = nil
	return err
}

// Apply folds one change event into the set and reports whether it was used.
// Re-applying an event leaves the set unchanged.
func (l *Ledger) Apply(ev changefeed.Event) bool {
	if ev.Collection != changefeed.CollectionResponses || ev.Scope != l.invitationID {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.loading {
		l.pending = append(l.pending, ev)
	}
	return l.applyLocked(ev)
}

func (l *Ledger) applyLocked(ev changefeed.Event) bool {
	idx := l.indexOf(ev.ID)

	switch ev.Op {
	case changefeed.OpInsert, changefeed.OpUpdate:
		var r rsvp.Response
		if err := ev.Decode(&r); err != nil {
			l.log.Warn("undecodable change event", zap.String("invitation_id", l.invitationID), zap.String("response_id", ev.ID), zap.Error(err))
			return false
		}
		if r.ID == "" {
			r.ID = ev.ID
		}
		if idx >= 0 {
			l.responses[idx] = r
		} else {
			l.responses = append(l.responses, r)
		}
		return true

	case changefeed.OpDelete:
		if idx < 0 {
			return false
		}
		l.responses = append(l.responses[:idx], l.responses[idx+1:]...)
		return true
	}
	return false
}

func (l *Ledger) indexOf(id string) int {
	for i := range l.responses {
		if l.responses[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) Aggregates() Aggregates {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Summarize(l.responses)
}

// Page returns the 1-indexed page of the set in arrival order. Pages past the
// end, or non-positive arguments, give an empty slice.
func (l *Ledger) Page(page, size int) []rsvp.Response {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if page < 1 || size < 1 {
		return []rsvp.Response{}
	}
	start := (page - 1) * size
	if start >= len(l.responses) {
		return []rsvp.Response{}
	}
	end := start + size
	if end > len(l.responses) {
		end = len(l.responses)
	}
	return append([]rsvp.Response(nil), l.responses[start:end]...)
}

// Responses returns a copy of the whole set
func (l *Ledger) Responses() []rsvp.Response {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshotLocked()
}

func (l *Ledger) snapshotLocked() []rsvp.Response {
	return append([]rsvp.Response{}, l.responses...)
}
