package geocode

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is returned to a search that was overtaken by a newer query
// from the same user
var ErrSuperseded = errors.New("search superseded by a newer query")

type Finder interface {
	Search(ctx context.Context, query string, limit int) ([]Place, error)
}

type inflight struct {
	cancel context.CancelCauseFunc
}

// Searcher lets each user have at most one address search in flight. A new
// query cancels the previous one, so only the latest answer is delivered.
type Searcher struct {
	finder Finder

	mu      sync.Mutex
	pending map[uint]*inflight
}

func NewSearcher(finder Finder) *Searcher {
	return &Searcher{finder: finder, pending: make(map[uint]*inflight)}
}

func (s *Searcher) Search(ctx context.Context, userID uint, query string, limit int) ([]Place, error) {
	ctx, cancel := context.WithCancelCause(ctx)
	mine := &inflight{cancel: cancel}

	s.mu.Lock()
	if prev, ok := s.pending[userID]; ok {
		prev.cancel(ErrSuperseded)
	}
	s.pending[userID] = mine
	s.mu.Unlock()

	places, err := s.finder.Search(ctx, query, limit)

	s.mu.Lock()
	if s.pending[userID] == mine {
		delete(s.pending, userID)
	}
	s.mu.Unlock()

	superseded := errors.Is(context.Cause(ctx), ErrSuperseded)
	cancel(nil)
	if superseded {
		return nil, ErrSuperseded
	}
	return places, err
}
