package utils

import (
	"context"
	"sync"
	"time"
)

// MemoryTokenStore is the single-process stand-in for TokenStore used when
// Redis is not configured (local development only).
type MemoryTokenStore struct {
	mu     sync.Mutex
	values map[string]memoryToken
	now    func() time.Time
}

type memoryToken struct {
	value     string
	expiresAt time.Time
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{values: make(map[string]memoryToken), now: time.Now}
}

func (s *MemoryTokenStore) SetToken(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = memoryToken{value: value, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryTokenStore) GetToken(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tok, ok := s.values[key]
	if !ok {
		return "", ErrTokenNotFound
	}
	if !s.now().Before(tok.expiresAt) {
		delete(s.values, key)
		return "", ErrTokenNotFound
	}
	return tok.value, nil
}

func (s *MemoryTokenStore) DeleteToken(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
