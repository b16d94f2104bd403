package session

import (
	"context"
	"errors"
	"sync"
)

// ErrNoSession indicates no token has been recorded for the key yet.
var ErrNoSession = errors.New("no session token")

// Store records the latest session token per scope.
type Store interface {
	// Get returns the latest token for key, or ErrNoSession.
	Get(ctx context.Context, key Key) (string, error)

	// Set records token as the latest for key.
	Set(ctx context.Context, key Key, token string) error
}

// MemoryStore keeps session tokens in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tokens: make(map[string]string),
	}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key Key) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, ok := s.tokens[key.String()]
	if !ok {
		sessionLookups.WithLabelValues("miss").Inc()
		return "", ErrNoSession
	}

	sessionLookups.WithLabelValues("hit").Inc()
	return token, nil
}

// Set implements Store. Empty tokens are ignored.
func (s *MemoryStore) Set(_ context.Context, key Key, token string) error {
	if token == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[key.String()] = token

	return nil
}
