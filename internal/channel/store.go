package channel

import (
	"context"
	"fmt"
	"sync"
)

// Store is the append-only message log backing a channel. Entries are
// immutable once appended and returned in arrival order.
type Store interface {
	// Append records a message. Appending a duplicate ID is an error.
	Append(ctx context.Context, msg Message) error

	// All returns every stored message in arrival order.
	All(ctx context.Context) ([]Message, error)

	// Get returns a message by ID.
	Get(ctx context.Context, id string) (Message, bool, error)

	// Close releases store resources.
	Close() error
}

// MemoryStore keeps messages in process memory. Safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[string]Message
	order []string
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]Message)}
}

// Append implements Store.
func (s *MemoryStore) Append(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[msg.ID]; exists {
		return fmt.Errorf("duplicate message id %s", msg.ID)
	}
	s.byID[msg.ID] = msg
	s.order = append(s.order, msg.ID)
	return nil
}

// All implements Store.
func (s *MemoryStore) All(_ context.Context) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]Message, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.byID[id])
	}
	return result, nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) (Message, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msg, ok := s.byID[id]
	return msg, ok, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }

// Recent returns the newest n of the given messages, preserving order.
// Trimming is a display concern; the store itself never garbage-collects.
func Recent(msgs []Message, n int) []Message {
	if n <= 0 || len(msgs) <= n {
		return msgs
	}
	return msgs[len(msgs)-n:]
}
