package chat

import (
	"context"
	"sync"
)

// InMemory implements Store with in-process concurrency safety. Put replaces
// the stored document wholesale, so interleaved read-modify-write cycles keep
// the last writer, the same guarantee the hosted document store gives.
type InMemory struct {
	mu   sync.RWMutex
	docs map[string]Conversation
}

func NewInMemory() *InMemory {
	return &InMemory{docs: make(map[string]Conversation)}
}

func (s *InMemory) Get(ctx context.Context, id string) (Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.docs[id]
	if !ok {
		return Conversation{}, ErrNotFound
	}
	return clone(c), nil
}

func (s *InMemory) Put(ctx context.Context, c Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[c.ID] = clone(c)
	return nil
}

func (s *InMemory) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	return nil
}

func (s *InMemory) ListByUser(ctx context.Context, userID string) ([]Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Conversation
	for _, c := range s.docs {
		if c.UserID == userID {
			out = append(out, clone(c))
		}
	}
	return out, nil
}

func (s *InMemory) ListAll(ctx context.Context) ([]Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Conversation, 0, len(s.docs))
	for _, c := range s.docs {
		out = append(out, clone(c))
	}
	return out, nil
}

func clone(c Conversation) Conversation {
	out := c
	out.Messages = make([]Message, len(c.Messages))
	copy(out.Messages, c.Messages)
	return out
}
