package directory

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// InMemory implements Store with in-process concurrency safety. Used in
// development mode and tests; the hosted deployment uses the pg store.
type InMemory struct {
	mu    sync.RWMutex
	users map[string]User
}

func NewInMemory() *InMemory {
	return &InMemory{users: make(map[string]User)}
}

func (s *InMemory) List(ctx context.Context) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *InMemory) GetByID(ctx context.Context, id string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (s *InMemory) GetByEmail(ctx context.Context, email string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (s *InMemory) Create(ctx context.Context, u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; ok {
		return fmt.Errorf("%w: id %s already registered", ErrInvalidInput, u.ID)
	}
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return ErrEmailInUse
		}
	}
	s.users[u.ID] = u
	return nil
}

func (s *InMemory) Update(ctx context.Context, id string, upd Update) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	if upd.Email != nil && *upd.Email != u.Email {
		for otherID, other := range s.users {
			if otherID != id && other.Email == *upd.Email {
				return User{}, ErrEmailInUse
			}
		}
		u.Email = *upd.Email
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.FullName != nil {
		u.FullName = *upd.FullName
	}
	s.users[id] = u
	return u, nil
}

func (s *InMemory) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	return nil
}
