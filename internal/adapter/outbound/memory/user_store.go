// Package memory provides in-memory implementations of outbound ports.
// Thread-safe for concurrent access. For development and testing.
package memory

import (
	"context"
	"sync"

	"github.com/storegate/storegate/internal/domain/user"
)

// UserStore implements user.Repository with an in-memory map.
type UserStore struct {
	mu     sync.RWMutex
	users  map[int64]*user.User
	nextID int64
}

// NewUserStore creates a new in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[int64]*user.User), nextID: 1}
}

// Create stores a new active user and returns its assigned ID.
func (s *UserStore) Create(_ context.Context, username, passwordHash string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.users[id] = &user.User{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		Active:       true,
	}
	return id, nil
}

// GetByID returns a copy of the user, or (nil, nil) if absent.
func (s *UserStore) GetByID(_ context.Context, id int64) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	uCopy := *u
	return &uCopy, nil
}

// GetByUsername returns a copy of the user, or (nil, nil) if absent.
func (s *UserStore) GetByUsername(_ context.Context, username string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			uCopy := *u
			return &uCopy, nil
		}
	}
	return nil, nil
}

// List returns copies of all users in ID order.
func (s *UserStore) List(_ context.Context) ([]user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]user.User, 0, len(s.users))
	for id := int64(1); id < s.nextID; id++ {
		if u, ok := s.users[id]; ok {
			result = append(result, *u)
		}
	}
	return result, nil
}

// Update replaces username and password hash of an existing user.
func (s *UserStore) Update(_ context.Context, id int64, username, passwordHash string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	u.Username = username
	u.PasswordHash = passwordHash
	uCopy := *u
	return &uCopy, nil
}

// Delete removes the user.
func (s *UserStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	return nil
}

// Compile-time interface verification.
var _ user.Repository = (*UserStore)(nil)
