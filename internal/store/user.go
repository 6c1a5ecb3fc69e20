package store

import (
	"sync"

	"github.com/Florianperidy/crashledger/internal/domain"
)

// MemoryUserStore is a thread-safe in-memory store for users, with a
// primary index by ID and a unique secondary index by email.
type MemoryUserStore struct {
	mu      sync.RWMutex
	users   map[string]*domain.User
	byEmail map[string]*domain.User
}

// NewMemoryUserStore creates an empty MemoryUserStore.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		users:   make(map[string]*domain.User),
		byEmail: make(map[string]*domain.User),
	}
}

// Create adds a user. It returns domain.ErrEmailTaken if a user with
// the same email already exists.
func (s *MemoryUserStore) Create(u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[u.Email]; exists {
		return domain.ErrEmailTaken
	}
	s.users[u.ID] = u
	s.byEmail[u.Email] = u
	return nil
}

// GetByEmail retrieves a user by email. It returns
// domain.ErrUserNotFound if no user is registered under it.
func (s *MemoryUserStore) GetByEmail(email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

// GetByID retrieves a user by ID. It returns domain.ErrUserNotFound if
// the user does not exist.
func (s *MemoryUserStore) GetByID(id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}
