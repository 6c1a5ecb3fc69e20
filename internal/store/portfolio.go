package store

import (
	"sync"
	"time"

	"github.com/Florianperidy/crashledger/internal/domain"
)

// MemoryPortfolioStore is a thread-safe in-memory store for portfolios,
// keyed by user ID. Reads hand out deep copies so callers mutate a
// snapshot, never the stored document.
type MemoryPortfolioStore struct {
	mu         sync.RWMutex
	portfolios map[string]*domain.Portfolio
}

// NewMemoryPortfolioStore creates an empty MemoryPortfolioStore.
func NewMemoryPortfolioStore() *MemoryPortfolioStore {
	return &MemoryPortfolioStore{
		portfolios: make(map[string]*domain.Portfolio),
	}
}

// Create stores the portfolio for a new user.
func (s *MemoryPortfolioStore) Create(p *domain.Portfolio) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.portfolios[p.UserID] = p.Clone()
	return nil
}

// GetByUser returns a deep copy of the user's portfolio. It returns
// domain.ErrPortfolioNotFound if the user has no portfolio.
func (s *MemoryPortfolioStore) GetByUser(userID string) (*domain.Portfolio, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.portfolios[userID]
	if !ok {
		return nil, domain.ErrPortfolioNotFound
	}
	return p.Clone(), nil
}

// UpdateAssets replaces the asset list of the user's portfolio.
// Last write wins; there is no version check.
func (s *MemoryPortfolioStore) UpdateAssets(userID string, assets []domain.Asset, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.portfolios[userID]
	if !ok {
		return domain.ErrPortfolioNotFound
	}
	p.Assets = make([]domain.Asset, len(assets))
	copy(p.Assets, assets)
	p.UpdatedAt = updatedAt
	return nil
}

// Credit adds amount to the line item matching tmpl.Symbol, appending
// tmpl when the portfolio does not hold the asset yet. Unlike the
// read-modify-write order path this mutates the stored document under
// the store lock, so concurrent credits never lose updates.
func (s *MemoryPortfolioStore) Credit(userID string, tmpl domain.Asset, amount float64, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.portfolios[userID]
	if !ok {
		return domain.ErrPortfolioNotFound
	}
	if a := p.Asset(tmpl.Symbol); a != nil {
		a.Amount += amount
	} else {
		tmpl.Amount = amount
		p.Assets = append(p.Assets, tmpl)
	}
	p.UpdatedAt = updatedAt
	return nil
}
