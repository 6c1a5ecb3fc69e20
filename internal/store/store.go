// Package store provides the persistence layer behind the account,
// order, and reward services. The default backend keeps everything in
// memory; a Postgres backend mirrors the same document layout for
// deployments that need state to survive restarts.
package store

import (
	"time"

	"github.com/Florianperidy/crashledger/internal/domain"
)

// DefaultTransactionLimit bounds transaction listings when the caller
// does not ask for a specific page size.
const DefaultTransactionLimit = 50

// UserStore persists registered accounts.
type UserStore interface {
	// Create adds a user. Returns domain.ErrEmailTaken if the email is
	// already registered.
	Create(u *domain.User) error
	// GetByEmail returns the user registered under email, or
	// domain.ErrUserNotFound.
	GetByEmail(email string) (*domain.User, error)
	// GetByID returns the user with the given ID, or domain.ErrUserNotFound.
	GetByID(id string) (*domain.User, error)
}

// PortfolioStore persists one portfolio document per user.
//
// GetByUser hands out a snapshot and UpdateAssets overwrites the whole
// asset list, so two concurrent read-modify-write cycles on the same
// user race with last-write-wins semantics. That mirrors the document
// store this layout comes from and is left unfixed on purpose; see
// DESIGN.md.
type PortfolioStore interface {
	// Create stores the portfolio for a new user.
	Create(p *domain.Portfolio) error
	// GetByUser returns a deep copy of the user's portfolio, or
	// domain.ErrPortfolioNotFound.
	GetByUser(userID string) (*domain.Portfolio, error)
	// UpdateAssets replaces the asset list of the user's portfolio.
	UpdateAssets(userID string, assets []domain.Asset, updatedAt time.Time) error
	// Credit atomically adds amount to the line item matching
	// tmpl.Symbol, appending tmpl (with Amount set to amount) when the
	// portfolio does not hold the asset yet.
	Credit(userID string, tmpl domain.Asset, amount float64, updatedAt time.Time) error
}

// TransactionStore persists the append-only transaction log.
type TransactionStore interface {
	// Append records one transaction. Records are immutable once appended.
	Append(tx *domain.Transaction) error
	// ListByUser returns up to limit transactions for the user, most
	// recent first. A non-positive limit means DefaultTransactionLimit.
	ListByUser(userID string, limit int) ([]*domain.Transaction, error)
}
