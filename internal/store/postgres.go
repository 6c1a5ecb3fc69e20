package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Florianperidy/crashledger/internal/domain"
	_ "github.com/lib/pq"
)

// Postgres implements UserStore, PortfolioStore, and TransactionStore
// on a PostgreSQL database, mirroring the in-memory document layout:
// one row per user/portfolio/transaction, with the portfolio's asset
// list stored as JSONB.
type Postgres struct {
	db *sql.DB
}

// OpenPostgres connects to the database at dsn, verifies the
// connection, and ensures the schema exists.
func OpenPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	p := &Postgres{db: db}
	if err := p.initSchema(); err != nil {
		return nil, err
	}
	return p, nil
}

// Close releases the underlying connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}

func (p *Postgres) initSchema() error {
	_, err := p.db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id             TEXT PRIMARY KEY,
			email          TEXT NOT NULL UNIQUE,
			password_hash  TEXT NOT NULL,
			name           TEXT,
			image          TEXT,
			email_verified TIMESTAMPTZ,
			created_at     TIMESTAMPTZ NOT NULL,
			updated_at     TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS portfolios (
			user_id    TEXT PRIMARY KEY,
			email      TEXT NOT NULL,
			assets     JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS transactions (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL,
			type        TEXT NOT NULL,
			asset       TEXT NOT NULL,
			amount      DOUBLE PRECISION NOT NULL,
			date        TIMESTAMPTZ NOT NULL,
			status      TEXT NOT NULL,
			description TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_transactions_user_date
			ON transactions (user_id, date DESC);
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Create adds a user. It returns domain.ErrEmailTaken if a user with
// the same email already exists.
func (p *Postgres) Create(u *domain.User) error {
	_, err := p.db.Exec(`
		INSERT INTO users (id, email, password_hash, name, image, email_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (email) DO NOTHING`,
		u.ID, u.Email, u.PasswordHash, u.Name, u.Image, u.EmailVerified, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	// ON CONFLICT DO NOTHING swallows the duplicate; re-check to map it
	// to the domain error.
	existing, err := p.GetByEmail(u.Email)
	if err != nil {
		return err
	}
	if existing.ID != u.ID {
		return domain.ErrEmailTaken
	}
	return nil
}

// GetByEmail retrieves a user by email.
func (p *Postgres) GetByEmail(email string) (*domain.User, error) {
	return p.scanUser(p.db.QueryRow(`
		SELECT id, email, password_hash, name, image, email_verified, created_at, updated_at
		FROM users WHERE email = $1`, email))
}

// GetByID retrieves a user by ID.
func (p *Postgres) GetByID(id string) (*domain.User, error) {
	return p.scanUser(p.db.QueryRow(`
		SELECT id, email, password_hash, name, image, email_verified, created_at, updated_at
		FROM users WHERE id = $1`, id))
}

func (p *Postgres) scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Image, &u.EmailVerified, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

// CreatePortfolio stores the portfolio for a new user.
func (p *Postgres) CreatePortfolio(pf *domain.Portfolio) error {
	assets, err := json.Marshal(pf.Assets)
	if err != nil {
		return fmt.Errorf("failed to marshal assets: %w", err)
	}
	_, err = p.db.Exec(`
		INSERT INTO portfolios (user_id, email, assets, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		pf.UserID, pf.Email, assets, pf.CreatedAt, pf.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert portfolio: %w", err)
	}
	return nil
}

// GetByUser returns the user's portfolio.
func (p *Postgres) GetByUser(userID string) (*domain.Portfolio, error) {
	var pf domain.Portfolio
	var assets []byte
	err := p.db.QueryRow(`
		SELECT user_id, email, assets, created_at, updated_at
		FROM portfolios WHERE user_id = $1`, userID,
	).Scan(&pf.UserID, &pf.Email, &assets, &pf.CreatedAt, &pf.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrPortfolioNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan portfolio: %w", err)
	}
	if err := json.Unmarshal(assets, &pf.Assets); err != nil {
		return nil, fmt.Errorf("failed to unmarshal assets: %w", err)
	}
	return &pf, nil
}

// UpdateAssets replaces the asset list of the user's portfolio.
// Last write wins; there is no version check.
func (p *Postgres) UpdateAssets(userID string, assets []domain.Asset, updatedAt time.Time) error {
	blob, err := json.Marshal(assets)
	if err != nil {
		return fmt.Errorf("failed to marshal assets: %w", err)
	}
	res, err := p.db.Exec(`
		UPDATE portfolios SET assets = $2, updated_at = $3 WHERE user_id = $1`,
		userID, blob, updatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update portfolio: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrPortfolioNotFound
	}
	return nil
}

// Credit adds amount to the line item matching tmpl.Symbol, appending
// tmpl when the portfolio does not hold the asset yet. Runs inside a
// database transaction so concurrent credits never lose updates.
func (p *Postgres) Credit(userID string, tmpl domain.Asset, amount float64, updatedAt time.Time) error {
	tx, err := p.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var blob []byte
	err = tx.QueryRow(`
		SELECT assets FROM portfolios WHERE user_id = $1 FOR UPDATE`, userID,
	).Scan(&blob)
	if err == sql.ErrNoRows {
		return domain.ErrPortfolioNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock portfolio: %w", err)
	}

	var assets []domain.Asset
	if err := json.Unmarshal(blob, &assets); err != nil {
		return fmt.Errorf("failed to unmarshal assets: %w", err)
	}

	credited := false
	for i := range assets {
		if assets[i].Symbol == tmpl.Symbol {
			assets[i].Amount += amount
			credited = true
			break
		}
	}
	if !credited {
		tmpl.Amount = amount
		assets = append(assets, tmpl)
	}

	blob, err = json.Marshal(assets)
	if err != nil {
		return fmt.Errorf("failed to marshal assets: %w", err)
	}
	if _, err := tx.Exec(`
		UPDATE portfolios SET assets = $2, updated_at = $3 WHERE user_id = $1`,
		userID, blob, updatedAt,
	); err != nil {
		return fmt.Errorf("failed to update portfolio: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit credit: %w", err)
	}
	return nil
}

// Append records one transaction.
func (p *Postgres) Append(t *domain.Transaction) error {
	_, err := p.db.Exec(`
		INSERT INTO transactions (id, user_id, type, asset, amount, date, status, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.UserID, t.Type, t.Asset, t.Amount, t.Date, t.Status, t.Description,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// ListByUser returns up to limit transactions for the user, most recent
// first. A non-positive limit means DefaultTransactionLimit.
func (p *Postgres) ListByUser(userID string, limit int) ([]*domain.Transaction, error) {
	if limit <= 0 {
		limit = DefaultTransactionLimit
	}
	rows, err := p.db.Query(`
		SELECT id, user_id, type, asset, amount, date, status, description
		FROM transactions WHERE user_id = $1
		ORDER BY date DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	out := []*domain.Transaction{}
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Type, &t.Asset, &t.Amount, &t.Date, &t.Status, &t.Description); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		out = append(out, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return out, nil
}

// PostgresPortfolioStore adapts Postgres to the PortfolioStore
// interface (Create collides with UserStore's method name otherwise).
type PostgresPortfolioStore struct {
	*Postgres
}

// Create stores the portfolio for a new user.
func (p PostgresPortfolioStore) Create(pf *domain.Portfolio) error {
	return p.CreatePortfolio(pf)
}
