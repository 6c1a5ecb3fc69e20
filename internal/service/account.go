package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Florianperidy/crashledger/internal/domain"
	"github.com/Florianperidy/crashledger/internal/store"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// AccountService handles registration, credential checks, and session
// tokens. Registration also provisions the starter portfolio and its
// opening deposit record.
type AccountService struct {
	users        store.UserStore
	portfolios   store.PortfolioStore
	transactions store.TransactionStore
	secret       []byte
	tokenTTL     time.Duration
	now          func() time.Time
}

// NewAccountService creates a new AccountService. A nil clock defaults
// to time.Now.
func NewAccountService(
	users store.UserStore,
	portfolios store.PortfolioStore,
	transactions store.TransactionStore,
	secret []byte,
	tokenTTL time.Duration,
	now func() time.Time,
) *AccountService {
	if now == nil {
		now = time.Now
	}
	return &AccountService{
		users:        users,
		portfolios:   portfolios,
		transactions: transactions,
		secret:       secret,
		tokenTTL:     tokenTTL,
		now:          now,
	}
}

// Register creates a user plus their starter portfolio: the opening EUR
// balance, zero balances of every traded asset, and one deposit
// transaction dated at creation time.
func (s *AccountService) Register(email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, &domain.ValidationError{Message: "Email and password are required."}
	}
	if len(password) < 8 {
		return nil, &domain.ValidationError{Message: "Password must be at least 8 characters."}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}

	if err := s.portfolios.Create(domain.NewStarterPortfolio(user.ID, email, now)); err != nil {
		return nil, err
	}
	if err := s.transactions.Append(&domain.Transaction{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		Type:        domain.TransactionTypeDeposit,
		Asset:       domain.SymbolFiat,
		Amount:      domain.StarterFiatBalance,
		Date:        now,
		Status:      domain.StatusCompleted,
		Description: "Welcome deposit",
	}); err != nil {
		return nil, err
	}

	return user, nil
}

// Login checks the credentials and returns a signed session token.
// Wrong email and wrong password are indistinguishable to the caller.
func (s *AccountService) Login(email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", domain.ErrInvalidCredentials
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   user.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Authenticate parses and verifies a session token and returns the user
// ID it was issued for.
func (s *AccountService) Authenticate(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", domain.ErrInvalidCredentials
	}
	return claims.Subject, nil
}
