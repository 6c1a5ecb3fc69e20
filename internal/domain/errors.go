package domain

import "errors"

// Sentinel errors for domain-level error handling.
// The handler layer maps these to HTTP status codes.
var (
	ErrEmailTaken          = errors.New("email_taken")
	ErrUserNotFound        = errors.New("user_not_found")
	ErrInvalidCredentials  = errors.New("invalid_credentials")
	ErrPortfolioNotFound   = errors.New("portfolio_not_found")
	ErrCorruptPortfolio    = errors.New("corrupt_portfolio")
	ErrUnknownAsset        = errors.New("unknown_asset")
	ErrInsufficientFunds   = errors.New("insufficient_funds")
	ErrInsufficientBalance = errors.New("insufficient_balance")
	ErrInvalidOrderType    = errors.New("invalid_order_type")
)

// ValidationError represents a request validation failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// FaultError is a simulated failure injected into order processing. It is
// returned to the caller like a real error, but the only side effect is the
// transaction record logged for the attempt; the ledger itself is never
// touched.
type FaultError struct {
	Code    string // order_conflict, partial_failure, amount_corruption
	Message string
}

func (e *FaultError) Error() string {
	return e.Message
}
