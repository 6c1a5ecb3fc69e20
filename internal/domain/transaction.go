package domain

import "time"

// TransactionType categorizes ledger-affecting events.
type TransactionType string

const (
	TransactionTypeBuy        TransactionType = "buy"
	TransactionTypeSell       TransactionType = "sell"
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeGameReward TransactionType = "game_reward"
)

// TransactionStatus reflects the outcome recorded for an event. Orders
// that hit an injected fault log a non-Completed status describing the
// simulated outcome, which deliberately diverges from the real ledger.
type TransactionStatus string

const (
	StatusCompleted TransactionStatus = "Completed"
	StatusFailed    TransactionStatus = "Failed"
	StatusPending   TransactionStatus = "Pending"
	StatusCorrupted TransactionStatus = "Corrupted"
	// Game rewards log the lowercase form.
	StatusRewardCompleted TransactionStatus = "completed"
)

// Transaction is an immutable, append-only record of one ledger-affecting
// event. Records are never updated or deleted.
type Transaction struct {
	ID          string            `json:"id"`
	UserID      string            `json:"userId"`
	Type        TransactionType   `json:"type"`
	Asset       string            `json:"asset"`
	Amount      float64           `json:"amount"`
	Date        time.Time         `json:"date"`
	Status      TransactionStatus `json:"status"`
	Description string            `json:"description"`
}
