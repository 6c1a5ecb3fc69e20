package service

import (
	"fmt"
	"math"
	"time"

	"github.com/Florianperidy/crashledger/internal/domain"
	"github.com/Florianperidy/crashledger/internal/store"
	"github.com/google/uuid"
)

// RewardResult reports a granted mini-game reward.
type RewardResult struct {
	Reward   int
	Currency string
	Message  string
}

// RewardService converts mini-game scores into portfolio credits using
// a fixed per-game formula with a cap.
type RewardService struct {
	portfolios   store.PortfolioStore
	transactions store.TransactionStore
	now          func() time.Time
}

// NewRewardService creates a new RewardService. A nil clock defaults to
// time.Now.
func NewRewardService(portfolios store.PortfolioStore, transactions store.TransactionStore, now func() time.Time) *RewardService {
	if now == nil {
		now = time.Now
	}
	return &RewardService{
		portfolios:   portfolios,
		transactions: transactions,
		now:          now,
	}
}

// rewardFor computes the payout for a finished game. Unknown game types
// fall back to a flat 5 EUR.
func rewardFor(gameType string, score float64) (int, string) {
	switch gameType {
	case "clicker":
		return capped(5+score/10, 15), domain.SymbolFiat
	case "memory":
		return capped(10+score/5, 25), domain.SymbolFiat
	case "catch":
		return capped(1+score/50, 3), domain.SymbolGlitch
	case "reaction":
		return capped(8+score/50, 20), domain.SymbolFiat
	default:
		return 5, domain.SymbolFiat
	}
}

func capped(v float64, cap int) int {
	r := int(math.Floor(v))
	if r > cap {
		return cap
	}
	return r
}

// Grant credits the user's portfolio with the reward for the finished
// game and appends the matching transaction record.
func (s *RewardService) Grant(userID, gameType string, score float64) (*RewardResult, error) {
	reward, currency := rewardFor(gameType, score)

	// The credit creates the asset line item when the portfolio does
	// not hold the currency yet.
	tmpl := domain.Asset{
		Symbol:   currency,
		Name:     "Glitch Token",
		IsGlitch: true,
	}
	if currency == domain.SymbolFiat {
		tmpl = domain.Asset{Symbol: currency, Name: "Euro", IsFiat: true}
	}

	now := s.now()
	if err := s.portfolios.Credit(userID, tmpl, float64(reward), now); err != nil {
		return nil, err
	}

	if err := s.transactions.Append(&domain.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        domain.TransactionTypeGameReward,
		Asset:       currency,
		Amount:      float64(reward),
		Date:        now,
		Status:      domain.StatusRewardCompleted,
		Description: fmt.Sprintf("Game Reward: %s (Score: %v)", gameType, score),
	}); err != nil {
		return nil, err
	}

	return &RewardResult{
		Reward:   reward,
		Currency: currency,
		Message:  fmt.Sprintf("You earned %d %s!", reward, currency),
	}, nil
}
