package service

import (
	"testing"
	"time"

	"github.com/Florianperidy/crashledger/internal/domain"
	"github.com/Florianperidy/crashledger/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRewardEnv(t *testing.T) (*RewardService, *store.MemoryPortfolioStore, *store.MemoryTransactionStore) {
	t.Helper()
	portfolios := store.NewMemoryPortfolioStore()
	transactions := store.NewMemoryTransactionStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, portfolios.Create(domain.NewStarterPortfolio("u1", "a@example.com", now)))
	svc := NewRewardService(portfolios, transactions, func() time.Time { return now })
	return svc, portfolios, transactions
}

func TestRewardFor_Formulas(t *testing.T) {
	tests := []struct {
		gameType     string
		score        float64
		wantReward   int
		wantCurrency string
	}{
		{"clicker", 0, 5, "EUR"},
		{"clicker", 47, 9, "EUR"},
		{"clicker", 120, 15, "EUR"}, // capped
		{"memory", 0, 10, "EUR"},
		{"memory", 30, 16, "EUR"},
		{"memory", 1000, 25, "EUR"}, // capped
		{"catch", 0, 1, "GLITCH"},
		{"catch", 60, 2, "GLITCH"},
		{"catch", 500, 3, "GLITCH"}, // capped
		{"reaction", 0, 8, "EUR"},
		{"reaction", 100, 10, "EUR"},
		{"reaction", 5000, 20, "EUR"}, // capped
		{"tetris", 9999, 5, "EUR"},    // unknown game
	}

	for _, tt := range tests {
		reward, currency := rewardFor(tt.gameType, tt.score)
		assert.Equal(t, tt.wantReward, reward, "%s score %v", tt.gameType, tt.score)
		assert.Equal(t, tt.wantCurrency, currency, "%s score %v", tt.gameType, tt.score)
	}
}

func TestGrant_CreditsPortfolioAndLogs(t *testing.T) {
	svc, portfolios, transactions := newTestRewardEnv(t)

	result, err := svc.Grant("u1", "clicker", 120)
	require.NoError(t, err)
	assert.Equal(t, 15, result.Reward)
	assert.Equal(t, "EUR", result.Currency)
	assert.Equal(t, "You earned 15 EUR!", result.Message)

	p, err := portfolios.GetByUser("u1")
	require.NoError(t, err)
	assert.InDelta(t, 10015, p.Asset(domain.SymbolFiat).Amount, 1e-9)

	txs, err := transactions.ListByUser("u1", 10)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, domain.TransactionTypeGameReward, txs[0].Type)
	assert.Equal(t, domain.StatusRewardCompleted, txs[0].Status)
	assert.Equal(t, "Game Reward: clicker (Score: 120)", txs[0].Description)
	assert.InDelta(t, 15, txs[0].Amount, 1e-9)
}

func TestGrant_GlitchRewardKeepsFlags(t *testing.T) {
	svc, portfolios, _ := newTestRewardEnv(t)

	result, err := svc.Grant("u1", "catch", 500)
	require.NoError(t, err)
	assert.Equal(t, "GLITCH", result.Currency)

	p, _ := portfolios.GetByUser("u1")
	g := p.Asset(domain.SymbolGlitch)
	require.NotNil(t, g)
	assert.InDelta(t, 3, g.Amount, 1e-9)
	assert.True(t, g.IsGlitch)
}

func TestGrant_UnknownUser(t *testing.T) {
	svc, _, transactions := newTestRewardEnv(t)

	_, err := svc.Grant("ghost", "clicker", 10)
	assert.ErrorIs(t, err, domain.ErrPortfolioNotFound)
	assert.Equal(t, 0, transactions.CountByUser("ghost"))
}
