package service

import (
	"errors"
	"testing"
	"time"

	"github.com/Florianperidy/crashledger/internal/domain"
	"github.com/Florianperidy/crashledger/internal/market"
	"github.com/Florianperidy/crashledger/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedRoller always returns the same fault kind.
type fixedRoller struct {
	kind FaultKind
}

func (r fixedRoller) Roll() FaultKind { return r.kind }

// testOrderEnv bundles all dependencies needed for OrderService tests.
type testOrderEnv struct {
	portfolios   *store.MemoryPortfolioStore
	transactions *store.MemoryTransactionStore
	now          time.Time
}

func newTestOrderEnv(t *testing.T) *testOrderEnv {
	t.Helper()
	env := &testOrderEnv{
		portfolios:   store.NewMemoryPortfolioStore(),
		transactions: store.NewMemoryTransactionStore(),
		now:          time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, env.portfolios.Create(domain.NewStarterPortfolio("u1", "a@example.com", env.now)))
	return env
}

func (env *testOrderEnv) service(faults FaultRoller) *OrderService {
	return NewOrderService(env.portfolios, env.transactions, market.DefaultPriceTable(), faults, func() time.Time { return env.now })
}

func (env *testOrderEnv) fiat(t *testing.T) float64 {
	t.Helper()
	p, err := env.portfolios.GetByUser("u1")
	require.NoError(t, err)
	return p.Asset(domain.SymbolFiat).Amount
}

func (env *testOrderEnv) holding(t *testing.T, symbol string) float64 {
	t.Helper()
	p, err := env.portfolios.GetByUser("u1")
	require.NoError(t, err)
	a := p.Asset(symbol)
	if a == nil {
		return 0
	}
	return a.Amount
}

func TestPlaceOrder_BuySettles(t *testing.T) {
	env := newTestOrderEnv(t)
	svc := env.service(NoFaults{})

	msg, err := svc.PlaceOrder(PlaceOrderRequest{UserID: "u1", Symbol: "sol", Amount: 10, OrderType: "buy"})
	require.NoError(t, err)
	assert.Equal(t, "Order of 10 SOL to buy successful!", msg)

	// 10 SOL at 145 each.
	assert.InDelta(t, 10000-1450, env.fiat(t), 1e-9)
	assert.InDelta(t, 10, env.holding(t, "SOL"), 1e-9)
	assert.Equal(t, 1, env.transactions.CountByUser("u1"))

	txs, err := env.transactions.ListByUser("u1", 1)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, domain.StatusCompleted, txs[0].Status)
	assert.Equal(t, "BUY SOL", txs[0].Description)
}

func TestPlaceOrder_SellSettles(t *testing.T) {
	env := newTestOrderEnv(t)
	svc := env.service(NoFaults{})

	_, err := svc.PlaceOrder(PlaceOrderRequest{UserID: "u1", Symbol: "SOL", Amount: 10, OrderType: "buy"})
	require.NoError(t, err)

	msg, err := svc.PlaceOrder(PlaceOrderRequest{UserID: "u1", Symbol: "SOL", Amount: 4, OrderType: "sell"})
	require.NoError(t, err)
	assert.Equal(t, "Order of 4 SOL to sell successful!", msg)

	assert.InDelta(t, 10000-1450+580, env.fiat(t), 1e-9)
	assert.InDelta(t, 6, env.holding(t, "SOL"), 1e-9)
}

func TestPlaceOrder_InsufficientFunds(t *testing.T) {
	env := newTestOrderEnv(t)
	svc := env.service(NoFaults{})

	// One BTC costs 69420, starter fiat is 10000.
	_, err := svc.PlaceOrder(PlaceOrderRequest{UserID: "u1", Symbol: "BTC", Amount: 1, OrderType: "buy"})
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	assert.InDelta(t, 10000, env.fiat(t), 1e-9)
	assert.Zero(t, env.holding(t, "BTC"))
	assert.Equal(t, 0, env.transactions.CountByUser("u1"))
}

func TestPlaceOrder_InsufficientBalance(t *testing.T) {
	env := newTestOrderEnv(t)
	svc := env.service(NoFaults{})

	_, err := svc.PlaceOrder(PlaceOrderRequest{UserID: "u1", Symbol: "BTC", Amount: 1, OrderType: "sell"})
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	assert.InDelta(t, 10000, env.fiat(t), 1e-9)
	assert.Equal(t, 0, env.transactions.CountByUser("u1"))
}

func TestPlaceOrder_ValidationLadder(t *testing.T) {
	env := newTestOrderEnv(t)
	svc := env.service(NoFaults{})

	tests := []struct {
		name string
		req  PlaceOrderRequest
	}{
		{"missing symbol", PlaceOrderRequest{UserID: "u1", OrderType: "buy", Amount: 1}},
		{"missing order type", PlaceOrderRequest{UserID: "u1", Symbol: "BTC", Amount: 1}},
		{"zero amount", PlaceOrderRequest{UserID: "u1", Symbol: "BTC", OrderType: "buy", Amount: 0}},
		{"negative amount", PlaceOrderRequest{UserID: "u1", Symbol: "BTC", OrderType: "buy", Amount: -5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.PlaceOrder(tt.req)
			var validationErr *domain.ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}

	// Validation failures must leave no trace.
	assert.Equal(t, 0, env.transactions.CountByUser("u1"))
	assert.InDelta(t, 10000, env.fiat(t), 1e-9)
}

func TestPlaceOrder_UnknownAsset(t *testing.T) {
	env := newTestOrderEnv(t)
	svc := env.service(NoFaults{})

	_, err := svc.PlaceOrder(PlaceOrderRequest{UserID: "u1", Symbol: "DOGE", Amount: 1, OrderType: "buy"})
	assert.ErrorIs(t, err, domain.ErrUnknownAsset)
	assert.Equal(t, 0, env.transactions.CountByUser("u1"))
}

func TestPlaceOrder_PortfolioNotFound(t *testing.T) {
	env := newTestOrderEnv(t)
	svc := env.service(NoFaults{})

	_, err := svc.PlaceOrder(PlaceOrderRequest{UserID: "ghost", Symbol: "BTC", Amount: 1, OrderType: "buy"})
	assert.ErrorIs(t, err, domain.ErrPortfolioNotFound)
}

func TestPlaceOrder_InvalidOrderType(t *testing.T) {
	env := newTestOrderEnv(t)
	svc := env.service(NoFaults{})

	_, err := svc.PlaceOrder(PlaceOrderRequest{UserID: "u1", Symbol: "SOL", Amount: 1, OrderType: "hodl"})
	assert.ErrorIs(t, err, domain.ErrInvalidOrderType)
	assert.Equal(t, 0, env.transactions.CountByUser("u1"))
}

func TestPlaceOrder_FaultConflict(t *testing.T) {
	env := newTestOrderEnv(t)
	svc := env.service(fixedRoller{kind: FaultConflict})

	_, err := svc.PlaceOrder(PlaceOrderRequest{UserID: "u1", Symbol: "SOL", Amount: 2, OrderType: "buy"})
	var fault *domain.FaultError
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, "order_conflict", fault.Code)
	assert.Regexp(t, `^ERROR: Transaction ID Conflict \(0x[0-9A-F]{6}\)\. Please retry\.$`, fault.Message)

	// A Failed transaction is logged; the ledger is untouched.
	txs, err := env.transactions.ListByUser("u1", 10)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, domain.StatusFailed, txs[0].Status)
	assert.InDelta(t, 2, txs[0].Amount, 1e-9)
	assert.InDelta(t, 10000, env.fiat(t), 1e-9)
	assert.Zero(t, env.holding(t, "SOL"))
}

func TestPlaceOrder_FaultPartialFailure(t *testing.T) {
	env := newTestOrderEnv(t)
	svc := env.service(fixedRoller{kind: FaultPartialFailure})

	_, err := svc.PlaceOrder(PlaceOrderRequest{UserID: "u1", Symbol: "ETH", Amount: 1, OrderType: "buy"})
	var fault *domain.FaultError
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, "partial_failure", fault.Code)
	assert.Equal(t, "WARNING: Funds deducted, but order not placed. Check balance.", fault.Message)

	// The log claims a deduction that never happened.
	txs, _ := env.transactions.ListByUser("u1", 10)
	require.Len(t, txs, 1)
	assert.Equal(t, domain.StatusPending, txs[0].Status)
	assert.InDelta(t, 10000, env.fiat(t), 1e-9)
}

func TestPlaceOrder_FaultAmountMultiplier(t *testing.T) {
	env := newTestOrderEnv(t)
	svc := env.service(fixedRoller{kind: FaultAmountMultiplier})

	_, err := svc.PlaceOrder(PlaceOrderRequest{UserID: "u1", Symbol: "SOL", Amount: 1.5, OrderType: "buy"})
	var fault *domain.FaultError
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, "amount_corruption", fault.Code)
	assert.Equal(t, "CRITICAL: Order placed for 15 SOL! (Amount Multiplier Bug)", fault.Message)

	// The logged amount is the requested one; the ledger is untouched.
	txs, _ := env.transactions.ListByUser("u1", 10)
	require.Len(t, txs, 1)
	assert.Equal(t, domain.StatusCorrupted, txs[0].Status)
	assert.InDelta(t, 1.5, txs[0].Amount, 1e-9)
	assert.InDelta(t, 10000, env.fiat(t), 1e-9)
	assert.Zero(t, env.holding(t, "SOL"))
}

func TestPlaceOrder_EveryOutcomePastValidationLogsOneTransaction(t *testing.T) {
	rollers := map[string]FaultRoller{
		"settled":    NoFaults{},
		"conflict":   fixedRoller{kind: FaultConflict},
		"partial":    fixedRoller{kind: FaultPartialFailure},
		"multiplier": fixedRoller{kind: FaultAmountMultiplier},
	}
	for name, roller := range rollers {
		t.Run(name, func(t *testing.T) {
			env := newTestOrderEnv(t)
			svc := env.service(roller)

			_, err := svc.PlaceOrder(PlaceOrderRequest{UserID: "u1", Symbol: "SOL", Amount: 1, OrderType: "buy"})
			if err != nil {
				var fault *domain.FaultError
				require.True(t, errors.As(err, &fault), "unexpected error: %v", err)
			}
			assert.Equal(t, 1, env.transactions.CountByUser("u1"))
		})
	}
}

func TestRandomFaultRoller_ZeroProbabilityNeverFires(t *testing.T) {
	roller := NewRandomFaultRoller(0, nil)
	for i := 0; i < 1000; i++ {
		assert.Equal(t, FaultNone, roller.Roll())
	}
}

func TestRandomFaultRoller_FullProbabilityAlwaysFires(t *testing.T) {
	roller := NewRandomFaultRoller(1, nil)
	seen := map[FaultKind]bool{}
	for i := 0; i < 1000; i++ {
		kind := roller.Roll()
		require.NotEqual(t, FaultNone, kind)
		seen[kind] = true
	}
	// All three variants show up over enough draws.
	assert.Len(t, seen, 3)
}
