package service

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/Florianperidy/crashledger/internal/domain"
	"github.com/Florianperidy/crashledger/internal/market"
	"github.com/Florianperidy/crashledger/internal/store"
	"github.com/google/uuid"
)

// OrderType distinguishes the two order directions.
type OrderType string

const (
	OrderTypeBuy  OrderType = "buy"
	OrderTypeSell OrderType = "sell"
)

// PlaceOrderRequest represents the input for order placement.
type PlaceOrderRequest struct {
	UserID    string
	Symbol    string
	Amount    float64
	OrderType string
}

// OrderService validates and settles buy/sell orders against the static
// price table, with a fault-injection step between validation and
// settlement.
//
// Settlement is read-modify-write on the portfolio document with no
// concurrency control: two concurrent orders for the same user can lose
// an update. The race is inherited from the system being simulated and
// is preserved on purpose (see DESIGN.md).
type OrderService struct {
	portfolios   store.PortfolioStore
	transactions store.TransactionStore
	prices       market.PriceTable
	faults       FaultRoller
	now          func() time.Time
}

// NewOrderService creates a new OrderService. A nil clock defaults to
// time.Now; a nil roller disables fault injection.
func NewOrderService(
	portfolios store.PortfolioStore,
	transactions store.TransactionStore,
	prices market.PriceTable,
	faults FaultRoller,
	now func() time.Time,
) *OrderService {
	if now == nil {
		now = time.Now
	}
	if faults == nil {
		faults = NoFaults{}
	}
	return &OrderService{
		portfolios:   portfolios,
		transactions: transactions,
		prices:       prices,
		faults:       faults,
		now:          now,
	}
}

// PlaceOrder validates the request, rolls for an injected fault, and,
// when none fires, settles the order against the user's portfolio.
// On success it returns a confirmation message. Every outcome past
// validation logs exactly one transaction.
func (s *OrderService) PlaceOrder(req PlaceOrderRequest) (string, error) {
	symbol := strings.ToUpper(req.Symbol)

	// Validation: no side effects until the whole ladder passes.
	if symbol == "" || req.OrderType == "" || math.IsNaN(req.Amount) {
		return "", &domain.ValidationError{Message: "Missing required fields"}
	}
	if math.IsInf(req.Amount, 0) || req.Amount <= 0 {
		return "", &domain.ValidationError{Message: "Amount must be greater than 0"}
	}
	price, ok := s.prices.Price(symbol)
	if !ok {
		return "", domain.ErrUnknownAsset
	}

	portfolio, err := s.portfolios.GetByUser(req.UserID)
	if err != nil {
		return "", err
	}
	fiat := portfolio.Asset(domain.SymbolFiat)
	if fiat == nil {
		return "", domain.ErrCorruptPortfolio
	}

	if kind := s.faults.Roll(); kind != FaultNone {
		return "", s.injectFault(kind, req.UserID, symbol, req.Amount, req.OrderType)
	}

	target := portfolio.Asset(symbol)
	if target == nil {
		portfolio.Assets = append(portfolio.Assets, domain.Asset{
			Symbol: symbol,
			Name:   symbol,
		})
		target = &portfolio.Assets[len(portfolio.Assets)-1]
		fiat = portfolio.Asset(domain.SymbolFiat) // reacquire after append
	}

	orderValue := req.Amount * price
	switch OrderType(req.OrderType) {
	case OrderTypeBuy:
		if fiat.Amount < orderValue {
			return "", domain.ErrInsufficientFunds
		}
		fiat.Amount -= orderValue
		target.Amount += req.Amount
	case OrderTypeSell:
		if target.Amount < req.Amount {
			return "", domain.ErrInsufficientBalance
		}
		target.Amount -= req.Amount
		fiat.Amount += orderValue
	default:
		return "", domain.ErrInvalidOrderType
	}

	now := s.now()
	if err := s.portfolios.UpdateAssets(req.UserID, portfolio.Assets, now); err != nil {
		return "", err
	}
	if err := s.logOrder(req.UserID, symbol, req.Amount, req.OrderType, now, domain.StatusCompleted); err != nil {
		return "", err
	}

	return fmt.Sprintf("Order of %v %s to %s successful!", req.Amount, symbol, req.OrderType), nil
}

// injectFault logs the transaction for the simulated outcome and builds
// the fault error handed back to the caller. The ledger is never
// touched here: for the partial-failure and multiplier variants the log
// claims a change that did not happen, which is the point.
func (s *OrderService) injectFault(kind FaultKind, userID, symbol string, amount float64, orderType string) error {
	var (
		status domain.TransactionStatus
		fault  *domain.FaultError
	)
	switch kind {
	case FaultConflict:
		status = domain.StatusFailed
		fault = &domain.FaultError{
			Code:    "order_conflict",
			Message: fmt.Sprintf("ERROR: Transaction ID Conflict (0x%06X). Please retry.", rand.Intn(0x1000000)),
		}
	case FaultPartialFailure:
		status = domain.StatusPending
		fault = &domain.FaultError{
			Code:    "partial_failure",
			Message: "WARNING: Funds deducted, but order not placed. Check balance.",
		}
	default:
		status = domain.StatusCorrupted
		fault = &domain.FaultError{
			Code:    "amount_corruption",
			Message: fmt.Sprintf("CRITICAL: Order placed for %v %s! (Amount Multiplier Bug)", amount*10, symbol),
		}
	}

	if err := s.logOrder(userID, symbol, amount, orderType, s.now(), status); err != nil {
		return err
	}
	return fault
}

func (s *OrderService) logOrder(userID, symbol string, amount float64, orderType string, date time.Time, status domain.TransactionStatus) error {
	return s.transactions.Append(&domain.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        domain.TransactionType(orderType),
		Asset:       symbol,
		Amount:      amount,
		Date:        date,
		Status:      status,
		Description: fmt.Sprintf("%s %s", strings.ToUpper(orderType), symbol),
	})
}
