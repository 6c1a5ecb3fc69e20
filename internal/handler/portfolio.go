package handler

import (
	"errors"
	"net/http"

	"github.com/Florianperidy/crashledger/internal/domain"
	"github.com/Florianperidy/crashledger/internal/store"
)

// PortfolioHandler serves the authenticated user's portfolio and
// transaction history.
type PortfolioHandler struct {
	portfolios   store.PortfolioStore
	transactions store.TransactionStore
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(portfolios store.PortfolioStore, transactions store.TransactionStore) *PortfolioHandler {
	return &PortfolioHandler{portfolios: portfolios, transactions: transactions}
}

// GetPortfolio handles GET /api/portfolio.
func (h *PortfolioHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	portfolio, err := h.portfolios.GetByUser(userIDFrom(r))
	if err != nil {
		if errors.Is(err, domain.ErrPortfolioNotFound) {
			WriteError(w, http.StatusNotFound, "Portfolio not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Failed to fetch portfolio")
		return
	}
	WriteJSON(w, http.StatusOK, portfolio)
}

// ListTransactions handles GET /api/transactions. Returns the most
// recent records first, capped at the store's default limit.
func (h *PortfolioHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.transactions.ListByUser(userIDFrom(r), store.DefaultTransactionLimit)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to fetch transactions")
		return
	}
	WriteJSON(w, http.StatusOK, txs)
}
