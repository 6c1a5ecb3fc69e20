package handler

import (
	"net/http"
	"strings"

	"github.com/Florianperidy/crashledger/internal/market"
)

// MarketHandler serves live prices and candle history from the
// simulator.
type MarketHandler struct {
	sim *market.Simulator
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(sim *market.Simulator) *MarketHandler {
	return &MarketHandler{sim: sim}
}

// GetPrices handles GET /api/prices.
func (h *MarketHandler) GetPrices(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.sim.LivePrices())
}

// GetHistory handles GET /api/history?symbol=BTC. The symbol defaults
// to BTC; unknown symbols yield an empty series rather than an error.
func (h *MarketHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(r.URL.Query().Get("symbol"))
	if symbol == "" {
		symbol = "BTC"
	}
	WriteJSON(w, http.StatusOK, h.sim.History(symbol))
}
