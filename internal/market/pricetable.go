package market

import "github.com/Florianperidy/crashledger/internal/domain"

// PriceTable is the fixed symbol→price mapping used for order valuation.
// It is a second, non-drifting source of truth, kept separate from the
// Simulator's live prices on purpose: the desync between what the chart
// shows and what an order settles at is part of the product.
type PriceTable map[string]float64

// DefaultPriceTable returns the valuation table for the traded symbols.
// Note GLITCH values at 1 here while its chart seed is 0.42.
func DefaultPriceTable() PriceTable {
	return PriceTable{
		"BTC":               69420,
		"ETH":               3512,
		"SOL":               145,
		domain.SymbolGlitch: 1,
	}
}

// Price returns the valuation price for symbol and whether the symbol is
// known to the table.
func (t PriceTable) Price(symbol string) (float64, bool) {
	p, ok := t[symbol]
	return p, ok
}
