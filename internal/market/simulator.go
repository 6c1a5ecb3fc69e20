// Package market implements the simulated market: a drifting per-symbol
// candle history served by the Simulator, and the static PriceTable used
// for order valuation. The two price sources are independent and never
// reconciled; order settlement deliberately sees different prices than
// the charts do.
package market

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/Florianperidy/crashledger/internal/domain"
)

// InitialPrices seeds the candle backfill for each traded symbol.
var InitialPrices = map[string]float64{
	"BTC":               69420,
	"ETH":               3512,
	"SOL":               145,
	domain.SymbolGlitch: 0.42,
}

// Simulator owns every symbol's candle series and advances them all on a
// shared clock. Reads advance first, so callers never observe prices
// staler than the tick granularity. All state lives behind one mutex;
// the lock is held only for the advance/snapshot step, never across a
// full request.
type Simulator struct {
	mu         sync.Mutex
	series     map[string]*series
	symbols    []string // stable iteration order
	lastUpdate int64
	rng        *rand.Rand
	now        func() time.Time
}

// NewSimulator backfills a series per symbol ending at the current clock
// reading. A nil clock defaults to time.Now; a nil rng gets a
// time-seeded source.
func NewSimulator(initial map[string]float64, now func() time.Time, rng *rand.Rand) *Simulator {
	if now == nil {
		now = time.Now
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	symbols := make([]string, 0, len(initial))
	for symbol := range initial {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	epoch := now().Unix()
	s := &Simulator{
		series:     make(map[string]*series, len(initial)),
		symbols:    symbols,
		lastUpdate: epoch,
		rng:        rng,
		now:        now,
	}
	for _, symbol := range symbols {
		s.series[symbol] = newSeries(symbol, initial[symbol], epoch, rng)
	}
	return s
}

// advance moves every series forward. Must be called with s.mu held.
// Calls within one second of the previous advance are no-ops, so a
// burst of reads costs one walk step at most.
func (s *Simulator) advance() {
	now := s.now().Unix()
	if now-s.lastUpdate < 1 {
		return
	}
	for _, symbol := range s.symbols {
		s.series[symbol].advance(now, s.rng)
	}
	s.lastUpdate = now
}

// LivePrices advances the market and returns the current close of every
// symbol.
func (s *Simulator) LivePrices() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.advance()
	prices := make(map[string]float64, len(s.symbols))
	for _, symbol := range s.symbols {
		prices[symbol] = s.series[symbol].last().Close
	}
	return prices
}

// History advances the market and returns a copy of the symbol's candle
// history, oldest first. Unknown symbols yield an empty slice.
func (s *Simulator) History(symbol string) []domain.Candle {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.advance()
	sr, ok := s.series[symbol]
	if !ok {
		return []domain.Candle{}
	}
	return sr.snapshot()
}

// Symbols returns the traded symbols in stable order.
func (s *Simulator) Symbols() []string {
	out := make([]string, len(s.symbols))
	copy(out, s.symbols)
	return out
}
