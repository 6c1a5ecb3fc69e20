package market

import (
	"math/rand"

	"github.com/Florianperidy/crashledger/internal/domain"
)

const (
	// bucketSeconds is the candle width.
	bucketSeconds = 60
	// backfillCandles is how much history is generated at startup.
	backfillCandles = 2000
	// maxCandles caps a series; oldest candles are dropped beyond it.
	maxCandles = 3000
	// priceFloor is the lowest close any candle may reach.
	priceFloor = 0.01

	backfillVolatility       = 0.02
	backfillGlitchVolatility = 0.15
	driftVolatility          = 0.002
	driftGlitchVolatility    = 0.05
	// glitchSpikeChance is the per-tick probability that the GLITCH
	// drift gets multiplied by glitchSpikeFactor.
	glitchSpikeChance = 0.01
	glitchSpikeFactor = 20
)

// series holds the minute-bucketed candle history for one symbol.
// All methods must be called with the owning Simulator's lock held.
type series struct {
	symbol  string
	glitch  bool
	candles []domain.Candle
}

// newSeries backfills history with a random walk ending at now. Candles
// are bucketed one minute apart, the oldest first.
func newSeries(symbol string, startPrice float64, now int64, rng *rand.Rand) *series {
	s := &series{
		symbol:  symbol,
		glitch:  symbol == domain.SymbolGlitch,
		candles: make([]domain.Candle, 0, backfillCandles),
	}

	vol := backfillVolatility
	if s.glitch {
		vol = backfillGlitchVolatility
	}

	price := startPrice
	for i := backfillCandles; i > 0; i-- {
		change := (rng.Float64() - 0.5) * vol
		open := price
		close := open * (1 + change)
		if close < priceFloor {
			close = priceFloor
		}
		high := max(open, close) * (1 + rng.Float64()*0.01)
		low := min(open, close) * (1 - rng.Float64()*0.01)
		s.candles = append(s.candles, domain.Candle{
			Time:  now - int64(i)*bucketSeconds,
			Open:  open,
			High:  high,
			Low:   low,
			Close: close,
		})
		price = close
	}
	return s
}

// advance rolls the series forward to now: when the current bucket is
// exhausted a new flat-open candle is appended (and the cap enforced),
// then the current candle's close drifts by one random-walk step.
func (s *series) advance(now int64, rng *rand.Rand) {
	last := &s.candles[len(s.candles)-1]

	if now-last.Time >= bucketSeconds {
		next := domain.Candle{
			Time:  last.Time + bucketSeconds,
			Open:  last.Close,
			High:  last.Close,
			Low:   last.Close,
			Close: last.Close,
		}
		s.candles = append(s.candles, next)
		if len(s.candles) > maxCandles {
			s.candles = s.candles[1:]
		}
		last = &s.candles[len(s.candles)-1]
	}

	vol := driftVolatility
	if s.glitch {
		vol = driftGlitchVolatility
	}
	change := (rng.Float64() - 0.5) * vol
	if s.glitch && rng.Float64() < glitchSpikeChance {
		change *= glitchSpikeFactor
	}

	price := last.Close * (1 + change)
	if price < priceFloor {
		price = priceFloor
	}
	last.Close = price
	last.High = max(last.High, price)
	last.Low = min(last.Low, price)
}

// last returns the current (still drifting) candle.
func (s *series) last() domain.Candle {
	return s.candles[len(s.candles)-1]
}

// snapshot returns a copy of the full candle history, oldest first.
func (s *series) snapshot() []domain.Candle {
	out := make([]domain.Candle, len(s.candles))
	copy(out, s.candles)
	return out
}
