package domain

// Candle is one minute-bucketed OHLC entry in a symbol's price history.
// Time is the bucket start in Unix seconds.
type Candle struct {
	Time  int64   `json:"time"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// Valid reports whether the candle satisfies the OHLC invariants:
// high covers both open and close, low is covered by both, and the
// close never drops below the price floor.
func (c Candle) Valid() bool {
	if c.High < c.Open || c.High < c.Close {
		return false
	}
	if c.Low > c.Open || c.Low > c.Close {
		return false
	}
	return c.Close >= 0.01
}
