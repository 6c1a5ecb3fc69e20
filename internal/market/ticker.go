package market

import (
	"context"
	"time"
)

// Broadcaster receives each fresh price snapshot produced by the Ticker.
// It is an interface so the market layer does not depend on the handler
// layer's streaming hub directly.
type Broadcaster interface {
	Broadcast(prices map[string]float64)
}

// Ticker advances the simulator on a fixed cadence and pushes the
// resulting price snapshot to a Broadcaster. HTTP reads advance the
// simulator on their own; the ticker exists so streaming subscribers see
// fresh prices even when nobody is polling.
type Ticker struct {
	interval time.Duration
	sim      *Simulator
	out      Broadcaster
}

// NewTicker creates a Ticker. out may be nil, in which case ticks only
// advance the simulator.
func NewTicker(interval time.Duration, sim *Simulator, out Broadcaster) *Ticker {
	return &Ticker{
		interval: interval,
		sim:      sim,
		out:      out,
	}
}

// Start launches a background goroutine that ticks at the configured
// interval. It stops when ctx is cancelled.
func (t *Ticker) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				prices := t.sim.LivePrices()
				if t.out != nil {
					t.out.Broadcast(prices)
				}
			}
		}
	}()
}
