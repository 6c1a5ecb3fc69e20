package market

import (
	"context"
	"math/rand"
	"testing"
	"time"
)

type captureBroadcaster struct {
	ch chan map[string]float64
}

func (c *captureBroadcaster) Broadcast(prices map[string]float64) {
	select {
	case c.ch <- prices:
	default:
	}
}

func TestTicker_BroadcastsPrices(t *testing.T) {
	sim := NewSimulator(InitialPrices, nil, rand.New(rand.NewSource(3)))
	out := &captureBroadcaster{ch: make(chan map[string]float64, 1)}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	NewTicker(5*time.Millisecond, sim, out).Start(ctx)

	select {
	case prices := <-out.ch:
		if _, ok := prices["BTC"]; !ok {
			t.Error("broadcast snapshot is missing BTC")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no broadcast within 2s")
	}
}
