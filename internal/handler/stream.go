package handler

import (
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// PriceHub fans each price snapshot out to every connected websocket
// subscriber. Lagging subscribers (full channel) are dropped rather
// than allowed to stall the broadcast.
type PriceHub struct {
	mu     sync.RWMutex
	subs   map[int64]chan map[string]float64
	seq    atomic.Int64
	logger *slog.Logger
}

// NewPriceHub creates an empty PriceHub.
func NewPriceHub(logger *slog.Logger) *PriceHub {
	return &PriceHub{
		subs:   make(map[int64]chan map[string]float64),
		logger: logger,
	}
}

// Subscribe registers a new subscriber and returns its ID and channel.
func (h *PriceHub) Subscribe() (int64, <-chan map[string]float64) {
	id := h.seq.Add(1)
	ch := make(chan map[string]float64, 8)

	h.mu.Lock()
	h.subs[id] = ch
	h.mu.Unlock()

	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (h *PriceHub) Unsubscribe(id int64) {
	h.mu.Lock()
	ch, ok := h.subs[id]
	if ok {
		delete(h.subs, id)
		close(ch)
	}
	h.mu.Unlock()
}

// Broadcast delivers a price snapshot to every subscriber. Subscribers
// whose channel is full are disconnected.
func (h *PriceHub) Broadcast(prices map[string]float64) {
	var lagging []int64

	h.mu.RLock()
	for id, ch := range h.subs {
		select {
		case ch <- prices:
		default:
			lagging = append(lagging, id)
		}
	}
	h.mu.RUnlock()

	if len(lagging) == 0 {
		return
	}
	h.mu.Lock()
	for _, id := range lagging {
		if ch, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(ch)
			h.logger.Warn("disconnected lagging price subscriber", slog.Int64("id", id))
		}
	}
	h.mu.Unlock()
}

// SubscriberCount returns the number of connected subscribers. Useful
// for testing.
func (h *PriceHub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// StreamHandler upgrades GET /ws/prices to a websocket and pushes each
// broadcasted price snapshot as a JSON object.
type StreamHandler struct {
	hub      *PriceHub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(hub *PriceHub, logger *slog.Logger) *StreamHandler {
	return &StreamHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger,
	}
}

// ServePrices handles GET /ws/prices.
func (h *StreamHandler) ServePrices(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		return
	}
	defer conn.Close()

	// Clear the server's request write deadline; the stream lives until
	// the client hangs up.
	_ = conn.UnderlyingConn().SetDeadline(time.Time{})

	id, ch := h.hub.Subscribe()
	defer h.hub.Unsubscribe(id)

	// Reader goroutine: drains control frames and signals close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case prices, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(prices); err != nil {
				h.logger.Debug("price stream write failed", slog.Int64("id", id), slog.String("error", err.Error()))
				return
			}
		}
	}
}
