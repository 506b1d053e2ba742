package bridge

import (
	"log"
	"sync"
	"time"

	"gostablebridge/types"
)

// DeliverFunc pushes one update to a subscriber's transport.
type DeliverFunc func(update types.TransactionUpdate) error

// Hub maintains subscriber sets per transaction and fans out updates.
// Delivery is best-effort and decoupled from the publishing transition: a
// slow or failing subscriber never blocks the others or the publisher.
type Hub struct {
	mu         sync.RWMutex
	subs       map[string]map[string]struct{} // tx id -> subscriber ids
	deliverers map[string]DeliverFunc
}

func NewHub() *Hub {
	return &Hub{
		subs:       make(map[string]map[string]struct{}),
		deliverers: make(map[string]DeliverFunc),
	}
}

// Subscribe adds subscriberID to the transaction's set. Subscribing twice is
// a no-op.
func (h *Hub) Subscribe(txID, subscriberID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[txID]
	if !ok {
		set = make(map[string]struct{})
		h.subs[txID] = set
	}
	set[subscriberID] = struct{}{}
}

// Unsubscribe removes subscriberID; absent entries are a no-op. Empty sets
// are dropped.
func (h *Hub) Unsubscribe(txID, subscriberID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[txID]
	if !ok {
		return
	}
	delete(set, subscriberID)
	if len(set) == 0 {
		delete(h.subs, txID)
	}
}

// SetDeliverer registers the transport push for a subscriber. Subscribers
// without a deliverer still count toward stats.
func (h *Hub) SetDeliverer(subscriberID string, fn DeliverFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if fn == nil {
		delete(h.deliverers, subscriberID)
		return
	}
	h.deliverers[subscriberID] = fn
}

// RemoveSubscriber drops a subscriber from every transaction, e.g. on
// websocket disconnect.
func (h *Hub) RemoveSubscriber(subscriberID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.deliverers, subscriberID)
	for txID, set := range h.subs {
		delete(set, subscriberID)
		if len(set) == 0 {
			delete(h.subs, txID)
		}
	}
}

// Publish fans the update out to the transaction's subscribers, each on its
// own goroutine. Fire-and-forget: delivery failures are logged only.
func (h *Hub) Publish(update types.TransactionUpdate) {
	h.mu.RLock()
	targets := make(map[string]DeliverFunc)
	for subscriberID := range h.subs[update.TransactionID] {
		if fn, ok := h.deliverers[subscriberID]; ok {
			targets[subscriberID] = fn
		}
	}
	h.mu.RUnlock()

	for subscriberID, fn := range targets {
		go func(id string, deliver DeliverFunc) {
			if err := deliver(update); err != nil {
				log.Printf("Error delivering update for %s to subscriber %s: %v", update.TransactionID, id, err)
			}
		}(subscriberID, fn)
	}
}

func (h *Hub) Stats() types.SubscriptionStats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, set := range h.subs {
		total += len(set)
	}

	stats := types.SubscriptionStats{
		TotalTransactions: len(h.subs),
		TotalSubscribers:  total,
		LastUpdated:       time.Now(),
	}
	if stats.TotalTransactions > 0 {
		stats.AverageSubscribersPerTransaction = float64(total) / float64(stats.TotalTransactions)
	}
	return stats
}
