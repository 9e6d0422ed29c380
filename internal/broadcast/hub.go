package broadcast

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"stocktake-scan-service/internal/logger"
)

// Subscriber is one registered listener, typically an open SSE connection.
// Events arrive on C as pre-serialized JSON.
type Subscriber struct {
	C  chan []byte
	id uint64
}

// Hub is the in-process Broadcaster: a registry of subscriber channels
// that newly persisted scan events are pushed to immediately. There is no
// replay; a subscriber only sees events broadcast after it registered.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[uint64]*Subscriber
	nextID      uint64
	bufferSize  int
	closed      bool
	metrics     *MetricsTracker
}

// NewHub creates a hub whose subscribers buffer up to bufferSize events.
func NewHub(bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = 16
	}
	return &Hub{
		subscribers: make(map[uint64]*Subscriber),
		bufferSize:  bufferSize,
		metrics:     NewMetricsTracker(),
	}
}

// Subscribe registers a new listener and returns its subscription.
func (h *Hub) Subscribe() *Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &Subscriber{
		C:  make(chan []byte, h.bufferSize),
		id: h.nextID,
	}
	h.nextID++

	if h.closed {
		close(sub.C)
		return sub
	}

	h.subscribers[sub.id] = sub
	h.metrics.Update(func(m *Metrics) {
		m.ActiveSubscribers = len(h.subscribers)
	})

	return sub
}

// Unsubscribe removes a listener. Removing an absent or already-removed
// subscriber is a no-op.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subscribers[sub.id]; !ok {
		return
	}

	delete(h.subscribers, sub.id)
	close(sub.C)
	h.metrics.Update(func(m *Metrics) {
		m.ActiveSubscribers = len(h.subscribers)
	})
}

// Broadcast serializes the event once and delivers it to every registered
// subscriber. A subscriber whose buffer is full has fallen behind or
// disconnected; it is dropped from the registry and delivery continues to
// the rest.
func (h *Hub) Broadcast(event *ScanBroadcast) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to serialize scan event for broadcast",
			zap.Error(err),
			zap.String("event", "broadcast_marshal_failed"),
		)
		return
	}

	var stalled []*Subscriber

	h.mu.RLock()
	for _, sub := range h.subscribers {
		select {
		case sub.C <- payload:
		default:
			stalled = append(stalled, sub)
		}
	}
	delivered := len(h.subscribers) - len(stalled)
	h.mu.RUnlock()

	h.metrics.Update(func(m *Metrics) {
		m.EventsBroadcast++
		m.Deliveries += int64(delivered)
		m.LastBroadcastAt = time.Now()
	})

	for _, sub := range stalled {
		logger.Warn("Dropping stalled broadcast subscriber",
			zap.Uint64("subscriber_id", sub.id),
			zap.String("event", "subscriber_dropped"),
		)
		h.Unsubscribe(sub)
		h.metrics.Update(func(m *Metrics) {
			m.DroppedSubscribers++
		})
	}
}

// SubscriberCount returns the number of currently registered listeners.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Metrics returns a snapshot of the hub's counters.
func (h *Hub) Metrics() Metrics {
	return h.metrics.Snapshot()
}

// Close drops all subscribers. Called on shutdown so streaming handlers
// unblock and return.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for id, sub := range h.subscribers {
		delete(h.subscribers, id)
		close(sub.C)
	}
	h.metrics.Update(func(m *Metrics) {
		m.ActiveSubscribers = 0
	})
}
