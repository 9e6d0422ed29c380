package broadcast

import (
	"sync"
	"time"
)

// Metrics tracks fan-out behavior for the dashboard's health view.
type Metrics struct {
	EventsBroadcast    int64     `json:"events_broadcast"`
	Deliveries         int64     `json:"deliveries"`
	DroppedSubscribers int64     `json:"dropped_subscribers"`
	ActiveSubscribers  int       `json:"active_subscribers"`
	LastBroadcastAt    time.Time `json:"last_broadcast_at"`
}

// MetricsTracker provides a goroutine-safe wrapper around Metrics.
type MetricsTracker struct {
	mu      sync.RWMutex
	metrics Metrics
}

// NewMetricsTracker builds a new tracker with zeroed metrics.
func NewMetricsTracker() *MetricsTracker {
	return &MetricsTracker{}
}

// Update applies a mutation in a thread-safe way.
func (t *MetricsTracker) Update(fn func(*Metrics)) {
	if fn == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	fn(&t.metrics)
}

// Snapshot returns a copy of the current metrics.
func (t *MetricsTracker) Snapshot() Metrics {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.metrics
}

// Reset clears accumulated metrics.
func (t *MetricsTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.metrics = Metrics{}
}
