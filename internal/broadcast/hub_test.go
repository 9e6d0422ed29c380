package broadcast

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocktake-scan-service/internal/logger"
)

func init() {
	logger.InitForTests()
}

func testEvent() *ScanBroadcast {
	return &ScanBroadcast{
		ID:        uuid.New(),
		SessionID: uuid.New(),
		Barcode:   "MAT-001",
		Kind:      "material",
		Status:    "success",
		ScannedAt: time.Now(),
		UserID:    uuid.New(),
		DeviceID:  "dev-1",
	}
}

func receive(t *testing.T, sub *Subscriber) *ScanBroadcast {
	t.Helper()
	select {
	case payload := <-sub.C:
		var event ScanBroadcast
		require.NoError(t, json.Unmarshal(payload, &event))
		return &event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast")
		return nil
	}
}

func TestHubBroadcastReachesAllSubscribers(t *testing.T) {
	hub := NewHub(4)
	defer hub.Close()

	first := hub.Subscribe()
	second := hub.Subscribe()
	third := hub.Subscribe()
	assert.Equal(t, 3, hub.SubscriberCount())

	sent := testEvent()
	hub.Broadcast(sent)

	for _, sub := range []*Subscriber{first, second, third} {
		got := receive(t, sub)
		assert.Equal(t, sent.ID, got.ID)
		assert.Equal(t, "MAT-001", got.Barcode)
	}
}

func TestHubDropsFailedSubscriberAndContinues(t *testing.T) {
	// Buffer of 1: a subscriber that never drains fails on the second
	// send, standing in for a disconnected listener.
	hub := NewHub(1)
	defer hub.Close()

	healthy1 := hub.Subscribe()
	stalled := hub.Subscribe()
	healthy2 := hub.Subscribe()

	hub.Broadcast(testEvent())
	// Drain the healthy listeners; leave the stalled one full.
	receive(t, healthy1)
	receive(t, healthy2)

	sent := testEvent()
	hub.Broadcast(sent)

	got1 := receive(t, healthy1)
	got2 := receive(t, healthy2)
	assert.Equal(t, sent.ID, got1.ID)
	assert.Equal(t, sent.ID, got2.ID)

	assert.Equal(t, 2, hub.SubscriberCount())

	// The stalled subscriber's channel was closed after its buffered
	// event; unsubscribing it again must be a safe no-op.
	hub.Unsubscribe(stalled)
	assert.Equal(t, 2, hub.SubscriberCount())
}

func TestHubUnsubscribeAbsentIsNoOp(t *testing.T) {
	hub := NewHub(4)
	defer hub.Close()

	sub := hub.Subscribe()
	hub.Unsubscribe(sub)
	hub.Unsubscribe(sub)
	hub.Unsubscribe(nil)
	assert.Equal(t, 0, hub.SubscriberCount())
}

func TestHubNoReplayForLateSubscribers(t *testing.T) {
	hub := NewHub(4)
	defer hub.Close()

	hub.Broadcast(testEvent())

	late := hub.Subscribe()
	select {
	case payload := <-late.C:
		t.Fatalf("late subscriber received replayed event: %s", payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubMetrics(t *testing.T) {
	hub := NewHub(4)
	defer hub.Close()

	hub.Subscribe()
	hub.Subscribe()
	hub.Broadcast(testEvent())

	m := hub.Metrics()
	assert.Equal(t, int64(1), m.EventsBroadcast)
	assert.Equal(t, int64(2), m.Deliveries)
	assert.Equal(t, 2, m.ActiveSubscribers)
}

type countingBroadcaster struct{ calls int }

func (c *countingBroadcaster) Broadcast(*ScanBroadcast) { c.calls++ }

func TestFanoutDeliversToEveryBroadcaster(t *testing.T) {
	first := &countingBroadcaster{}
	second := &countingBroadcaster{}

	Fanout{first, second}.Broadcast(testEvent())

	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}

func TestHubCloseUnblocksSubscribers(t *testing.T) {
	hub := NewHub(4)
	sub := hub.Subscribe()

	hub.Close()

	_, open := <-sub.C
	assert.False(t, open)
	assert.Equal(t, 0, hub.SubscriberCount())

	// Subscribing after close yields an already-closed channel instead
	// of a subscription that would never receive anything.
	late := hub.Subscribe()
	_, open = <-late.C
	assert.False(t, open)
}
