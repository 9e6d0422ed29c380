package broadcast

import (
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"stocktake-scan-service/internal/logger"
	pkgmqtt "stocktake-scan-service/pkg/mqtt"
)

// MQTTBroadcaster publishes scan events to an external broker so fan-out
// works across multiple service processes. It implements Broadcaster with
// the same best-effort contract as the in-process hub: publish failures
// are logged, never propagated.
type MQTTBroadcaster struct {
	client *pkgmqtt.Client
	topic  string
	qos    byte
}

// NewMQTTBroadcaster connects to the broker and returns a publisher for
// the given topic.
func NewMQTTBroadcaster(client *pkgmqtt.Client, topic string, qos byte) (*MQTTBroadcaster, error) {
	if client == nil {
		return nil, errors.New("mqtt client is required")
	}
	if topic == "" {
		return nil, errors.New("mqtt scan topic is required")
	}

	if err := client.Connect(); err != nil {
		return nil, err
	}

	return &MQTTBroadcaster{
		client: client,
		topic:  topic,
		qos:    qos,
	}, nil
}

func (b *MQTTBroadcaster) Broadcast(event *ScanBroadcast) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to serialize scan event for broker publish",
			zap.Error(err),
			zap.String("event", "broker_marshal_failed"),
		)
		return
	}

	if err := b.client.Publish(b.topic, b.qos, false, payload); err != nil {
		logger.Error("Failed to publish scan event to broker",
			zap.Error(err),
			zap.String("topic", b.topic),
			zap.String("event", "broker_publish_failed"),
		)
	}
}

// Close disconnects from the broker.
func (b *MQTTBroadcaster) Close() {
	b.client.Disconnect()
}
