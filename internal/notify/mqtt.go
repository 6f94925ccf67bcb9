package notify

import (
	"context"
	"encoding/json"
	"fmt"
)

// Publisher is satisfied by pkg/mqtt.Client.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// MQTTNotifier hands reset messages to a mail worker through a broker topic.
type MQTTNotifier struct {
	publisher Publisher
	topic     string
	qos       byte
}

func NewMQTTNotifier(publisher Publisher, topic string, qos byte) *MQTTNotifier {
	return &MQTTNotifier{publisher: publisher, topic: topic, qos: qos}
}

func (n *MQTTNotifier) SendPasswordReset(ctx context.Context, msg ResetMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(struct {
		Type string `json:"type"`
		ResetMessage
	}{Type: "password_reset", ResetMessage: msg})
	if err != nil {
		return fmt.Errorf("failed to encode reset message: %w", err)
	}

	if err := n.publisher.Publish(n.topic, n.qos, false, payload); err != nil {
		return fmt.Errorf("failed to publish reset message: %w", err)
	}
	return nil
}
