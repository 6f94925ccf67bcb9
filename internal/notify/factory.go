package notify

import (
	"fmt"
	"time"

	"product-catalog/internal/config"
	"product-catalog/pkg/mqtt"
)

// New builds the notifier selected by cfg.Notifier.Driver. The returned
// func releases its connections.
func New(cfg *config.Config) (Notifier, func(), error) {
	switch cfg.Notifier.Driver {
	case "", "log":
		return LogNotifier{}, func() {}, nil
	case "smtp":
		return NewSMTPNotifier(cfg.SMTP), func() {}, nil
	case "mqtt":
		client := mqtt.NewClient(&mqtt.Config{
			Broker:               cfg.MQTT.Broker,
			ClientID:             cfg.MQTT.ClientID,
			Username:             cfg.MQTT.Username,
			Password:             cfg.MQTT.Password,
			CleanSession:         true,
			KeepAlive:            30,
			ConnectTimeout:       cfg.MQTT.ConnectTimeout,
			AutoReconnect:        true,
			MaxReconnectInterval: time.Minute,
		})
		if err := client.Connect(); err != nil {
			return nil, nil, err
		}
		return NewMQTTNotifier(client, cfg.MQTT.Topic, cfg.MQTT.QoS), client.Disconnect, nil
	default:
		return nil, nil, fmt.Errorf("unknown notifier driver %q", cfg.Notifier.Driver)
	}
}
