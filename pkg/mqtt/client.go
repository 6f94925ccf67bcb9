// Package mqtt wraps a paho client for fire-and-confirm publishing.
package mqtt

import (
	"errors"
	"fmt"
	"time"

	"product-catalog/internal/logger"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

const (
	defaultTimeout = 10 * time.Second
	quiesceMillis  = 250
)

var ErrNotConnected = errors.New("mqtt client is not connected")

type Config struct {
	Broker               string
	ClientID             string
	Username             string
	Password             string
	CleanSession         bool
	KeepAlive            int // seconds
	ConnectTimeout       int // seconds, also bounds each publish
	AutoReconnect        bool
	MaxReconnectInterval time.Duration
}

// Client publishes to a single broker.
type Client struct {
	paho    paho.Client
	broker  string
	timeout time.Duration
}

func NewClient(config *Config) *Client {
	opts := paho.NewClientOptions().
		AddBroker(config.Broker).
		SetClientID(config.ClientID).
		SetUsername(config.Username).
		SetPassword(config.Password).
		SetCleanSession(config.CleanSession).
		SetKeepAlive(time.Duration(config.KeepAlive) * time.Second).
		SetConnectTimeout(time.Duration(config.ConnectTimeout) * time.Second).
		SetAutoReconnect(config.AutoReconnect).
		SetMaxReconnectInterval(config.MaxReconnectInterval)

	opts.SetOnConnectHandler(func(paho.Client) {
		logger.Info("MQTT publisher connected",
			zap.String("broker", config.Broker),
			zap.String("event", "mqtt_connected"),
		)
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		logger.Warn("MQTT publisher lost its connection",
			zap.String("broker", config.Broker),
			zap.String("event", "mqtt_connection_lost"),
			zap.Error(err),
		)
	})

	return newClient(paho.NewClient(opts), config)
}

func newClient(p paho.Client, config *Config) *Client {
	timeout := time.Duration(config.ConnectTimeout) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{paho: p, broker: config.Broker, timeout: timeout}
}

func (c *Client) Connect() error {
	return c.wait(c.paho.Connect(), fmt.Sprintf("connecting to %s", c.broker))
}

// Publish blocks until the broker acknowledges the message or the timeout elapses.
func (c *Client) Publish(topic string, qos byte, retained bool, payload []byte) error {
	if !c.paho.IsConnectionOpen() {
		return ErrNotConnected
	}
	return c.wait(c.paho.Publish(topic, qos, retained, payload), fmt.Sprintf("publishing to %s", topic))
}

func (c *Client) Disconnect() {
	c.paho.Disconnect(quiesceMillis)
	logger.Info("MQTT publisher disconnected", zap.String("broker", c.broker))
}

func (c *Client) IsConnected() bool {
	return c.paho.IsConnected()
}

func (c *Client) wait(token paho.Token, what string) error {
	if !token.WaitTimeout(c.timeout) {
		return fmt.Errorf("timed out %s", what)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed %s: %w", what, err)
	}
	return nil
}
