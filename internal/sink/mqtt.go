package sink

import (
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gtudan/co2monitor/internal/config"
	"github.com/gtudan/co2monitor/internal/logging"
	"github.com/gtudan/co2monitor/internal/protocol"
)

// Topic names below the configured prefix
const (
	TopicCO2         = "co2"
	TopicTemperature = "temperature"
)

// disconnectQuiesce is how long Close waits for in-flight messages (ms)
const disconnectQuiesce = 250

var errPublishTimeout = errors.New("publish timed out")

// mqttClient is the part of mqtt.Client the sink uses.
type mqttClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTT publishes readings as plain decimal payloads to
// <prefix>/co2 and <prefix>/temperature.
type MQTT struct {
	client  mqttClient
	prefix  string
	qos     byte
	retain  bool
	timeout time.Duration
}

// DefaultClientID returns "co2monitor-" followed by a random suffix.
func DefaultClientID() string {
	return "co2monitor-" + uuid.NewString()[:8]
}

// NewMQTT connects to the broker. The connection is re-established
// automatically if it drops later on.
func NewMQTT(cfg config.MQTTConfig) (*MQTT, error) {
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = DefaultClientID()
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(clientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetKeepAlive(cfg.KeepAlive).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectTimeout(cfg.PublishTimeout).
		SetOnConnectHandler(func(mqtt.Client) {
			logging.Info("Connected to MQTT broker", zap.String("broker", cfg.Broker), zap.String("client_id", clientID))
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logging.Warn("MQTT connection lost", zap.String("broker", cfg.Broker), zap.Error(err))
		})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(cfg.PublishTimeout) {
		client.Disconnect(0)
		return nil, fmt.Errorf("connect to %s: %w", cfg.Broker, errPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.Broker, err)
	}

	return newMQTT(client, cfg), nil
}

func newMQTT(client mqttClient, cfg config.MQTTConfig) *MQTT {
	timeout := cfg.PublishTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &MQTT{
		client:  client,
		prefix:  cfg.TopicPrefix,
		qos:     cfg.QoS,
		retain:  cfg.Retain,
		timeout: timeout,
	}
}

func (m *MQTT) PublishCO2(ppm uint16) error {
	return m.publish(TopicCO2, FormatCO2(ppm))
}

func (m *MQTT) PublishTemperature(celsius float32) error {
	return m.publish(TopicTemperature, protocol.FormatCelsius(celsius))
}

func (m *MQTT) publish(name, payload string) error {
	topic := Topic(m.prefix, name)
	token := m.client.Publish(topic, m.qos, m.retain, payload)
	if !token.WaitTimeout(m.timeout) {
		return fmt.Errorf("publish %s: %w", topic, errPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Close disconnects from the broker.
func (m *MQTT) Close() error {
	m.client.Disconnect(disconnectQuiesce)
	return nil
}
