package publish

import (
	"context"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

const (
	defaultConnectTimeout    = 10 * time.Second
	defaultPublishTimeout    = 5 * time.Second
	defaultDisconnectQuiesce = 1000 // milliseconds
	defaultQoS               = 1
)

// MQTTConfig holds broker settings for the MQTT publisher.
type MQTTConfig struct {
	BrokerURL string
	ClientID  string
	Username  string
	Password  string
}

// pahoClient is the subset of pahomqtt.Client the publisher uses.
type pahoClient interface {
	IsConnected() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token
	Disconnect(quiesce uint)
}

// MQTT publishes apiary state as retained messages.
type MQTT struct {
	client pahoClient
	qos    byte
	logger *zap.Logger
}

// ConnectMQTT connects to the broker. The client reconnects on its own after
// the initial connection succeeds.
func ConnectMQTT(cfg MQTTConfig, logger *zap.Logger) (*MQTT, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("mqtt")

	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(cfg.BrokerURL)
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = fmt.Sprintf("hive-thermal-%d", time.Now().UnixNano())
	}
	opts.SetClientID(clientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(time.Minute)
	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetOnConnectHandler(func(pahomqtt.Client) {
		logger.Info("connected to broker", zap.String("broker", cfg.BrokerURL))
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		logger.Warn("broker connection lost", zap.Error(err))
	})

	client := pahomqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("mqtt connect: timeout after %v", defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	return &MQTT{client: client, qos: defaultQoS, logger: logger}, nil
}

// Publish encodes state as JSON and publishes it retained to the apiary's
// state topic.
func (m *MQTT) Publish(ctx context.Context, apiary string, state any) error {
	topic, err := StateTopic(apiary)
	if err != nil {
		return err
	}
	payload, err := encode(state)
	if err != nil {
		return err
	}
	if !m.client.IsConnected() {
		return ErrNotConnected
	}

	token := m.client.Publish(topic, m.qos, true, payload)
	timeout := time.NewTimer(defaultPublishTimeout)
	defer timeout.Stop()
	select {
	case <-token.Done():
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrPublishFailed, ctx.Err())
	case <-timeout.C:
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	m.logger.Debug("published state", zap.String("topic", topic), zap.Int("bytes", len(payload)))
	return nil
}

// Close disconnects from the broker.
func (m *MQTT) Close() error {
	if m == nil || m.client == nil {
		return nil
	}
	m.client.Disconnect(defaultDisconnectQuiesce)
	return nil
}
