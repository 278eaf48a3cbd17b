package mqttconn

import (
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// ErrPublishTimeout is returned when the broker does not acknowledge in time.
var ErrPublishTimeout = errors.New("mqtt publish timeout")

// IPublisher publishes text payloads on arbitrary topics.
type IPublisher interface {
	Publish(topic string, retain bool, payload string) error
	Connected() bool
}

// Publisher publishes with a fixed QoS and bounded wait.
type Publisher struct {
	client  mqtt.Client
	qos     byte
	timeout time.Duration
}

func NewPublisher(client mqtt.Client, qos byte, timeout time.Duration) *Publisher {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Publisher{client: client, qos: qos, timeout: timeout}
}

func (p *Publisher) Publish(topic string, retain bool, payload string) error {
	token := p.client.Publish(topic, p.qos, retain, payload)
	if !token.WaitTimeout(p.timeout) {
		return fmt.Errorf("%s: %w", topic, ErrPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish on %s: %w", topic, err)
	}
	return nil
}

// Connected reports whether the link is currently usable.
func (p *Publisher) Connected() bool {
	return p.client != nil && p.client.IsConnectionOpen()
}
