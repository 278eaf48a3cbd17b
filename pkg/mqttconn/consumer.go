package mqttconn

import (
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

// Handler processes one message; errors are logged by the consumer.
type Handler func(topic string, payload []byte) error

// Subscription binds a topic to its QoS.
type Subscription struct {
	Topic string
	QoS   byte
}

// MultiConsumer subscribes a single handler to several topics. Subscribe is
// meant to be called from the connect hook so a clean session gets its
// subscriptions back after every reconnection.
type MultiConsumer struct {
	mu      sync.Mutex
	subs    []Subscription
	handler Handler
	log     zerolog.Logger
}

func NewMultiConsumer(subs []Subscription, handler Handler, log zerolog.Logger) *MultiConsumer {
	return &MultiConsumer{subs: subs, handler: handler, log: log}
}

func (m *MultiConsumer) SetHandler(h Handler) {
	m.mu.Lock()
	m.handler = h
	m.mu.Unlock()
}

// Subscribe registers every topic on client.
func (m *MultiConsumer) Subscribe(client mqtt.Client) {
	for _, s := range m.subs {
		topic := s.Topic
		token := client.Subscribe(topic, s.QoS, func(_ mqtt.Client, msg mqtt.Message) {
			m.Deliver(msg.Topic(), msg.Payload())
		})
		token.Wait()
		if err := token.Error(); err != nil {
			m.log.Error().Err(err).Str("topic", topic).Msg("subscribe failed")
			continue
		}
		m.log.Info().Str("topic", topic).Uint8("qos", s.QoS).Msg("subscribed")
	}
}

// Unsubscribe drops every topic on client.
func (m *MultiConsumer) Unsubscribe(client mqtt.Client) {
	topics := make([]string, 0, len(m.subs))
	for _, s := range m.subs {
		topics = append(topics, s.Topic)
	}
	if len(topics) > 0 {
		client.Unsubscribe(topics...).Wait()
	}
}

// Deliver hands a message to the handler.
func (m *MultiConsumer) Deliver(topic string, payload []byte) {
	m.mu.Lock()
	h := m.handler
	m.mu.Unlock()
	if h == nil {
		m.log.Error().Str("topic", topic).Str("payload", string(payload)).Msg("no handler for topic")
		return
	}
	if err := h(topic, payload); err != nil {
		m.log.Error().Err(err).Str("topic", topic).Msg("error handling message")
	}
}
