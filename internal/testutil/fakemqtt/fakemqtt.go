// Package fakemqtt provides an in-memory paho client for tests.
package fakemqtt

import (
	"errors"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Published is one recorded publish.
type Published struct {
	Topic   string
	QoS     byte
	Retain  bool
	Payload string
}

// Client records publishes and subscriptions. Deliver simulates broker
// messages on subscribed topics.
type Client struct {
	mu         sync.Mutex
	connected  bool
	published  []Published
	subs       map[string]mqtt.MessageHandler
	subQoS     map[string]byte
	PublishErr error
	// Hang makes publish tokens never complete.
	Hang bool
}

var _ mqtt.Client = (*Client)(nil)

func New() *Client {
	return &Client{
		connected: true,
		subs:      make(map[string]mqtt.MessageHandler),
		subQoS:    make(map[string]byte),
	}
}

func (c *Client) SetConnected(v bool) {
	c.mu.Lock()
	c.connected = v
	c.mu.Unlock()
}

func (c *Client) Published() []Published {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Published(nil), c.published...)
}

func (c *Client) Subscriptions() map[string]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]byte, len(c.subQoS))
	for k, v := range c.subQoS {
		out[k] = v
	}
	return out
}

// Deliver calls the handler subscribed to topic, as the broker would.
func (c *Client) Deliver(topic, payload string) bool {
	c.mu.Lock()
	h := c.subs[topic]
	c.mu.Unlock()
	if h == nil {
		return false
	}
	h(c, &message{topic: topic, payload: []byte(payload)})
	return true
}

func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *Client) IsConnectionOpen() bool { return c.IsConnected() }

func (c *Client) Connect() mqtt.Token {
	c.SetConnected(true)
	return doneToken(nil)
}

func (c *Client) Disconnect(uint) { c.SetConnected(false) }

func (c *Client) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Hang {
		return &token{done: make(chan struct{})}
	}
	if !c.connected {
		return doneToken(errors.New("not connected"))
	}
	if c.PublishErr != nil {
		return doneToken(c.PublishErr)
	}
	var s string
	switch p := payload.(type) {
	case string:
		s = p
	case []byte:
		s = string(p)
	}
	c.published = append(c.published, Published{Topic: topic, QoS: qos, Retain: retained, Payload: s})
	return doneToken(nil)
}

func (c *Client) Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token {
	c.mu.Lock()
	c.subs[topic] = callback
	c.subQoS[topic] = qos
	c.mu.Unlock()
	return doneToken(nil)
}

func (c *Client) SubscribeMultiple(filters map[string]byte, callback mqtt.MessageHandler) mqtt.Token {
	for t, q := range filters {
		c.Subscribe(t, q, callback)
	}
	return doneToken(nil)
}

func (c *Client) Unsubscribe(topics ...string) mqtt.Token {
	c.mu.Lock()
	for _, t := range topics {
		delete(c.subs, t)
		delete(c.subQoS, t)
	}
	c.mu.Unlock()
	return doneToken(nil)
}

func (c *Client) AddRoute(topic string, callback mqtt.MessageHandler) {
	c.mu.Lock()
	c.subs[topic] = callback
	c.mu.Unlock()
}

func (c *Client) OptionsReader() mqtt.ClientOptionsReader {
	return mqtt.ClientOptionsReader{}
}

type token struct {
	err  error
	done chan struct{}
}

func doneToken(err error) *token {
	t := &token{err: err, done: make(chan struct{})}
	close(t.done)
	return t
}

func (t *token) Wait() bool { <-t.done; return true }

func (t *token) WaitTimeout(d time.Duration) bool {
	select {
	case <-t.done:
		return true
	case <-time.After(d):
		return false
	}
}

func (t *token) Done() <-chan struct{} { return t.done }
func (t *token) Error() error          { return t.err }

type message struct {
	topic   string
	payload []byte
}

func (m *message) Duplicate() bool   { return false }
func (m *message) Qos() byte         { return 1 }
func (m *message) Retained() bool    { return false }
func (m *message) Topic() string     { return m.topic }
func (m *message) MessageID() uint16 { return 1 }
func (m *message) Payload() []byte   { return m.payload }
func (m *message) Ack()              {}
