package mqttconn

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/LeonardoBeccarini/wallcontroller/internal/testutil/fakemqtt"
)

func TestPublisher(t *testing.T) {
	c := fakemqtt.New()
	p := NewPublisher(c, 1, time.Second)
	if err := p.Publish("barlog/hall/heartbeat", true, "on"); err != nil {
		t.Fatalf("publish: %v", err)
	}
	got := c.Published()
	if len(got) != 1 || got[0].Topic != "barlog/hall/heartbeat" || got[0].QoS != 1 || !got[0].Retain || got[0].Payload != "on" {
		t.Fatalf("unexpected publish: %+v", got)
	}
	if !p.Connected() {
		t.Fatalf("fake client is connected")
	}
}

func TestPublisherTimeout(t *testing.T) {
	c := fakemqtt.New()
	c.Hang = true
	p := NewPublisher(c, 1, 10*time.Millisecond)
	if err := p.Publish("x", false, "y"); !errors.Is(err, ErrPublishTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestPublisherError(t *testing.T) {
	c := fakemqtt.New()
	c.PublishErr = errors.New("nope")
	p := NewPublisher(c, 0, time.Second)
	if err := p.Publish("x", false, "y"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestMultiConsumer(t *testing.T) {
	c := fakemqtt.New()
	var got []string
	m := NewMultiConsumer([]Subscription{{Topic: "a", QoS: 1}, {Topic: "b", QoS: 0}},
		func(topic string, payload []byte) error {
			got = append(got, topic+"="+string(payload))
			return nil
		}, zerolog.Nop())
	m.Subscribe(c)

	subs := c.Subscriptions()
	if subs["a"] != 1 || subs["b"] != 0 || len(subs) != 2 {
		t.Fatalf("subscriptions: %v", subs)
	}
	c.Deliver("a", "1")
	c.Deliver("b", "2")
	if len(got) != 2 || got[0] != "a=1" || got[1] != "b=2" {
		t.Fatalf("delivered: %v", got)
	}

	m.Unsubscribe(c)
	if len(c.Subscriptions()) != 0 {
		t.Fatalf("unsubscribe left %v", c.Subscriptions())
	}
}

func TestBrokerURL(t *testing.T) {
	cfg := &Config{Host: "bb-master", Port: 1883}
	if cfg.BrokerURL() != "tcp://bb-master:1883" {
		t.Fatalf("got %s", cfg.BrokerURL())
	}
}
