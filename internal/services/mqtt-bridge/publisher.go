package mqtt_bridge

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/LeonardoBeccarini/wallcontroller/internal/metrics"
	"github.com/LeonardoBeccarini/wallcontroller/internal/model"
	"github.com/LeonardoBeccarini/wallcontroller/pkg/mqttconn"
)

// maxPayloadLen matches the 8 byte (7 + NUL) buffer home automation
// integrations were built against.
const maxPayloadLen = 7

// Message is the MQTT rendition of one event.
type Message struct {
	Suffix  string
	Payload string
	Retain  bool
}

func formatted(suffix, format string, v float64) Message {
	s := fmt.Sprintf(format, v)
	if len(s) > maxPayloadLen {
		s = s[:maxPayloadLen]
	}
	return Message{Suffix: suffix, Payload: s, Retain: true}
}

// Format maps an event to its topic suffix, payload and retain flag.
// It returns false for events that are not published.
func Format(ev model.Event) (Message, bool) {
	switch e := ev.(type) {
	case model.Heartbeat:
		return Message{Suffix: "heartbeat", Payload: "on", Retain: true}, true
	case model.Measurement:
		switch e.Signal {
		case model.SignalTemperature:
			return formatted("air_temperature", "%4.1f", e.Value), true
		case model.SignalHumidity:
			return formatted("air_humidity", "%4.1f", e.Value), true
		case model.SignalIAQ:
			return formatted("air_iaq", "%.2f", e.Value), true
		case model.SignalCO2:
			return formatted("air_co2", "%.2f", e.Value), true
		case model.SignalVOC:
			return formatted("air_voc", "%.2f", e.Value), true
		case model.SignalPressure:
			return formatted("air_pressure", "%.0f", e.Value), true
		case model.SignalExtTemperature:
			return formatted("ext_temperature", "%4.1f", e.Value), true
		case model.SignalExtHumidity:
			return formatted("ext_humidity", "%4.1f", e.Value), true
		}
	case model.Touched:
		return Message{Suffix: "touched", Payload: e.Gesture.String()}, true
	case model.GasStatus:
		v := 0
		if e.Ready {
			v = 1
		}
		return Message{Suffix: "gas_status", Payload: strconv.Itoa(v), Retain: true}, true
	case model.OTA:
		switch e.Phase {
		case model.OTAStarted:
			return Message{Suffix: "ota", Payload: "start"}, true
		case model.OTADoneOK:
			return Message{Suffix: "ota", Payload: "OK"}, true
		case model.OTADoneFail:
			return Message{Suffix: "ota", Payload: "FAIL"}, true
		}
	}
	return Message{}, false
}

// BreakerSettings tunes the circuit breaker in front of the broker.
type BreakerSettings struct {
	Failures int
	Open     time.Duration
}

// Publisher is the observer forwarding events to the broker.
type Publisher struct {
	topics Topics
	pub    mqttconn.IPublisher
	cb     *gobreaker.CircuitBreaker
	log    zerolog.Logger
}

func NewPublisher(topics Topics, pub mqttconn.IPublisher, bs BreakerSettings, log zerolog.Logger) *Publisher {
	failures := bs.Failures
	if failures < 1 {
		failures = 5
	}
	p := &Publisher{topics: topics, pub: pub, log: log}
	p.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "mqtt-publish",
		MaxRequests: 1,
		Timeout:     bs.Open,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= uint32(failures)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("breaker state change")
		},
	})
	return p
}

func (p *Publisher) Name() string { return "mqtt" }

func (p *Publisher) Notify(ev model.Event) {
	msg, ok := Format(ev)
	if !ok {
		if _, status := ev.(model.StatusUpdate); status {
			return
		}
		p.log.Error().Str("kind", ev.Kind().String()).Msg("unknown event type")
		return
	}
	if !p.pub.Connected() {
		metrics.MQTTPublished.WithLabelValues(msg.Suffix, "ignored").Inc()
		p.log.Warn().Str("event", msg.Suffix).Msg("ignoring event, mqtt not connected")
		return
	}

	topic := p.topics.Event(msg.Suffix)
	_, err := p.cb.Execute(func() (interface{}, error) {
		return nil, p.pub.Publish(topic, msg.Retain, msg.Payload)
	})
	switch {
	case err == nil:
		metrics.MQTTPublished.WithLabelValues(msg.Suffix, "ok").Inc()
		p.log.Debug().Str("topic", topic).Str("payload", msg.Payload).Msg("published")
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.MQTTPublished.WithLabelValues(msg.Suffix, "breaker_open").Inc()
		p.log.Warn().Str("topic", topic).Msg("publish skipped, breaker open")
	default:
		metrics.MQTTPublished.WithLabelValues(msg.Suffix, "error").Inc()
		p.log.Error().Err(err).Str("topic", topic).Msg("publish failed")
	}
}

// BreakerState exposes the breaker for health reporting.
func (p *Publisher) BreakerState() gobreaker.State { return p.cb.State() }
