package sensor_simulator

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/LeonardoBeccarini/wallcontroller/pkg/mqttconn"
)

// AirQualityTopic is where a controller expects remote CO2/IAQ values.
func AirQualityTopic(host string) string { return "state/" + host + "/air_quality" }

// SensorSimulator plays a remote air-quality node for one controller.
type SensorSimulator struct {
	host      string
	generator *DataGenerator
	publisher mqttconn.IPublisher
	log       zerolog.Logger
}

func NewSensorSimulator(host string, publisher mqttconn.IPublisher, gen *DataGenerator, log zerolog.Logger) *SensorSimulator {
	return &SensorSimulator{host: host, generator: gen, publisher: publisher, log: log}
}

// PublishOnce sends one "co2 iaq" sample.
func (s *SensorSimulator) PublishOnce() error {
	aq := s.generator.AirQuality()
	payload := fmt.Sprintf("%.0f %.1f", aq.CO2, aq.IAQ)
	topic := AirQualityTopic(s.host)
	if err := s.publisher.Publish(topic, false, payload); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	s.log.Debug().Str("topic", topic).Str("payload", payload).Msg("air quality published")
	return nil
}

// Start publishes at every interval until ctx is done.
func (s *SensorSimulator) Start(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if !s.publisher.Connected() {
				s.log.Warn().Msg("broker not connected, sample skipped")
				continue
			}
			if err := s.PublishOnce(); err != nil {
				s.log.Error().Err(err).Msg("publish error")
			}
		}
	}
}
