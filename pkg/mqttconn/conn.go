// Package mqttconn wraps the paho client: connection with retry, a
// topic-addressed publisher and a multi-topic consumer.
package mqttconn

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

// Will is the last-will message the broker publishes when the link drops.
type Will struct {
	Topic   string
	Payload string
	QoS     byte
	Retain  bool
}

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	ClientID string
	Will     *Will

	// MaxRetries bounds the initial connection attempts.
	MaxRetries int
	// MaxElapsed bounds the whole initial connection phase.
	MaxElapsed time.Duration

	// OnConnect runs after every (re)connection, e.g. to subscribe again.
	OnConnect func(mqtt.Client)
	// OnLost runs when an established connection drops.
	OnLost func(error)
}

func (c *Config) BrokerURL() string {
	return fmt.Sprintf("tcp://%s:%d", c.Host, c.Port)
}

func clientOptions(cfg *Config, log zerolog.Logger) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.BrokerURL())
	opts.SetUsername(cfg.User)
	opts.SetPassword(cfg.Password)
	opts.SetClientID(cfg.ClientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(30 * time.Second)
	if cfg.Will != nil {
		opts.SetWill(cfg.Will.Topic, cfg.Will.Payload, cfg.Will.QoS, cfg.Will.Retain)
	}
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		log.Info().Str("broker", cfg.BrokerURL()).Msg("mqtt connected")
		if cfg.OnConnect != nil {
			cfg.OnConnect(c)
		}
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Msg("mqtt connection lost")
		if cfg.OnLost != nil {
			cfg.OnLost(err)
		}
	})
	return opts
}

// Connect dials the broker, retrying with exponential backoff. The client
// is disconnected when ctx ends.
func Connect(ctx context.Context, cfg *Config, log zerolog.Logger) (mqtt.Client, error) {
	opts := clientOptions(cfg, log)

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = cfg.MaxElapsed
	if bo.MaxElapsedTime <= 0 {
		bo.MaxElapsedTime = 10 * time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 5
	}

	var client mqtt.Client
	err := backoff.Retry(func() error {
		client = mqtt.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			log.Warn().Err(token.Error()).Str("broker", cfg.BrokerURL()).Msg("mqtt connect failed")
			return token.Error()
		}
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(maxRetries-1)), ctx))
	if err != nil {
		return nil, fmt.Errorf("could not establish MQTT connection after retries: %w", err)
	}

	go func() {
		<-ctx.Done()
		Close(client, log)
	}()
	return client, nil
}

// Close disconnects client if it is still connected.
func Close(client mqtt.Client, log zerolog.Logger) {
	if client != nil && client.IsConnected() {
		client.Disconnect(250)
		log.Info().Msg("mqtt connection closed")
	}
}
