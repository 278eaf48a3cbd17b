// Command sensor-sim publishes simulated CO2/IAQ samples for a wall controller.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/LeonardoBeccarini/wallcontroller/internal/config"
	"github.com/LeonardoBeccarini/wallcontroller/internal/logging"
	sensorSimulator "github.com/LeonardoBeccarini/wallcontroller/internal/sensor-simulator"
	"github.com/LeonardoBeccarini/wallcontroller/pkg/mqttconn"
)

func main() {
	var (
		host     string
		broker   string
		port     int
		user     string
		password string
		interval time.Duration
		seed     int64
		level    string
	)

	root := &cobra.Command{
		Use:   "sensor-sim",
		Short: "Publish simulated air quality for a wall controller",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, closer := logging.New(config.LogConfig{Level: level}, host)
			defer closer.Close()
			log = log.With().Str("component", "sensor-sim").Logger()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			client, err := mqttconn.Connect(ctx, &mqttconn.Config{
				Host:     broker,
				Port:     port,
				User:     user,
				Password: password,
				ClientID: "sensor-sim-" + uuid.NewString()[:8],
			}, log)
			if err != nil {
				return err
			}
			pub := mqttconn.NewPublisher(client, 1, 2*time.Second)
			sim := sensorSimulator.NewSensorSimulator(host, pub, sensorSimulator.NewDataGenerator(seed), log)

			log.Info().Str("topic", sensorSimulator.AirQualityTopic(host)).Dur("interval", interval).Msg("simulator started")
			sim.Start(ctx, interval)
			return nil
		},
	}
	f := root.Flags()
	f.StringVar(&host, "host", "wallcontroller", "hostname of the controller to feed")
	f.StringVar(&broker, "broker", "localhost", "MQTT broker host")
	f.IntVar(&port, "port", 1883, "MQTT broker port")
	f.StringVar(&user, "user", "", "MQTT user")
	f.StringVar(&password, "password", "", "MQTT password")
	f.DurationVar(&interval, "interval", 30*time.Second, "publish interval")
	f.Int64Var(&seed, "seed", time.Now().UnixNano(), "random walk seed")
	f.StringVar(&level, "log-level", "info", "log level")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
