// Package controller wires the event core to the device services.
package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/rs/zerolog"

	"github.com/LeonardoBeccarini/wallcontroller/internal/config"
	"github.com/LeonardoBeccarini/wallcontroller/internal/events"
	sensorSimulator "github.com/LeonardoBeccarini/wallcontroller/internal/sensor-simulator"
	"github.com/LeonardoBeccarini/wallcontroller/internal/services/backlight"
	"github.com/LeonardoBeccarini/wallcontroller/internal/services/buzzer"
	"github.com/LeonardoBeccarini/wallcontroller/internal/services/display"
	"github.com/LeonardoBeccarini/wallcontroller/internal/services/health"
	mqttBridge "github.com/LeonardoBeccarini/wallcontroller/internal/services/mqtt-bridge"
	"github.com/LeonardoBeccarini/wallcontroller/internal/services/ota"
	"github.com/LeonardoBeccarini/wallcontroller/internal/services/persistence"
	"github.com/LeonardoBeccarini/wallcontroller/internal/services/sensors"
	"github.com/LeonardoBeccarini/wallcontroller/internal/services/touch"
	"github.com/LeonardoBeccarini/wallcontroller/pkg/mqttconn"
)

// ErrRestartRequested is returned by Run when a reboot was asked for;
// the process supervisor is expected to start us again.
var ErrRestartRequested = errors.New("restart requested")

type App struct {
	cfg config.Config
	log zerolog.Logger

	core      *events.Core
	display   *display.Panel
	backlight *backlight.Backlight
	buzzer    *buzzer.Buzzer
	ota       *ota.Controller
	poller    *sensors.Poller
	touch     *touch.Controller
	commands  *mqttBridge.Commands

	mqttClient mqtt.Client
	publisher  *mqttconn.Publisher
	influx     influxdb2.Client
	writer     *persistence.Writer
	closers    []io.Closer

	restartOnce sync.Once
	restart     chan struct{}
}

func (a *App) component(name string) zerolog.Logger {
	return a.log.With().Str("component", name).Logger()
}

// New builds every component. Hardware and network resources are opened
// here and released by Close.
func New(ctx context.Context, cfg config.Config, log zerolog.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log, restart: make(chan struct{})}

	core, err := events.NewCore(events.Config{
		Capacity:       cfg.Events.Capacity,
		EnqueueTimeout: cfg.Events.EnqueueTimeout(),
		Granularity:    cfg.Events.Granularity,
		MaxSuppressed:  cfg.Events.MaxSuppressed,
	}, log)
	if err != nil {
		return nil, err
	}
	a.core = core

	if err := a.buildDevices(); err != nil {
		a.Close()
		return nil, err
	}
	a.buildSensors()
	a.ota = ota.NewController(
		ota.NewHTTPUpdater(cfg.OTA.URL, cfg.OTA.StagingPath, a.component("ota")),
		core.Poster, a, a.component("ota"))

	if err := a.buildMQTT(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if cfg.Influx.URL != "" {
		a.influx, a.writer = persistence.Open(persistence.InfluxConfig{
			URL:           cfg.Influx.URL,
			Token:         cfg.Influx.Token,
			Org:           cfg.Influx.Org,
			Bucket:        cfg.Influx.Bucket,
			BatchSize:     cfg.Influx.BatchSize,
			FlushInterval: cfg.Influx.FlushInterval(),
		}, a.component("persistence"))
	}

	a.registerObservers()
	return a, nil
}

func (a *App) buildDevices() error {
	a.display = display.New(display.LogRenderer{Log: a.component("display")})

	var pin backlight.Pin = &backlight.LogPin{}
	if a.cfg.GPIO.BacklightPin >= 0 {
		gp, err := backlight.OpenGPIOPin(a.cfg.GPIO.Chip, a.cfg.GPIO.BacklightPin)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, gp)
		pin = gp
	}
	a.backlight = backlight.New(pin, a.cfg.Backlight.AutoOff(), a.component("backlight"))
	a.buzzer = buzzer.New(buzzer.LogTone{Log: a.component("buzzer")}, buzzer.DefaultRepeat, a.component("buzzer"))

	if a.cfg.GPIO.TouchIRQPin >= 0 {
		line, err := touch.OpenIRQLine(a.cfg.GPIO.Chip, a.cfg.GPIO.TouchIRQPin)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, line)
		a.touch = touch.NewController(line, a.backlight, a.core.Poster, touch.DefaultConfig(), a.component("touch"))
		line.OnEdge(a.touch.OnIRQ)
	}
	return nil
}

func (a *App) buildSensors() {
	var (
		sensor sensors.Sensor
		ext    sensors.ExtSensor
	)
	if a.cfg.Sensors.Internal == "simulated" || a.cfg.Sensors.External {
		seed := a.cfg.Sensors.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		gen := sensorSimulator.NewDataGenerator(seed)
		if a.cfg.Sensors.Internal == "simulated" {
			sensor = gen
		}
		if a.cfg.Sensors.External {
			ext = gen
		}
	}
	if sensor == nil && ext == nil {
		return
	}
	a.poller = sensors.NewPoller(sensor, ext, a.core.Poster, sensors.Config{
		Interval:       a.cfg.Sensors.PollInterval(),
		HeartbeatEvery: a.cfg.Sensors.HeartbeatEvery,
		WarmupTicks:    a.cfg.Sensors.WarmupTicks,
		ExtEvery:       a.cfg.Sensors.ExtEvery,
	}, a.component("sensors"))
}

func (a *App) topics() mqttBridge.Topics {
	return mqttBridge.Topics{Site: a.cfg.MQTT.Site, Host: a.cfg.Hostname}
}

func (a *App) buildMQTT(ctx context.Context) error {
	if a.cfg.MQTT.Disabled {
		a.log.Warn().Msg("mqtt disabled")
		return nil
	}
	deps := mqttBridge.Deps{
		Buzzer:     a.buzzer,
		Backlight:  a.backlight,
		OTA:        a.ota,
		Restarter:  a,
		AirQuality: a.core.Poster,
		NightMode:  a.display,
	}
	if a.poller != nil {
		deps.Calibrator = a.poller
	}
	topics := a.topics()
	a.commands = mqttBridge.NewCommands(topics, deps, a.component("commands"))
	consumer := mqttconn.NewMultiConsumer(a.commands.Subscriptions(), a.commands.Handle, a.component("commands"))

	clientID := a.cfg.MQTT.ClientID
	if clientID == "" {
		clientID = a.cfg.Hostname + "-" + uuid.NewString()[:8]
	}
	client, err := mqttconn.Connect(ctx, &mqttconn.Config{
		Host:      a.cfg.MQTT.Host,
		Port:      a.cfg.MQTT.Port,
		User:      a.cfg.MQTT.User,
		Password:  a.cfg.MQTT.Password,
		ClientID:  clientID,
		Will:      &mqttconn.Will{Topic: topics.Will(), Payload: "offline", QoS: 1, Retain: true},
		OnConnect: consumer.Subscribe,
	}, a.component("mqtt"))
	if err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	a.mqttClient = client
	a.publisher = mqttconn.NewPublisher(client, 1, a.cfg.MQTT.PublishTimeout())
	return nil
}

// registerObservers fixes the notification order: local feedback first,
// then the network sinks.
func (a *App) registerObservers() {
	d := a.core.Dispatcher
	d.Register(a.backlight)
	d.Register(a.display)
	d.Register(a.buzzer)
	if a.publisher != nil {
		d.Register(mqttBridge.NewPublisher(a.topics(), a.publisher, mqttBridge.BreakerSettings{
			Failures: a.cfg.MQTT.BreakerFailures,
			Open:     a.cfg.MQTT.BreakerOpen(),
		}, a.component("mqtt")))
	}
	if a.writer != nil {
		d.Register(persistence.NewObserver(a.cfg.Hostname, a.writer))
	}
	a.log.Info().Strs("observers", d.Observers()).Msg("observers registered")
}

// Restart asks Run to return ErrRestartRequested.
func (a *App) Restart() {
	a.restartOnce.Do(func() {
		a.log.Warn().Msg("restart requested")
		close(a.restart)
	})
}

func (a *App) Checks() health.Checks {
	c := health.Checks{
		Dispatching: a.core.Dispatcher.Running,
		QueueDepth:  func() (int, int) { return a.core.Queue.Len(), a.core.Queue.Cap() },
	}
	if a.publisher != nil {
		c.MQTTConnected = a.publisher.Connected
	}
	if a.writer != nil {
		c.WriteErrorAge = a.writer.LastErrorAge
	}
	return c
}

// Run starts every loop and blocks until ctx is done or a restart is
// requested.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errc := make(chan error, 1)
	goRun := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.log.Error().Err(err).Str("loop", name).Msg("loop failed")
				select {
				case errc <- fmt.Errorf("%s: %w", name, err):
				default:
				}
			}
		}()
	}

	goRun("dispatcher", a.core.Run)
	goRun("buzzer", func(ctx context.Context) error { a.buzzer.Run(ctx); return nil })
	if a.poller != nil {
		goRun("sensors", func(ctx context.Context) error { a.poller.Run(ctx); return nil })
	} else if a.publisher != nil {
		goRun("heartbeat", func(ctx context.Context) error {
			mqttBridge.RunHeartbeat(ctx, mqttBridge.DefaultHeartbeatInterval, a.publisher, a.core.Poster)
			return nil
		})
	}
	checks := a.Checks()
	if addr := a.cfg.Admin.HTTPAddr; addr != "" {
		router := health.NewRouter(checks, func() any { return a.display.Snapshot() })
		goRun("admin-http", func(ctx context.Context) error {
			return health.ServeHTTP(ctx, addr, router, a.component("admin"))
		})
	}
	if addr := a.cfg.Admin.GRPCAddr; addr != "" {
		g := health.NewGRPC(checks, a.component("admin"))
		goRun("admin-grpc", func(ctx context.Context) error { return g.Serve(ctx, addr, 5*time.Second) })
	}

	a.log.Info().Str("host", a.cfg.Hostname).Msg("wall controller running")
	var err error
	select {
	case <-ctx.Done():
	case <-a.restart:
		err = ErrRestartRequested
	case err = <-errc:
	}
	cancel()
	wg.Wait()
	return err
}

// Close releases hardware lines and network clients.
func (a *App) Close() {
	if a.touch != nil {
		a.touch.Close()
	}
	if a.backlight != nil {
		a.backlight.TurnOff()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.log.Warn().Err(err).Msg("close failed")
		}
	}
	if a.writer != nil {
		a.writer.Flush()
	}
	if a.influx != nil {
		a.influx.Close()
	}
	if a.mqttClient != nil {
		mqttconn.Close(a.mqttClient, a.component("mqtt"))
	}
}
