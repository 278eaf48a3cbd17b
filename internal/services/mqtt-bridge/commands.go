package mqtt_bridge

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/LeonardoBeccarini/wallcontroller/internal/metrics"
	"github.com/LeonardoBeccarini/wallcontroller/internal/model"
	"github.com/LeonardoBeccarini/wallcontroller/internal/model/messages"
	"github.com/LeonardoBeccarini/wallcontroller/pkg/dedup"
	"github.com/LeonardoBeccarini/wallcontroller/pkg/mqttconn"
)

// ErrUnknownTopic is returned for messages on topics nobody handles.
var ErrUnknownTopic = errors.New("unknown topic")

type Buzzer interface {
	StartAlert()
	StopAlert()
	Doorbell()
	StartWarning()
	StopWarning()
	AckTone()
}

type Backlight interface {
	TurnOn()
	TurnOff()
}

type OTATrigger interface {
	Trigger() error
}

type Calibrator interface {
	SetCalibration(model.Calibration)
	SetExtCalibration(model.ExtCalibration)
}

type Restarter interface {
	Restart()
}

type AirQualityPoster interface {
	PostCO2(v float64) bool
	PostIAQ(v float64) bool
}

type NightModeSetter interface {
	SetNightMode(on bool)
}

// Deps are the components commands act on. Nil members make the matching
// command a logged no-op.
type Deps struct {
	Buzzer     Buzzer
	Backlight  Backlight
	OTA        OTATrigger
	Calibrator Calibrator
	Restarter  Restarter
	AirQuality AirQualityPoster
	NightMode  NightModeSetter
}

// Commands routes inbound MQTT messages to the device.
type Commands struct {
	topics Topics
	deps   Deps
	dedup  *dedup.Deduper
	log    zerolog.Logger
}

func NewCommands(topics Topics, deps Deps, log zerolog.Logger) *Commands {
	return &Commands{
		topics: topics,
		deps:   deps,
		dedup:  dedup.New(10*time.Second, 64),
		log:    log,
	}
}

// Subscriptions lists every command topic with its QoS.
func (c *Commands) Subscriptions() []mqttconn.Subscription {
	return []mqttconn.Subscription{
		{Topic: c.topics.OTA(), QoS: 1},
		{Topic: c.topics.NightMode(), QoS: 0},
		{Topic: c.topics.Lights(), QoS: 1},
		{Topic: c.topics.Sound(), QoS: 1},
		{Topic: c.topics.Calibrate(), QoS: 0},
		{Topic: c.topics.AirQuality(), QoS: 1},
		{Topic: c.topics.ExtCalibrate(), QoS: 1},
		{Topic: c.topics.Display(), QoS: 1},
		{Topic: c.topics.Control(), QoS: 1},
	}
}

// Handle is a mqttconn.Handler.
func (c *Commands) Handle(topic string, payload []byte) error {
	p := string(payload)
	name, err := c.route(topic, p)
	result := "ok"
	switch {
	case errors.Is(err, ErrUnknownTopic):
		result = "unknown"
	case err != nil:
		result = "error"
	}
	metrics.MQTTCommands.WithLabelValues(name, result).Inc()
	return err
}

func (c *Commands) route(topic, p string) (string, error) {
	log := c.log.With().Str("topic", topic).Str("payload", p).Logger()
	switch topic {
	case c.topics.OTA():
		if !c.dedup.ShouldProcess(dedup.Key(topic, []byte(p))) {
			log.Info().Msg("duplicate ota command dropped")
			return "ota", nil
		}
		if messages.FirstWord(p) != "start" {
			return "ota", fmt.Errorf("ota %q: %w", p, messages.ErrMalformedPayload)
		}
		if c.deps.OTA == nil {
			log.Warn().Msg("ota requested but no updater configured")
			return "ota", nil
		}
		log.Info().Msg("ota requested")
		return "ota", c.deps.OTA.Trigger()

	case c.topics.NightMode():
		on, err := messages.ParseSwitch(p)
		if err != nil {
			return "night_mode", err
		}
		log.Info().Bool("on", on).Msg("night mode")
		if c.deps.NightMode != nil {
			c.deps.NightMode.SetNightMode(on)
		}
		return "night_mode", nil

	case c.topics.Lights():
		log.Info().Msg("lights command received, nothing to drive")
		return "lights", nil

	case c.topics.Sound():
		return "sound", c.sound(log, p)

	case c.topics.Calibrate():
		cal, err := messages.ParseCalibration(p)
		if err != nil {
			return "calibrate", err
		}
		log.Info().Float64("t", cal.Temperature).Float64("h", cal.Humidity).Float64("iaq", cal.IAQ).Msg("calibration")
		if c.deps.Calibrator != nil {
			c.deps.Calibrator.SetCalibration(cal)
		}
		return "calibrate", nil

	case c.topics.AirQuality():
		aq, err := messages.ParseAirQuality(p)
		if err != nil {
			return "air_quality", err
		}
		if c.deps.AirQuality != nil {
			c.deps.AirQuality.PostCO2(aq.CO2)
			c.deps.AirQuality.PostIAQ(aq.IAQ)
		}
		return "air_quality", nil

	case c.topics.ExtCalibrate():
		cal, err := messages.ParseExtCalibration(p)
		if err != nil {
			return "ext_calibrate", err
		}
		log.Info().Float64("t", cal.Temperature).Float64("h", cal.Humidity).Msg("external calibration")
		if c.deps.Calibrator != nil {
			c.deps.Calibrator.SetExtCalibration(cal)
		}
		if c.deps.Buzzer != nil {
			c.deps.Buzzer.AckTone()
		}
		return "ext_calibrate", nil

	case c.topics.Display():
		on, err := messages.ParseSwitch(p)
		if err != nil {
			return "display", err
		}
		if c.deps.Backlight != nil {
			if on {
				c.deps.Backlight.TurnOn()
			} else {
				c.deps.Backlight.TurnOff()
			}
		}
		return "display", nil

	case c.topics.Control():
		if !c.dedup.ShouldProcess(dedup.Key(topic, []byte(p))) {
			log.Info().Msg("duplicate control command dropped")
			return "control", nil
		}
		if messages.FirstWord(p) != "reboot" {
			return "control", fmt.Errorf("control %q: %w", p, messages.ErrMalformedPayload)
		}
		log.Warn().Msg("reboot requested")
		if c.deps.Restarter != nil {
			c.deps.Restarter.Restart()
		}
		return "control", nil
	}
	return "unknown", fmt.Errorf("%s: %w", topic, ErrUnknownTopic)
}

func (c *Commands) sound(log zerolog.Logger, p string) error {
	cmd, err := messages.ParseSoundCommand(p)
	if err != nil {
		return err
	}
	log.Info().Str("sound", cmd.String()).Msg("sound command")
	b := c.deps.Buzzer
	if b == nil {
		return nil
	}
	switch cmd {
	case messages.SoundAlertOn:
		b.StartAlert()
		if c.deps.Backlight != nil {
			c.deps.Backlight.TurnOn()
		}
	case messages.SoundAlertOff:
		b.StopAlert()
	case messages.SoundDoorbell:
		b.Doorbell()
	case messages.SoundWarningOn:
		b.StartWarning()
		if c.deps.Backlight != nil {
			c.deps.Backlight.TurnOn()
		}
	case messages.SoundWarningOff:
		b.StopWarning()
	}
	return nil
}
