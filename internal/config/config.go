// Package config loads the controller configuration from a file, the
// environment and command line flags, in that order of precedence.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Hostname  string          `json:"hostname" yaml:"hostname" toml:"hostname"`
	Log       LogConfig       `json:"log" yaml:"log" toml:"log"`
	Events    EventsConfig    `json:"events" yaml:"events" toml:"events"`
	MQTT      MQTTConfig      `json:"mqtt" yaml:"mqtt" toml:"mqtt"`
	Influx    InfluxConfig    `json:"influx" yaml:"influx" toml:"influx"`
	Admin     AdminConfig     `json:"admin" yaml:"admin" toml:"admin"`
	Sensors   SensorsConfig   `json:"sensors" yaml:"sensors" toml:"sensors"`
	GPIO      GPIOConfig      `json:"gpio" yaml:"gpio" toml:"gpio"`
	Backlight BacklightConfig `json:"backlight" yaml:"backlight" toml:"backlight"`
	OTA       OTAConfig       `json:"ota" yaml:"ota" toml:"ota"`
}

type LogConfig struct {
	Level      string `json:"level" yaml:"level" toml:"level"`
	Format     string `json:"format" yaml:"format" toml:"format"` // console | json
	File       string `json:"file" yaml:"file" toml:"file"`
	MaxSizeMB  int    `json:"max_size_mb" yaml:"max_size_mb" toml:"max_size_mb"`
	MaxBackups int    `json:"max_backups" yaml:"max_backups" toml:"max_backups"`
}

type EventsConfig struct {
	Capacity         int     `json:"capacity" yaml:"capacity" toml:"capacity"`
	EnqueueTimeoutMs int     `json:"enqueue_timeout_ms" yaml:"enqueue_timeout_ms" toml:"enqueue_timeout_ms"`
	Granularity      float64 `json:"granularity" yaml:"granularity" toml:"granularity"`
	MaxSuppressed    int     `json:"max_suppressed" yaml:"max_suppressed" toml:"max_suppressed"`
}

type MQTTConfig struct {
	Host             string `json:"host" yaml:"host" toml:"host"`
	Port             int    `json:"port" yaml:"port" toml:"port"`
	User             string `json:"user" yaml:"user" toml:"user"`
	Password         string `json:"password" yaml:"password" toml:"password"`
	ClientID         string `json:"client_id" yaml:"client_id" toml:"client_id"`
	Site             string `json:"site" yaml:"site" toml:"site"` // topic root, "barlog"
	PublishTimeoutMs int    `json:"publish_timeout_ms" yaml:"publish_timeout_ms" toml:"publish_timeout_ms"`
	BreakerFailures  int    `json:"breaker_failures" yaml:"breaker_failures" toml:"breaker_failures"`
	BreakerOpenSec   int    `json:"breaker_open_sec" yaml:"breaker_open_sec" toml:"breaker_open_sec"`
	Disabled         bool   `json:"disabled" yaml:"disabled" toml:"disabled"`
}

type InfluxConfig struct {
	URL             string `json:"url" yaml:"url" toml:"url"` // empty disables persistence
	Token           string `json:"token" yaml:"token" toml:"token"`
	Org             string `json:"org" yaml:"org" toml:"org"`
	Bucket          string `json:"bucket" yaml:"bucket" toml:"bucket"`
	BatchSize       int    `json:"batch_size" yaml:"batch_size" toml:"batch_size"`
	FlushIntervalMs int    `json:"flush_interval_ms" yaml:"flush_interval_ms" toml:"flush_interval_ms"`
}

type AdminConfig struct {
	HTTPAddr string `json:"http_addr" yaml:"http_addr" toml:"http_addr"` // empty disables
	GRPCAddr string `json:"grpc_addr" yaml:"grpc_addr" toml:"grpc_addr"` // empty disables
}

type SensorsConfig struct {
	// Internal selects the internal sensor driver: "simulated" or "none".
	Internal       string `json:"internal" yaml:"internal" toml:"internal"`
	External       bool   `json:"external" yaml:"external" toml:"external"`
	PollIntervalMs int    `json:"poll_interval_ms" yaml:"poll_interval_ms" toml:"poll_interval_ms"`
	HeartbeatEvery int    `json:"heartbeat_every" yaml:"heartbeat_every" toml:"heartbeat_every"`
	WarmupTicks    int    `json:"warmup_ticks" yaml:"warmup_ticks" toml:"warmup_ticks"`
	ExtEvery       int    `json:"ext_every" yaml:"ext_every" toml:"ext_every"`
	Seed           int64  `json:"seed" yaml:"seed" toml:"seed"`
}

type GPIOConfig struct {
	Chip         string `json:"chip" yaml:"chip" toml:"chip"`
	BacklightPin int    `json:"backlight_pin" yaml:"backlight_pin" toml:"backlight_pin"` // <0 disables
	TouchIRQPin  int    `json:"touch_irq_pin" yaml:"touch_irq_pin" toml:"touch_irq_pin"` // <0 disables
}

type BacklightConfig struct {
	AutoOffSec int `json:"auto_off_sec" yaml:"auto_off_sec" toml:"auto_off_sec"`
}

type OTAConfig struct {
	URL         string `json:"url" yaml:"url" toml:"url"`
	StagingPath string `json:"staging_path" yaml:"staging_path" toml:"staging_path"`
}

// Default returns the configuration used when nothing else is specified.
func Default() Config {
	host, _ := os.Hostname()
	if host == "" {
		host = "wallcontroller"
	}
	return Config{
		Hostname: host,
		Log:      LogConfig{Level: "info", Format: "console", MaxSizeMB: 10, MaxBackups: 3},
		Events:   EventsConfig{Capacity: 10, EnqueueTimeoutMs: 10, Granularity: 0.1, MaxSuppressed: 6},
		MQTT: MQTTConfig{
			Host:             "bb-master",
			Port:             1883,
			Site:             "barlog",
			PublishTimeoutMs: 2000,
			BreakerFailures:  5,
			BreakerOpenSec:   30,
		},
		Influx: InfluxConfig{Org: "barlog", Bucket: "wallcontroller", BatchSize: 20, FlushIntervalMs: 1000},
		Admin:  AdminConfig{HTTPAddr: ":8080", GRPCAddr: ":9090"},
		Sensors: SensorsConfig{
			Internal:       "simulated",
			PollIntervalMs: 1000,
			HeartbeatEvery: 3,
			WarmupTicks:    30,
			ExtEvery:       16,
		},
		GPIO:      GPIOConfig{Chip: "gpiochip0", BacklightPin: -1, TouchIRQPin: -1},
		Backlight: BacklightConfig{AutoOffSec: 5},
		OTA:       OTAConfig{StagingPath: filepath.Join(os.TempDir(), "wallcontroller-ota.bin")},
	}
}

// Load reads path on top of Default. The format follows the extension:
// .yaml/.yml, .json or .toml.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Hostname) == "" {
		errs = append(errs, errors.New("hostname is required"))
	}
	if c.Events.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("events.capacity must be > 0, got %d", c.Events.Capacity))
	}
	if c.Events.EnqueueTimeoutMs < 0 {
		errs = append(errs, fmt.Errorf("events.enqueue_timeout_ms must be >= 0"))
	}
	if c.Events.Granularity < 0 {
		errs = append(errs, fmt.Errorf("events.granularity must be >= 0"))
	}
	if c.Events.MaxSuppressed < 0 {
		errs = append(errs, fmt.Errorf("events.max_suppressed must be >= 0"))
	}
	if !c.MQTT.Disabled {
		if c.MQTT.Host == "" {
			errs = append(errs, errors.New("mqtt.host is required"))
		}
		if c.MQTT.Port <= 0 || c.MQTT.Port > 65535 {
			errs = append(errs, fmt.Errorf("mqtt.port out of range: %d", c.MQTT.Port))
		}
		if c.MQTT.Site == "" {
			errs = append(errs, errors.New("mqtt.site is required"))
		}
	}
	switch c.Sensors.Internal {
	case "simulated", "none":
	default:
		errs = append(errs, fmt.Errorf("sensors.internal: unknown driver %q", c.Sensors.Internal))
	}
	if c.Sensors.PollIntervalMs <= 0 || c.Sensors.HeartbeatEvery <= 0 || c.Sensors.ExtEvery <= 0 {
		errs = append(errs, errors.New("sensors: poll interval, heartbeat_every and ext_every must be > 0"))
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

func (e EventsConfig) EnqueueTimeout() time.Duration {
	return time.Duration(e.EnqueueTimeoutMs) * time.Millisecond
}

func (m MQTTConfig) PublishTimeout() time.Duration {
	return time.Duration(m.PublishTimeoutMs) * time.Millisecond
}

func (m MQTTConfig) BreakerOpen() time.Duration {
	return time.Duration(m.BreakerOpenSec) * time.Second
}

func (s SensorsConfig) PollInterval() time.Duration {
	return time.Duration(s.PollIntervalMs) * time.Millisecond
}

func (b BacklightConfig) AutoOff() time.Duration {
	return time.Duration(b.AutoOffSec) * time.Second
}

func (i InfluxConfig) FlushInterval() time.Duration {
	return time.Duration(i.FlushIntervalMs) * time.Millisecond
}
