package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", `
hostname: hall
mqtt:
  host: broker.local
  port: 1884
events:
  capacity: 32
sensors:
  external: true
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Hostname != "hall" || cfg.MQTT.Host != "broker.local" || cfg.MQTT.Port != 1884 ||
		cfg.Events.Capacity != 32 || !cfg.Sensors.External {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	// untouched fields keep their defaults
	if cfg.MQTT.Site != "barlog" || cfg.Events.EnqueueTimeoutMs != 10 || cfg.Sensors.WarmupTicks != 30 {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json", `{"hostname":"kitchen","backlight":{"auto_off_sec":9}}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Hostname != "kitchen" || cfg.Backlight.AutoOff() != 9*time.Second {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", "hostname=\"office\"\n[influx]\nurl=\"http://influx:8086\"\nbucket=\"env\"\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Hostname != "office" || cfg.Influx.URL != "http://influx:8086" || cfg.Influx.Bucket != "env" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error on empty path")
	}
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.txt", "not supported")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
	p = writeTempFile(t, d, "bad.yaml", "mqtt: [")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Hostname = "x"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	cfg.Events.Capacity = 0
	cfg.MQTT.Port = 0
	cfg.Sensors.Internal = "bme999"
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected errors")
	}
	for _, frag := range []string{"events.capacity", "mqtt.port", "sensors.internal"} {
		if !strings.Contains(err.Error(), frag) {
			t.Fatalf("missing %q in %v", frag, err)
		}
	}

	cfg = Default()
	cfg.MQTT.Disabled = true
	cfg.MQTT.Host = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mqtt needs no host: %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("WALLCTL_MQTT_HOST", "10.0.0.2")
	t.Setenv("WALLCTL_MQTT_PORT", "8883")
	t.Setenv("WALLCTL_QUEUE_CAPACITY", "nope")
	t.Setenv("WALLCTL_MQTT_DISABLED", "true")
	cfg := Default()
	cfg.ApplyEnv()
	if cfg.MQTT.Host != "10.0.0.2" || cfg.MQTT.Port != 8883 || !cfg.MQTT.Disabled {
		t.Fatalf("env not applied: %+v", cfg.MQTT)
	}
	if cfg.Events.Capacity != 10 {
		t.Fatalf("invalid int must keep default, got %d", cfg.Events.Capacity)
	}
}
