package config

import (
	"os"
	"strconv"
	"strings"
)

const envPrefix = "WALLCTL_"

func envStr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(envPrefix + key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(envPrefix + key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := strings.TrimSpace(os.Getenv(envPrefix + key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// ApplyEnv overrides fields with WALLCTL_* variables when they are set.
func (c *Config) ApplyEnv() {
	c.Hostname = envStr("HOSTNAME", c.Hostname)
	c.Log.Level = envStr("LOG_LEVEL", c.Log.Level)
	c.Log.Format = envStr("LOG_FORMAT", c.Log.Format)
	c.Log.File = envStr("LOG_FILE", c.Log.File)

	c.Events.Capacity = envInt("QUEUE_CAPACITY", c.Events.Capacity)
	c.Events.EnqueueTimeoutMs = envInt("ENQUEUE_TIMEOUT_MS", c.Events.EnqueueTimeoutMs)

	c.MQTT.Host = envStr("MQTT_HOST", c.MQTT.Host)
	c.MQTT.Port = envInt("MQTT_PORT", c.MQTT.Port)
	c.MQTT.User = envStr("MQTT_USER", c.MQTT.User)
	c.MQTT.Password = envStr("MQTT_PASSWORD", c.MQTT.Password)
	c.MQTT.ClientID = envStr("MQTT_CLIENT_ID", c.MQTT.ClientID)
	c.MQTT.Disabled = envBool("MQTT_DISABLED", c.MQTT.Disabled)

	c.Influx.URL = envStr("INFLUX_URL", c.Influx.URL)
	c.Influx.Token = envStr("INFLUX_TOKEN", c.Influx.Token)
	c.Influx.Org = envStr("INFLUX_ORG", c.Influx.Org)
	c.Influx.Bucket = envStr("INFLUX_BUCKET", c.Influx.Bucket)

	c.Admin.HTTPAddr = envStr("HTTP_ADDR", c.Admin.HTTPAddr)
	c.Admin.GRPCAddr = envStr("GRPC_ADDR", c.Admin.GRPCAddr)

	c.OTA.URL = envStr("OTA_URL", c.OTA.URL)
}
