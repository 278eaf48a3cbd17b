package messages

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedPayload is returned for command payloads that cannot be parsed.
var ErrMalformedPayload = errors.New("malformed payload")

// SoundCommand is an action requested on the sound topic.
type SoundCommand int

const (
	SoundAlertOn SoundCommand = iota + 1
	SoundAlertOff
	SoundDoorbell
	SoundWarningOn
	SoundWarningOff
)

func (c SoundCommand) String() string {
	switch c {
	case SoundAlertOn:
		return "alert on"
	case SoundAlertOff:
		return "alert off"
	case SoundDoorbell:
		return "doorbell"
	case SoundWarningOn:
		return "warning on"
	case SoundWarningOff:
		return "warning off"
	default:
		return "unknown"
	}
}

var soundPrefixes = []struct {
	prefix string
	cmd    SoundCommand
}{
	{"alert on", SoundAlertOn},
	{"alert off", SoundAlertOff},
	{"doorbell", SoundDoorbell},
	{"warning on", SoundWarningOn},
	{"warning off", SoundWarningOff},
}

// ParseSoundCommand matches the payload prefix case-insensitively.
func ParseSoundCommand(payload string) (SoundCommand, error) {
	p := strings.ToLower(strings.TrimSpace(payload))
	for _, sp := range soundPrefixes {
		if strings.HasPrefix(p, sp.prefix) {
			return sp.cmd, nil
		}
	}
	return 0, fmt.Errorf("sound %q: %w", payload, ErrMalformedPayload)
}

// ParseSwitch accepts "on" or "off" in any case.
func ParseSwitch(payload string) (bool, error) {
	switch p := strings.TrimSpace(payload); {
	case strings.EqualFold(p, "on"):
		return true, nil
	case strings.EqualFold(p, "off"):
		return false, nil
	}
	return false, fmt.Errorf("switch %q: %w", payload, ErrMalformedPayload)
}

// FirstWord returns the first whitespace separated token, lower-cased.
func FirstWord(payload string) string {
	f := strings.Fields(payload)
	if len(f) == 0 {
		return ""
	}
	return strings.ToLower(f[0])
}

// ParseCalibration parses "temperature humidity iaq".
func ParseCalibration(payload string) (Calibration, error) {
	v, err := parseFloats(payload, 3)
	if err != nil {
		return Calibration{}, fmt.Errorf("calibrate: %w", err)
	}
	return Calibration{Temperature: v[0], Humidity: v[1], IAQ: v[2]}, nil
}

// ParseExtCalibration parses "temperature humidity".
func ParseExtCalibration(payload string) (ExtCalibration, error) {
	v, err := parseFloats(payload, 2)
	if err != nil {
		return ExtCalibration{}, fmt.Errorf("ext_calibrate: %w", err)
	}
	return ExtCalibration{Temperature: v[0], Humidity: v[1]}, nil
}

// ParseAirQuality parses "co2 iaq".
func ParseAirQuality(payload string) (AirQuality, error) {
	v, err := parseFloats(payload, 2)
	if err != nil {
		return AirQuality{}, fmt.Errorf("air_quality: %w", err)
	}
	return AirQuality{CO2: v[0], IAQ: v[1]}, nil
}

// parseFloats reads the first n space separated floats; trailing tokens are ignored.
func parseFloats(payload string, n int) ([]float64, error) {
	f := strings.Fields(payload)
	if len(f) < n {
		return nil, fmt.Errorf("want %d values, got %d: %w", n, len(f), ErrMalformedPayload)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		x, err := strconv.ParseFloat(f[i], 64)
		if err != nil {
			return nil, fmt.Errorf("value %q: %w", f[i], ErrMalformedPayload)
		}
		out[i] = x
	}
	return out, nil
}
