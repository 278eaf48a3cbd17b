package messages

import (
	"errors"
	"testing"
)

func TestParseCalibration(t *testing.T) {
	c, err := ParseCalibration("-1.5 3 0.25")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Temperature != -1.5 || c.Humidity != 3 || c.IAQ != 0.25 {
		t.Fatalf("unexpected: %+v", c)
	}
	if _, err := ParseCalibration("1 2"); !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected malformed, got %v", err)
	}
	if _, err := ParseCalibration("1 x 2"); !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected malformed, got %v", err)
	}
}

func TestParseAirQualityIgnoresTrailing(t *testing.T) {
	aq, err := ParseAirQuality("812.5 44 extra")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if aq.CO2 != 812.5 || aq.IAQ != 44 {
		t.Fatalf("unexpected: %+v", aq)
	}
}

func TestParseExtCalibration(t *testing.T) {
	c, err := ParseExtCalibration("0.5 -2")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Temperature != 0.5 || c.Humidity != -2 {
		t.Fatalf("unexpected: %+v", c)
	}
	if _, err := ParseExtCalibration(""); err == nil {
		t.Fatalf("expected error on empty payload")
	}
}

func TestParseSoundCommand(t *testing.T) {
	cases := map[string]SoundCommand{
		"alert on":     SoundAlertOn,
		"ALERT OFF":    SoundAlertOff,
		"doorbell":     SoundDoorbell,
		"Warning On!":  SoundWarningOn,
		"warning off ": SoundWarningOff,
	}
	for in, want := range cases {
		got, err := ParseSoundCommand(in)
		if err != nil || got != want {
			t.Fatalf("%q: got %v,%v want %v", in, got, err, want)
		}
	}
	if _, err := ParseSoundCommand("siren"); !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected malformed, got %v", err)
	}
}

func TestParseSwitch(t *testing.T) {
	if on, err := ParseSwitch("ON"); err != nil || !on {
		t.Fatalf("ON: %v %v", on, err)
	}
	if on, err := ParseSwitch(" off"); err != nil || on {
		t.Fatalf("off: %v %v", on, err)
	}
	if _, err := ParseSwitch("maybe"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestFirstWord(t *testing.T) {
	if FirstWord("  Start now") != "start" || FirstWord("") != "" {
		t.Fatalf("FirstWord mismatch")
	}
}
