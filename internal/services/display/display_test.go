package display

import (
	"testing"

	"github.com/LeonardoBeccarini/wallcontroller/internal/model"
)

type captureRenderer struct {
	frames []Snapshot
}

func (c *captureRenderer) Render(s Snapshot) { c.frames = append(c.frames, s) }

func TestSnapshotFollowsEvents(t *testing.T) {
	r := &captureRenderer{}
	p := New(r)
	p.Notify(model.Heartbeat{})
	p.Notify(model.Heartbeat{})
	p.Notify(model.Measurement{Signal: model.SignalTemperature, Value: 21.4})
	p.Notify(model.Measurement{Signal: model.SignalCO2, Value: 640})
	p.Notify(model.GasStatus{Ready: true})
	p.Notify(model.StatusUpdate{Status: model.StatusDHTOK})
	p.Notify(model.OTA{Phase: model.OTAStarted})

	s := p.Snapshot()
	if s.Heartbeats != 2 || s.Temperature == nil || *s.Temperature != 21.4 || *s.CO2 != 640 {
		t.Fatalf("snapshot %+v", s)
	}
	if !s.GasReady || !s.ExtSensorOK || s.OTA != "ota_started" {
		t.Fatalf("snapshot %+v", s)
	}
	if s.Humidity != nil {
		t.Fatalf("humidity never reported")
	}
	if len(r.frames) != 7 {
		t.Fatalf("rendered %d frames", len(r.frames))
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	p := New(nil)
	p.Notify(model.Measurement{Signal: model.SignalHumidity, Value: 40})
	s := p.Snapshot()
	*s.Humidity = 99
	if *p.Snapshot().Humidity != 40 {
		t.Fatalf("snapshot aliases internal state")
	}
}

func TestSwipesCyclePages(t *testing.T) {
	p := New(nil)
	p.Notify(model.Touched{Gesture: model.GestureSwipeRight})
	if p.Page() != PageAirQuality {
		t.Fatalf("page %v", p.Page())
	}
	p.Notify(model.Touched{Gesture: model.GestureSwipeLeft})
	p.Notify(model.Touched{Gesture: model.GestureSwipeLeft})
	if p.Page() != PageOutdoor {
		t.Fatalf("page %v", p.Page())
	}
	p.Notify(model.Touched{Gesture: model.GestureShortPress})
	s := p.Snapshot()
	if s.Page != "outdoor" || s.LastGesture != "short" {
		t.Fatalf("snapshot %+v", s)
	}
}

func TestNightMode(t *testing.T) {
	r := &captureRenderer{}
	p := New(r)
	p.SetNightMode(true)
	if !p.Snapshot().NightMode || len(r.frames) != 1 || !r.frames[0].NightMode {
		t.Fatalf("night mode not rendered")
	}
	if p.Name() != "display" {
		t.Fatalf("name %q", p.Name())
	}
}
