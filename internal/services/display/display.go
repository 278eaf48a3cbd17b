// Package display keeps the values shown on the panel and renders them.
package display

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/LeonardoBeccarini/wallcontroller/internal/model"
)

// Page is one screen of the display; swipes cycle through them.
type Page int

const (
	PageMain Page = iota
	PageAirQuality
	PageOutdoor
	pageCount
)

func (p Page) String() string {
	switch p {
	case PageMain:
		return "main"
	case PageAirQuality:
		return "air_quality"
	case PageOutdoor:
		return "outdoor"
	default:
		return "unknown"
	}
}

// Snapshot is everything the panel can show.
type Snapshot struct {
	Page           string    `json:"page"`
	NightMode      bool      `json:"night_mode"`
	Temperature    *float64  `json:"temperature,omitempty"`
	Humidity       *float64  `json:"humidity,omitempty"`
	Pressure       *float64  `json:"pressure,omitempty"`
	IAQ            *float64  `json:"iaq,omitempty"`
	CO2            *float64  `json:"co2,omitempty"`
	VOC            *float64  `json:"voc,omitempty"`
	GasReady       bool      `json:"gas_ready"`
	ExtTemperature *float64  `json:"ext_temperature,omitempty"`
	ExtHumidity    *float64  `json:"ext_humidity,omitempty"`
	ExtSensorOK    bool      `json:"ext_sensor_ok"`
	OTA            string    `json:"ota,omitempty"`
	LastGesture    string    `json:"last_gesture,omitempty"`
	Heartbeats     uint64    `json:"heartbeats"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Renderer draws a snapshot on some output.
type Renderer interface {
	Render(s Snapshot)
}

type Panel struct {
	renderer Renderer
	now      func() time.Time

	mu   sync.Mutex
	page Page
	snap Snapshot
}

func New(r Renderer) *Panel {
	p := &Panel{renderer: r, now: time.Now}
	p.snap.Page = PageMain.String()
	return p
}

func (p *Panel) Name() string { return "display" }

func (p *Panel) Notify(ev model.Event) {
	p.mu.Lock()
	p.apply(ev)
	p.snap.UpdatedAt = p.now()
	s := p.copy()
	p.mu.Unlock()
	if p.renderer != nil {
		p.renderer.Render(s)
	}
}

func ptr(v float64) *float64 { return &v }

func (p *Panel) apply(ev model.Event) {
	switch e := ev.(type) {
	case model.Heartbeat:
		p.snap.Heartbeats++
	case model.Measurement:
		switch e.Signal {
		case model.SignalTemperature:
			p.snap.Temperature = ptr(e.Value)
		case model.SignalHumidity:
			p.snap.Humidity = ptr(e.Value)
		case model.SignalPressure:
			p.snap.Pressure = ptr(e.Value)
		case model.SignalIAQ:
			p.snap.IAQ = ptr(e.Value)
		case model.SignalCO2:
			p.snap.CO2 = ptr(e.Value)
		case model.SignalVOC:
			p.snap.VOC = ptr(e.Value)
		case model.SignalExtTemperature:
			p.snap.ExtTemperature = ptr(e.Value)
		case model.SignalExtHumidity:
			p.snap.ExtHumidity = ptr(e.Value)
		}
	case model.GasStatus:
		p.snap.GasReady = e.Ready
	case model.StatusUpdate:
		p.snap.ExtSensorOK = e.Status == model.StatusDHTOK
	case model.OTA:
		p.snap.OTA = e.Kind().String()
	case model.Touched:
		p.snap.LastGesture = e.Gesture.String()
		switch e.Gesture {
		case model.GestureSwipeLeft:
			p.page = (p.page + pageCount - 1) % pageCount
		case model.GestureSwipeRight:
			p.page = (p.page + 1) % pageCount
		}
		p.snap.Page = p.page.String()
	}
}

func (p *Panel) copy() Snapshot {
	s := p.snap
	for _, f := range []**float64{&s.Temperature, &s.Humidity, &s.Pressure, &s.IAQ, &s.CO2, &s.VOC, &s.ExtTemperature, &s.ExtHumidity} {
		if *f != nil {
			*f = ptr(**f)
		}
	}
	return s
}

// SetNightMode dims the rendering; driven by the night_mode command.
func (p *Panel) SetNightMode(on bool) {
	p.mu.Lock()
	p.snap.NightMode = on
	s := p.copy()
	p.mu.Unlock()
	if p.renderer != nil {
		p.renderer.Render(s)
	}
}

// Snapshot returns a copy of the current state.
func (p *Panel) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.copy()
}

func (p *Panel) Page() Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page
}

// LogRenderer writes each snapshot to the logger at debug level.
type LogRenderer struct {
	Log zerolog.Logger
}

func (r LogRenderer) Render(s Snapshot) {
	e := r.Log.Debug().Str("page", s.Page).Bool("night", s.NightMode).Uint64("heartbeats", s.Heartbeats)
	if s.Temperature != nil {
		e = e.Float64("temperature", *s.Temperature)
	}
	if s.Humidity != nil {
		e = e.Float64("humidity", *s.Humidity)
	}
	if s.CO2 != nil {
		e = e.Float64("co2", *s.CO2)
	}
	if s.LastGesture != "" {
		e = e.Str("gesture", s.LastGesture)
	}
	e.Msg("render")
}
