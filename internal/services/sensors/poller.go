// Package sensors polls the environmental sensors and feeds the event core.
package sensors

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/LeonardoBeccarini/wallcontroller/internal/model"
)

// Sensor is the internal environmental sensor (BME280/BME680 class).
type Sensor interface {
	Read(ctx context.Context) (model.Reading, error)
}

// ExtSensor is the optional external temperature/humidity probe.
type ExtSensor interface {
	ReadExt(ctx context.Context) (temperature, humidity float64, err error)
}

// Poster is the subset of events.Poster the poller feeds.
type Poster interface {
	PostHeartbeat() bool
	PostTemperature(v float64) bool
	PostHumidity(v float64) bool
	PostPressure(v float64) bool
	PostIAQ(v float64) bool
	PostCO2(v float64) bool
	PostVOC(v float64) bool
	PostExtTemperature(v float64) bool
	PostExtHumidity(v float64) bool
	PostGasStatus(ready bool) bool
	PostStatus(s model.Status) bool
}

type Config struct {
	Interval       time.Duration
	HeartbeatEvery int
	WarmupTicks    int
	ExtEvery       int
}

func DefaultConfig() Config {
	return Config{
		Interval:       time.Second,
		HeartbeatEvery: 3,
		WarmupTicks:    30,
		ExtEvery:       16,
	}
}

// Poller owns the tick counters and the calibration offsets. Offsets only
// change on the polling goroutine, through the calibration channels.
type Poller struct {
	sensor Sensor
	ext    ExtSensor
	poster Poster
	cfg    Config
	log    zerolog.Logger

	calCh    chan model.Calibration
	extCalCh chan model.ExtCalibration

	tick      int
	measuring int
	cal       model.Calibration
	extCal    model.ExtCalibration

	dhtKnown bool
	dhtOK    bool
	gasKnown bool
	gasReady bool
}

// NewPoller builds a poller; ext may be nil.
func NewPoller(s Sensor, ext ExtSensor, p Poster, cfg Config, log zerolog.Logger) *Poller {
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.HeartbeatEvery <= 0 {
		cfg.HeartbeatEvery = def.HeartbeatEvery
	}
	if cfg.WarmupTicks < 0 {
		cfg.WarmupTicks = def.WarmupTicks
	}
	if cfg.ExtEvery <= 0 {
		cfg.ExtEvery = def.ExtEvery
	}
	return &Poller{
		sensor:   s,
		ext:      ext,
		poster:   p,
		cfg:      cfg,
		log:      log,
		calCh:    make(chan model.Calibration, 1),
		extCalCh: make(chan model.ExtCalibration, 1),
	}
}

// SetCalibration hands new offsets to the polling goroutine. A pending,
// not yet applied calibration is replaced.
func (p *Poller) SetCalibration(c model.Calibration) {
	for {
		select {
		case p.calCh <- c:
			return
		default:
		}
		select {
		case <-p.calCh:
		default:
		}
	}
}

func (p *Poller) SetExtCalibration(c model.ExtCalibration) {
	for {
		select {
		case p.extCalCh <- c:
			return
		default:
		}
		select {
		case <-p.extCalCh:
		default:
		}
	}
}

// Run polls until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	t := time.NewTicker(p.cfg.Interval)
	defer t.Stop()
	p.log.Info().Dur("interval", p.cfg.Interval).Bool("external", p.ext != nil).Msg("sensor poller started")
	for {
		select {
		case <-ctx.Done():
			p.log.Info().Msg("sensor poller stopped")
			return
		case c := <-p.calCh:
			p.cal = c
		case c := <-p.extCalCh:
			p.extCal = c
		case <-t.C:
			p.Tick(ctx)
		}
	}
}

// Tick runs one polling step. It must only be called from the goroutine
// that owns the poller (Run, or a test).
func (p *Poller) Tick(ctx context.Context) {
	p.drainCalibration()
	if p.tick%p.cfg.HeartbeatEvery == 0 {
		p.poster.PostHeartbeat()
	}
	p.tick++
	if p.tick <= p.cfg.WarmupTicks {
		return
	}

	if p.ext != nil && p.measuring%p.cfg.ExtEvery == 0 {
		p.readExt(ctx)
	}
	p.measuring++

	if p.sensor == nil {
		return
	}
	r, err := p.sensor.Read(ctx)
	if err != nil {
		p.log.Warn().Err(err).Msg("sensor read failed")
		return
	}
	p.publish(r)
}

func (p *Poller) drainCalibration() {
	for {
		select {
		case c := <-p.calCh:
			p.cal = c
		case c := <-p.extCalCh:
			p.extCal = c
		default:
			return
		}
	}
}

func (p *Poller) publish(r model.Reading) {
	p.poster.PostTemperature(r.Temperature + p.cal.Temperature)
	p.poster.PostHumidity(r.Humidity + p.cal.Humidity)
	if r.HasPressure {
		p.poster.PostPressure(r.Pressure / 100)
	}
	if !r.HasGas {
		return
	}
	p.poster.PostIAQ(r.IAQ + p.cal.IAQ)
	p.poster.PostCO2(r.CO2)
	p.poster.PostVOC(r.VOC)

	ready := r.GasRunIn == 1.0
	if !p.gasKnown || ready != p.gasReady {
		p.gasKnown, p.gasReady = true, ready
		p.poster.PostGasStatus(ready)
	}
}

func (p *Poller) readExt(ctx context.Context) {
	t, h, err := p.ext.ReadExt(ctx)
	ok := err == nil
	if !ok {
		p.log.Warn().Err(err).Msg("external sensor read failed")
	}
	if !p.dhtKnown || ok != p.dhtOK {
		p.dhtKnown, p.dhtOK = true, ok
		if ok {
			p.poster.PostStatus(model.StatusDHTOK)
		} else {
			p.poster.PostStatus(model.StatusDHTFail)
		}
	}
	if !ok {
		return
	}
	p.poster.PostExtTemperature(t + p.extCal.Temperature)
	p.poster.PostExtHumidity(h + p.extCal.Humidity)
}
