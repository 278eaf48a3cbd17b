package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/LeonardoBeccarini/wallcontroller/internal/metrics"
	"github.com/LeonardoBeccarini/wallcontroller/internal/model"
	"github.com/LeonardoBeccarini/wallcontroller/pkg/reducer"
)

// Poster is the producer entry point: it builds events, filters
// measurements through one reducer per signal and enqueues them.
// Every Post method returns whether the event reached the queue.
type Poster struct {
	queue   *Queue
	timeout time.Duration
	log     zerolog.Logger

	mu       sync.Mutex // guards reducers; a signal may be fed by several producers
	reducers map[model.Signal]*reducer.Reducer
}

type PosterOption func(*posterConfig)

type posterConfig struct {
	timeout    time.Duration
	log        zerolog.Logger
	reducerOpt []reducer.Option
}

// WithEnqueueTimeout bounds how long a post may wait for queue room.
func WithEnqueueTimeout(d time.Duration) PosterOption {
	return func(c *posterConfig) { c.timeout = d }
}

func WithPosterLogger(l zerolog.Logger) PosterOption {
	return func(c *posterConfig) { c.log = l }
}

// WithReducerOptions configures every per-signal reducer.
func WithReducerOptions(opts ...reducer.Option) PosterOption {
	return func(c *posterConfig) { c.reducerOpt = append(c.reducerOpt, opts...) }
}

func NewPoster(q *Queue, opts ...PosterOption) *Poster {
	cfg := posterConfig{timeout: DefaultEnqueueTimeout, log: zerolog.Nop()}
	for _, o := range opts {
		o(&cfg)
	}
	p := &Poster{
		queue:    q,
		timeout:  cfg.timeout,
		log:      cfg.log,
		reducers: make(map[model.Signal]*reducer.Reducer),
	}
	for _, s := range model.AllSignals() {
		p.reducers[s] = reducer.New(cfg.reducerOpt...)
	}
	return p
}

// PostMeasurement enqueues a reading unless its reducer suppresses it. A
// reading dropped by a full queue resets the signal's reducer.
func (p *Poster) PostMeasurement(s model.Signal, v float64) bool {
	p.mu.Lock()
	r, ok := p.reducers[s]
	emit := ok && r.ShouldEmit(v)
	p.mu.Unlock()
	if !ok {
		p.log.Error().Int("signal", int(s)).Msg("measurement for unknown signal")
		return false
	}
	if !emit {
		metrics.Suppressed.WithLabelValues(s.String()).Inc()
		return false
	}
	if !p.queue.Enqueue(model.Measurement{Signal: s, Value: v}, p.timeout) {
		// the dropped value never reached an observer; let the next sample through
		p.mu.Lock()
		r.Reset()
		p.mu.Unlock()
		return false
	}
	return true
}

func (p *Poster) PostTemperature(v float64) bool { return p.PostMeasurement(model.SignalTemperature, v) }
func (p *Poster) PostHumidity(v float64) bool    { return p.PostMeasurement(model.SignalHumidity, v) }
func (p *Poster) PostIAQ(v float64) bool         { return p.PostMeasurement(model.SignalIAQ, v) }
func (p *Poster) PostCO2(v float64) bool         { return p.PostMeasurement(model.SignalCO2, v) }
func (p *Poster) PostVOC(v float64) bool         { return p.PostMeasurement(model.SignalVOC, v) }
func (p *Poster) PostPressure(v float64) bool    { return p.PostMeasurement(model.SignalPressure, v) }

func (p *Poster) PostExtTemperature(v float64) bool {
	return p.PostMeasurement(model.SignalExtTemperature, v)
}

func (p *Poster) PostExtHumidity(v float64) bool {
	return p.PostMeasurement(model.SignalExtHumidity, v)
}

// State events below skip the reducers.

func (p *Poster) PostHeartbeat() bool {
	return p.queue.Enqueue(model.Heartbeat{}, p.timeout)
}

func (p *Poster) PostGasStatus(ready bool) bool {
	return p.queue.Enqueue(model.GasStatus{Ready: ready}, p.timeout)
}

func (p *Poster) PostStatus(s model.Status) bool {
	return p.queue.Enqueue(model.StatusUpdate{Status: s}, p.timeout)
}

func (p *Poster) PostTouched(g model.Gesture, pt model.Point) bool {
	return p.queue.Enqueue(model.Touched{Gesture: g, Point: pt}, p.timeout)
}

// PostTouchedFromISR never blocks; use it from edge handlers and timers.
func (p *Poster) PostTouchedFromISR(g model.Gesture, pt model.Point) bool {
	return p.queue.TryEnqueue(model.Touched{Gesture: g, Point: pt})
}

func (p *Poster) PostOTAStarted() bool {
	return p.queue.Enqueue(model.OTA{Phase: model.OTAStarted}, p.timeout)
}

func (p *Poster) PostOTADoneOK() bool {
	return p.queue.Enqueue(model.OTA{Phase: model.OTADoneOK}, p.timeout)
}

func (p *Poster) PostOTADoneFail() bool {
	return p.queue.Enqueue(model.OTA{Phase: model.OTADoneFail}, p.timeout)
}
