package touch

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/LeonardoBeccarini/wallcontroller/internal/model"
)

// Panel is the touch controller chip (XPT2046 class) in raw coordinates.
type Panel interface {
	Touched() bool
	Point() (x, y int, err error)
}

// Waker is woken by the first sample of a sequence.
type Waker interface {
	TurnOn()
}

type GesturePoster interface {
	PostTouchedFromISR(g model.Gesture, p model.Point) bool
}

type Config struct {
	SampleEvery time.Duration // debounce between samples
	IdleAfter   time.Duration // quiet time that ends a sequence
}

func DefaultConfig() Config {
	return Config{SampleEvery: 30 * time.Millisecond, IdleAfter: 300 * time.Millisecond}
}

// Controller samples the panel after each IRQ and classifies a sequence
// once the panel has been idle for IdleAfter.
type Controller struct {
	panel  Panel
	waker  Waker
	poster GesturePoster
	cfg    Config
	log    zerolog.Logger

	mu       sync.Mutex
	cls      Classifier
	first    model.Point
	sampling bool
	closed   bool
	idle     *time.Timer
}

// NewController builds a controller; waker may be nil.
func NewController(panel Panel, waker Waker, poster GesturePoster, cfg Config, log zerolog.Logger) *Controller {
	def := DefaultConfig()
	if cfg.SampleEvery <= 0 {
		cfg.SampleEvery = def.SampleEvery
	}
	if cfg.IdleAfter <= 0 {
		cfg.IdleAfter = def.IdleAfter
	}
	return &Controller{panel: panel, waker: waker, poster: poster, cfg: cfg, log: log}
}

// OnIRQ starts a sampling run unless one is already active. Safe to call
// from the GPIO event goroutine.
func (c *Controller) OnIRQ() {
	c.mu.Lock()
	if c.sampling || c.closed {
		c.mu.Unlock()
		return
	}
	c.sampling = true
	if c.idle != nil {
		c.idle.Stop()
	}
	c.mu.Unlock()
	go c.sample()
}

func (c *Controller) sample() {
	for c.panel.Touched() {
		x, y, err := c.panel.Point()
		if err != nil {
			c.log.Warn().Err(err).Msg("touch read failed")
		} else {
			c.add(MapRaw(x, y))
		}
		time.Sleep(c.cfg.SampleEvery)
	}
	c.mu.Lock()
	c.sampling = false
	if !c.closed {
		c.idle = time.AfterFunc(c.cfg.IdleAfter, c.finish)
	}
	c.mu.Unlock()
}

func (c *Controller) add(p model.Point) {
	c.mu.Lock()
	first := c.cls.Len() == 0
	if first {
		c.first = p
	}
	c.cls.Add(p)
	c.mu.Unlock()
	if first && c.waker != nil {
		c.waker.TurnOn()
	}
}

func (c *Controller) finish() {
	c.mu.Lock()
	if c.sampling || c.closed || c.cls.Len() == 0 {
		c.mu.Unlock()
		return
	}
	n := c.cls.Len()
	g := c.cls.Classify()
	pt := c.first
	c.cls.Reset()
	c.mu.Unlock()

	c.log.Debug().Int("samples", n).Str("gesture", g.String()).Int("x", pt.X).Int("y", pt.Y).Msg("touch sequence")
	if g == model.GestureOff {
		return
	}
	c.poster.PostTouchedFromISR(g, pt)
}

// Close stops a pending classification.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.idle != nil {
		c.idle.Stop()
	}
}
