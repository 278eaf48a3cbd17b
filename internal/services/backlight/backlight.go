// Package backlight drives the display backlight with an auto-off timer.
package backlight

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/LeonardoBeccarini/wallcontroller/internal/model"
)

// DefaultAutoOff is how long the backlight stays on after the last TurnOn.
const DefaultAutoOff = 5 * time.Second

// Pin is a digital output.
type Pin interface {
	SetValue(v int) error
}

// Backlight is wired active-low: writing 0 turns it on.
type Backlight struct {
	pin     Pin
	autoOff time.Duration
	log     zerolog.Logger

	mu    sync.Mutex
	on    bool
	timer *time.Timer
	gen   uint64
}

func New(pin Pin, autoOff time.Duration, log zerolog.Logger) *Backlight {
	if autoOff <= 0 {
		autoOff = DefaultAutoOff
	}
	return &Backlight{pin: pin, autoOff: autoOff, log: log}
}

// TurnOn lights the display and rearms the auto-off timer.
func (b *Backlight) TurnOn() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.on {
		b.write(0)
		b.on = true
	}
	if b.timer != nil {
		b.timer.Stop()
	}
	b.gen++
	gen := b.gen
	b.timer = time.AfterFunc(b.autoOff, func() { b.expire(gen) })
}

// expire ignores timers that were superseded while already firing.
func (b *Backlight) expire(gen uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if gen == b.gen {
		b.off()
	}
}

func (b *Backlight) TurnOff() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.off()
}

func (b *Backlight) off() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	if b.on {
		b.write(1)
		b.on = false
	}
}

func (b *Backlight) IsOn() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.on
}

func (b *Backlight) write(v int) {
	if err := b.pin.SetValue(v); err != nil {
		b.log.Error().Err(err).Int("value", v).Msg("backlight write failed")
	}
}

func (b *Backlight) Name() string { return "backlight" }

// Notify wakes the display on any touch.
func (b *Backlight) Notify(ev model.Event) {
	if _, ok := ev.(model.Touched); ok {
		b.TurnOn()
	}
}
