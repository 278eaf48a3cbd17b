// Package buzzer plays tone patterns on the piezo buzzer.
package buzzer

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/LeonardoBeccarini/wallcontroller/internal/model"
)

// Note frequencies in Hz.
const (
	A4 = 440
	D5 = 587
	E6 = 1319
	G6 = 1568
	A6 = 1760
	A7 = 3520
	C8 = 4186
)

// Note is one tone; Freq 0 is a rest.
type Note struct {
	Freq int
	Dur  time.Duration
}

type Pattern []Note

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

var (
	AlertPattern    = Pattern{{A7, ms(1000)}}
	WarningPattern  = Pattern{{D5, ms(1000)}}
	DoorbellPattern = Pattern{{G6, ms(500)}, {E6, ms(1000)}}
	AckPattern      = Pattern{{A6, ms(100)}, {0, ms(100)}, {A6, ms(100)}}
	OTAStartPattern = Pattern{{A6, ms(30)}, {0, ms(30)}, {A6, ms(30)}}
	OTAFailPattern  = Pattern{{A4, ms(1000)}}
	SwipePattern    = Pattern{{C8, ms(40)}}
)

// DefaultRepeat is the period of the alert and warning sounds.
const DefaultRepeat = 2 * time.Second

// ToneGenerator drives the buzzer hardware. Tone blocks for d.
type ToneGenerator interface {
	Tone(freq int, d time.Duration) error
}

// Buzzer serializes patterns on one generator. Requests never block the
// caller; patterns arriving while the queue is full are dropped.
type Buzzer struct {
	gen    ToneGenerator
	repeat time.Duration
	log    zerolog.Logger
	queue  chan Pattern

	mu      sync.Mutex
	loops   map[string]chan struct{}
	stopped bool
}

func New(gen ToneGenerator, repeat time.Duration, log zerolog.Logger) *Buzzer {
	if repeat <= 0 {
		repeat = DefaultRepeat
	}
	return &Buzzer{
		gen:    gen,
		repeat: repeat,
		log:    log,
		queue:  make(chan Pattern, 8),
		loops:  make(map[string]chan struct{}),
	}
}

// Run plays queued patterns until ctx is done, then stops the repeating sounds.
func (b *Buzzer) Run(ctx context.Context) {
	defer b.stopAll()
	for {
		select {
		case <-ctx.Done():
			return
		case p := <-b.queue:
			b.play(ctx, p)
		}
	}
}

func (b *Buzzer) play(ctx context.Context, p Pattern) {
	for _, n := range p {
		if ctx.Err() != nil {
			return
		}
		if n.Freq == 0 {
			time.Sleep(n.Dur)
			continue
		}
		if err := b.gen.Tone(n.Freq, n.Dur); err != nil {
			b.log.Warn().Err(err).Int("freq", n.Freq).Msg("tone failed")
			return
		}
	}
}

// Play queues p.
func (b *Buzzer) Play(p Pattern) bool {
	select {
	case b.queue <- p:
		return true
	default:
		b.log.Debug().Msg("buzzer busy, pattern dropped")
		return false
	}
}

func (b *Buzzer) startLoop(name string, p Pattern) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return
	}
	if _, running := b.loops[name]; running {
		return
	}
	stop := make(chan struct{})
	b.loops[name] = stop
	b.log.Info().Str("sound", name).Msg("repeating sound started")
	go func() {
		t := time.NewTicker(b.repeat)
		defer t.Stop()
		b.Play(p)
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				b.Play(p)
			}
		}
	}()
}

func (b *Buzzer) stopLoop(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if stop, ok := b.loops[name]; ok {
		close(stop)
		delete(b.loops, name)
		b.log.Info().Str("sound", name).Msg("repeating sound stopped")
	}
}

func (b *Buzzer) stopAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopped = true
	for name, stop := range b.loops {
		close(stop)
		delete(b.loops, name)
	}
}

// Active reports whether the named repeating sound is on.
func (b *Buzzer) Active(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.loops[name]
	return ok
}

func (b *Buzzer) StartAlert()   { b.startLoop("alert", AlertPattern) }
func (b *Buzzer) StopAlert()    { b.stopLoop("alert") }
func (b *Buzzer) StartWarning() { b.startLoop("warning", WarningPattern) }
func (b *Buzzer) StopWarning()  { b.stopLoop("warning") }
func (b *Buzzer) Doorbell()     { b.Play(DoorbellPattern) }
func (b *Buzzer) AckTone()      { b.Play(AckPattern) }

func (b *Buzzer) Name() string { return "buzzer" }

func (b *Buzzer) Notify(ev model.Event) {
	switch e := ev.(type) {
	case model.Touched:
		b.Play(SwipePattern)
	case model.OTA:
		switch e.Phase {
		case model.OTAStarted:
			b.Play(OTAStartPattern)
		case model.OTADoneFail:
			b.Play(OTAFailPattern)
		}
	}
}

// LogTone is a ToneGenerator for hosts without a buzzer.
type LogTone struct {
	Log zerolog.Logger
}

func (l LogTone) Tone(freq int, d time.Duration) error {
	l.Log.Debug().Int("freq", freq).Dur("duration", d).Msg("tone")
	time.Sleep(d)
	return nil
}
