package backlight

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/LeonardoBeccarini/wallcontroller/internal/model"
)

type fakePin struct {
	mu     sync.Mutex
	writes []int
	err    error
}

func (p *fakePin) SetValue(v int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writes = append(p.writes, v)
	return p.err
}

func (p *fakePin) history() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int(nil), p.writes...)
}

func TestActiveLow(t *testing.T) {
	pin := &fakePin{}
	b := New(pin, time.Hour, zerolog.Nop())
	b.TurnOn()
	b.TurnOn()
	if !b.IsOn() {
		t.Fatalf("should be on")
	}
	b.TurnOff()
	b.TurnOff()
	h := pin.history()
	if len(h) != 2 || h[0] != 0 || h[1] != 1 {
		t.Fatalf("writes %v, want [0 1]", h)
	}
}

func TestAutoOffRearmed(t *testing.T) {
	pin := &fakePin{}
	b := New(pin, 40*time.Millisecond, zerolog.Nop())
	b.TurnOn()
	time.Sleep(25 * time.Millisecond)
	b.TurnOn() // rearm
	time.Sleep(25 * time.Millisecond)
	if !b.IsOn() {
		t.Fatalf("rearmed timer fired early")
	}
	deadline := time.Now().Add(time.Second)
	for b.IsOn() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if b.IsOn() {
		t.Fatalf("auto-off did not fire")
	}
}

func TestObserverWakesOnTouch(t *testing.T) {
	b := New(&fakePin{}, time.Hour, zerolog.Nop())
	defer b.TurnOff()
	b.Notify(model.Heartbeat{})
	if b.IsOn() {
		t.Fatalf("heartbeat must not wake the display")
	}
	b.Notify(model.Touched{Gesture: model.GestureShortPress})
	if !b.IsOn() {
		t.Fatalf("touch must wake the display")
	}
	if b.Name() != "backlight" {
		t.Fatalf("name %q", b.Name())
	}
}

func TestWriteErrorIsLogged(t *testing.T) {
	b := New(&fakePin{err: errors.New("ebusy")}, time.Hour, zerolog.Nop())
	b.TurnOn()
	if !b.IsOn() {
		t.Fatalf("state follows the request even if the write failed")
	}
	b.TurnOff()
}
