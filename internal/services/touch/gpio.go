package touch

import (
	"fmt"
	"sync"

	gpiod "github.com/warthog618/go-gpiocdev"
)

// IRQLine is the panel's active-low pen interrupt. Without a coordinate
// bus it also serves as a Panel reporting every sample at the screen
// center, which turns the panel into a single short/long press button.
type IRQLine struct {
	chip *gpiod.Chip
	line *gpiod.Line

	mu     sync.Mutex
	onEdge func()
}

// OpenIRQLine requests pin on chipName with pull-up and falling edge events.
func OpenIRQLine(chipName string, pin int) (*IRQLine, error) {
	chip, err := gpiod.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open chip %s: %w", chipName, err)
	}
	l := &IRQLine{chip: chip}
	line, err := chip.RequestLine(pin,
		gpiod.AsInput,
		gpiod.WithPullUp,
		gpiod.WithFallingEdge,
		gpiod.WithEventHandler(l.handle),
	)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request touch irq pin %d: %w", pin, err)
	}
	l.line = line
	return l, nil
}

func (l *IRQLine) handle(evt gpiod.LineEvent) {
	if evt.Type != gpiod.LineEventFallingEdge {
		return
	}
	l.mu.Lock()
	fn := l.onEdge
	l.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// OnEdge sets the callback run on every falling edge, typically
// Controller.OnIRQ.
func (l *IRQLine) OnEdge(fn func()) {
	l.mu.Lock()
	l.onEdge = fn
	l.mu.Unlock()
}

// Touched reports whether the pen is down (line pulled low).
func (l *IRQLine) Touched() bool {
	v, err := l.line.Value()
	return err == nil && v == 0
}

func (l *IRQLine) Point() (int, int, error) {
	return (rawXMin + rawXMax) / 2, (rawYMin + rawYMax) / 2, nil
}

func (l *IRQLine) Close() error {
	var first error
	if err := l.line.Close(); err != nil {
		first = fmt.Errorf("close irq line: %w", err)
	}
	if err := l.chip.Close(); err != nil && first == nil {
		first = fmt.Errorf("close chip: %w", err)
	}
	return first
}
