package backlight

import (
	"fmt"

	gpiod "github.com/warthog618/go-gpiocdev"
)

// GPIOPin is a Pin on a character-device GPIO line.
type GPIOPin struct {
	chip *gpiod.Chip
	line *gpiod.Line
}

// OpenGPIOPin requests pin as an output, initially high (backlight off).
func OpenGPIOPin(chipName string, pin int) (*GPIOPin, error) {
	chip, err := gpiod.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open chip %s: %w", chipName, err)
	}
	line, err := chip.RequestLine(pin, gpiod.AsOutput(1))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request backlight pin %d: %w", pin, err)
	}
	return &GPIOPin{chip: chip, line: line}, nil
}

func (p *GPIOPin) SetValue(v int) error { return p.line.SetValue(v) }

func (p *GPIOPin) Close() error {
	var first error
	if err := p.line.Close(); err != nil {
		first = fmt.Errorf("close backlight line: %w", err)
	}
	if err := p.chip.Close(); err != nil && first == nil {
		first = fmt.Errorf("close chip: %w", err)
	}
	return first
}

// LogPin stands in when no GPIO is configured.
type LogPin struct{ Value int }

func (p *LogPin) SetValue(v int) error { p.Value = v; return nil }
