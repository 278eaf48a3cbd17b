package sensor_simulator

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/LeonardoBeccarini/wallcontroller/internal/testutil/fakemqtt"
	"github.com/LeonardoBeccarini/wallcontroller/pkg/mqttconn"
)

func TestGeneratorIsDeterministicPerSeed(t *testing.T) {
	a, b := NewDataGenerator(42), NewDataGenerator(42)
	ctx := context.Background()
	for i := 0; i < 50; i++ {
		ra, _ := a.Read(ctx)
		rb, _ := b.Read(ctx)
		if ra.Temperature != rb.Temperature || ra.CO2 != rb.CO2 {
			t.Fatalf("step %d diverged", i)
		}
	}
}

func TestGeneratorStaysInBounds(t *testing.T) {
	g := NewDataGenerator(7)
	ctx := context.Background()
	for i := 0; i < 5000; i++ {
		r, err := g.Read(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if r.Temperature < 15 || r.Temperature > 30 || r.Humidity < 20 || r.Humidity > 80 {
			t.Fatalf("out of bounds: %+v", r)
		}
		if r.GasRunIn < 0 || r.GasRunIn > 1 {
			t.Fatalf("run-in %v", r.GasRunIn)
		}
	}
	r, _ := g.Read(ctx)
	if r.GasRunIn != 1 {
		t.Fatalf("gas sensor should be run in, got %v", r.GasRunIn)
	}
}

func TestReadExtFailures(t *testing.T) {
	g := NewDataGenerator(1)
	g.FailExtEvery = 3
	ctx := context.Background()
	var fails int
	for i := 0; i < 9; i++ {
		if _, _, err := g.ReadExt(ctx); errors.Is(err, ErrExtTimeout) {
			fails++
		}
	}
	if fails != 3 {
		t.Fatalf("fails=%d", fails)
	}

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := g.Read(cctx); err == nil {
		t.Fatalf("cancelled context must fail")
	}
}

func TestSimulatorPublishesAirQuality(t *testing.T) {
	c := fakemqtt.New()
	sim := NewSensorSimulator("hall", mqttconn.NewPublisher(c, 1, time.Second), NewDataGenerator(3), zerolog.Nop())
	if err := sim.PublishOnce(); err != nil {
		t.Fatal(err)
	}
	got := c.Published()
	if len(got) != 1 || got[0].Topic != "state/hall/air_quality" {
		t.Fatalf("published %+v", got)
	}
	if !regexp.MustCompile(`^\d+ \d+\.\d$`).MatchString(got[0].Payload) {
		t.Fatalf("payload %q", got[0].Payload)
	}
}
