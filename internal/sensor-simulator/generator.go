package sensor_simulator

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/LeonardoBeccarini/wallcontroller/internal/model"
)

// walk is one bounded random-walk channel.
type walk struct {
	value    float64
	min, max float64
	step     float64 // max change per tick
}

func (w *walk) next(r *rand.Rand) float64 {
	w.value += (r.Float64()*2 - 1) * w.step
	w.value = math.Max(w.min, math.Min(w.max, w.value))
	return w.value
}

// ErrExtTimeout simulates a DHT probe that did not answer.
var ErrExtTimeout = errors.New("external sensor timeout")

// Gas sensors need a burn-in before the IAQ estimate is trusted.
const runInTicks = 300

// DataGenerator produces plausible indoor readings without hardware. It
// implements sensors.Sensor and sensors.ExtSensor.
type DataGenerator struct {
	mu   sync.Mutex
	rnd  *rand.Rand
	now  func() time.Time
	tick int

	temp, hum, press, iaq, co2, voc walk
	extTemp, extHum                 walk

	// FailExtEvery makes every n-th external read fail; 0 never fails.
	FailExtEvery int
	extReads     int
}

// NewDataGenerator seeds the walks; the same seed yields the same sequence.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rnd:     rand.New(rand.NewSource(seed)),
		now:     time.Now,
		temp:    walk{value: 21.5, min: 15, max: 30, step: 0.05},
		hum:     walk{value: 45, min: 20, max: 80, step: 0.2},
		press:   walk{value: 101300, min: 98000, max: 104000, step: 5},
		iaq:     walk{value: 50, min: 0, max: 500, step: 1},
		co2:     walk{value: 600, min: 400, max: 5000, step: 5},
		voc:     walk{value: 0.6, min: 0, max: 50, step: 0.02},
		extTemp: walk{value: 12, min: -20, max: 40, step: 0.1},
		extHum:  walk{value: 70, min: 5, max: 100, step: 0.5},
	}
}

func (g *DataGenerator) Read(ctx context.Context) (model.Reading, error) {
	if err := ctx.Err(); err != nil {
		return model.Reading{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	g.tick++
	runIn := math.Min(1, float64(g.tick)/runInTicks)
	return model.Reading{
		Temperature: g.temp.next(g.rnd),
		Humidity:    g.hum.next(g.rnd),
		Pressure:    g.press.next(g.rnd),
		IAQ:         g.iaq.next(g.rnd),
		CO2:         g.co2.next(g.rnd),
		VOC:         g.voc.next(g.rnd),
		GasRunIn:    runIn,
		HasPressure: true,
		HasGas:      true,
		Timestamp:   g.now().UTC(),
	}, nil
}

func (g *DataGenerator) ReadExt(ctx context.Context) (float64, float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	g.extReads++
	if g.FailExtEvery > 0 && g.extReads%g.FailExtEvery == 0 {
		return 0, 0, ErrExtTimeout
	}
	return g.extTemp.next(g.rnd), g.extHum.next(g.rnd), nil
}

// AirQuality advances the CO2/IAQ walks only; used by the stand-alone
// simulator that plays the role of a remote air-quality node.
func (g *DataGenerator) AirQuality() model.AirQuality {
	g.mu.Lock()
	defer g.mu.Unlock()
	return model.AirQuality{CO2: g.co2.next(g.rnd), IAQ: g.iaq.next(g.rnd)}
}
