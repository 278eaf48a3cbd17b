// Package reducer filters a stream of float samples down to the ones worth
// reporting: a sample is emitted when it differs from the last emitted one
// after rounding, or when too many samples in a row have been suppressed.
package reducer

import "math"

const (
	// DefaultGranularity rounds to one decimal place.
	DefaultGranularity = 0.1
	// DefaultMaxSuppressed is the number of consecutive unchanged samples
	// swallowed before the next one is forced out.
	DefaultMaxSuppressed = 6
)

// Reducer holds the state of one signal. It is not safe for concurrent use;
// each signal gets its own instance owned by a single producer.
type Reducer struct {
	granularity   float64
	maxSuppressed int

	emitted    bool
	last       float64
	suppressed int
}

type Option func(*Reducer)

// WithGranularity sets the rounding step applied before comparing samples.
// Zero or a negative value compares raw values.
func WithGranularity(g float64) Option {
	return func(r *Reducer) { r.granularity = g }
}

// WithMaxSuppressed sets how many unchanged samples are swallowed in a row.
func WithMaxSuppressed(n int) Option {
	return func(r *Reducer) {
		if n >= 0 {
			r.maxSuppressed = n
		}
	}
}

func New(opts ...Option) *Reducer {
	r := &Reducer{
		granularity:   DefaultGranularity,
		maxSuppressed: DefaultMaxSuppressed,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// ShouldEmit records v and reports whether it has to be published.
func (r *Reducer) ShouldEmit(v float64) bool {
	if !r.emitted || r.quantize(r.last) != r.quantize(v) || r.suppressed >= r.maxSuppressed {
		r.emitted = true
		r.last = v
		r.suppressed = 0
		return true
	}
	r.suppressed++
	return false
}

// Last returns the last emitted value and whether anything was emitted yet.
func (r *Reducer) Last() (float64, bool) {
	return r.last, r.emitted
}

// Suppressed returns the current run of suppressed samples.
func (r *Reducer) Suppressed() int {
	return r.suppressed
}

// Reset forgets the emission history; the next sample is emitted.
func (r *Reducer) Reset() {
	r.emitted = false
	r.last = 0
	r.suppressed = 0
}

func (r *Reducer) quantize(v float64) float64 {
	if r.granularity <= 0 {
		return v
	}
	// multiply by the inverse so 0.1 steps round the same way as x*10
	inv := 1 / r.granularity
	return math.Round(v*inv) / inv
}
