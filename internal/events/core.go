// Package events is the event core of the controller: a bounded queue,
// the per-signal producer façade and the observer dispatcher.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/LeonardoBeccarini/wallcontroller/pkg/reducer"
)

// Config sizes the core.
type Config struct {
	Capacity       int
	EnqueueTimeout time.Duration
	Granularity    float64
	MaxSuppressed  int
}

func DefaultConfig() Config {
	return Config{
		Capacity:       DefaultCapacity,
		EnqueueTimeout: DefaultEnqueueTimeout,
		Granularity:    reducer.DefaultGranularity,
		MaxSuppressed:  reducer.DefaultMaxSuppressed,
	}
}

// Core bundles the queue with its producer and consumer sides. It is built
// once at startup and handed to producers and observers explicitly.
type Core struct {
	Queue      *Queue
	Poster     *Poster
	Dispatcher *Dispatcher
}

func NewCore(cfg Config, log zerolog.Logger) (*Core, error) {
	q, err := NewQueue(cfg.Capacity, WithQueueLogger(log.With().Str("component", "queue").Logger()))
	if err != nil {
		return nil, fmt.Errorf("event core init: %w", err)
	}
	p := NewPoster(q,
		WithEnqueueTimeout(cfg.EnqueueTimeout),
		WithPosterLogger(log.With().Str("component", "poster").Logger()),
		WithReducerOptions(
			reducer.WithGranularity(cfg.Granularity),
			reducer.WithMaxSuppressed(cfg.MaxSuppressed),
		),
	)
	d := NewDispatcher(q, WithDispatcherLogger(log.With().Str("component", "dispatcher").Logger()))
	return &Core{Queue: q, Poster: p, Dispatcher: d}, nil
}

// Run blocks in the dispatch loop until ctx ends.
func (c *Core) Run(ctx context.Context) error {
	return c.Dispatcher.Run(ctx)
}
