package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/LeonardoBeccarini/wallcontroller/internal/metrics"
	"github.com/LeonardoBeccarini/wallcontroller/internal/model"
)

const (
	DefaultCapacity       = 10
	DefaultEnqueueTimeout = 10 * time.Millisecond
)

// ErrInvalidCapacity is returned by NewQueue when no buffer can be created.
var ErrInvalidCapacity = errors.New("events: invalid queue capacity")

// Queue is a bounded multi-producer single-consumer FIFO of events.
// Producers never wait longer than their timeout; the dispatcher blocks
// in Dequeue until something arrives.
type Queue struct {
	ch  chan model.Event
	log zerolog.Logger
}

type QueueOption func(*Queue)

func WithQueueLogger(l zerolog.Logger) QueueOption {
	return func(q *Queue) { q.log = l }
}

// NewQueue allocates a queue holding at most capacity events.
func NewQueue(capacity int, opts ...QueueOption) (*Queue, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}
	q := &Queue{
		ch:  make(chan model.Event, capacity),
		log: zerolog.Nop(),
	}
	for _, o := range opts {
		o(q)
	}
	return q, nil
}

// Enqueue appends ev, waiting at most timeout for room. When the queue stays
// full the event is dropped and logged; the caller is never blocked longer.
func (q *Queue) Enqueue(ev model.Event, timeout time.Duration) bool {
	if ev == nil {
		q.log.Error().Msg("refusing to enqueue nil event")
		return false
	}
	select {
	case q.ch <- ev:
		q.accepted(ev)
		return true
	default:
	}
	if timeout <= 0 {
		q.dropped(ev, "task")
		return false
	}

	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case q.ch <- ev:
		q.accepted(ev)
		return true
	case <-t.C:
		q.dropped(ev, "task")
		return false
	}
}

// TryEnqueue is the interrupt-context variant: it never waits.
func (q *Queue) TryEnqueue(ev model.Event) bool {
	if ev == nil {
		return false
	}
	select {
	case q.ch <- ev:
		q.accepted(ev)
		return true
	default:
		q.dropped(ev, "isr")
		return false
	}
}

// Dequeue blocks until an event is available. It only returns an error when
// ctx ends, which happens at process shutdown.
func (q *Queue) Dequeue(ctx context.Context) (model.Event, error) {
	select {
	case ev := <-q.ch:
		metrics.QueueDepth.Set(float64(len(q.ch)))
		return ev, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *Queue) Len() int { return len(q.ch) }
func (q *Queue) Cap() int { return cap(q.ch) }

func (q *Queue) accepted(ev model.Event) {
	metrics.QueueEnqueued.WithLabelValues(ev.Kind().String()).Inc()
	metrics.QueueDepth.Set(float64(len(q.ch)))
}

func (q *Queue) dropped(ev model.Event, path string) {
	metrics.QueueDropped.WithLabelValues(ev.Kind().String(), path).Inc()
	q.log.Warn().
		Str("kind", ev.Kind().String()).
		Str("path", path).
		Int("capacity", cap(q.ch)).
		Msg("queue full, event dropped")
}
