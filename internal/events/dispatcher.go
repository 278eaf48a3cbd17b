package events

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/LeonardoBeccarini/wallcontroller/internal/metrics"
	"github.com/LeonardoBeccarini/wallcontroller/internal/model"
)

// Observer receives every dispatched event. Observers are compared by
// identity, so implementations should be pointers; Register rejects
// types that cannot be compared at all.
type Observer interface {
	Notify(ev model.Event)
	Name() string
}

type funcObserver struct {
	name string
	fn   func(model.Event)
}

func (f *funcObserver) Notify(ev model.Event) { f.fn(ev) }
func (f *funcObserver) Name() string          { return f.name }

// ObserverFunc wraps a plain function as a named Observer.
func ObserverFunc(name string, fn func(model.Event)) Observer {
	return &funcObserver{name: name, fn: fn}
}

// State is the dispatcher's position in its loop.
type State int32

const (
	StateIdle State = iota
	StateDispatching
)

func (s State) String() string {
	if s == StateDispatching {
		return "dispatching"
	}
	return "idle"
}

// Dispatcher drains a Queue and notifies the registered observers in
// registration order.
type Dispatcher struct {
	queue *Queue
	log   zerolog.Logger

	mu sync.Mutex
	// observers is replaced on every change and never modified in place,
	// so a snapshot taken under mu stays valid after the lock is released.
	observers []Observer

	state      atomic.Int32
	running    atomic.Bool
	dispatched atomic.Uint64
}

type DispatcherOption func(*Dispatcher)

func WithDispatcherLogger(l zerolog.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.log = l }
}

func NewDispatcher(q *Queue, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{queue: q, log: zerolog.Nop()}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Register appends o to the observer list.
func (d *Dispatcher) Register(o Observer) {
	if o == nil {
		d.log.Error().Msg("register: nil observer ignored")
		return
	}
	if !reflect.TypeOf(o).Comparable() {
		d.log.Error().Str("observer", observerName(o)).Msg("register: uncomparable observer ignored, use a pointer")
		return
	}
	d.mu.Lock()
	next := make([]Observer, len(d.observers), len(d.observers)+1)
	copy(next, d.observers)
	d.observers = append(next, o)
	d.mu.Unlock()
	d.log.Debug().Str("observer", observerName(o)).Msg("observer registered")
}

// Unregister removes o. It is safe to call from any goroutine, including
// from inside a Notify; the event being dispatched may still reach o.
func (d *Dispatcher) Unregister(o Observer) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, cur := range d.observers {
		if sameObserver(cur, o) {
			next := make([]Observer, 0, len(d.observers)-1)
			next = append(next, d.observers[:i]...)
			next = append(next, d.observers[i+1:]...)
			d.observers = next
			return true
		}
	}
	return false
}

// sameObserver compares by identity. A comparable struct may still hold an
// uncomparable value in an interface field; such pairs are never equal.
func sameObserver(a, b Observer) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}

// Observers returns the names of the registered observers in order.
func (d *Dispatcher) Observers() []string {
	snap := d.snapshot()
	names := make([]string, 0, len(snap))
	for _, o := range snap {
		names = append(names, observerName(o))
	}
	return names
}

func (d *Dispatcher) State() State       { return State(d.state.Load()) }
func (d *Dispatcher) Running() bool      { return d.running.Load() }
func (d *Dispatcher) Dispatched() uint64 { return d.dispatched.Load() }

// Run dispatches events until ctx ends. In production ctx lives as long as
// the process.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.running.Store(true)
	defer d.running.Store(false)
	d.log.Info().Int("capacity", d.queue.Cap()).Msg("dispatcher started")

	for {
		ev, err := d.queue.Dequeue(ctx)
		if err != nil {
			d.log.Info().Msg("dispatcher stopped")
			return err
		}
		d.dispatch(ev)
	}
}

func (d *Dispatcher) snapshot() []Observer {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.observers
}

func (d *Dispatcher) dispatch(ev model.Event) {
	d.state.Store(int32(StateDispatching))
	defer d.state.Store(int32(StateIdle))

	kind := ev.Kind().String()
	for _, o := range d.snapshot() {
		if o == nil {
			d.log.Error().Str("kind", kind).Msg("nil observer in registry, skipped")
			continue
		}
		d.notify(o, ev, kind)
	}
	d.dispatched.Add(1)
	metrics.Dispatched.WithLabelValues(kind).Inc()
}

func (d *Dispatcher) notify(o Observer, ev model.Event, kind string) {
	name := observerName(o)
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			metrics.ObserverPanics.WithLabelValues(name).Inc()
			d.log.Error().
				Str("observer", name).
				Str("kind", kind).
				Str("panic", fmt.Sprint(r)).
				Msg("observer panicked")
		}
		metrics.ObserverDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()
	d.log.Trace().Str("observer", name).Str("kind", kind).Msg("notifying")
	o.Notify(ev)
}

// observerName guards against observers that are typed nil pointers.
func observerName(o Observer) (name string) {
	defer func() {
		if recover() != nil {
			name = fmt.Sprintf("%T", o)
		}
	}()
	return o.Name()
}
