// Package persistence stores measurements in InfluxDB.
package persistence

import (
	"sync"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"
)

// PointWriter is the non-blocking part of api.WriteAPI the observer uses.
type PointWriter interface {
	WritePoint(p *write.Point)
	Flush()
	Errors() <-chan error
}

// Writer wraps the write API and tracks the last asynchronous write error
// for /healthz and /readyz.
type Writer struct {
	api     PointWriter
	now     func() time.Time
	mu      sync.RWMutex
	lastErr time.Time
	counts  map[string]int64
}

func NewWriter(w PointWriter, log zerolog.Logger) *Writer {
	ww := &Writer{
		api:     w,
		now:     time.Now,
		lastErr: time.Now().Add(-24 * time.Hour),
		counts:  make(map[string]int64),
	}
	go func() {
		for err := range w.Errors() {
			if err == nil {
				continue
			}
			ww.mu.Lock()
			ww.lastErr = ww.now()
			ww.mu.Unlock()
			log.Error().Err(err).Msg("influx write error")
		}
	}()
	return ww
}

// LastErrorAge is how long ago the last write error happened.
func (w *Writer) LastErrorAge() time.Duration {
	if w == nil {
		return 99999 * time.Hour
	}
	w.mu.RLock()
	t := w.lastErr
	w.mu.RUnlock()
	return w.now().Sub(t)
}

func (w *Writer) Write(signal string, p *write.Point) {
	w.api.WritePoint(p)
	w.mu.Lock()
	w.counts[signal]++
	w.mu.Unlock()
}

// Count is the number of points written for signal.
func (w *Writer) Count(signal string) int64 {
	if w == nil {
		return 0
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.counts[signal]
}

func (w *Writer) Flush() { w.api.Flush() }
