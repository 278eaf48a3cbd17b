package events

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/LeonardoBeccarini/wallcontroller/internal/model"
)

// syncBuffer lets the dispatcher goroutine log while the test reads.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testLogger(buf *syncBuffer) zerolog.Logger {
	return zerolog.New(buf).Level(zerolog.DebugLevel)
}

func TestNewQueueRejectsBadCapacity(t *testing.T) {
	for _, c := range []int{0, -1} {
		if _, err := NewQueue(c); !errors.Is(err, ErrInvalidCapacity) {
			t.Fatalf("capacity %d: expected ErrInvalidCapacity, got %v", c, err)
		}
	}
}

func TestQueueFIFO(t *testing.T) {
	q, err := NewQueue(DefaultCapacity)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for i := 0; i < DefaultCapacity; i++ {
		if !q.Enqueue(model.Measurement{Signal: model.SignalCO2, Value: float64(i)}, time.Millisecond) {
			t.Fatalf("enqueue %d failed", i)
		}
	}
	ctx := context.Background()
	for i := 0; i < DefaultCapacity; i++ {
		ev, err := q.Dequeue(ctx)
		if err != nil {
			t.Fatalf("dequeue: %v", err)
		}
		m, ok := ev.(model.Measurement)
		if !ok || m.Value != float64(i) {
			t.Fatalf("position %d: got %#v", i, ev)
		}
	}
}

func TestQueueOverflowDropsExactlyOne(t *testing.T) {
	var buf syncBuffer
	const capacity = 4
	q, _ := NewQueue(capacity, WithQueueLogger(testLogger(&buf)))

	drops := 0
	for i := 0; i < capacity+1; i++ {
		if !q.Enqueue(model.Measurement{Signal: model.SignalVOC, Value: float64(i)}, 5*time.Millisecond) {
			drops++
		}
	}
	if drops != 1 {
		t.Fatalf("drops=%d want 1", drops)
	}
	if !strings.Contains(buf.String(), "queue full") {
		t.Fatalf("drop not logged: %s", buf.String())
	}
	if q.Len() != capacity {
		t.Fatalf("len=%d want %d", q.Len(), capacity)
	}
	for i := 0; i < capacity; i++ {
		ev, _ := q.Dequeue(context.Background())
		if ev.(model.Measurement).Value != float64(i) {
			t.Fatalf("position %d: got %#v", i, ev)
		}
	}
}

func TestEnqueueTimeoutIsBounded(t *testing.T) {
	q, _ := NewQueue(1)
	q.Enqueue(model.Heartbeat{}, 0)

	start := time.Now()
	if q.Enqueue(model.Heartbeat{}, 20*time.Millisecond) {
		t.Fatalf("enqueue into full queue succeeded")
	}
	if el := time.Since(start); el > 500*time.Millisecond {
		t.Fatalf("enqueue blocked for %v", el)
	}
}

func TestEnqueueWaitsForRoom(t *testing.T) {
	q, _ := NewQueue(1)
	q.Enqueue(model.Heartbeat{}, 0)
	go func() {
		time.Sleep(5 * time.Millisecond)
		_, _ = q.Dequeue(context.Background())
	}()
	if !q.Enqueue(model.GasStatus{Ready: true}, time.Second) {
		t.Fatalf("enqueue should succeed once the consumer makes room")
	}
}

func TestTryEnqueueNeverBlocks(t *testing.T) {
	var buf syncBuffer
	q, _ := NewQueue(1, WithQueueLogger(testLogger(&buf)))
	if !q.TryEnqueue(model.Touched{Gesture: model.GestureSwipeUp}) {
		t.Fatalf("first TryEnqueue failed")
	}
	if q.TryEnqueue(model.Touched{Gesture: model.GestureSwipeDown}) {
		t.Fatalf("TryEnqueue into full queue succeeded")
	}
	if !strings.Contains(buf.String(), `"path":"isr"`) {
		t.Fatalf("isr drop not logged: %s", buf.String())
	}
}

func TestDequeueHonoursContext(t *testing.T) {
	q, _ := NewQueue(1)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := q.Dequeue(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline, got %v", err)
	}
}

func TestEnqueueNil(t *testing.T) {
	q, _ := NewQueue(1)
	if q.Enqueue(nil, time.Millisecond) || q.TryEnqueue(nil) {
		t.Fatalf("nil events must be refused")
	}
}
