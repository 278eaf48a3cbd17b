package ota

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type phaseRecorder struct {
	mu     sync.Mutex
	phases []string
}

func (r *phaseRecorder) add(s string) bool {
	r.mu.Lock()
	r.phases = append(r.phases, s)
	r.mu.Unlock()
	return true
}

func (r *phaseRecorder) get() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return strings.Join(r.phases, ",")
}

func (r *phaseRecorder) PostOTAStarted() bool  { return r.add("start") }
func (r *phaseRecorder) PostOTADoneOK() bool   { return r.add("ok") }
func (r *phaseRecorder) PostOTADoneFail() bool { return r.add("fail") }

type restartCounter struct {
	ch chan struct{}
}

func (r *restartCounter) Restart() { r.ch <- struct{}{} }

type updaterFunc func(ctx context.Context, id string) error

func (f updaterFunc) Update(ctx context.Context, id string) error { return f(ctx, id) }

func TestSuccessfulUpdateRestarts(t *testing.T) {
	rec := &phaseRecorder{}
	rs := &restartCounter{ch: make(chan struct{}, 1)}
	var gotID string
	c := NewController(updaterFunc(func(_ context.Context, id string) error { gotID = id; return nil }), rec, rs, zerolog.Nop())
	c.RestartDelay = 5 * time.Millisecond

	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if rec.get() != "start,ok" {
		t.Fatalf("phases %s", rec.get())
	}
	if gotID == "" || gotID != c.LastRunID() {
		t.Fatalf("run id %q vs %q", gotID, c.LastRunID())
	}
	select {
	case <-rs.ch:
	case <-time.After(time.Second):
		t.Fatalf("no restart")
	}
}

func TestFailedUpdate(t *testing.T) {
	rec := &phaseRecorder{}
	rs := &restartCounter{ch: make(chan struct{}, 1)}
	boom := errors.New("flash write")
	c := NewController(updaterFunc(func(context.Context, string) error { return boom }), rec, rs, zerolog.Nop())
	c.RestartDelay = time.Millisecond

	if err := c.Start(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("got %v", err)
	}
	if rec.get() != "start,fail" {
		t.Fatalf("phases %s", rec.get())
	}
	select {
	case <-rs.ch:
		t.Fatalf("failed update must not restart")
	case <-time.After(20 * time.Millisecond):
	}
	if c.Running() {
		t.Fatalf("still running")
	}
}

func TestOnlyOneUpdateAtATime(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	c := NewController(updaterFunc(func(context.Context, string) error {
		close(entered)
		<-release
		return nil
	}), &phaseRecorder{}, nil, zerolog.Nop())

	if err := c.Trigger(); err != nil {
		t.Fatal(err)
	}
	<-entered
	if err := c.Trigger(); !errors.Is(err, ErrInProgress) {
		t.Fatalf("got %v", err)
	}
	if err := c.Start(context.Background()); !errors.Is(err, ErrInProgress) {
		t.Fatalf("got %v", err)
	}
	close(release)
	deadline := time.Now().Add(time.Second)
	for c.Running() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if c.Running() {
		t.Fatalf("update never finished")
	}
}

func TestHTTPUpdaterStagesImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Request-ID") != "run-1" {
			http.Error(w, "missing id", http.StatusBadRequest)
			return
		}
		w.Write([]byte("firmware-bytes"))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "stage", "image.bin")
	u := NewHTTPUpdater(srv.URL, path, zerolog.Nop())
	if err := u.Update(context.Background(), "run-1"); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil || string(b) != "firmware-bytes" {
		t.Fatalf("staged %q, %v", b, err)
	}
}

func TestHTTPUpdaterErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "image.bin")
	if err := NewHTTPUpdater(srv.URL, path, zerolog.Nop()).Update(context.Background(), "x"); err == nil {
		t.Fatalf("404 must fail")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("nothing should be staged")
	}
	if err := NewHTTPUpdater("", path, zerolog.Nop()).Update(context.Background(), "x"); !errors.Is(err, ErrNoImageURL) {
		t.Fatalf("got %v", err)
	}
}
