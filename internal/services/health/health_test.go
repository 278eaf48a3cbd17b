package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func fixed(b bool) func() bool { return func() bool { return b } }

func TestEvaluate(t *testing.T) {
	old := func() time.Duration { return time.Hour }
	recent := func() time.Duration { return time.Second }
	cases := []struct {
		name   string
		checks Checks
		want   string
	}{
		{"all up", Checks{Dispatching: fixed(true), MQTTConnected: fixed(true), WriteErrorAge: old}, "ok"},
		{"only dispatcher configured", Checks{Dispatching: fixed(true)}, "ok"},
		{"broker down", Checks{Dispatching: fixed(true), MQTTConnected: fixed(false)}, "degraded"},
		{"recent write error", Checks{Dispatching: fixed(true), WriteErrorAge: recent}, "degraded"},
		{"dispatcher stopped", Checks{Dispatching: fixed(false), MQTTConnected: fixed(true)}, "down"},
		{"nothing", Checks{}, "down"},
	}
	for _, c := range cases {
		if got := c.checks.Evaluate().Status; got != c.want {
			t.Errorf("%s: got %s want %s", c.name, got, c.want)
		}
	}
}

func TestRouter(t *testing.T) {
	checks := Checks{
		Dispatching:   fixed(true),
		MQTTConnected: fixed(false),
		QueueDepth:    func() (int, int) { return 3, 10 },
	}
	h := NewRouter(checks, func() any { return map[string]string{"page": "main"} })

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	var st Status
	if err := json.NewDecoder(rec.Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK || st.Status != "degraded" || st.QueueLen != 3 || st.QueueCap != 10 {
		t.Fatalf("healthz %d %+v", rec.Code, st)
	}
	if st.MQTTConnected == nil || *st.MQTTConnected {
		t.Fatalf("mqtt state missing")
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/state", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"page":"main"`) {
		t.Fatalf("state %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics %d", rec.Code)
	}
}

func TestGRPCHealthFollowsChecks(t *testing.T) {
	up := true
	g := NewGRPC(Checks{Dispatching: func() bool { return up }}, zerolog.Nop())
	ctx := context.Background()

	resp, err := g.hs.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil || resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("got %v %v", resp, err)
	}
	up = false
	g.Update()
	resp, err = g.hs.Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil || resp.GetStatus() != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("got %v %v", resp, err)
	}
}
