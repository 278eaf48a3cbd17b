// Package health exposes liveness, readiness and metrics for the controller.
package health

import (
	"encoding/json"
	"net/http"
	"time"
)

// Checks reports the state of each dependency. Nil funcs mean the
// dependency is not configured and is left out of the verdict.
type Checks struct {
	Dispatching   func() bool
	MQTTConnected func() bool
	// WriteErrorAge is the time since the last storage write error.
	WriteErrorAge func() time.Duration
	QueueDepth    func() (length, capacity int)
}

// MinErrorAge is how long storage must be error-free to count as healthy.
const MinErrorAge = 30 * time.Second

type Status struct {
	Status          string   `json:"status"`
	Dispatching     bool     `json:"dispatching"`
	MQTTConnected   *bool    `json:"mqtt_connected,omitempty"`
	StorageOK       *bool    `json:"storage_ok,omitempty"`
	LastWriteErrorS *float64 `json:"last_write_error_age_sec,omitempty"`
	QueueLen        int      `json:"queue_len"`
	QueueCap        int      `json:"queue_cap"`
}

// Evaluate computes the current status: "ok" when everything configured is
// up, "degraded" when only the dispatcher is, "down" otherwise.
func (c Checks) Evaluate() Status {
	st := Status{Dispatching: c.Dispatching != nil && c.Dispatching()}
	allOK := st.Dispatching
	if c.MQTTConnected != nil {
		v := c.MQTTConnected()
		st.MQTTConnected = &v
		allOK = allOK && v
	}
	if c.WriteErrorAge != nil {
		age := c.WriteErrorAge()
		secs := age.Seconds()
		ok := age > MinErrorAge
		st.LastWriteErrorS, st.StorageOK = &secs, &ok
		allOK = allOK && ok
	}
	if c.QueueDepth != nil {
		st.QueueLen, st.QueueCap = c.QueueDepth()
	}
	switch {
	case allOK:
		st.Status = "ok"
	case st.Dispatching:
		st.Status = "degraded"
	default:
		st.Status = "down"
	}
	return st
}

func (c Checks) Ready() bool { return c.Evaluate().Status == "ok" }

type healthHandler struct{ checks Checks }

func NewHealthHandler(c Checks) http.Handler { return &healthHandler{checks: c} }

func (h *healthHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.checks.Evaluate())
}

type readyHandler struct{ checks Checks }

// NewReadyHandler answers 200 only when every configured dependency is up.
func NewReadyHandler(c Checks) http.Handler { return &readyHandler{checks: c} }

func (h *readyHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	ready := h.checks.Ready()
	code := http.StatusOK
	if !ready {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, struct {
		Ready bool `json:"ready"`
	}{ready})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
