package mqtt_bridge

import (
	"context"
	"time"
)

// DefaultHeartbeatInterval is used when no internal sensor drives the heartbeat.
const DefaultHeartbeatInterval = 60 * time.Second

type HeartbeatPoster interface {
	PostHeartbeat() bool
}

type connectedReporter interface {
	Connected() bool
}

// RunHeartbeat posts a heartbeat every interval while the broker is
// reachable. It returns when ctx is done.
func RunHeartbeat(ctx context.Context, interval time.Duration, conn connectedReporter, p HeartbeatPoster) {
	if interval <= 0 {
		interval = DefaultHeartbeatInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if conn.Connected() {
				p.PostHeartbeat()
			}
		}
	}
}
