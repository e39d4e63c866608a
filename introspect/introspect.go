// Package introspect republishes a retained snapshot of core state onto
// the internal bus, giving any subscriber visibility into
// winner/breathing/power-hold state even when a hardware backend has
// degraded to the none variant. Service itself never runs its own
// goroutine or reads core state: the caller (core.LedCore's single
// select-loop) owns the ticker and calls Publish with a snapshot it
// already computed on that same goroutine, so there is exactly one
// reader of arbiter/breathing state and no handoff to republish it on.
package introspect

import (
	"time"

	"github.com/sailfishos/mce-ledind/bus"
)

var topicState = bus.T("introspect", "state")

// Snapshot is the read-only view of core state published at each tick.
type Snapshot struct {
	Winner        string
	Breathing     bool
	PowerHoldHeld bool
	TS            int64
}

// Service publishes Snapshot values as retained messages. It holds no
// state of its own beyond the connection and the configured interval;
// the caller decides when to call Publish (on a ticker, or right after
// an arbiter turn).
type Service struct {
	conn     *bus.Connection
	interval time.Duration
}

// New constructs a Service. interval <= 0 defaults to 5 seconds.
func New(conn *bus.Connection, interval time.Duration) *Service {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Service{conn: conn, interval: interval}
}

// Interval reports the configured republish period, for the caller to
// arm its own ticker against.
func (s *Service) Interval() time.Duration {
	return s.interval
}

// Publish sends snap as a retained message on the introspection topic.
func (s *Service) Publish(snap Snapshot) {
	s.conn.Publish(s.conn.NewMessage(topicState, snap, true))
}
