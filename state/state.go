// Package state centralizes mutation of a Pattern's active/enabled
// bits: it is the only code path allowed to flip Pattern.Active or
// Pattern.Enabled, so that timer arming and signal emission stay
// attached to every mutation the same way every time. Arbiter
// re-evaluation is left to the caller, once per batch of mutations.
package state

import (
	"github.com/sailfishos/mce-ledind/repository"
	"github.com/sailfishos/mce-ledind/x/timex"
)

// Notifier emits the two outbound bus signals. Implementations must
// not block; the bus connection's own queueing handles backpressure.
type Notifier interface {
	PatternActivated(name string)
	PatternDeactivated(name string)
}

// Manager owns the auto-deactivate timer schedule and is the sole
// entry point for flipping a Pattern's Active/Enabled bits.
type Manager struct {
	clock    timex.Clock
	notifier Notifier
	timers   *timerSet
}

func NewManager(clock timex.Clock, notifier Notifier) *Manager {
	return &Manager{clock: clock, notifier: notifier, timers: newTimerSet()}
}

// SetActive is a no-op if Active is unchanged. On a real transition it
// assigns the field, arms or disarms the auto-deactivate timer, and —
// if the pattern is Enabled — emits the matching activated/deactivated
// signal. It does not itself trigger arbiter re-evaluation: callers
// batch one or more SetActive/SetEnabled calls and then call
// arbiter.Reevaluate exactly once.
func (m *Manager) SetActive(p *repository.Pattern, active bool) {
	if p.Active == active {
		return
	}
	p.Active = active
	if active {
		if p.AutoDeactivateSeconds > 0 {
			m.timers.arm(p.Name, m.clock.NowMs()+int64(p.AutoDeactivateSeconds)*1000)
		}
	} else {
		m.timers.cancel(p.Name)
		p.Undecided = false
	}
	if p.Enabled {
		if active {
			m.notifier.PatternActivated(p.Name)
		} else {
			m.notifier.PatternDeactivated(p.Name)
		}
	}
}

// SetEnabled assigns the Enabled bit. It never fires a notification,
// even if Active happens to be true at the time.
func (m *Manager) SetEnabled(p *repository.Pattern, enabled bool) {
	p.Enabled = enabled
}

// NextDueMs reports when the earliest-armed timer should fire, for the
// main loop to size its select/timer wait against.
func (m *Manager) NextDueMs() (int64, bool) { return m.timers.nextDueMs() }

// FireDue deactivates every pattern whose auto-deactivate timer is due
// at or before now, returning the names that fired so the caller can
// run combination-rule propagation per name before a single batched
// arbiter.Reevaluate call.
func (m *Manager) FireDue(now int64, find func(name string) *repository.Pattern) []string {
	names := m.timers.popDue(now)
	fired := make([]string, 0, len(names))
	for _, name := range names {
		p := find(name)
		if p == nil {
			continue
		}
		m.SetActive(p, false)
		fired = append(fired, name)
	}
	return fired
}
