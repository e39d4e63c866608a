// Package breathing decides whether the active pattern should be
// animated in software (a smooth sinusoidal on/off ramp) rather than
// hard-toggled, and holds a suspend-blocking power-hold resource for
// the duration of that animation.
package breathing

import (
	"context"
	"sync"
	"time"

	"github.com/sailfishos/mce-ledind/arbiter"
	"github.com/sailfishos/mce-ledind/bus"
	"github.com/sailfishos/mce-ledind/repository"
	"github.com/sailfishos/mce-ledind/x/ramp"
)

// powerHoldTopic is a retained topic: its last published value is the
// process-wide power-hold state, readable by anything subscribed to
// it (the introspection publisher included) the same way any other
// retained property is, per the bus package's sticky-message model.
var powerHoldTopic = bus.T("powerhold", "state")

// Settings is the subset of the settings store the supervisor reads
// on every re-evaluation; it is read fresh each time rather than
// cached, so a live settings change takes effect on the pattern's next
// activity.
type Settings interface {
	BreathingEnabled() bool
	BreathBatteryLimit() int
}

// Driver is the narrow backend contract the supervisor drives the
// envelope through; backend.Driver satisfies this structurally.
type Driver interface {
	SetBrightness(level int) error
}

// RampFunc starts a cancellable background ramp; production wiring
// passes ramp.StartSine, tests substitute a synchronous stub.
type RampFunc func(top uint16, onMs, offMs uint32, steps uint16, tick ramp.Tick, set ramp.Step)

// Supervisor owns the breathing latch and the power-hold it gates.
// All of its state is touched only from the main loop's turn, the
// same single-writer discipline every other core component uses.
type Supervisor struct {
	conn      *bus.Connection
	settings  Settings
	driver    Driver
	startRamp RampFunc

	breathing bool
	holdHeld  bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New constructs a Supervisor. conn is used only to publish the
// retained power-hold topic; it never subscribes to anything.
func New(conn *bus.Connection, settings Settings, driver Driver, startRamp RampFunc) *Supervisor {
	if startRamp == nil {
		startRamp = ramp.StartSine
	}
	return &Supervisor{conn: conn, settings: settings, driver: driver, startRamp: startRamp}
}

// eligible evaluates the breathing predicate for the current winner
// (nil winner means nothing is active, which is never eligible).
func (s *Supervisor) eligible(winner *repository.Pattern, env arbiter.Environment) bool {
	if winner == nil {
		return false
	}
	if winner.MustBreathe() {
		return true
	}
	if !s.settings.BreathingEnabled() {
		return false
	}
	if env.ChargerState != arbiter.ChargerOn && env.BatteryLevel < s.settings.BreathBatteryLimit() {
		return false
	}
	return winner.CanBreathe()
}

// Reevaluate is called once per arbiter turn with the winner and
// environment the arbiter just settled on; it drives the power-hold/
// breathing state machine. Acquisition order is strict: acquire the
// hold before enabling the ramp, and disable the ramp before releasing
// the hold — the hold is never released while the ramp might still be
// running.
func (s *Supervisor) Reevaluate(winner *repository.Pattern, env arbiter.Environment) {
	want := s.eligible(winner, env)
	switch {
	case want && !s.breathing:
		s.acquireHold()
		s.enable(winner)
	case !want && s.breathing:
		s.disable()
		s.releaseHold()
	}
}

func (s *Supervisor) enable(p *repository.Pattern) {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.breathing = true

	set := func(level uint16) { _ = s.driver.SetBrightness(int(level)) }

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.startRamp(15, uint32(p.OnPeriodMs), uint32(p.OffPeriodMs), 32, tickFromContext(ctx), set)
	}()
}

// tickFromContext adapts a context.Context's cancellation into the
// ramp.Tick shape StartSine drives its loop with: it sleeps for d and
// reports false the moment ctx is done, which StartSine treats as
// "stop the standing envelope now".
func tickFromContext(ctx context.Context) ramp.Tick {
	return func(d time.Duration) bool {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return false
		case <-timer.C:
			return ctx.Err() == nil
		}
	}
}

func (s *Supervisor) disable() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.wg.Wait()
	s.breathing = false
}

func (s *Supervisor) acquireHold() {
	if s.holdHeld {
		return
	}
	s.holdHeld = true
	if s.conn != nil {
		s.conn.Publish(s.conn.NewMessage(powerHoldTopic, true, true))
	}
}

func (s *Supervisor) releaseHold() {
	if !s.holdHeld {
		return
	}
	s.holdHeld = false
	if s.conn != nil {
		s.conn.Publish(s.conn.NewMessage(powerHoldTopic, false, true))
	}
}

// HoldHeld reports whether the power-hold is currently acquired, used
// by the introspection publisher.
func (s *Supervisor) HoldHeld() bool { return s.holdHeld }

// Breathing reports whether the ramp is currently running.
func (s *Supervisor) Breathing() bool { return s.breathing }

// Shutdown guarantees the power-hold is released on every path out of
// the process, including a clean shutdown with breathing still active.
func (s *Supervisor) Shutdown() {
	if s.breathing {
		s.disable()
	}
	s.releaseHold()
}
