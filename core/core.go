// Package core wires the repository, activation graph, pattern-state
// manager, arbiter, backend and breathing supervisor into one
// process-wide LedCore value and runs the single select-loop that
// drives them: one goroutine, no locks, exactly one batched
// re-evaluation per inbound event or timer turn.
package core

import (
	"context"
	"time"

	"github.com/sailfishos/mce-ledind/arbiter"
	"github.com/sailfishos/mce-ledind/bus"
	"github.com/sailfishos/mce-ledind/breathing"
	"github.com/sailfishos/mce-ledind/errcode"
	"github.com/sailfishos/mce-ledind/graph"
	"github.com/sailfishos/mce-ledind/introspect"
	"github.com/sailfishos/mce-ledind/repository"
	"github.com/sailfishos/mce-ledind/state"
	"github.com/sailfishos/mce-ledind/x/timex"
	"github.com/sirupsen/logrus"
)

var (
	topicActivate   = bus.T("request", "activate_pattern")
	topicDeactivate = bus.T("request", "deactivate_pattern")
	topicEnableLED  = bus.T("request", "enable_led")
	topicDisableLED = bus.T("request", "disable_led")
	topicCtrlWild   = bus.T("request", "+")

	topicEnvWild = bus.T("env", "+")

	topicPatternActivated   = bus.T("signal", "pattern_activated")
	topicPatternDeactivated = bus.T("signal", "pattern_deactivated")
)

// notifier adapts state.Manager's signal calls onto the bus.
type notifier struct{ conn *bus.Connection }

func (n notifier) PatternActivated(name string) {
	n.conn.Publish(n.conn.NewMessage(topicPatternActivated, name, false))
}

func (n notifier) PatternDeactivated(name string) {
	n.conn.Publish(n.conn.NewMessage(topicPatternDeactivated, name, false))
}

// LedCore is the single process-wide aggregate; every entry point
// takes it by mutable borrow and every field is touched only from Run.
type LedCore struct {
	conn   *bus.Connection
	log    *logrus.Logger
	clock  timex.Clock
	repo   *repository.Repository
	graph  *graph.Graph
	state  *state.Manager
	arb    *arbiter.Arbiter
	breath *breathing.Supervisor
	intro  *introspect.Service

	env arbiter.Environment
}

// New builds a LedCore from its already-constructed collaborators.
// Loading the repository, wiring combination rules, and selecting a
// backend all happen in the caller (main), not here — this type only
// owns runtime orchestration.
func New(conn *bus.Connection, log *logrus.Logger, clock timex.Clock, repo *repository.Repository, g *graph.Graph, driver arbiter.Driver, breath *breathing.Supervisor) *LedCore {
	c := &LedCore{conn: conn, log: log, clock: clock, repo: repo, graph: g, breath: breath}
	c.state = state.NewManager(clock, notifier{conn: conn})
	c.arb = arbiter.New(repo, driver, breath, c.state)
	c.intro = introspect.New(conn, 5*time.Second)
	return c
}

func (c *LedCore) snapshot() introspect.Snapshot {
	snap := introspect.Snapshot{TS: c.clock.NowMs()}
	if w := c.arb.Winner(); w != nil {
		snap.Winner = w.Name
	}
	snap.Breathing = c.breath.Breathing()
	snap.PowerHoldHeld = c.breath.HoldHeld()
	return snap
}

// Run subscribes to every inbound topic and drives the select-loop
// until ctx is cancelled. It blocks; the caller runs it in the main
// goroutine — there is exactly one loop, by design, and every field on
// LedCore is touched only from within it.
func (c *LedCore) Run(ctx context.Context) {
	ctrlSub := c.conn.Subscribe(topicCtrlWild)
	envSub := c.conn.Subscribe(topicEnvWild)
	defer c.conn.Unsubscribe(ctrlSub)
	defer c.conn.Unsubscribe(envSub)

	introTicker := time.NewTicker(c.intro.Interval())
	defer introTicker.Stop()
	c.intro.Publish(c.snapshot())

	timer := time.NewTimer(time.Hour)
	stopTimer(timer)
	defer timer.Stop()

	for {
		c.armTimer(timer)

		select {
		case <-ctx.Done():
			c.breath.Shutdown()
			return

		case msg := <-ctrlSub.Channel():
			c.handleControl(msg)

		case msg := <-envSub.Channel():
			c.handleEnvSet(msg)

		case <-timer.C:
			c.handleTimerDue()

		case <-introTicker.C:
			c.intro.Publish(c.snapshot())
		}

		stopTimer(timer)
	}
}

// armTimer resets timer against the earliest auto-deactivate due time:
// stop, drain, then reset (or leave stopped when nothing is armed).
func (c *LedCore) armTimer(timer *time.Timer) {
	due, ok := c.state.NextDueMs()
	if !ok {
		return
	}
	wait := due - c.clock.NowMs()
	if wait < 0 {
		wait = 0
	}
	timer.Reset(time.Duration(wait) * time.Millisecond)
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

func (c *LedCore) handleTimerDue() {
	now := c.clock.NowMs()
	fired := c.state.FireDue(now, c.repo.Find)
	for _, name := range fired {
		c.propagate(name)
	}
	if len(fired) > 0 {
		c.reevaluate(now)
	}
}

func (c *LedCore) handleControl(msg *bus.Message) {
	switch lastToken(msg.Topic) {
	case "activate_pattern":
		c.handleActivate(msg)
	case "deactivate_pattern":
		c.handleDeactivate(msg)
	case "enable_led":
		c.env.LEDMasterEnabled = true
		c.conn.Reply(msg, errcode.OK, false)
		c.reevaluate(c.clock.NowMs())
	case "disable_led":
		c.env.LEDMasterEnabled = false
		c.conn.Reply(msg, errcode.OK, false)
		c.reevaluate(c.clock.NowMs())
	default:
		c.conn.Reply(msg, errcode.InvalidTopic, false)
	}
}

func (c *LedCore) handleActivate(msg *bus.Message) {
	name, ok := msg.Payload.(string)
	if !ok || name == "" {
		c.conn.Reply(msg, errcode.InvalidPayload, false)
		return
	}
	p := c.repo.Find(name)
	if p == nil {
		c.conn.Reply(msg, errcode.UnknownPattern, false)
		return
	}
	wasActive := p.Active
	c.state.SetActive(p, true)
	if !wasActive && p.Visibility == repository.VisibilityDismissOnView {
		p.Undecided = true
	}
	c.propagate(name)
	c.conn.Reply(msg, errcode.OK, false)
	c.reevaluate(c.clock.NowMs())
}

func (c *LedCore) handleDeactivate(msg *bus.Message) {
	name, ok := msg.Payload.(string)
	if !ok || name == "" {
		c.conn.Reply(msg, errcode.InvalidPayload, false)
		return
	}
	p := c.repo.Find(name)
	if p == nil {
		c.conn.Reply(msg, errcode.UnknownPattern, false)
		return
	}
	c.state.SetActive(p, false)
	c.propagate(name)
	c.conn.Reply(msg, errcode.OK, false)
	c.reevaluate(c.clock.NowMs())
}

// propagate runs one level of combination-rule propagation for name,
// applying every derived pattern's new active bit through the same
// state.Manager path an external activation would take (so its signal
// emission happens identically), per the activation graph's contract.
func (c *LedCore) propagate(name string) {
	c.graph.OnPatternChanged(name,
		func(n string) bool {
			if p := c.repo.Find(n); p != nil {
				return p.Active
			}
			return false
		},
		func(derivedName string, active bool) {
			if p := c.repo.Find(derivedName); p != nil {
				c.state.SetActive(p, active)
			}
		},
	)
}

func (c *LedCore) handleEnvSet(msg *bus.Message) {
	switch lastToken(msg.Topic) {
	case "display_state":
		if v, ok := msg.Payload.(arbiter.DisplayState); ok {
			c.env.DisplayState = v
		}
	case "system_state":
		if v, ok := msg.Payload.(arbiter.SystemState); ok {
			c.env.SystemState = v
		}
	case "charger_state":
		if v, ok := msg.Payload.(arbiter.ChargerState); ok {
			c.env.ChargerState = v
		}
	case "battery_level":
		if v, ok := msg.Payload.(int); ok {
			c.env.BatteryLevel = v
		}
	case "user_activity":
		c.env.LastUserActivityMs = c.clock.NowMs()
	case "led_brightness":
		if v, ok := msg.Payload.(int); ok {
			c.env.LEDBrightness = v
		}
	default:
		return
	}
	c.reevaluate(c.clock.NowMs())
}

func (c *LedCore) reevaluate(now int64) {
	c.arb.Reevaluate(now, c.env)
	c.intro.Publish(c.snapshot())
}

func lastToken(t bus.Topic) string {
	if len(t) == 0 {
		return ""
	}
	s, _ := t[len(t)-1].(string)
	return s
}
