// Package arbiter implements the show predicate and winner-selection
// algorithm: given the repository's priority-ordered patterns and the
// current Environment, it picks at most one winning pattern and drives
// the backend and breathing supervisor accordingly.
package arbiter

import "github.com/sailfishos/mce-ledind/repository"

const recentActivityWindowMs = 2000

// Driver is the narrow backend contract the arbiter drives. It is
// satisfied structurally by backend.Driver; the arbiter package does
// not import backend to keep the dependency one-directional.
type Driver interface {
	Program(p *repository.Pattern) error
	Disable() error
	SetBrightness(level int) error
}

// Breather is the narrow breathing-supervisor contract the arbiter
// drives after every winner/environment change.
type Breather interface {
	Reevaluate(winner *repository.Pattern, env Environment)
}

// StateSetter is the subset of state.Manager the arbiter needs to
// drive the policy-6 lifecycle (deactivate/revert a pattern through
// the normal signal-emitting path rather than poking Active directly).
type StateSetter interface {
	SetActive(p *repository.Pattern, active bool)
}

// Arbiter is a pure function of (patterns, environment) plus one
// backend call; it never fails — backend errors are the backend's own
// problem to log and swallow.
type Arbiter struct {
	repo      *repository.Repository
	driver    Driver
	breathing Breather
	state     StateSetter

	havePrevEnv bool
	prevEnv     Environment
	winner      *repository.Pattern
}

func New(repo *repository.Repository, driver Driver, breathing Breather, state StateSetter) *Arbiter {
	return &Arbiter{repo: repo, driver: driver, breathing: breathing, state: state}
}

// Winner returns the currently-selected pattern, or nil.
func (a *Arbiter) Winner() *repository.Pattern { return a.winner }

// Reevaluate runs the policy-6 lifecycle transition against the
// previous environment, selects a new winner, reprograms the backend
// only if the winner changed, pushes brightness through regardless,
// and re-drives the breathing supervisor. now is the caller's clock
// reading, used for the "within 2s of last user activity" checks.
func (a *Arbiter) Reevaluate(now int64, env Environment) {
	if a.havePrevEnv {
		a.runPolicy6Lifecycle(now, a.prevEnv, env)
	}
	a.prevEnv = env
	a.havePrevEnv = true

	newWinner := a.selectWinner(env)
	if newWinner != a.winner {
		a.winner = newWinner
		if newWinner == nil {
			_ = a.driver.Disable()
		} else {
			_ = a.driver.Program(newWinner)
			_ = a.driver.SetBrightness(env.LEDBrightness)
		}
	} else if newWinner != nil {
		_ = a.driver.SetBrightness(env.LEDBrightness)
	}

	a.breathing.Reevaluate(a.winner, env)
}

func (a *Arbiter) selectWinner(env Environment) *repository.Pattern {
	for _, p := range a.repo.IterByPriority() {
		if a.show(p, env) {
			return p
		}
	}
	return nil
}

// show implements the per-pattern visibility predicate step-for-step.
func (a *Arbiter) show(p *repository.Pattern, env Environment) bool {
	if !p.Active {
		return false
	}
	if !p.Enabled {
		return false
	}
	if !env.LEDMasterEnabled && p.Visibility != repository.VisibilityIgnoresMaster {
		return false
	}
	switch p.Visibility {
	case repository.VisibilityAlways, repository.VisibilityIgnoresMaster:
		return true
	case repository.VisibilityDimOnly:
		return env.DisplayState == DisplayDim
	case repository.VisibilityScreenOn:
		return env.DisplayState == DisplayOn || env.DisplayState == DisplayDim
	case repository.VisibilityActdeadOffClass:
		if env.SystemState == SystemActdead {
			return env.DisplayState.offClass()
		}
		return env.SystemState == SystemUser && env.DisplayState.offClass()
	case repository.VisibilityActdead:
		return env.SystemState == SystemActdead
	case repository.VisibilityDismissOnView:
		return env.DisplayState.offClass()
	default:
		return false
	}
}

// runPolicy6Lifecycle implements the undecided/locked-in/reverted
// transitions driven by display-state changes and user-activity
// events.
func (a *Arbiter) runPolicy6Lifecycle(now int64, prev, cur Environment) {
	userActivityChanged := cur.LastUserActivityMs != prev.LastUserActivityMs
	displayChanged := cur.DisplayState != prev.DisplayState

	if userActivityChanged && cur.DisplayState == DisplayOn {
		for _, p := range a.repo.IterByPriority() {
			if p.Visibility == repository.VisibilityDismissOnView && p.Active && p.Undecided {
				p.Undecided = false
				a.state.SetActive(p, false) // reverted: explicit activity while screen on
			}
		}
		return
	}

	if !displayChanged {
		return
	}

	recent := (now - cur.LastUserActivityMs) <= recentActivityWindowMs

	for _, p := range a.repo.IterByPriority() {
		if p.Visibility != repository.VisibilityDismissOnView || !p.Active || !p.Undecided {
			continue
		}
		switch {
		case cur.DisplayState == DisplayOn && recent:
			p.Undecided = false
			a.state.SetActive(p, false) // user saw it
		case cur.DisplayState == DisplayOn && !recent:
			p.Undecided = false // locked in; future display-off will show it
		case cur.DisplayState.offClass() && recent:
			p.Undecided = false
			a.state.SetActive(p, false) // reverted: just dismissed
		case cur.DisplayState.offClass() && !recent:
			p.Undecided = false // locked in
		}
	}
}
