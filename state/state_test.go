package state

import (
	"testing"

	"github.com/sailfishos/mce-ledind/repository"
	"github.com/sailfishos/mce-ledind/x/timex"
)

type recordingNotifier struct {
	activated   []string
	deactivated []string
}

func (r *recordingNotifier) PatternActivated(name string)   { r.activated = append(r.activated, name) }
func (r *recordingNotifier) PatternDeactivated(name string) { r.deactivated = append(r.deactivated, name) }

func TestSetActive_NoopWhenUnchanged(t *testing.T) {
	clock := timex.NewFakeClock(0)
	n := &recordingNotifier{}
	m := NewManager(clock, n)
	p := &repository.Pattern{Name: "A", Enabled: true}

	m.SetActive(p, false) // already false
	if len(n.activated)+len(n.deactivated) != 0 {
		t.Fatal("no-op transition must not notify")
	}
}

func TestSetActive_EmitsOnlyWhenEnabled(t *testing.T) {
	clock := timex.NewFakeClock(0)
	n := &recordingNotifier{}
	m := NewManager(clock, n)
	p := &repository.Pattern{Name: "A", Enabled: false}

	m.SetActive(p, true)
	if len(n.activated) != 0 {
		t.Fatal("disabled pattern must not emit a signal")
	}
	if !p.Active {
		t.Fatal("Active must still flip even without a signal")
	}
}

func TestSetActive_ArmsAndFiresTimer(t *testing.T) {
	clock := timex.NewFakeClock(0)
	n := &recordingNotifier{}
	m := NewManager(clock, n)
	p := &repository.Pattern{Name: "F", Enabled: true, AutoDeactivateSeconds: 2}

	m.SetActive(p, true)
	if len(n.activated) != 1 || n.activated[0] != "F" {
		t.Fatalf("expected one activated(F), got %v", n.activated)
	}

	due, ok := m.NextDueMs()
	if !ok || due != 2000 {
		t.Fatalf("expected due at 2000ms, got %d,%v", due, ok)
	}

	clock.Advance(2000)
	fired := m.FireDue(clock.NowMs(), func(name string) *repository.Pattern {
		if name == "F" {
			return p
		}
		return nil
	})
	if len(fired) != 1 || fired[0] != "F" {
		t.Fatalf("expected F to fire, got %v", fired)
	}
	if p.Active {
		t.Fatal("F should be inactive after its timer fired")
	}
	if len(n.deactivated) != 1 || n.deactivated[0] != "F" {
		t.Fatalf("expected one deactivated(F), got %v", n.deactivated)
	}
}

func TestSetActive_CancelsTimerOnDeactivate(t *testing.T) {
	clock := timex.NewFakeClock(0)
	n := &recordingNotifier{}
	m := NewManager(clock, n)
	p := &repository.Pattern{Name: "F", Enabled: true, AutoDeactivateSeconds: 2}

	m.SetActive(p, true)
	m.SetActive(p, false)
	if _, ok := m.NextDueMs(); ok {
		t.Fatal("timer should have been cancelled on manual deactivate")
	}
}

func TestSetEnabled_NeverNotifies(t *testing.T) {
	clock := timex.NewFakeClock(0)
	n := &recordingNotifier{}
	m := NewManager(clock, n)
	p := &repository.Pattern{Name: "A", Active: true, Enabled: true}

	m.SetEnabled(p, false)
	if len(n.activated)+len(n.deactivated) != 0 {
		t.Fatal("SetEnabled must never notify")
	}
	if p.Enabled {
		t.Fatal("Enabled should now be false")
	}
}
