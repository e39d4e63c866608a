package arbiter

import (
	"testing"

	"github.com/sailfishos/mce-ledind/repository"
)

type fakeDriver struct {
	programmed []string
	disableN   int
	brightness []int
}

func (f *fakeDriver) Program(p *repository.Pattern) error {
	f.programmed = append(f.programmed, p.Name)
	return nil
}
func (f *fakeDriver) Disable() error           { f.disableN++; return nil }
func (f *fakeDriver) SetBrightness(l int) error { f.brightness = append(f.brightness, l); return nil }

type fakeBreather struct {
	calls int
}

func (f *fakeBreather) Reevaluate(winner *repository.Pattern, env Environment) { f.calls++ }

type fakeState struct {
	deactivated []string
}

func (f *fakeState) SetActive(p *repository.Pattern, active bool) {
	if !active {
		f.deactivated = append(f.deactivated, p.Name)
	}
	p.Active = active
}

func newTestArbiter() (*Arbiter, *repository.Repository, *fakeDriver) {
	repo := repository.New()
	driver := &fakeDriver{}
	a := New(repo, driver, &fakeBreather{}, &fakeState{})
	return a, repo, driver
}

func TestReevaluate_PriorityWins(t *testing.T) {
	a, repo, driver := newTestArbiter()
	repo.Add(&repository.Pattern{Name: "A", Priority: 10, Visibility: repository.VisibilityAlways, Active: true, Enabled: true})
	repo.Add(&repository.Pattern{Name: "B", Priority: 50, Visibility: repository.VisibilityAlways, Active: true, Enabled: true})

	env := Environment{LEDMasterEnabled: true}
	a.Reevaluate(0, env)

	if a.Winner() == nil || a.Winner().Name != "A" {
		t.Fatalf("expected A to win, got %v", a.Winner())
	}
	if len(driver.programmed) != 1 || driver.programmed[0] != "A" {
		t.Fatalf("expected Program(A), got %v", driver.programmed)
	}
}

func TestReevaluate_VisibilityGate(t *testing.T) {
	a, repo, _ := newTestArbiter()
	c := &repository.Pattern{Name: "C", Priority: 5, Visibility: repository.VisibilityScreenOn, Active: true, Enabled: true}
	d := &repository.Pattern{Name: "D", Priority: 10, Visibility: repository.VisibilityAlways, Active: true, Enabled: true}
	repo.Add(c)
	repo.Add(d)

	a.Reevaluate(0, Environment{LEDMasterEnabled: true, DisplayState: DisplayOff})
	if a.Winner().Name != "D" {
		t.Fatalf("expected D to win while display off, got %v", a.Winner())
	}

	a.Reevaluate(1, Environment{LEDMasterEnabled: true, DisplayState: DisplayOn})
	if a.Winner().Name != "C" {
		t.Fatalf("expected C to win once display is on, got %v", a.Winner())
	}
}

func TestReevaluate_MasterDisabledSkipsAllButPolicy5(t *testing.T) {
	a, repo, driver := newTestArbiter()
	repo.Add(&repository.Pattern{Name: "A", Priority: 1, Visibility: repository.VisibilityAlways, Active: true, Enabled: true})
	repo.Add(&repository.Pattern{Name: "B", Priority: 2, Visibility: repository.VisibilityIgnoresMaster, Active: true, Enabled: true})

	a.Reevaluate(0, Environment{LEDMasterEnabled: false})
	if a.Winner() == nil || a.Winner().Name != "B" {
		t.Fatalf("expected policy-5 pattern B to still win, got %v", a.Winner())
	}
	if driver.disableN != 0 {
		t.Fatalf("should not have disabled: a winner exists")
	}
}

func TestReevaluate_Policy6DismissedOnRecentActivity(t *testing.T) {
	a, repo, _ := newTestArbiter()
	e := &repository.Pattern{Name: "E", Priority: 20, Visibility: repository.VisibilityDismissOnView, Active: true, Enabled: true, Undecided: true}
	repo.Add(e)

	// display off, E wins.
	a.Reevaluate(0, Environment{LEDMasterEnabled: true, DisplayState: DisplayOff})
	if a.Winner() == nil || a.Winner().Name != "E" {
		t.Fatalf("expected E to win while off-class, got %v", a.Winner())
	}

	// user activity at t=1000ms.
	a.Reevaluate(1000, Environment{LEDMasterEnabled: true, DisplayState: DisplayOff, LastUserActivityMs: 1000})

	// display on at t=1500ms, within 2s of activity -> deactivated.
	a.Reevaluate(1500, Environment{LEDMasterEnabled: true, DisplayState: DisplayOn, LastUserActivityMs: 1000})

	if e.Active {
		t.Fatal("E should have been deactivated (user saw it)")
	}
	if a.Winner() != nil {
		t.Fatalf("expected no winner after E's dismissal, got %v", a.Winner())
	}
}

func TestReevaluate_WinnerUnchangedStillPushesBrightness(t *testing.T) {
	a, repo, driver := newTestArbiter()
	repo.Add(&repository.Pattern{Name: "A", Priority: 1, Visibility: repository.VisibilityAlways, Active: true, Enabled: true})

	a.Reevaluate(0, Environment{LEDMasterEnabled: true, LEDBrightness: 5})
	a.Reevaluate(1, Environment{LEDMasterEnabled: true, LEDBrightness: 9})

	if len(driver.programmed) != 1 {
		t.Fatalf("expected exactly one Program call (winner unchanged), got %d", len(driver.programmed))
	}
	if len(driver.brightness) != 2 || driver.brightness[1] != 9 {
		t.Fatalf("expected brightness pushed on both turns, got %v", driver.brightness)
	}
}
