// Package repository loads indicator pattern definitions from a
// group-keyed configuration source and owns the priority-ordered set
// of Pattern records for the process lifetime.
package repository

// Family selects which backend variant a config group's patterns are
// validated and eventually programmed against.
type Family int

const (
	FamilyNone Family = iota
	FamilyDirectMono
	FamilyEngineMonoA
	FamilyEngineMonoB
	FamilyEngineRGBA
	FamilyEngineRGBB
	FamilyRGBShim
)

func (f Family) String() string {
	switch f {
	case FamilyDirectMono:
		return "direct-mono"
	case FamilyEngineMonoA:
		return "engine-mono-a"
	case FamilyEngineMonoB:
		return "engine-mono-b"
	case FamilyEngineRGBA:
		return "engine-rgb-a"
	case FamilyEngineRGBB:
		return "engine-rgb-b"
	case FamilyRGBShim:
		return "rgb-shim"
	default:
		return "none"
	}
}

// fieldCount is the number of comma-separated value fields (beyond the
// bare pattern name) each family's config line carries, per the wire
// format in the external-interfaces section: "prio,visibility,timeout"
// plus a family-specific tail. Engine-mono carries one program field
// (4 total); direct-mono, engine-rgb and rgb-shim all carry a
// three-value tail (6 total). Engine mux assignment is a per-LED
// hardware wiring constant, not a per-pattern field, so it is supplied
// at backend construction time rather than parsed here.
func (f Family) fieldCount() int {
	switch f {
	case FamilyEngineMonoA, FamilyEngineMonoB:
		return 4
	default:
		return 6
	}
}

// VisibilityPolicy is the closed {1..7} selector from the data model.
type VisibilityPolicy int

const (
	VisibilityScreenOn        VisibilityPolicy = 1
	VisibilityActdeadOffClass VisibilityPolicy = 2
	VisibilityAlways          VisibilityPolicy = 3
	VisibilityActdead         VisibilityPolicy = 4
	VisibilityIgnoresMaster   VisibilityPolicy = 5
	VisibilityDismissOnView   VisibilityPolicy = 6
	VisibilityDimOnly         VisibilityPolicy = 7
)

// Pattern is a named indicator behaviour: priority, visibility,
// timing, colour and backend-specific fields, plus the mutable
// active/enabled/undecided bits the rest of the core flips.
type Pattern struct {
	Name       string
	Priority   int
	Visibility VisibilityPolicy

	AutoDeactivateSeconds int

	OnPeriodMs  int
	OffPeriodMs int
	Brightness  int

	Channel1 string
	Channel2 string
	Channel3 string

	RGBColor uint32 // 24-bit 0xRRGGBB

	Active    bool
	Enabled   bool
	Undecided bool

	// Derived marks a pattern produced by a combination rule rather
	// than ever being the target of an external activate_pattern call.
	Derived bool

	insertionOrder int
}

// CanBreathe reports whether this pattern's envelope timing falls in
// the software-breathing-eligible band.
func (p *Pattern) CanBreathe() bool {
	return p.OnPeriodMs >= 250 && p.OnPeriodMs <= 1500 &&
		p.OffPeriodMs >= 250 && p.OffPeriodMs <= 5000
}

// mustBreatheAllowlist is the short compiled-in set of pattern names
// that breathe unconditionally regardless of battery/charger state:
// the battery-full indicator and a pair of test patterns used to
// confirm the breathing loop itself is wired correctly.
var mustBreatheAllowlist = map[string]bool{
	"battery_full":        true,
	"test_breathing_slow": true,
	"test_breathing_fast": true,
}

// MustBreathe reports whether this pattern breathes unconditionally.
func (p *Pattern) MustBreathe() bool {
	return mustBreatheAllowlist[p.Name]
}

// The off-class display test (DisplayState.offClass) and the visibility
// predicate live in package arbiter, which is the sole consumer of
// Environment semantics; Pattern itself stays a plain data record per
// the ownership model in the data model section (the repository owns
// these records for the process lifetime, patterns are never added or
// removed after startup).
