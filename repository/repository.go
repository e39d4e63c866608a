package repository

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sailfishos/mce-ledind/errcode"
)

const (
	maxEngineProgramLen = 64
)

// Source is the minimal config-reading contract the repository needs.
// config.Store implements this against an INI-backed file; tests
// implement it against plain maps.
type Source interface {
	// RequiredPatterns returns the configured RequiredPatterns list for
	// the [LED] section, in file order (may contain duplicates/blanks).
	RequiredPatterns() []string
	// DisabledPatterns returns the configured DisabledPatterns list.
	DisabledPatterns() []string
	// CombinationRuleNames returns the CombinationRules list, one name
	// per derived pattern, in file order.
	CombinationRuleNames() []string
	// PatternGroup returns the [LED] PatternGroup value selecting which
	// section patternName= lines are read from.
	PatternGroup() string
	// Fields returns the raw comma-split value for key within the
	// named section, and whether the key was present at all.
	Fields(section, key string) ([]string, bool)
	// PatternEnabled reports the user-toggle setting for name, defaulting
	// to true when nothing was ever recorded for it.
	PatternEnabled(name string) bool
}

// Warning is a single rejected-or-skipped config entry, logged by the
// caller at Warn level; loading always continues past a Warning.
type Warning struct {
	Pattern string
	Code    errcode.Code
	Detail  string
}

func (w Warning) String() string {
	return fmt.Sprintf("pattern %q: %s (%s)", w.Pattern, w.Code, w.Detail)
}

// Repository owns every accepted Pattern for the process lifetime,
// sorted ascending by Priority with a stable insertion-order tie-break.
type Repository struct {
	byName   map[string]*Pattern
	ordered  []*Pattern // sorted ascending by priority; stable
	nextSeq  int
}

// New returns an empty repository; used directly by tests that build
// patterns without a config Source.
func New() *Repository {
	return &Repository{byName: map[string]*Pattern{}}
}

// Load reads the RequiredPatterns/DisabledPatterns lists and each
// required pattern's field line from the pattern group, validating per family,
// applies the per-pattern user-toggle from src.PatternEnabled, and
// returns the accepted patterns plus one Warning per rejected/omitted
// entry. Loading never fails outright: a config with zero valid
// patterns still returns a usable, empty Repository.
func Load(family Family, src Source) (*Repository, []Warning) {
	r := New()
	var warnings []Warning

	required := dedupeSorted(src.RequiredPatterns())
	disabled := toSet(src.DisabledPatterns())
	group := src.PatternGroup()

	for _, name := range required {
		if name == "" {
			continue
		}
		if disabled[name] {
			continue
		}
		fields, ok := src.Fields(group, name)
		if !ok {
			warnings = append(warnings, Warning{Pattern: name, Code: errcode.ConfigMissing, Detail: "no definition in pattern group"})
			continue
		}
		p, w := parsePattern(family, name, fields)
		if w != nil {
			warnings = append(warnings, *w)
			continue
		}
		p.Enabled = src.PatternEnabled(name)
		r.insert(p)
	}
	return r, warnings
}

func parsePattern(family Family, name string, fields []string) (*Pattern, *Warning) {
	want := family.fieldCount()
	if len(fields) != want {
		return nil, &Warning{Pattern: name, Code: errcode.ConfigInvalid,
			Detail: fmt.Sprintf("expected %d fields for %s, got %d", want, family, len(fields))}
	}

	prio, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil || prio < 0 {
		return nil, &Warning{Pattern: name, Code: errcode.ConfigInvalid, Detail: "bad priority"}
	}
	vis, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil || vis < 1 || vis > 7 {
		return nil, &Warning{Pattern: name, Code: errcode.ConfigInvalid, Detail: "bad visibility_policy"}
	}
	timeout, err := strconv.Atoi(strings.TrimSpace(fields[2]))
	if err != nil {
		return nil, &Warning{Pattern: name, Code: errcode.ConfigInvalid, Detail: "bad auto_deactivate_seconds"}
	}

	p := &Pattern{
		Name:                  name,
		Priority:              prio,
		Visibility:            VisibilityPolicy(vis),
		AutoDeactivateSeconds: timeout,
	}

	switch family {
	case FamilyEngineMonoA, FamilyEngineMonoB:
		prog := strings.TrimSpace(fields[3])
		if len(prog) > maxEngineProgramLen {
			return nil, &Warning{Pattern: name, Code: errcode.ConfigInvalid, Detail: "channel1 program too long"}
		}
		p.Channel1 = prog

	case FamilyEngineRGBA, FamilyEngineRGBB:
		for i, dst := range []*string{&p.Channel1, &p.Channel2, &p.Channel3} {
			prog := strings.TrimSpace(fields[3+i])
			if len(prog) > maxEngineProgramLen {
				return nil, &Warning{Pattern: name, Code: errcode.ConfigInvalid, Detail: fmt.Sprintf("channel%d program too long", i+1)}
			}
			*dst = prog
		}

	case FamilyRGBShim:
		on, err1 := strconv.Atoi(strings.TrimSpace(fields[3]))
		off, err2 := strconv.Atoi(strings.TrimSpace(fields[4]))
		rgb, err3 := strconv.ParseUint(strings.TrimSpace(fields[5]), 16, 32)
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, &Warning{Pattern: name, Code: errcode.ConfigInvalid, Detail: "bad on/off/RRGGBB fields"}
		}
		p.OnPeriodMs, p.OffPeriodMs, p.RGBColor = on, off, uint32(rgb)

	default: // FamilyDirectMono, FamilyNone
		on, err1 := strconv.Atoi(strings.TrimSpace(fields[3]))
		off, err2 := strconv.Atoi(strings.TrimSpace(fields[4]))
		bright, err3 := strconv.Atoi(strings.TrimSpace(fields[5]))
		if err1 != nil || err2 != nil || err3 != nil || bright < 0 {
			return nil, &Warning{Pattern: name, Code: errcode.ConfigInvalid, Detail: "bad on/off/brightness fields"}
		}
		p.OnPeriodMs, p.OffPeriodMs, p.Brightness = on, off, bright
	}
	return p, nil
}

// ValidateMux checks that engine1Mux and engine2Mux do not both claim
// the same LED bit; this is a family-level (hardware wiring) check,
// invoked once by the engine-rgb backend constructor rather than per
// pattern, see Family.fieldCount's doc comment.
func ValidateMux(engine1Mux, engine2Mux uint8) error {
	if engine1Mux&engine2Mux != 0 {
		return errcode.ConfigInvalid
	}
	return nil
}

func (r *Repository) insert(p *Pattern) {
	p.insertionOrder = r.nextSeq
	r.nextSeq++
	r.byName[p.Name] = p
	r.ordered = append(r.ordered, p)
	sort.SliceStable(r.ordered, func(i, j int) bool {
		return r.ordered[i].Priority < r.ordered[j].Priority
	})
}

// Add inserts a pattern directly (used by tests and by the combination
// rule loader for derived patterns, which are not backend-validated).
func (r *Repository) Add(p *Pattern) { r.insert(p) }

// Find returns the named pattern, or nil if no such pattern exists.
func (r *Repository) Find(name string) *Pattern { return r.byName[name] }

// IterByPriority returns all accepted patterns in ascending-priority,
// stable insertion-order tie-break order. The caller must not mutate
// the slice.
func (r *Repository) IterByPriority() []*Pattern { return r.ordered }

func dedupeSorted(in []string) []string {
	set := map[string]bool{}
	for _, s := range in {
		if s != "" {
			set[s] = true
		}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func toSet(in []string) map[string]bool {
	set := map[string]bool{}
	for _, s := range in {
		if s != "" {
			set[s] = true
		}
	}
	return set
}
