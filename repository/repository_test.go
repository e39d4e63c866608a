package repository

import "testing"

// mapSource is a minimal in-memory Source for tests.
type mapSource struct {
	required         []string
	disabled         []string
	rules            []string
	group            string
	fields           map[string][]string // "section/key" -> fields
	disabledByToggle map[string]bool      // name -> explicit enabled=false
}

func (m *mapSource) RequiredPatterns() []string     { return m.required }
func (m *mapSource) DisabledPatterns() []string     { return m.disabled }
func (m *mapSource) CombinationRuleNames() []string { return m.rules }
func (m *mapSource) PatternGroup() string           { return m.group }
func (m *mapSource) Fields(section, key string) ([]string, bool) {
	f, ok := m.fields[section+"/"+key]
	return f, ok
}
func (m *mapSource) PatternEnabled(name string) bool {
	return !m.disabledByToggle[name]
}

func TestLoad_AcceptsValidPattern(t *testing.T) {
	src := &mapSource{
		required: []string{"A"},
		group:    "PatternGroup",
		fields: map[string][]string{
			"PatternGroup/A": {"10", "3", "0", "100", "200", "5"},
		},
	}
	repo, warnings := Load(FamilyDirectMono, src)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	p := repo.Find("A")
	if p == nil {
		t.Fatal("pattern A not found")
	}
	if p.Priority != 10 || p.Visibility != 3 || p.OnPeriodMs != 100 || p.OffPeriodMs != 200 || p.Brightness != 5 {
		t.Fatalf("unexpected parse result: %+v", p)
	}
	if !p.Enabled {
		t.Fatal("pattern with no recorded toggle should default to enabled")
	}
}

func TestLoad_UserToggleDisablesPattern(t *testing.T) {
	src := &mapSource{
		required:         []string{"A"},
		group:            "PatternGroup",
		disabledByToggle: map[string]bool{"A": true},
		fields: map[string][]string{
			"PatternGroup/A": {"10", "3", "0", "100", "200", "5"},
		},
	}
	repo, warnings := Load(FamilyDirectMono, src)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	p := repo.Find("A")
	if p == nil {
		t.Fatal("pattern A not found")
	}
	if p.Enabled {
		t.Fatal("expected user toggle to disable the pattern")
	}
}

func TestLoad_RejectsWrongFieldCount(t *testing.T) {
	src := &mapSource{
		required: []string{"A"},
		group:    "PatternGroup",
		fields: map[string][]string{
			"PatternGroup/A": {"10", "3", "0"},
		},
	}
	repo, warnings := Load(FamilyDirectMono, src)
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", warnings)
	}
	if repo.Find("A") != nil {
		t.Fatal("rejected pattern should not be present")
	}
}

func TestLoad_RejectsOverlongEngineProgram(t *testing.T) {
	long := make([]byte, 65)
	for i := range long {
		long[i] = 'a'
	}
	src := &mapSource{
		required: []string{"E"},
		group:    "PatternGroup",
		fields: map[string][]string{
			"PatternGroup/E": {"1", "3", "0", string(long)},
		},
	}
	_, warnings := Load(FamilyEngineMonoA, src)
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", warnings)
	}
}

func TestLoad_MissingDefinitionWarns(t *testing.T) {
	src := &mapSource{
		required: []string{"A"},
		group:    "PatternGroup",
		fields:   map[string][]string{},
	}
	repo, warnings := Load(FamilyDirectMono, src)
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", warnings)
	}
	if repo.Find("A") != nil {
		t.Fatal("missing pattern should not be present")
	}
}

func TestLoad_DisabledPatternSuppressed(t *testing.T) {
	src := &mapSource{
		required: []string{"A"},
		disabled: []string{"A"},
		group:    "PatternGroup",
		fields: map[string][]string{
			"PatternGroup/A": {"10", "3", "0", "100", "200", "5"},
		},
	}
	repo, warnings := Load(FamilyDirectMono, src)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if repo.Find("A") != nil {
		t.Fatal("disabled pattern should be suppressed, not warned")
	}
}

func TestIterByPriority_SortsAscendingStable(t *testing.T) {
	src := &mapSource{
		required: []string{"B", "A", "C"},
		group:    "PatternGroup",
		fields: map[string][]string{
			"PatternGroup/A": {"10", "3", "0", "1", "1", "1"},
			"PatternGroup/B": {"10", "3", "0", "1", "1", "1"},
			"PatternGroup/C": {"5", "3", "0", "1", "1", "1"},
		},
	}
	repo, _ := Load(FamilyDirectMono, src)
	order := repo.IterByPriority()
	if len(order) != 3 {
		t.Fatalf("expected 3 patterns, got %d", len(order))
	}
	if order[0].Name != "C" {
		t.Fatalf("expected C first (lowest priority), got %s", order[0].Name)
	}
	// A and B tie at priority 10; required list was deduped+sorted
	// lexicographically before insertion, so A must precede B.
	if order[1].Name != "A" || order[2].Name != "B" {
		t.Fatalf("expected stable tie-break A,B got %s,%s", order[1].Name, order[2].Name)
	}
}
