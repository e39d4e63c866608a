package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleINI = `
[LED]
PatternGroup = LEDPatternsCommon
RequiredPatterns = ringing, missed_call
DisabledPatterns = test_pattern
CombinationRules = ringing_and_missed

[LEDPatternsCommon]
ringing = 10,3,0,500,500,15
missed_call = 20,1,60,1,0,10
ringing_and_missed = ringing,missed_call

[Settings]
sw_breathing_enabled = false
sw_breath_battery_limit = 75
enabled_missed_call = false
`

func writeTempINI(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "ledind.ini")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp ini: %v", err)
	}
	return path
}

func TestStore_PatternGroupAndLists(t *testing.T) {
	s, err := Load(writeTempINI(t, sampleINI))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := s.PatternGroup(); got != "LEDPatternsCommon" {
		t.Fatalf("PatternGroup = %q", got)
	}
	required := s.RequiredPatterns()
	if len(required) != 2 || required[0] != "ringing" || required[1] != "missed_call" {
		t.Fatalf("RequiredPatterns = %v", required)
	}
	if got := s.DisabledPatterns(); len(got) != 1 || got[0] != "test_pattern" {
		t.Fatalf("DisabledPatterns = %v", got)
	}
	if got := s.CombinationRuleNames(); len(got) != 1 || got[0] != "ringing_and_missed" {
		t.Fatalf("CombinationRuleNames = %v", got)
	}
}

func TestStore_Fields(t *testing.T) {
	s, err := Load(writeTempINI(t, sampleINI))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	fields, ok := s.Fields("LEDPatternsCommon", "ringing")
	if !ok {
		t.Fatal("expected ringing to be present")
	}
	want := []string{"10", "3", "0", "500", "500", "15"}
	if len(fields) != len(want) {
		t.Fatalf("Fields = %v, want %v", fields, want)
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Fatalf("Fields[%d] = %q, want %q", i, fields[i], want[i])
		}
	}

	if _, ok := s.Fields("LEDPatternsCommon", "nonexistent"); ok {
		t.Fatal("expected missing pattern to report ok=false")
	}
}

func TestStore_BreathingSettingsReadFromFile(t *testing.T) {
	s, err := Load(writeTempINI(t, sampleINI))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.BreathingEnabled() {
		t.Fatal("expected sw_breathing_enabled=false to be honoured")
	}
	if got := s.BreathBatteryLimit(); got != 75 {
		t.Fatalf("BreathBatteryLimit = %d, want 75", got)
	}
}

func TestStore_BreathingSettingsDefaultWhenAbsent(t *testing.T) {
	s, err := Load(writeTempINI(t, "[LED]\nPatternGroup = X\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !s.BreathingEnabled() {
		t.Fatal("expected default sw_breathing_enabled=true when absent")
	}
	if got := s.BreathBatteryLimit(); got != defaultBreathBatteryLimit {
		t.Fatalf("BreathBatteryLimit = %d, want default %d", got, defaultBreathBatteryLimit)
	}
}

func TestStore_PatternEnabledDefaultsTrueUntilWritten(t *testing.T) {
	s, err := Load(writeTempINI(t, sampleINI))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !s.PatternEnabled("ringing") {
		t.Fatal("expected ringing to default to enabled")
	}
	if s.PatternEnabled("missed_call") {
		t.Fatal("expected missed_call to honour its explicit enabled_missed_call=false")
	}
}

func TestStore_SetPatternEnabledIsReadBackBeforeSave(t *testing.T) {
	s, err := Load(writeTempINI(t, sampleINI))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s.SetPatternEnabled("ringing", false)
	if s.PatternEnabled("ringing") {
		t.Fatal("expected in-memory toggle to be visible before Save")
	}
}
