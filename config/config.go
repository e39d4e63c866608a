// Package config loads the LED indicator definitions and the small
// set of user-mutable settings from a single Windows-style INI file,
// and exposes them as the narrow interfaces the repository and
// breathing packages consume.
package config

import (
	"strconv"
	"strings"

	"gopkg.in/ini.v1"
)

const (
	sectionLED              = "LED"
	keyPatternGroup         = "PatternGroup"
	keyRequiredPatterns     = "RequiredPatterns"
	keyDisabledPatterns     = "DisabledPatterns"
	keyCombinationRules     = "CombinationRules"

	sectionSettings          = "Settings"
	keyBreathingEnabled      = "sw_breathing_enabled"
	keyBreathBatteryLimit    = "sw_breath_battery_limit"

	defaultBreathingEnabled   = true
	defaultBreathBatteryLimit = 90
)

// Store wraps a loaded ini.File and implements both
// repository.Source (for loading pattern definitions) and
// breathing.Settings (for the two breathing knobs), so main wires one
// value into both constructors.
type Store struct {
	file *ini.File
	path string
}

// Load reads path as an INI file. A missing [Settings] section, or a
// missing/blank value within it, falls back to the defaults named in
// the data model rather than failing the load — the store must come
// up usable even from a config that predates a setting's existence.
func Load(path string) (*Store, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	return &Store{file: f, path: path}, nil
}

// Save persists in-memory edits (made via SetPatternEnabled or the two
// breathing setters) back to the file it was loaded from.
func (s *Store) Save() error {
	return s.file.SaveTo(s.path)
}

// PatternGroup returns the [LED] PatternGroup value.
func (s *Store) PatternGroup() string {
	return s.file.Section(sectionLED).Key(keyPatternGroup).String()
}

// RequiredPatterns returns the [LED] RequiredPatterns list.
func (s *Store) RequiredPatterns() []string {
	return splitCSV(s.file.Section(sectionLED).Key(keyRequiredPatterns).String())
}

// DisabledPatterns returns the [LED] DisabledPatterns list.
func (s *Store) DisabledPatterns() []string {
	return splitCSV(s.file.Section(sectionLED).Key(keyDisabledPatterns).String())
}

// CombinationRuleNames returns the [LED] CombinationRules list, one
// rule-definition key per derived pattern.
func (s *Store) CombinationRuleNames() []string {
	return splitCSV(s.file.Section(sectionLED).Key(keyCombinationRules).String())
}

// Fields returns the comma-split value of section/key, and whether
// the key was present at all (an absent key is not the same as a
// present-but-empty one: repository.Load treats the former as a
// missing pattern definition).
func (s *Store) Fields(section, key string) ([]string, bool) {
	sec, err := s.file.GetSection(section)
	if err != nil {
		return nil, false
	}
	if !sec.HasKey(key) {
		return nil, false
	}
	return splitCSV(sec.Key(key).String()), true
}

// BreathingEnabled is the global software-breathing on/off switch.
func (s *Store) BreathingEnabled() bool {
	return s.file.Section(sectionSettings).Key(keyBreathingEnabled).MustBool(defaultBreathingEnabled)
}

// BreathBatteryLimit is the minimum battery percentage (on battery,
// not charging) below which breathing is suppressed.
func (s *Store) BreathBatteryLimit() int {
	return s.file.Section(sectionSettings).Key(keyBreathBatteryLimit).MustInt(defaultBreathBatteryLimit)
}

// SetBreathingEnabled updates the in-memory value; call Save to
// persist it.
func (s *Store) SetBreathingEnabled(v bool) {
	s.file.Section(sectionSettings).Key(keyBreathingEnabled).SetValue(boolStr(v))
}

// SetBreathBatteryLimit updates the in-memory value; call Save to
// persist it.
func (s *Store) SetBreathBatteryLimit(v int) {
	s.file.Section(sectionSettings).Key(keyBreathBatteryLimit).SetValue(strconv.Itoa(v))
}

// PatternEnabled reports a pattern's user-toggle state. A pattern
// whose toggle was never written defaults to enabled for the process
// lifetime — there is no implicit write-back of that default into the
// file.
func (s *Store) PatternEnabled(name string) bool {
	sec, err := s.file.GetSection(sectionSettings)
	if err != nil {
		return true
	}
	key := "enabled_" + name
	if !sec.HasKey(key) {
		return true
	}
	return sec.Key(key).MustBool(true)
}

// SetPatternEnabled records a pattern's user-toggle state; call Save
// to persist it.
func (s *Store) SetPatternEnabled(name string, enabled bool) {
	s.file.Section(sectionSettings).Key("enabled_" + name).SetValue(boolStr(enabled))
}

func splitCSV(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

func boolStr(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

