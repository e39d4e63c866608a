// Package backend implements the four hardware backend variants
// (direct-mono, engine-mono, engine-rgb, rgb-shim) plus a no-op
// default, selected once at startup from a capability probe
// external to this module.
package backend

import (
	"os"
	"sync"

	"github.com/sailfishos/mce-ledind/errcode"
	"github.com/sailfishos/mce-ledind/repository"
	"github.com/sirupsen/logrus"
)

// Driver is the narrow polymorphic backend interface every variant
// implements.
type Driver interface {
	// Program installs pattern on the hardware so it visibly runs.
	Program(p *repository.Pattern) error
	// Disable quiesces all channels/engines.
	Disable() error
	// SetBrightness adjusts global output intensity without
	// reprogramming the pattern; -1 means "reapply current brightness
	// for a hue change only".
	SetBrightness(level int) error
	// Close releases any held file descriptors or bus handles.
	Close() error
}

// Builder constructs a Driver for one backend family from a Config.
type Builder func(cfg Config, log *logrus.Logger) (Driver, error)

var (
	mu       sync.RWMutex
	builders = map[repository.Family]Builder{}
)

// errUnconfiguredIndicator is returned when the rgb-shim family is
// selected but no IndicatorClient was wired into Config; Build
// degrades this to the none variant like any other construction
// failure.
var errUnconfiguredIndicator = errcode.ConfigMissing

// RegisterFamily registers the Builder for one backend family. It
// panics on duplicate registration: that is a programming error, not
// a runtime one.
func RegisterFamily(family repository.Family, b Builder) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := builders[family]; exists {
		panic("backend: family already registered: " + family.String())
	}
	builders[family] = b
}

// Build looks up and invokes the Builder registered for family. A
// fatal condition (no backend available) degrades the caller to the
// none variant rather than failing the service.
func Build(family repository.Family, cfg Config, log *logrus.Logger) Driver {
	mu.RLock()
	b, ok := builders[family]
	mu.RUnlock()
	if !ok {
		log.WithField("family", family.String()).Warn("no backend registered for family; degrading to none")
		return NewNone()
	}
	d, err := b(cfg, log)
	if err != nil {
		log.WithError(err).WithField("family", family.String()).Warn("backend construction failed; degrading to none")
		return NewNone()
	}
	return d
}

// Config carries every knob a backend family might need. Unused
// fields are simply ignored by a given variant.
type Config struct {
	// direct-mono: sysfs class/device paths.
	BrightnessPath string
	TriggerPath    string
	DelayOnPath    string
	DelayOffPath   string

	// engine families: I2C bus device node and 7-bit address.
	I2CDevice string
	I2CAddr   uint16

	// engine-rgb: per-LED engine mux bit assignment (hardware wiring,
	// not per-pattern config).
	Engine1Mux uint8
	Engine2Mux uint8

	// rgb-shim: external indicator API handle (constructed by the
	// dbusface package and threaded in here).
	Indicator IndicatorClient
}

// IndicatorClient is the external indicator hand-off the rgb-shim
// backend drives; dbusface.Indicator implements it over D-Bus.
type IndicatorClient interface {
	SetColor(r, g, b uint8, onMs, offMs int) error
	SetBrightness(level int) error
}

// writeSysfsFile opens path, truncates, writes data, and closes —
// every call re-opens rather than keeping an *os.File cached across
// writes within a call, but the directory/device path itself is
// expected to remain resident; nothing checks that it exists before
// the first write. Errors are wrapped as BackendIOError; sysfs write
// failures here never propagate past the backend.
func writeSysfsFile(path, data string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return errcode.BackendIOError
	}
	defer f.Close()
	if _, err := f.WriteString(data); err != nil {
		return errcode.BackendIOError
	}
	return nil
}

// brightnessTable16 maps a 0..15 logical brightness to the 0..255
// range most sysfs "max_brightness 255" LED class devices expose.
var brightnessTable16 = [16]uint8{
	0, 17, 34, 51, 68, 85, 102, 119,
	136, 153, 170, 187, 204, 221, 238, 255,
}
