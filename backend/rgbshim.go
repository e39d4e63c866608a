package backend

import (
	"github.com/sailfishos/mce-ledind/repository"
	"github.com/sirupsen/logrus"
)

// rgbShim hands colour and timing off to an external indicator API
// (an already-running LED daemon reached over D-Bus) instead of
// touching hardware directly: it splits the pattern's packed RGBColor
// into per-channel bytes and forwards them alongside the on/off
// period, then scales brightness out of band via a separate call.
type rgbShim struct {
	indicator IndicatorClient
	log       *logrus.Logger
}

func newRGBShim(cfg Config, log *logrus.Logger) (Driver, error) {
	if cfg.Indicator == nil {
		return nil, errUnconfiguredIndicator
	}
	return &rgbShim{indicator: cfg.Indicator, log: log}, nil
}

func (s *rgbShim) Program(p *repository.Pattern) error {
	r, g, b := splitRGB(p.RGBColor)
	if err := s.indicator.SetColor(r, g, b, p.OnPeriodMs, p.OffPeriodMs); err != nil {
		s.log.WithError(err).WithField("pattern", p.Name).Warn("rgb-shim: indicator SetColor failed")
		return err
	}
	return s.indicator.SetBrightness(scaleBrightnessTo255(p.Brightness))
}

func (s *rgbShim) Disable() error {
	return s.indicator.SetColor(0, 0, 0, 0, 0)
}

func (s *rgbShim) SetBrightness(level int) error {
	if level < 0 {
		return nil
	}
	return s.indicator.SetBrightness(scaleBrightnessTo255(level))
}

func (s *rgbShim) Close() error { return nil }

func splitRGB(packed uint32) (r, g, b uint8) {
	return uint8(packed >> 16), uint8(packed >> 8), uint8(packed)
}

// scaleBrightnessTo255 maps the logical 1..15 brightness scale onto
// the 1..255 range the external indicator API expects, rather than
// the 16-step table the in-process backends use directly.
func scaleBrightnessTo255(level int) int {
	level = clampBrightness(level)
	if level == 0 {
		return 0
	}
	scaled := (level * 255) / 15
	if scaled < 1 {
		scaled = 1
	}
	return scaled
}

func init() {
	RegisterFamily(repository.FamilyRGBShim, newRGBShim)
}
