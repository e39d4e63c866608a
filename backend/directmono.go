package backend

import (
	"strconv"

	"github.com/sailfishos/mce-ledind/repository"
	"github.com/sirupsen/logrus"
)

// directMono drives a single sysfs LED class device
// (/sys/class/leds/<name>/{trigger,delay_on,delay_off,brightness}),
// matching the "open on demand, truncate on each write, keep paths
// resident" discipline every sysfs-touching backend follows here,
// adapted to the direct-mono trigger/delay protocol.
type directMono struct {
	cfg Config
	log *logrus.Logger
}

func newDirectMono(cfg Config, log *logrus.Logger) (Driver, error) {
	return &directMono{cfg: cfg, log: log}, nil
}

func (d *directMono) Program(p *repository.Pattern) error {
	var err error
	if p.OffPeriodMs == 0 {
		if e := writeSysfsFile(d.cfg.TriggerPath, "none"); e != nil {
			err = e
		}
	} else {
		if e := writeSysfsFile(d.cfg.TriggerPath, "timer"); e != nil {
			err = e
		}
		if e := writeSysfsFile(d.cfg.DelayOnPath, strconv.Itoa(p.OnPeriodMs)); e != nil {
			err = e
		}
		if e := writeSysfsFile(d.cfg.DelayOffPath, strconv.Itoa(p.OffPeriodMs)); e != nil {
			err = e
		}
	}
	if e := d.writeBrightness(p.Brightness); e != nil {
		err = e
	}
	if err != nil {
		d.log.WithError(err).WithField("pattern", p.Name).Warn("direct-mono backend I/O error")
	}
	return err
}

func (d *directMono) Disable() error {
	if err := writeSysfsFile(d.cfg.TriggerPath, "none"); err != nil {
		d.log.WithError(err).Warn("direct-mono disable failed")
		return err
	}
	return nil
}

// SetBrightness writes the global intensity via the 16-step table.
// A negative level (the hue-only re-apply request) writes nothing: a
// hue change has no effect on a single-channel LED, and the call is
// accepted only for interface uniformity.
func (d *directMono) SetBrightness(level int) error {
	if level < 0 {
		return nil
	}
	return d.writeBrightness(level)
}

func (d *directMono) writeBrightness(level int) error {
	if level < 0 {
		level = 0
	}
	if level > 15 {
		level = 15
	}
	return writeSysfsFile(d.cfg.BrightnessPath, strconv.Itoa(int(brightnessTable16[level])))
}

func (d *directMono) Close() error { return nil }

func init() {
	RegisterFamily(repository.FamilyDirectMono, newDirectMono)
}
