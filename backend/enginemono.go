package backend

import (
	"github.com/sailfishos/mce-ledind/repository"
	"github.com/sirupsen/logrus"
)

// engineMono drives a single-channel I2C LED engine controller:
// program(pattern) writes DISABLED, then LOAD to engine 1, then the
// decoded channel1 program bytes, then RUN; brightness writes update
// the one current-channel register.
type engineMono struct {
	bus  *i2cHandle
	regs registerMap
	log  *logrus.Logger
}

func newEngineMono(regs registerMap) Builder {
	return func(cfg Config, log *logrus.Logger) (Driver, error) {
		bus, err := openI2C(cfg.I2CDevice, cfg.I2CAddr)
		if err != nil {
			return nil, err
		}
		return &engineMono{bus: bus, regs: regs, log: log}, nil
	}
}

func (e *engineMono) Program(p *repository.Pattern) error {
	prog, err := decodeProgram(p.Channel1)
	if err != nil {
		e.log.WithError(err).WithField("pattern", p.Name).Warn("engine-mono: bad channel1 program")
		return err
	}
	if err := loadProgram(e.bus, e.regs, e.regs.loadReg, prog); err != nil {
		e.log.WithError(err).WithField("pattern", p.Name).Warn("engine-mono backend I/O error")
		return err
	}
	return e.bus.writeReg(e.regs.currentReg, brightnessTable16[clampBrightness(p.Brightness)])
}

func (e *engineMono) Disable() error {
	return e.bus.writeReg(e.regs.modeReg, modeDisabled)
}

func (e *engineMono) SetBrightness(level int) error {
	if level < 0 {
		return nil // reapply-for-hue-only is a no-op on a single channel
	}
	return e.bus.writeReg(e.regs.currentReg, brightnessTable16[clampBrightness(level)])
}

func (e *engineMono) Close() error { return e.bus.Close() }

func clampBrightness(level int) int {
	if level < 0 {
		return 0
	}
	if level > 15 {
		return 15
	}
	return level
}

func init() {
	RegisterFamily(repository.FamilyEngineMonoA, newEngineMono(registerMapA))
	RegisterFamily(repository.FamilyEngineMonoB, newEngineMono(registerMapB))
}
