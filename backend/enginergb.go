package backend

import (
	"github.com/sailfishos/mce-ledind/repository"
	"github.com/sirupsen/logrus"
)

// engineRGB drives a three-channel I2C LED engine controller: each of
// channel1/channel2/channel3 is an independently decoded engine
// program, loaded DISABLED -> LOAD -> bytes -> RUN in sequence and
// then started in reverse (engine 3 first, engine 1 last) so the
// shared RUN latch takes effect on all three at once. LED-to-
// engine muxing is the hardware-wiring constant in Config, validated
// once at construction via repository.ValidateMux.
type engineRGB struct {
	bus  *i2cHandle
	regs registerMap
	log  *logrus.Logger

	redOn, greenOn, blueOn bool
}

func newEngineRGB(regs registerMap) Builder {
	return func(cfg Config, log *logrus.Logger) (Driver, error) {
		if err := repository.ValidateMux(cfg.Engine1Mux, cfg.Engine2Mux); err != nil {
			return nil, err
		}
		bus, err := openI2C(cfg.I2CDevice, cfg.I2CAddr)
		if err != nil {
			return nil, err
		}
		if err := bus.writeReg(regs.muxReg, cfg.Engine1Mux|cfg.Engine2Mux<<4); err != nil {
			return nil, err
		}
		return &engineRGB{bus: bus, regs: regs, log: log}, nil
	}
}

func (e *engineRGB) Program(p *repository.Pattern) error {
	var err error
	e.redOn, e.greenOn, e.blueOn = p.Channel1 != "", p.Channel2 != "", p.Channel3 != ""

	if e.redOn {
		if prog, derr := decodeProgram(p.Channel1); derr != nil {
			err = derr
		} else if lerr := loadProgram(e.bus, e.regs, e.regs.loadReg, prog); lerr != nil {
			err = lerr
		}
	}
	if e.greenOn {
		if prog, derr := decodeProgram(p.Channel2); derr != nil {
			err = derr
		} else if lerr := loadProgram(e.bus, e.regs, e.regs.loadReg2, prog); lerr != nil {
			err = lerr
		}
	}
	if e.blueOn {
		if prog, derr := decodeProgram(p.Channel3); derr != nil {
			err = derr
		} else if lerr := loadProgram(e.bus, e.regs, e.regs.loadReg3, prog); lerr != nil {
			err = lerr
		}
	}
	// Engines are already RUN-latched individually by loadProgram; a
	// second pass here walks them 3, 2, 1 so the last write observed by
	// the controller is always engine 1's, per the last-write-wins RUN
	// convention this register layout relies on.
	if e.blueOn {
		if perr := e.bus.writeReg(e.regs.modeReg, modeRun); perr != nil {
			err = perr
		}
	}
	if e.greenOn {
		if perr := e.bus.writeReg(e.regs.modeReg, modeRun); perr != nil {
			err = perr
		}
	}
	if e.redOn {
		if perr := e.bus.writeReg(e.regs.modeReg, modeRun); perr != nil {
			err = perr
		}
	}

	if err != nil {
		e.log.WithError(err).WithField("pattern", p.Name).Warn("engine-rgb: bad channel program")
		return err
	}
	return e.pushBrightness(p.Brightness)
}

func (e *engineRGB) Disable() error {
	e.redOn, e.greenOn, e.blueOn = false, false, false
	return e.bus.writeReg(e.regs.modeReg, modeDisabled)
}

func (e *engineRGB) SetBrightness(level int) error {
	if level < 0 {
		return nil
	}
	return e.pushBrightness(level)
}

// pushBrightness applies the hue-correction table: when two or three
// channels are lit simultaneously, red is boosted relative to the
// other channels so the blended colour reads correctly on hardware
// whose red die is markedly dimmer than green/blue at equal current.
func (e *engineRGB) pushBrightness(level int) error {
	level = clampBrightness(level)
	red, green, blue := level, level, level

	switch {
	case e.redOn && e.greenOn && e.blueOn:
		red = clampBrightness(level * 4)
		green = clampBrightness(level / 4)
		blue = clampBrightness(level / 4)
	case e.redOn && e.greenOn:
		red = clampBrightness(level * 10)
		green = clampBrightness(level / 10)
	case e.redOn && e.blueOn:
		red = clampBrightness(level * 4)
		blue = clampBrightness(level / 4)
	}

	var err error
	if e.redOn {
		if e2 := e.bus.writeReg(e.regs.curR, brightnessTable16[red]); e2 != nil {
			err = e2
		}
	}
	if e.greenOn {
		if e2 := e.bus.writeReg(e.regs.curG, brightnessTable16[green]); e2 != nil {
			err = e2
		}
	}
	if e.blueOn {
		if e2 := e.bus.writeReg(e.regs.curB, brightnessTable16[blue]); e2 != nil {
			err = e2
		}
	}
	return err
}

func (e *engineRGB) Close() error { return e.bus.Close() }

func init() {
	RegisterFamily(repository.FamilyEngineRGBA, newEngineRGB(registerMapA))
	RegisterFamily(repository.FamilyEngineRGBB, newEngineRGB(registerMapB))
}
