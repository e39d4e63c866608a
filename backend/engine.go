package backend

import (
	"encoding/hex"

	"github.com/sailfishos/mce-ledind/errcode"
)

// Engine-controller mode values, shared across both I2C engine
// families: the sequence is always DISABLED -> LOAD -> (program
// bytes) -> RUN.
const (
	modeDisabled uint8 = 0x00
	modeLoad     uint8 = 0x01
	modeRun      uint8 = 0x02
)

// registerMap is the per-family register layout; the two concrete
// engine-mono/engine-rgb families differ only in these offsets, not in
// protocol shape, so one parametrized implementation serves both.
type registerMap struct {
	modeReg    uint8 // engine mode select register
	loadReg    uint8 // program-load target register (engine 1)
	loadReg2   uint8
	loadReg3   uint8
	currentReg uint8 // single-channel current/brightness register (engine-mono)
	curR       uint8 // per-colour current registers (engine-rgb)
	curG       uint8
	curB       uint8
	muxReg     uint8 // LED-to-engine mux register
}

var registerMapA = registerMap{modeReg: 0x00, loadReg: 0x10, loadReg2: 0x30, loadReg3: 0x50, currentReg: 0x07, curR: 0x07, curG: 0x08, curB: 0x09, muxReg: 0x70}
var registerMapB = registerMap{modeReg: 0x01, loadReg: 0x11, loadReg2: 0x31, loadReg3: 0x51, currentReg: 0x08, curR: 0x0a, curG: 0x0b, curB: 0x0c, muxReg: 0x71}

func decodeProgram(hexStr string) ([]byte, error) {
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		return nil, errcode.ConfigInvalid
	}
	return b, nil
}

// loadProgram runs the DISABLED -> LOAD -> bytes -> RUN sequence on
// one engine, via its load register.
func loadProgram(bus *i2cHandle, regs registerMap, loadReg uint8, program []byte) error {
	var err error
	if e := bus.writeReg(regs.modeReg, modeDisabled); e != nil {
		err = e
	}
	if e := bus.writeReg(regs.modeReg, modeLoad); e != nil {
		err = e
	}
	if e := bus.writeBytes(append([]byte{loadReg}, program...)); e != nil {
		err = e
	}
	if e := bus.writeReg(regs.modeReg, modeRun); e != nil {
		err = e
	}
	return err
}
