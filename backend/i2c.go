package backend

import (
	"golang.org/x/sys/unix"

	"github.com/sailfishos/mce-ledind/errcode"
)

// i2cSlaveForce is I2C_SLAVE_FORCE from <linux/i2c-dev.h>: set the
// slave address on a /dev/i2c-N node even if a kernel driver already
// claims it. Grounded directly on the example pack's LP5662 driver,
// which opens the bus node and issues this exact ioctl before any
// register write.
const i2cSlaveForce = 0x0706

// i2cHandle is a raw I2C bus connection, opened once at backend
// construction and held resident for the process lifetime.
type i2cHandle struct {
	fd   int
	addr uint16
}

func openI2C(device string, addr uint16) (*i2cHandle, error) {
	fd, err := unix.Open(device, unix.O_RDWR, 0)
	if err != nil {
		return nil, errcode.BackendIOError
	}
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), i2cSlaveForce, uintptr(addr)); errno != 0 {
		unix.Close(fd)
		return nil, errcode.BackendIOError
	}
	return &i2cHandle{fd: fd, addr: addr}, nil
}

// writeReg writes a single [register, value] transaction. Transient
// errno is not propagated beyond a BackendIOError so unrelated code
// downstream is never poisoned by it.
func (h *i2cHandle) writeReg(reg, value uint8) error {
	if _, err := unix.Write(h.fd, []byte{reg, value}); err != nil {
		return errcode.BackendIOError
	}
	return nil
}

// writeBytes writes an opaque byte sequence verbatim in one write,
// used to load an engine's load register and whole bytecode program.
func (h *i2cHandle) writeBytes(b []byte) error {
	if _, err := unix.Write(h.fd, b); err != nil {
		return errcode.BackendIOError
	}
	return nil
}

func (h *i2cHandle) Close() error {
	if h == nil {
		return nil
	}
	return unix.Close(h.fd)
}
