package dbusface

import (
	"github.com/godbus/dbus/v5"
)

const (
	indicatorDest = "com.nokia.mce.indicator"
	indicatorPath = dbus.ObjectPath("/com/nokia/mce/indicator")
	indicatorIface = "com.nokia.mce.indicator"
)

// Indicator implements backend.IndicatorClient by calling out to an
// already-running external indicator service over the same D-Bus
// connection the Facade exports on; the rgb-shim backend holds one of
// these rather than touching hardware directly.
type Indicator struct {
	conn *dbus.Conn
}

// NewIndicator wraps conn; the external service is expected to already
// be registered on indicatorDest.
func NewIndicator(conn *dbus.Conn) *Indicator {
	return &Indicator{conn: conn}
}

func (i *Indicator) SetColor(r, g, b uint8, onMs, offMs int) error {
	obj := i.conn.Object(indicatorDest, indicatorPath)
	return obj.Call(indicatorIface+".SetColor", 0, r, g, b, onMs, offMs).Err
}

func (i *Indicator) SetBrightness(level int) error {
	obj := i.conn.Object(indicatorDest, indicatorPath)
	return obj.Call(indicatorIface+".SetBrightness", 0, level).Err
}
