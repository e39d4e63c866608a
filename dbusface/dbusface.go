// Package dbusface adapts the internal bus's four request topics and
// two signal topics onto a real D-Bus object, and implements
// backend.IndicatorClient against an external indicator service for
// the rgb-shim backend. Object export and signal emission follow the
// godbus/dbus/v5 library's own documented Export/Emit calls.
package dbusface

import (
	"context"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/sirupsen/logrus"

	"github.com/sailfishos/mce-ledind/bus"
	"github.com/sailfishos/mce-ledind/errcode"
)

const (
	objectPath = dbus.ObjectPath("/com/nokia/mce/ledind")
	ifaceName  = "com.nokia.mce.ledind"
)

var (
	topicActivate   = bus.T("request", "activate_pattern")
	topicDeactivate = bus.T("request", "deactivate_pattern")
	topicEnableLED  = bus.T("request", "enable_led")
	topicDisableLED = bus.T("request", "disable_led")

	topicPatternActivated   = bus.T("signal", "pattern_activated")
	topicPatternDeactivated = bus.T("signal", "pattern_deactivated")
)

const requestTimeout = 2 * time.Second

// Facade exports the four external methods onto a D-Bus connection by
// forwarding each call onto the internal bus and waiting for the
// core's reply, and relays the core's two outbound signals onto the
// same connection.
type Facade struct {
	dbusConn *dbus.Conn
	busConn  *bus.Connection
	log      *logrus.Logger
}

// New wraps an already-connected *dbus.Conn (system or session, picked
// by the caller) and an internal bus connection.
func New(dbusConn *dbus.Conn, busConn *bus.Connection, log *logrus.Logger) *Facade {
	return &Facade{dbusConn: dbusConn, busConn: busConn, log: log}
}

// Export registers the object and starts relaying signals; it returns
// once both are wired, not when the process exits.
func (f *Facade) Export(ctx context.Context) error {
	if err := f.dbusConn.Export(methods{f}, objectPath, ifaceName); err != nil {
		return err
	}
	go f.relaySignals(ctx)
	return nil
}

// methods is the value godbus reflects over to find exported methods;
// kept distinct from Facade so Facade itself never satisfies any
// accidental D-Bus method-shaped interface.
type methods struct{ f *Facade }

func (m methods) ActivatePattern(name string) *dbus.Error {
	return m.f.call(topicActivate, name)
}

func (m methods) DeactivatePattern(name string) *dbus.Error {
	return m.f.call(topicDeactivate, name)
}

func (m methods) EnableLed() *dbus.Error {
	return m.f.call(topicEnableLED, nil)
}

func (m methods) DisableLed() *dbus.Error {
	return m.f.call(topicDisableLED, nil)
}

func (f *Facade) call(topic bus.Topic, payload any) *dbus.Error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	reply, err := f.busConn.RequestWait(ctx, f.busConn.NewMessage(topic, payload, false))
	if err != nil {
		f.log.WithError(err).WithField("component", "dbusface").Warn("internal bus request timed out")
		return dbus.MakeFailedError(errcode.BusTransportError)
	}
	if code, ok := reply.Payload.(errcode.Code); ok && code != errcode.OK {
		return dbus.NewError("com.nokia.mce.ledind.Error", []any{string(code)})
	}
	return nil
}

func (f *Facade) relaySignals(ctx context.Context) {
	activated := f.busConn.Subscribe(topicPatternActivated)
	deactivated := f.busConn.Subscribe(topicPatternDeactivated)
	defer f.busConn.Unsubscribe(activated)
	defer f.busConn.Unsubscribe(deactivated)

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-activated.Channel():
			f.emit("pattern_activated", msg.Payload)
		case msg := <-deactivated.Channel():
			f.emit("pattern_deactivated", msg.Payload)
		}
	}
}

func (f *Facade) emit(signal string, payload any) {
	name, ok := payload.(string)
	if !ok {
		return
	}
	if err := f.dbusConn.Emit(objectPath, ifaceName+"."+signal, name); err != nil {
		f.log.WithError(err).WithField("component", "dbusface").Warn("failed to emit D-Bus signal")
	}
}
