package backend

import (
	"github.com/sailfishos/mce-ledind/repository"
	"github.com/sirupsen/logrus"
)

// noneDriver is used when no LED hardware is present; every call is a
// no-op so the service keeps running and bus-level introspection
// remains possible.
type noneDriver struct{}

func NewNone() Driver { return noneDriver{} }

func (noneDriver) Program(*repository.Pattern) error { return nil }
func (noneDriver) Disable() error                    { return nil }
func (noneDriver) SetBrightness(int) error            { return nil }
func (noneDriver) Close() error                      { return nil }

func init() {
	RegisterFamily(repository.FamilyNone, func(Config, *logrus.Logger) (Driver, error) {
		return NewNone(), nil
	})
}
