package ports

import (
	"fmt"

	"github.com/modbotics/brain/mcu"
)

// An UnknownDriverError is returned when a configuration names a driver
// that is not registered with the handler.
type UnknownDriverError struct {
	Name string
}

func (e *UnknownDriverError) Error() string {
	return fmt.Sprintf("unknown port driver %q", e.Name)
}

// NewUnknownDriverError returns an UnknownDriverError for name.
func NewUnknownDriverError(name string) error {
	return &UnknownDriverError{Name: name}
}

// A PortNotConfiguredError is returned when a capability that needs a
// real driver is used on a port that has none bound.
type PortNotConfiguredError struct {
	Class mcu.PortClass
	Port  int
}

func (e *PortNotConfiguredError) Error() string {
	return fmt.Sprintf("%s port %d is not configured", e.Class, e.Port)
}

// NewPortNotConfiguredError returns a PortNotConfiguredError for the
// given port.
func NewPortNotConfiguredError(class mcu.PortClass, port int) error {
	return &PortNotConfiguredError{Class: class, Port: port}
}
