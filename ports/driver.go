// Package ports models the robot's physical ports and the drivers bound
// to them. A port always has a driver; unconfigured ports carry a null
// driver whose hardware capabilities fail with PortNotConfiguredError.
package ports

import (
	"context"

	"github.com/modbotics/brain/events"
	"github.com/modbotics/brain/mcu"
)

// A Driver gives a port its behavior. Implementations decode the port's
// raw status payloads and broadcast changes through StatusChanged.
type Driver interface {
	// TypeName is the driver's registered name. It also selects the
	// hardware port type code programmed while binding.
	TypeName() string

	// OnPortTypeSet runs right after the hardware port type was
	// programmed, before the driver is bound. Drivers apply their
	// initial settings here.
	OnPortTypeSet(ctx context.Context) error

	// UpdateStatus feeds the driver a raw status payload read from the
	// hardware.
	UpdateStatus(data []byte) error

	// StatusChanged is the driver's broadcast registry. Subscribers are
	// normally attached by the owning Port's proxy, not directly.
	StatusChanged() *events.Aggregator[*Port]

	// Close releases driver resources. The port detaches the driver
	// before closing it.
	Close(ctx context.Context) error
}

// A MotorDriver is a Driver for a motor port. Status, Position and Speed
// return the last decoded values without touching hardware. The command
// constructors translate logical values into hardware commands, applying
// the driver's direction and gearing; they fail with
// PortNotConfiguredError on the null driver.
type MotorDriver interface {
	Driver

	Status() mcu.MotorStatus
	Position() float64
	Speed() float64

	PowerCommand(power float64) (mcu.MotorCommand, error)
	SpeedCommand(speed, powerLimit float64) (mcu.MotorCommand, error)
	PositionCommand(degrees, speed, powerLimit float64) (mcu.MotorCommand, error)
}

// A SensorReading pairs a raw status payload with its converted value.
type SensorReading struct {
	Raw   []byte
	Value interface{}
}

// A SensorDriver is a Driver for a sensor port. Read pulls a fresh value
// from the hardware; Value returns the last converted one. Read fails
// with PortNotConfiguredError on the null driver.
type SensorDriver interface {
	Driver

	Read(ctx context.Context) (SensorReading, error)
	Value() interface{}
}
