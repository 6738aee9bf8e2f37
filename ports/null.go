package ports

import (
	"context"

	"github.com/modbotics/brain/config"
	"github.com/modbotics/brain/events"
	"github.com/modbotics/brain/mcu"
)

// DefaultDriverName is the registry name of the null driver every
// unconfigured port is bound to. The hardware type map must contain a
// code for it.
const DefaultDriverName = "NotConfigured"

// nullDriver stands in when a port has no real driver. It satisfies both
// capability interfaces so ports can hand out a motor or sensor view
// without nil checks; anything touching hardware fails with
// PortNotConfiguredError.
type nullDriver struct {
	port          *Port
	statusChanged events.Aggregator[*Port]
}

func newNullDriver(port *Port, _ *config.Driver) (Driver, error) {
	return &nullDriver{port: port}, nil
}

func (d *nullDriver) TypeName() string { return DefaultDriverName }

func (d *nullDriver) OnPortTypeSet(ctx context.Context) error { return nil }

// UpdateStatus drops the payload. Unconfigured ports report nothing.
func (d *nullDriver) UpdateStatus(data []byte) error { return nil }

func (d *nullDriver) StatusChanged() *events.Aggregator[*Port] { return &d.statusChanged }

func (d *nullDriver) Close(ctx context.Context) error { return nil }

func (d *nullDriver) Status() mcu.MotorStatus { return mcu.MotorStatusNormal }

func (d *nullDriver) Position() float64 { return 0 }

func (d *nullDriver) Speed() float64 { return 0 }

func (d *nullDriver) PowerCommand(power float64) (mcu.MotorCommand, error) {
	return mcu.MotorCommand{}, NewPortNotConfiguredError(d.port.Class(), d.port.Index())
}

func (d *nullDriver) SpeedCommand(speed, powerLimit float64) (mcu.MotorCommand, error) {
	return mcu.MotorCommand{}, NewPortNotConfiguredError(d.port.Class(), d.port.Index())
}

func (d *nullDriver) PositionCommand(degrees, speed, powerLimit float64) (mcu.MotorCommand, error) {
	return mcu.MotorCommand{}, NewPortNotConfiguredError(d.port.Class(), d.port.Index())
}

func (d *nullDriver) Read(ctx context.Context) (SensorReading, error) {
	return SensorReading{}, NewPortNotConfiguredError(d.port.Class(), d.port.Index())
}

func (d *nullDriver) Value() interface{} { return nil }
